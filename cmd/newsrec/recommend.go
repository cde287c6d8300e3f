package main

import (
	"fmt"

	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/observability"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/schemas"
	"github.com/jonathan/news-recommender/internal/server"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/jonathan/news-recommender/internal/types"
	"github.com/spf13/cobra"
)

// SimilarReport is the JSON written by recommend --similar-to.
type SimilarReport struct {
	ArticleID       int64                  `json:"articleId"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

type recommendOptions struct {
	files         dataFiles
	userID        int64
	limit         int
	excludeViewed bool
	refresh       bool
	similarTo     int64
	output        string
	verbose       bool
}

func newRecommendCmd(global *globalOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend articles for a user",
		Long: `Ranks the article corpus for a user from their interaction history.

With --refresh only articles matching the categories or bias types the user liked
are considered. With --similar-to the articles closest in content to the given
article are returned instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.files.articles, "articles", "a", "", "Path to input articles JSON file")
	cmd.Flags().StringVarP(&opts.files.interactions, "interactions", "i", "", "Path to input interactions JSON file")
	cmd.Flags().Int64VarP(&opts.userID, "user-id", "u", 0, "User to recommend for")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Number of recommendations (default from config)")
	cmd.Flags().BoolVar(&opts.excludeViewed, "exclude-viewed", false, "Exclude articles the user already interacted with")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Smart refresh based on liked articles")
	cmd.Flags().Int64Var(&opts.similarTo, "similar-to", 0, "Return articles similar to this article id")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path to output JSON file (default stdout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a readable summary")
	return cmd
}

func runRecommend(cmd *cobra.Command, global *globalOptions, opts *recommendOptions) error {
	if opts.similarTo <= 0 && opts.userID <= 0 {
		return fmt.Errorf("--user-id is required unless --similar-to is set")
	}
	if opts.refresh && opts.similarTo > 0 {
		return fmt.Errorf("--refresh and --similar-to are mutually exclusive")
	}

	cfg, err := global.load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, closeStore, err := openStore(ctx, cfg, opts.files)
	if err != nil {
		return err
	}
	defer closeStore()

	articles, err := st.ListArticles(ctx, cfg.Engine.CorpusLimit)
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	engine, err := recommend.New(cfg.Engine.Config, logging.Logger())
	if err != nil {
		return err
	}
	engine.Initialize(articles)

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	out := cmd.OutOrStdout()

	if opts.similarTo > 0 {
		limit := opts.limit
		if limit == 0 {
			limit = cfg.Engine.DefaultLimit
		}
		recs, err := engine.SimilarArticles(opts.similarTo, articles, limit)
		if err != nil {
			return err
		}
		if opts.verbose {
			printer.PrintSimilar(opts.similarTo, recs)
		}
		return writeJSON(out, opts.output, "", SimilarReport{ArticleID: opts.similarTo, Recommendations: nonNilRecs(recs)})
	}

	interactions, err := st.UserInteractions(ctx, opts.userID, cfg.Engine.HistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load interactions: %w", err)
	}

	if opts.refresh {
		result, err := engine.Refresh(recommend.RefreshRequest{
			UserID:       opts.userID,
			Interactions: interactions,
			Articles:     articles,
			Count:        opts.limit,
		})
		if err != nil {
			return err
		}
		if opts.verbose {
			printer.PrintRefresh(opts.userID, result)
		}
		return writeJSON(out, opts.output, "", result)
	}

	limit := opts.limit
	if limit == 0 {
		limit = cfg.Engine.DefaultLimit
	}
	var exclude []int64
	if opts.excludeViewed {
		exclude = store.ViewedIDs(interactions)
	}

	recs, err := engine.Recommendations(recommend.Request{
		UserID:       opts.userID,
		Interactions: interactions,
		Candidates:   articles,
		ExcludeIDs:   exclude,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	if opts.verbose {
		printer.PrintRecommendations(opts.userID, recs)
	}

	return writeJSON(out, opts.output, schemas.RecommendationsSchema, server.RecommendationsResponse{
		Recommendations:   nonNilRecs(recs),
		TotalInteractions: len(interactions),
		UserID:            opts.userID,
	})
}

func nonNilRecs(recs []types.Recommendation) []types.Recommendation {
	if recs == nil {
		return []types.Recommendation{}
	}
	return recs
}
