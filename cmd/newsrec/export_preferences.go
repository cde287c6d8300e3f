package main

import (
	"fmt"
	"time"

	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/observability"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/schemas"
	"github.com/jonathan/news-recommender/internal/types"
	"github.com/spf13/cobra"
)

type exportPreferencesOptions struct {
	files   dataFiles
	userID  int64
	save    bool
	output  string
	verbose bool
}

func newExportPreferencesCmd(global *globalOptions) *cobra.Command {
	opts := &exportPreferencesOptions{}

	cmd := &cobra.Command{
		Use:   "export-preferences",
		Short: "Export a user's preference summary",
		Long:  "Builds the user's interest profile from their latest interactions and exports the top categories, top bias types and the serialized profile.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExportPreferences(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.files.articles, "articles", "a", "", "Path to input articles JSON file")
	cmd.Flags().StringVarP(&opts.files.interactions, "interactions", "i", "", "Path to input interactions JSON file")
	cmd.Flags().Int64VarP(&opts.userID, "user-id", "u", 0, "User to export (required)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Also store the preferences")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path to output JSON file (default stdout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a readable summary")

	if err := cmd.MarkFlagRequired("user-id"); err != nil {
		panic(fmt.Sprintf("failed to mark user-id flag as required: %v", err))
	}
	return cmd
}

func runExportPreferences(cmd *cobra.Command, global *globalOptions, opts *exportPreferencesOptions) error {
	if opts.userID <= 0 {
		return fmt.Errorf("--user-id must be positive")
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
	interactions, err := st.UserInteractions(ctx, opts.userID, cfg.Engine.PreferenceHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load interactions: %w", err)
	}

	engine, err := recommend.New(cfg.Engine.Config, logging.Logger())
	if err != nil {
		return err
	}
	engine.Initialize(articles)

	summary, err := engine.ExportPreferences(opts.userID, interactions)
	if err != nil {
		return err
	}
	prefs := types.UserPreferences{
		UserID:            opts.userID,
		PreferenceSummary: summary,
		LastUpdated:       time.Now().UTC(),
	}

	if opts.save {
		if err := st.SavePreferences(ctx, &prefs); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
	}
	if opts.verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintPreferences(opts.userID, &summary)
	}

	return writeJSON(cmd.OutOrStdout(), opts.output, schemas.PreferencesSchema, prefs)
}
