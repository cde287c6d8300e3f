package main

import (
	"fmt"
	"time"

	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/observability"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/spf13/cobra"
)

// ModelReport is the JSON written by build-model.
type ModelReport struct {
	Documents      int      `json:"documents"`
	VocabularySize int      `json:"vocabularySize"`
	Fingerprint    string   `json:"fingerprint"`
	Vocabulary     []string `json:"vocabulary"`
}

type buildModelOptions struct {
	files   dataFiles
	output  string
	verbose bool
}

func newBuildModelCmd(global *globalOptions) *cobra.Command {
	opts := &buildModelOptions{}

	cmd := &cobra.Command{
		Use:   "build-model",
		Short: "Build the TF-IDF model for an article corpus",
		Long:  "Builds the TF-IDF model from the article corpus (a JSON file, or the database when configured) and reports its vocabulary and corpus fingerprint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuildModel(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.files.articles, "articles", "a", "", "Path to input articles JSON file")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Path to output model report JSON file (default stdout)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a model summary")
	return cmd
}

func runBuildModel(cmd *cobra.Command, global *globalOptions, opts *buildModelOptions) error {
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

	start := time.Now()
	engine.Initialize(articles)
	elapsed := time.Since(start)

	model := engine.Model()
	fingerprint, _ := engine.CorpusFingerprint()
	report := ModelReport{
		Documents:      model.Documents(),
		VocabularySize: model.Dimension(),
		Fingerprint:    fmt.Sprintf("%016x", fingerprint),
		Vocabulary:     model.Vocabulary(),
	}

	if opts.verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintModelSummary(&observability.ModelSummary{
			Documents:      report.Documents,
			VocabularySize: report.VocabularySize,
			Fingerprint:    fingerprint,
			Duration:       elapsed,
			TopTerms:       report.Vocabulary,
		})
	}

	return writeJSON(cmd.OutOrStdout(), opts.output, "", report)
}
