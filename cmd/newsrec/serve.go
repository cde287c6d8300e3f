package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/server"
	"github.com/jonathan/news-recommender/internal/server/ratelimit"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	files dataFiles
	port  int
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that records interactions and serves recommendations.

Uses PostgreSQL when a database URL is configured; otherwise serves an in-memory
store loaded from --articles (and optionally --interactions).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&opts.files.articles, "articles", "a", "", "Path to articles JSON file to load")
	cmd.Flags().StringVarP(&opts.files.interactions, "interactions", "i", "", "Path to interactions JSON file to load (in-memory only)")
	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	if opts.port != 0 {
		cfg.Port = opts.port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, opts.files)
	if err != nil {
		return err
	}
	defer closeStore()

	logger := logging.Logger()
	engine, err := recommend.New(cfg.Engine.Config, logger)
	if err != nil {
		return err
	}
	if err := warmUp(ctx, engine, st, cfg.Engine.CorpusLimit); err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:      cfg.Port,
		RateLimit: ratelimit.LoadConfig(cfg.RateLimitPerMinute(), os.Getenv),
		Engine:    cfg.Engine,
	}, st, engine, logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// warmUp builds the model before the first request arrives.
func warmUp(ctx context.Context, engine *recommend.Engine, st store.Store, limit int) error {
	articles, err := st.ListArticles(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}
	engine.Initialize(articles)
	return nil
}
