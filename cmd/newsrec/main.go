// Package main implements the newsrec CLI: TF-IDF model builds, recommendations,
// preference export and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/news-recommender/internal/config"
	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	databaseURL string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "newsrec",
		Short:         "Content-based news recommender",
		Long:          "newsrec ranks news articles for a user from their reading history using TF-IDF content similarity, category and bias preferences, and category diversification.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newBuildModelCmd(opts),
		newRecommendCmd(opts),
		newExportPreferencesCmd(opts),
		newValidateCmd(),
		newServeCmd(opts),
	)
	return rootCmd
}

// load resolves the effective configuration and configures the global logger.
// Flags win over environment, which wins over the config file.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
