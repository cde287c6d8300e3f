package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/config"
	"github.com/jonathan/news-recommender/internal/db"
	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/schemas"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/jonathan/news-recommender/internal/types"
)

// dataFiles names the optional JSON inputs of a command.
type dataFiles struct {
	articles     string
	interactions string
}

// validateInput checks a file against a bundled schema. A missing schema file only
// skips the check.
func validateInput(schema, path string) error {
	schemaPath := schemas.ResolveSchemaPath(schema)
	if schemaPath == "" {
		logger := logging.Component("cli")
		logger.Warn().Str("schema", schema).Msg("schema not found, skipping input validation")
		return nil
	}
	if err := schemas.ValidateJSON(schemaPath, path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// readArticles loads an article corpus file.
func readArticles(path string) ([]types.Article, error) {
	if err := validateInput(schemas.ArticlesSchema, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles file %s: %w", path, err)
	}
	var articles []types.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal articles JSON: %w", err)
	}

	for i := range articles {
		if err := articles[i].Validate(); err != nil {
			return nil, fmt.Errorf("article %d is invalid: %w", articles[i].ID, err)
		}
	}
	return articles, nil
}

// readInteractions loads an interaction log file. Category and bias may be absent;
// the engine fills them from the article.
func readInteractions(path string) ([]types.InteractionEvent, error) {
	if err := validateInput(schemas.InteractionsSchema, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions file %s: %w", path, err)
	}
	var events []types.InteractionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interactions JSON: %w", err)
	}
	return events, nil
}

// openStore returns the PostgreSQL store when a database is configured, seeded with
// the articles file if given. Otherwise it returns an in-memory store holding the
// input files.
func openStore(ctx context.Context, cfg *config.Config, files dataFiles) (store.Store, func(), error) {
	var articles []types.Article
	if files.articles != "" {
		var err error
		if articles, err = readArticles(files.articles); err != nil {
			return nil, nil, err
		}
	}

	if cfg.DatabaseURL != "" {
		if files.interactions != "" {
			return nil, nil, fmt.Errorf("--interactions cannot be combined with a database; record interactions through the API")
		}

		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		for i := range articles {
			if err := database.SaveArticle(ctx, &articles[i]); err != nil {
				database.Close()
				return nil, nil, err
			}
		}
		return database, database.Close, nil
	}

	if files.articles == "" {
		return nil, nil, fmt.Errorf("--articles is required when no database is configured")
	}
	mem := store.NewMemory(articles...)

	if files.interactions != "" {
		events, err := readInteractions(files.interactions)
		if err != nil {
			return nil, nil, err
		}
		for i := range events {
			if err := mem.RecordInteraction(ctx, &events[i]); err != nil {
				return nil, nil, err
			}
		}
	}
	return mem, func() {}, nil
}

// writeJSON writes v as indented JSON to path, or to out when path is empty.
// When schema is set the document is checked against it; a failure is only a warning.
func writeJSON(out io.Writer, path, schema string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}

	if schema != "" {
		if schemaPath := schemas.ResolveSchemaPath(schema); schemaPath != "" {
			if err := schemas.ValidateDocument(schemaPath, data); err != nil {
				logger := logging.Component("cli")
				logger.Warn().Err(err).Msg("output validation failed")
			}
		}
	}

	if path == "" {
		_, err := fmt.Fprintln(out, string(data))
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
