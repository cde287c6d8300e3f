package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/jonathan/news-recommender/internal/types"
)

// -----------------------------------------------------------------------------
// Article Methods
// -----------------------------------------------------------------------------

const articleColumns = `id, title, content, summary, url, source, category, political_bias,
		        sentiment_score, published_at`

func scanArticle(row pgx.Row) (*types.Article, error) {
	var a types.Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Summary, &a.URL, &a.Source,
		&a.Category, &a.PoliticalBias, &a.SentimentScore, &a.PublishedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListArticles returns up to limit articles, newest first
func (db *DB) ListArticles(ctx context.Context, limit int) ([]types.Article, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+articleColumns+`
		 FROM articles
		 ORDER BY published_at DESC, id DESC
		 LIMIT $1`,
		limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []types.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// GetArticle retrieves an article by its ID
func (db *DB) GetArticle(ctx context.Context, id int64) (*types.Article, error) {
	a, err := scanArticle(db.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// SaveArticle inserts or replaces an article
func (db *DB) SaveArticle(ctx context.Context, a *types.Article) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO articles (id, title, content, summary, url, source, category,
		                       political_bias, sentiment_score, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		     title = $2, content = $3, summary = $4, url = $5, source = $6,
		     category = $7, political_bias = $8, sentiment_score = $9, published_at = $10`,
		a.ID, a.Title, a.Content, a.Summary, a.URL, a.Source,
		string(a.Category), string(a.PoliticalBias), a.SentimentScore, a.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}
