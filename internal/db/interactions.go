package db

import (
	"context"
	"fmt"

	"github.com/jonathan/news-recommender/internal/types"
)

// -----------------------------------------------------------------------------
// Interaction Methods
// -----------------------------------------------------------------------------

// RecordInteraction appends an interaction and sets its ID. A zero timestamp is
// filled with the database time.
func (db *DB) RecordInteraction(ctx context.Context, e *types.InteractionEvent) error {
	var ts any
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_interactions (user_id, article_id, interaction_type, session_duration,
		                                category, political_bias, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 RETURNING id, created_at`,
		e.UserID, e.ArticleID, e.InteractionType.String(), e.SessionDuration,
		string(e.Category), string(e.PoliticalBias), ts,
	).Scan(&e.ID, &e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// UserInteractions returns up to limit interactions of a user, newest first
func (db *DB) UserInteractions(ctx context.Context, userID int64, limit int) ([]types.InteractionEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, article_id, interaction_type, session_duration,
		        category, political_bias, created_at
		 FROM user_interactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	events := []types.InteractionEvent{}
	for rows.Next() {
		var e types.InteractionEvent
		var kind string
		if err := rows.Scan(&e.ID, &e.UserID, &e.ArticleID, &kind, &e.SessionDuration,
			&e.Category, &e.PoliticalBias, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		// retired labels load as unknown and weigh like a click
		_ = e.InteractionType.UnmarshalText([]byte(kind))
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return events, nil
}
