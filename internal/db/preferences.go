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
// User Preference Methods
// -----------------------------------------------------------------------------

// GetPreferences retrieves the stored preferences of a user
func (db *DB) GetPreferences(ctx context.Context, userID int64) (*types.UserPreferences, error) {
	var p types.UserPreferences
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, preferred_categories, preferred_bias_types, serialized_profile, last_updated
		 FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.PreferredCategories, &p.PreferredBiasTypes, &p.SerializedProfile, &p.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &p, nil
}

// SavePreferences inserts or replaces the preferences of a user
func (db *DB) SavePreferences(ctx context.Context, p *types.UserPreferences) error {
	categories := p.PreferredCategories
	if categories == nil {
		categories = []string{}
	}
	biases := p.PreferredBiasTypes
	if biases == nil {
		biases = []string{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, preferred_categories, preferred_bias_types,
		                               serialized_profile, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		     preferred_categories = $2, preferred_bias_types = $3,
		     serialized_profile = $4, last_updated = $5`,
		p.UserID, categories, biases, p.SerializedProfile, p.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
