// Package store defines the query interface the recommender reads articles and
// interactions through, with an in-memory implementation.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/jonathan/news-recommender/internal/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary of the recommender.
type Store interface {
	// ListArticles returns up to limit articles, newest first. limit <= 0 means no limit.
	ListArticles(ctx context.Context, limit int) ([]types.Article, error)
	// GetArticle returns ErrNotFound for an unknown id.
	GetArticle(ctx context.Context, id int64) (*types.Article, error)
	// SaveArticle inserts or replaces an article by id.
	SaveArticle(ctx context.Context, article *types.Article) error

	// RecordInteraction appends an event and assigns its ID.
	RecordInteraction(ctx context.Context, event *types.InteractionEvent) error
	// UserInteractions returns up to limit events of a user, newest first.
	UserInteractions(ctx context.Context, userID int64, limit int) ([]types.InteractionEvent, error)

	// GetPreferences returns ErrNotFound when none were saved for the user.
	GetPreferences(ctx context.Context, userID int64) (*types.UserPreferences, error)
	// SavePreferences inserts or replaces a user's preferences.
	SavePreferences(ctx context.Context, prefs *types.UserPreferences) error
}

// SortArticles orders articles newest first, then by descending id.
func SortArticles(articles []types.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := &articles[i], &articles[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID > b.ID
	})
}

// SortInteractions orders events newest first, then by descending id.
func SortInteractions(events []types.InteractionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := &events[i], &events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})
}

// ViewedIDs returns the distinct article ids in events, in first-seen order.
func ViewedIDs(events []types.InteractionEvent) []int64 {
	seen := make(map[int64]struct{}, len(events))
	ids := make([]int64, 0, len(events))
	for i := range events {
		id := events[i].ArticleID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
