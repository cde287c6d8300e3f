package store

import (
	"context"
	"sync"

	"github.com/jonathan/news-recommender/internal/types"
)

// Memory is a Store backed by process memory. It is safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	articles     map[int64]types.Article
	interactions map[int64][]types.InteractionEvent
	preferences  map[int64]types.UserPreferences
	nextEventID  int64
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store seeded with articles.
func NewMemory(articles ...types.Article) *Memory {
	m := &Memory{
		articles:     make(map[int64]types.Article, len(articles)),
		interactions: make(map[int64][]types.InteractionEvent),
		preferences:  make(map[int64]types.UserPreferences),
	}
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	return m
}

func (m *Memory) ListArticles(_ context.Context, limit int) ([]types.Article, error) {
	m.mu.RLock()
	out := make([]types.Article, 0, len(m.articles))
	for _, a := range m.articles {
		out = append(out, a)
	}
	m.mu.RUnlock()

	SortArticles(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetArticle(_ context.Context, id int64) (*types.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) SaveArticle(_ context.Context, article *types.Article) error {
	m.mu.Lock()
	m.articles[article.ID] = *article
	m.mu.Unlock()
	return nil
}

func (m *Memory) RecordInteraction(_ context.Context, event *types.InteractionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextEventID++
	event.ID = m.nextEventID
	m.interactions[event.UserID] = append(m.interactions[event.UserID], *event)
	return nil
}

func (m *Memory) UserInteractions(_ context.Context, userID int64, limit int) ([]types.InteractionEvent, error) {
	m.mu.RLock()
	events := m.interactions[userID]
	out := make([]types.InteractionEvent, len(events))
	copy(out, events)
	m.mu.RUnlock()

	SortInteractions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetPreferences(_ context.Context, userID int64) (*types.UserPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.preferences[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) SavePreferences(_ context.Context, prefs *types.UserPreferences) error {
	m.mu.Lock()
	m.preferences[prefs.UserID] = *prefs
	m.mu.Unlock()
	return nil
}
