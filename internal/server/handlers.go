package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/profile"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/jonathan/news-recommender/internal/types"
	"golang.org/x/sync/errgroup"
)

// Query defaults.
const (
	defaultInteractionsLimit = 50
	defaultSimilarLimit      = 5
)

// ---------------------------------------------------------------------
// Interaction Handlers
// ---------------------------------------------------------------------

// InteractRequest is the body of POST /api/interact.
type InteractRequest struct {
	UserID          int64  `json:"userId" validate:"gt=0"`
	ArticleID       int64  `json:"articleId" validate:"gt=0"`
	InteractionType string `json:"interactionType" validate:"required,oneof=click view like share"`
	SessionDuration *int   `json:"sessionDuration,omitempty" validate:"omitempty,gte=0"`
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.fail(w, r, validationError(err), "Invalid interaction data")
		return
	}
	interactionType, err := types.ParseInteractionType(req.InteractionType)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "interactionType", Message: err.Error()}, "Invalid interaction data")
		return
	}

	ctx := r.Context()
	article, err := s.store.GetArticle(ctx, req.ArticleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Article not found")
			return
		}
		s.fail(w, r, err, "Failed to store interaction")
		return
	}

	event := types.InteractionEvent{
		UserID:          req.UserID,
		ArticleID:       article.ID,
		InteractionType: interactionType,
		Timestamp:       s.now(),
		SessionDuration: req.SessionDuration,
		Category:        article.Category,
		PoliticalBias:   article.PoliticalBias,
	}
	if err := s.store.RecordInteraction(ctx, &event); err != nil {
		s.fail(w, r, err, "Failed to store interaction")
		return
	}
	metrics.InteractionsRecorded.WithLabelValues(interactionType.String()).Inc()
	s.engine.InvalidateUser(req.UserID)

	if err := s.updatePreferences(ctx, req.UserID); err != nil {
		s.fail(w, r, err, "Failed to update user preferences")
		return
	}

	s.jsonResponse(w, http.StatusCreated, event)
}

// updatePreferences rebuilds and stores the preference summary of a user from
// their latest interactions.
func (s *Server) updatePreferences(ctx context.Context, userID int64) error {
	articles, interactions, err := s.load(ctx, userID, s.engineCfg.PreferenceHistoryLimit)
	if err != nil {
		return err
	}
	s.ensureModel(ctx, articles)

	summary, err := s.engine.ExportPreferences(userID, interactions)
	if err != nil {
		return fmt.Errorf("failed to export preferences: %w", err)
	}
	prefs := types.UserPreferences{
		UserID:            userID,
		PreferenceSummary: summary,
		LastUpdated:       s.now(),
	}
	if err := s.store.SavePreferences(ctx, &prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err, "Invalid user ID")
		return
	}
	limit, err := queryInt(r, "limit", defaultInteractionsLimit)
	if err != nil {
		s.fail(w, r, err, "Invalid limit")
		return
	}

	interactions, err := s.store.UserInteractions(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, r, err, "Failed to fetch user interactions")
		return
	}
	if interactions == nil {
		interactions = []types.InteractionEvent{}
	}

	s.jsonResponse(w, http.StatusOK, interactions)
}

// ---------------------------------------------------------------------
// Recommendation Handlers
// ---------------------------------------------------------------------

// RecommendationsResponse is the body returned by GET /api/recommend/{userId}.
type RecommendationsResponse struct {
	Recommendations   []types.Recommendation `json:"recommendations"`
	TotalInteractions int                    `json:"totalInteractions"`
	UserID            int64                  `json:"userId"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err, "Invalid user ID")
		return
	}
	limit, err := queryInt(r, "limit", s.engineCfg.DefaultLimit)
	if err != nil {
		s.fail(w, r, err, "Invalid limit")
		return
	}
	excludeViewed := r.URL.Query().Get("excludeViewed") == "true"

	articles, interactions, err := s.load(r.Context(), userID, s.engineCfg.HistoryLimit)
	if err != nil {
		s.fail(w, r, err, "Failed to generate recommendations")
		return
	}
	s.ensureModel(r.Context(), articles)

	var exclude []int64
	if excludeViewed {
		exclude = store.ViewedIDs(interactions)
	}

	recs, err := s.engine.Recommendations(recommend.Request{
		UserID:       userID,
		Interactions: interactions,
		Candidates:   articles,
		ExcludeIDs:   exclude,
		Limit:        limit,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to generate recommendations")
		return
	}
	if recs == nil {
		recs = []types.Recommendation{}
	}

	s.jsonResponse(w, http.StatusOK, RecommendationsResponse{
		Recommendations:   recs,
		TotalInteractions: len(interactions),
		UserID:            userID,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err, "Invalid user ID")
		return
	}
	count, err := queryInt(r, "count", s.engineCfg.RefreshCount)
	if err != nil {
		s.fail(w, r, err, "Invalid count")
		return
	}

	articles, interactions, err := s.load(r.Context(), userID, s.engineCfg.HistoryLimit)
	if err != nil {
		s.fail(w, r, err, "Failed to generate refresh recommendations")
		return
	}
	s.ensureModel(r.Context(), articles)

	result, err := s.engine.Refresh(recommend.RefreshRequest{
		UserID:       userID,
		Interactions: interactions,
		Articles:     articles,
		Count:        count,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to generate refresh recommendations")
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	articleID, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "Invalid article ID")
		return
	}
	limit, err := queryInt(r, "limit", defaultSimilarLimit)
	if err != nil {
		s.fail(w, r, err, "Invalid limit")
		return
	}

	ctx := r.Context()
	if _, err := s.store.GetArticle(ctx, articleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Article not found")
			return
		}
		s.fail(w, r, err, "Failed to find similar articles")
		return
	}

	articles, err := s.store.ListArticles(ctx, s.engineCfg.CorpusLimit)
	if err != nil {
		s.fail(w, r, err, "Failed to find similar articles")
		return
	}
	s.ensureModel(ctx, articles)

	recs, err := s.engine.SimilarArticles(articleID, articles, limit)
	if err != nil {
		s.fail(w, r, err, "Failed to find similar articles")
		return
	}
	if recs == nil {
		recs = []types.Recommendation{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"articleId":       articleID,
		"recommendations": recs,
	})
}

// ---------------------------------------------------------------------
// Preference Handlers
// ---------------------------------------------------------------------

// SavePreferencesRequest is the body of POST /api/users/{userId}/preferences.
type SavePreferencesRequest struct {
	PreferredCategories []string `json:"preferredCategories" validate:"max=5,dive,oneof=politics technology health finance sports general"`
	PreferredBiasTypes  []string `json:"preferredBiasTypes" validate:"max=3,dive,oneof=left right neutral"`
	SerializedProfile   string   `json:"serializedProfile"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err, "Invalid user ID")
		return
	}

	prefs, err := s.store.GetPreferences(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "User preferences not found")
			return
		}
		s.fail(w, r, err, "Failed to fetch user preferences")
		return
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err, "Invalid user ID")
		return
	}

	var req SavePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.fail(w, r, validationError(err), "Invalid preferences data")
		return
	}
	if req.SerializedProfile != "" {
		if _, err := profile.ParseSerialized(req.SerializedProfile); err != nil {
			s.fail(w, r, &ErrValidation{Field: "serializedProfile", Message: err.Error()}, "Invalid preferences data")
			return
		}
	}

	prefs := types.UserPreferences{
		UserID: userID,
		PreferenceSummary: types.PreferenceSummary{
			PreferredCategories: nonNil(req.PreferredCategories),
			PreferredBiasTypes:  nonNil(req.PreferredBiasTypes),
			SerializedProfile:   req.SerializedProfile,
		},
		LastUpdated: s.now(),
	}
	if err := s.store.SavePreferences(r.Context(), &prefs); err != nil {
		s.fail(w, r, err, "Failed to save user preferences")
		return
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}

// ---------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------

// load fetches the candidate corpus and the user's latest interactions concurrently.
func (s *Server) load(ctx context.Context, userID int64, historyLimit int) ([]types.Article, []types.InteractionEvent, error) {
	var articles []types.Article
	var interactions []types.InteractionEvent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, err = s.store.ListArticles(gctx, s.engineCfg.CorpusLimit)
		if err != nil {
			return fmt.Errorf("failed to load articles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		interactions, err = s.store.UserInteractions(gctx, userID, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load interactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return articles, interactions, nil
}

// ensureModel rebuilds the engine's model when the corpus changed.
func (s *Server) ensureModel(ctx context.Context, articles []types.Article) {
	if s.engine.EnsureInitialized(articles) {
		logger := logging.Ctx(ctx, s.logger)
		logger.Debug().Int("articles", len(articles)).Msg("model rebuilt for changed corpus")
	}
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryInt parses an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
