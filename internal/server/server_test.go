package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/config"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/server/ratelimit"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/jonathan/news-recommender/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticles() []types.Article {
	now := time.Now().UTC()
	article := func(id int64, title string, category types.Category, bias types.PoliticalBias, sentiment float64) types.Article {
		return types.Article{
			ID:             id,
			Title:          title,
			Content:        title + " coverage continues",
			Category:       category,
			PoliticalBias:  bias,
			SentimentScore: sentiment,
			PublishedAt:    now.Add(-time.Duration(id) * time.Hour),
		}
	}
	return []types.Article{
		article(1, "Quantum processor design breakthrough", types.CategoryTechnology, types.BiasNeutral, 0.6),
		article(2, "Quantum processor design delayed", types.CategoryTechnology, types.BiasNeutral, -0.2),
		article(3, "Election debate tonight", types.CategoryPolitics, types.BiasLeft, 0.1),
		article(4, "Senate budget showdown", types.CategoryPolitics, types.BiasRight, -0.8),
		article(5, "Marathon season opener", types.CategorySports, types.BiasNeutral, 0.4),
		article(6, "Hospital staffing report", types.CategoryHealth, types.BiasLeft, -0.5),
	}
}

type testServer struct {
	*Server
	store *store.Memory
}

func newTestServer(t *testing.T, rateLimit *ratelimit.Config) *testServer {
	t.Helper()
	mem := store.NewMemory(testArticles()...)
	engine, err := recommend.New(recommend.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	s := New(Config{
		Port:      0,
		RateLimit: rateLimit,
		Engine:    config.Default().Engine,
	}, mem, engine, zerolog.Nop())
	return &testServer{Server: s, store: mem}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) interact(t *testing.T, userID, articleID int64, kind string) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/interact", InteractRequest{UserID: userID, ArticleID: articleID, InteractionType: kind})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["modelReady"])
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodOptions, "/api/interact", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/health", nil)

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsrec_api_requests_total")
}

func TestHandleInteract(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/interact", InteractRequest{UserID: 7, ArticleID: 3, InteractionType: "like"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	event := decode[types.InteractionEvent](t, w)
	assert.NotZero(t, event.ID)
	assert.Equal(t, types.InteractionLike, event.InteractionType)
	assert.Equal(t, types.CategoryPolitics, event.Category)
	assert.Equal(t, types.BiasLeft, event.PoliticalBias)

	stored, err := ts.store.UserInteractions(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	prefs, err := ts.store.GetPreferences(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"politics"}, prefs.PreferredCategories)
	assert.Equal(t, []string{"left"}, prefs.PreferredBiasTypes)
	assert.NotEmpty(t, prefs.SerializedProfile)
	assert.True(t, ts.engine.Ready())
}

func TestHandleInteract_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"malformed body", "{not json", http.StatusBadRequest, "Invalid request body"},
		{"unknown type", InteractRequest{UserID: 1, ArticleID: 1, InteractionType: "poke"}, http.StatusBadRequest, "interactionType"},
		{"missing user", InteractRequest{ArticleID: 1, InteractionType: "click"}, http.StatusBadRequest, "userId"},
		{"negative duration", map[string]any{"userId": 1, "articleId": 1, "interactionType": "view", "sessionDuration": -3}, http.StatusBadRequest, "sessionDuration"},
		{"unknown article", InteractRequest{UserID: 1, ArticleID: 404, InteractionType: "click"}, http.StatusNotFound, "Article not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/interact", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode[map[string]string](t, w)
			assert.Contains(t, body["error"], tt.wantError)
		})
	}

	stored, err := ts.store.UserInteractions(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestHandleRecommend_ColdStart(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/recommend/42?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RecommendationsResponse](t, w)
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, 0, resp.TotalInteractions)
	require.Len(t, resp.Recommendations, 3)
	for _, rec := range resp.Recommendations {
		assert.Equal(t, recommend.ReasonTrending, rec.Reason)
	}
	assert.True(t, ts.engine.Ready())
}

func TestHandleRecommend_Personalized(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.interact(t, 9, 1, "share")
	ts.interact(t, 9, 5, "click")

	w := ts.do(t, http.MethodGet, "/api/recommend/9?excludeViewed=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RecommendationsResponse](t, w)
	assert.Equal(t, 2, resp.TotalInteractions)
	require.NotEmpty(t, resp.Recommendations)

	got := make([]int64, 0, len(resp.Recommendations))
	for _, rec := range resp.Recommendations {
		got = append(got, rec.Article.ID)
		assert.NotEqual(t, recommend.ReasonTrending, rec.Reason)
	}
	assert.NotContains(t, got, int64(1))
	assert.NotContains(t, got, int64(5))
	// shares the title terms of the shared article
	assert.Equal(t, int64(2), got[0])
}

func TestHandleRecommend_BadInput(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{
		"/api/recommend/abc",
		"/api/recommend/0",
		"/api/recommend/1?limit=0",
		"/api/recommend/1?limit=ten",
	} {
		w := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandleRefresh(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/recommend/5/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[recommend.RefreshResult](t, w)
	assert.Empty(t, empty.Recommendations)
	assert.Equal(t, recommend.NoLikesMessage, empty.Message)

	ts.interact(t, 5, 3, "like")
	ts.interact(t, 5, 1, "view")

	w = ts.do(t, http.MethodGet, "/api/recommend/5/refresh?count=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[recommend.RefreshResult](t, w)

	assert.Equal(t, 1, result.TotalLikedArticles)
	assert.Equal(t, []string{"politics"}, result.BasedOnCategories)
	assert.Equal(t, []string{"left"}, result.BasedOnBiasTypes)

	got := make([]int64, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		got = append(got, rec.Article.ID)
	}
	// politics or left-leaning, never already seen
	assert.ElementsMatch(t, []int64{4, 6}, got)
}

func TestHandleSimilar(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/articles/1/similar?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		ArticleID       int64                  `json:"articleId"`
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ArticleID)
	require.Len(t, body.Recommendations, 2)
	assert.Equal(t, int64(2), body.Recommendations[0].Article.ID)
	assert.Equal(t, recommend.ReasonSimilarContent, body.Recommendations[0].Reason)

	w = ts.do(t, http.MethodGet, "/api/articles/99/similar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListInteractions(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/users/3/interactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	ts.interact(t, 3, 1, "click")
	ts.interact(t, 3, 2, "view")
	ts.interact(t, 3, 4, "share")

	w = ts.do(t, http.MethodGet, "/api/users/3/interactions?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]types.InteractionEvent](t, w)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].ArticleID)
	assert.Equal(t, int64(2), events[1].ArticleID)
}

func TestHandlePreferences(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/users/8/preferences", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/users/8/preferences", SavePreferencesRequest{
		PreferredCategories: []string{"sports"},
		SerializedProfile:   `{"vector":[0.5],"vocabulary":["marathon"],"totalInteractions":1}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/users/8/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode[types.UserPreferences](t, w)
	assert.Equal(t, int64(8), prefs.UserID)
	assert.Equal(t, []string{"sports"}, prefs.PreferredCategories)
	assert.Equal(t, []string{}, prefs.PreferredBiasTypes)
}

func TestHandleSavePreferences_Invalid(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"unknown category", SavePreferencesRequest{PreferredCategories: []string{"weather"}}},
		{"too many bias types", SavePreferencesRequest{PreferredBiasTypes: []string{"left", "right", "neutral", "left"}}},
		{"mismatched profile", SavePreferencesRequest{SerializedProfile: `{"vector":[1,2],"vocabulary":["a"]}`}},
		{"malformed body", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/users/8/preferences", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	_, err := ts.store.GetPreferences(context.Background(), 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRateLimit(t *testing.T) {
	cfg := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
	}
	ts := newTestServer(t, cfg)

	w := ts.do(t, http.MethodGet, "/api/users/1/interactions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/users/1/interactions", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	// health checks stay reachable
	w = ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &ErrValidation{Field: "limit", Message: "bad"}, http.StatusBadRequest},
		{"engine input", &recommend.InputError{Field: "limit", Cause: recommend.ErrInvalidLimit}, http.StatusBadRequest},
		{"not found", fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStart_Shutdown(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestValidationErrorUsesJSONNames(t *testing.T) {
	ts := newTestServer(t, nil)
	err := validationError(ts.validate.Struct(&InteractRequest{UserID: 1, ArticleID: 1}))

	var v *ErrValidation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "interactionType", v.Field)
	assert.True(t, strings.HasPrefix(v.Message, "failed required"))
}
