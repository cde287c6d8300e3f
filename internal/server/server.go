// Package server provides the HTTP REST API for the news recommender.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/config"
	"github.com/jonathan/news-recommender/internal/logging"
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/server/ratelimit"
	"github.com/jonathan/news-recommender/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler
	store      store.Store
	engine     *recommend.Engine
	engineCfg  config.EngineConfig
	validate   *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// Config holds server configuration
type Config struct {
	Port      int
	RateLimit *ratelimit.Config // nil disables rate limiting
	Engine    config.EngineConfig
}

// New creates a new server instance serving st through engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, st store.Store, engine *recommend.Engine, logger zerolog.Logger) *Server {
	s := &Server{
		store:     st,
		engine:    engine,
		engineCfg: cfg.Engine,
		validate:  newValidator(),
		logger:    logger.With().Str("component", "server").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/interact", s.handleInteract)
	mux.HandleFunc("GET /api/recommend/{userId}", s.handleRecommend)
	mux.HandleFunc("GET /api/recommend/{userId}/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/articles/{id}/similar", s.handleSimilar)

	mux.HandleFunc("GET /api/users/{userId}/interactions", s.handleListInteractions)
	mux.HandleFunc("GET /api/users/{userId}/preferences", s.handleGetPreferences)
	mux.HandleFunc("POST /api/users/{userId}/preferences", s.handleSavePreferences)

	s.mux = mux
	limit := ratelimit.Middleware(cfg.RateLimit, s.rateLimitResponse)
	s.handler = s.withLogging(s.withCORS(limit(mux)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging assigns a request id, logs the request and records its metrics.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), requestID))

		_, route := s.mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.RecordAPIRequest(r.Method, route, rec.status, elapsed)

		logger := logging.Ctx(r.Context(), s.logger)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", elapsed).
			Msg("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"modelReady": s.engine.Ready(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to its status and writes it. Server errors are logged and their
// details withheld from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger := logging.Ctx(r.Context(), s.logger)
		logger.Error().Err(err).Str("path", r.URL.Path).Msg(message)
		s.errorResponse(w, status, message)
		return
	}
	s.errorResponse(w, status, err.Error())
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request) {
	logger := logging.Ctx(r.Context(), s.logger)
	logger.Warn().
		Str("remote_addr", r.RemoteAddr).
		Str("path", r.URL.Path).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]string{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
	})
}
