// Package metrics exposes Prometheus instrumentation for the recommender.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation paths used as label values.
const (
	PathPersonalized = "personalized"
	PathTrending     = "trending"
	PathRefresh      = "refresh"
	PathSimilar      = "similar"
)

var (
	// Model metrics
	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsrec_model_build_duration_seconds",
			Help:    "Duration of TF-IDF model builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_model_builds_total",
			Help: "Total number of TF-IDF model builds",
		},
	)

	ModelVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsrec_model_vocabulary_terms",
			Help: "Number of terms in the current TF-IDF vocabulary",
		},
	)

	ModelDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsrec_model_documents",
			Help: "Number of articles in the current TF-IDF model",
		},
	)

	// Recommendation metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_recommendation_requests_total",
			Help: "Total number of recommendation requests by scoring path",
		},
		[]string{"path"},
	)

	RecommendationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_recommendation_fallbacks_total",
			Help: "Total number of trending fallbacks by cause",
		},
		[]string{"reason"}, // "model_not_ready", "empty_profile"
	)

	DimensionMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_dimension_mismatches_total",
			Help: "Article vectors ignored because their length disagreed with the profile",
		},
	)

	ProfileCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_profile_cache_hits_total",
			Help: "Total number of user profile cache hits",
		},
	)

	ProfileCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsrec_profile_cache_misses_total",
			Help: "Total number of user profile cache misses",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsrec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsrec_interactions_recorded_total",
			Help: "Total number of recorded user interactions by type",
		},
		[]string{"type"},
	)
)

// RecordModelBuild records one model rebuild.
func RecordModelBuild(duration time.Duration, documents, vocabulary int) {
	ModelBuilds.Inc()
	ModelBuildDuration.Observe(duration.Seconds())
	ModelDocuments.Set(float64(documents))
	ModelVocabularySize.Set(float64(vocabulary))
}

// RecordAPIRequest records an HTTP request. route is the registered pattern, not the raw path.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
