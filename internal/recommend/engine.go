// Package recommend scores candidate articles for a user against a TF-IDF model of
// the corpus and the user's decayed interest profile.
//
// An Engine is an explicit instance: Initialize builds a model snapshot off to the side
// and swaps it in atomically, so scoring calls running concurrently with a rebuild
// always see a complete model. Scoring never fails on data anomalies; a missing model
// or an empty profile falls back to trending ranking.
package recommend

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonathan/news-recommender/internal/mathutil"
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/profile"
	"github.com/jonathan/news-recommender/internal/textproc"
	"github.com/jonathan/news-recommender/internal/tfidf"
	"github.com/jonathan/news-recommender/internal/types"
	"github.com/rs/zerolog"
)

// Engine produces recommendations. It is safe for concurrent use.
type Engine struct {
	config Config
	logger zerolog.Logger
	now    func() time.Time

	snapshot atomic.Pointer[snapshot]
	version  atomic.Uint64

	// serializes Initialize calls
	buildMu sync.Mutex

	// least recently used profiles are evicted beyond Config.ProfileCacheSize
	profiles *lru.Cache[int64, cachedProfile]
}

// snapshot is everything derived from one corpus. It is never mutated after being published.
type snapshot struct {
	version     uint64
	model       *tfidf.Model
	features    map[int64]features
	unitVectors map[int64][]float64
	fingerprint uint64
	builtAt     time.Time
}

type features struct {
	category  types.Category
	bias      types.PoliticalBias
	sentiment float64
}

type cachedProfile struct {
	modelVersion uint64
	digest       uint64
	profile      *profile.Profile
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for decay and trending age computation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine. The engine has no model until Initialize is called and
// answers every request with trending recommendations until then.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	profiles, err := lru.New[int64, cachedProfile](cfg.ProfileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		now:      time.Now,
		profiles: profiles,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Initialize rebuilds the TF-IDF model and feature lookup for articles and publishes
// them. Profiles cached against the previous model are dropped.
func (e *Engine) Initialize(articles []types.Article) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()

	model := tfidf.Build(articles, tfidf.Options{
		Tokenizer:   textproc.NewTokenizer(e.config.MinTokenLength),
		StripMarkup: e.config.StripMarkup,
	})

	feats := make(map[int64]features, len(articles))
	units := make(map[int64][]float64, len(articles))
	for i := range articles {
		a := &articles[i]
		feats[a.ID] = features{category: a.Category, bias: a.PoliticalBias, sentiment: a.SentimentScore}
		if v, ok := model.Vector(a.ID); ok {
			units[a.ID] = mathutil.NormalizeVector(v)
		}
	}

	snap := &snapshot{
		version:     e.version.Add(1),
		model:       model,
		features:    feats,
		unitVectors: units,
		fingerprint: Fingerprint(articles),
		builtAt:     e.now(),
	}
	e.snapshot.Store(snap)
	e.profiles.Purge()

	elapsed := time.Since(start)
	metrics.RecordModelBuild(elapsed, model.Documents(), model.Dimension())
	e.logger.Debug().
		Int("documents", model.Documents()).
		Int("vocabulary", model.Dimension()).
		Uint64("version", snap.version).
		Dur("duration", elapsed).
		Msg("model rebuilt")
}

// Ready reports whether a model has been built.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// Model returns the current TF-IDF model, nil before Initialize.
func (e *Engine) Model() *tfidf.Model {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.model
}

// CorpusFingerprint returns the fingerprint of the corpus the current model was built
// from. The second result is false before Initialize.
func (e *Engine) CorpusFingerprint() (uint64, bool) {
	snap := e.snapshot.Load()
	if snap == nil {
		return 0, false
	}
	return snap.fingerprint, true
}

// EnsureInitialized rebuilds the model only when the corpus differs from the one the
// current model was built from. It reports whether a rebuild happened.
func (e *Engine) EnsureInitialized(articles []types.Article) bool {
	if fp, ok := e.CorpusFingerprint(); ok && fp == Fingerprint(articles) {
		return false
	}
	e.Initialize(articles)
	return true
}

// InvalidateUser drops the cached profile of a user. Call it after recording a new
// interaction.
func (e *Engine) InvalidateUser(userID int64) {
	e.profiles.Remove(userID)
}

// Profile builds (or returns the cached) profile of a user against the current model.
func (e *Engine) Profile(userID int64, interactions []types.InteractionEvent) *profile.Profile {
	return e.profileFor(e.snapshot.Load(), userID, interactions)
}

func (e *Engine) profileFor(snap *snapshot, userID int64, interactions []types.InteractionEvent) *profile.Profile {
	var version uint64
	var model *tfidf.Model
	if snap != nil {
		version, model = snap.version, snap.model
	}
	digest := interactionDigest(interactions)

	cached, ok := e.profiles.Get(userID)
	if ok && cached.modelVersion == version && cached.digest == digest {
		metrics.ProfileCacheHits.Inc()
		return cached.profile
	}
	metrics.ProfileCacheMisses.Inc()

	b := profile.NewBuilder(model.Dimension(), profile.Options{
		DecayDays: e.config.DecayDays,
		Now:       e.now,
	})
	for i := range interactions {
		ev := snap.denormalize(&interactions[i])
		v, _ := model.Vector(ev.ArticleID)
		b.Add(ev, v)
	}
	p := b.Build()

	if skipped := b.SkippedVectors(); skipped > 0 {
		e.logger.Debug().
			Int64("user_id", userID).
			Int("skipped", skipped).
			Msg("interactions without article vector")
	}

	e.profiles.Add(userID, cachedProfile{modelVersion: version, digest: digest, profile: p})
	return p
}

// denormalize fills category and bias of events recorded without them from the
// feature lookup. Events that already carry both are returned as is.
func (s *snapshot) denormalize(e *types.InteractionEvent) *types.InteractionEvent {
	if s == nil || (e.Category != "" && e.PoliticalBias != "") {
		return e
	}
	f, ok := s.features[e.ArticleID]
	if !ok {
		return e
	}
	filled := *e
	if filled.Category == "" {
		filled.Category = f.category
	}
	if filled.PoliticalBias == "" {
		filled.PoliticalBias = f.bias
	}
	return &filled
}

// ExportPreferences builds the user's profile and summarizes it for persistence.
func (e *Engine) ExportPreferences(userID int64, interactions []types.InteractionEvent) (types.PreferenceSummary, error) {
	snap := e.snapshot.Load()
	p := e.profileFor(snap, userID, interactions)

	var vocabulary []string
	if snap != nil {
		vocabulary = snap.model.Vocabulary()
	}
	return profile.Export(p, vocabulary)
}
