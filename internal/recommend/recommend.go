package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jonathan/news-recommender/internal/mathutil"
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/profile"
	"github.com/jonathan/news-recommender/internal/types"
)

// Reasons attached to recommendations.
const (
	ReasonHighlyRelevant = "Highly relevant to your interests"
	ReasonSimilar        = "Similar to articles you've enjoyed"
	ReasonPreferences    = "Based on your reading preferences"
	ReasonTrending       = "Trending article"
	ReasonSimilarContent = "Similar content"
)

const (
	highlyRelevantThreshold = 0.7
	similarThreshold        = 0.5
)

// Request is one recommendation call. Interactions is the user's history; Candidates
// are the articles eligible for recommendation.
type Request struct {
	UserID       int64
	Interactions []types.InteractionEvent
	Candidates   []types.Article
	ExcludeIDs   []int64
	Limit        int
}

// Recommendations ranks req.Candidates for the user. It returns at most req.Limit
// results and never fails on data anomalies; the only error is an invalid limit.
// ExcludeIDs only filter the personalized ranking; the trending fallback ranks every
// candidate.
func (e *Engine) Recommendations(req Request) ([]types.Recommendation, error) {
	if err := checkLimit(req.Limit); err != nil {
		return nil, err
	}

	snap := e.snapshot.Load()
	if snap == nil {
		return e.fallback("model_not_ready", req), nil
	}

	p := e.profileFor(snap, req.UserID, req.Interactions)
	if p.Empty() {
		return e.fallback("empty_profile", req), nil
	}

	metrics.RecommendationRequests.WithLabelValues(metrics.PathPersonalized).Inc()
	scored := e.score(snap, p, req.Candidates, idSet(req.ExcludeIDs))
	return diversify(scored, req.Limit, e.config.MinPerCategory, e.config.OverflowRatio), nil
}

func (e *Engine) fallback(reason string, req Request) []types.Recommendation {
	metrics.RecommendationRequests.WithLabelValues(metrics.PathTrending).Inc()
	metrics.RecommendationFallbacks.WithLabelValues(reason).Inc()
	e.logger.Debug().
		Int64("user_id", req.UserID).
		Str("reason", reason).
		Msg("falling back to trending")
	return e.trending(req.Candidates, nil, req.Limit)
}

// Trending ranks candidates by |sentiment| plus a recency bonus that falls linearly
// from 1 for a new article to 0 at the trending window. It needs no model.
func (e *Engine) Trending(candidates []types.Article, excludeIDs []int64, limit int) ([]types.Recommendation, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	metrics.RecommendationRequests.WithLabelValues(metrics.PathTrending).Inc()
	return e.trending(candidates, idSet(excludeIDs), limit), nil
}

func (e *Engine) trending(candidates []types.Article, exclude map[int64]struct{}, limit int) []types.Recommendation {
	now := e.now()
	window := e.config.TrendingWindowDays

	out := make([]types.Recommendation, 0, len(candidates))
	for i := range candidates {
		a := &candidates[i]
		if _, excluded := exclude[a.ID]; excluded {
			continue
		}
		out = append(out, types.Recommendation{
			Article: *a,
			Score:   math.Abs(a.SentimentScore) + recencyBonus(a.PublishedAt, now, window),
			Reason:  ReasonTrending,
		})
	}

	sortByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recencyBonus(publishedAt, now time.Time, windowDays float64) float64 {
	ageDays := now.Sub(publishedAt).Hours() / 24
	ageDays = math.Max(0, math.Min(windowDays, ageDays))
	return 1 - ageDays/windowDays
}

// score computes the blended score and reason of every non-excluded candidate,
// sorted by descending score.
func (e *Engine) score(snap *snapshot, p *profile.Profile, candidates []types.Article, exclude map[int64]struct{}) []types.Recommendation {
	top, hasTop := p.TopCategory()
	interest := p.InterestVector()

	out := make([]types.Recommendation, 0, len(candidates))
	mismatches := 0
	for i := range candidates {
		a := &candidates[i]
		if _, excluded := exclude[a.ID]; excluded {
			continue
		}

		var content float64
		if v, ok := snap.model.Vector(a.ID); ok {
			if len(v) == len(interest) {
				content = mathutil.CosineSimilarity(interest, v)
			} else {
				mismatches++
			}
		}
		category := p.CategoryWeight(a.Category)
		bias := p.BiasWeight(a.PoliticalBias)

		score := e.config.ContentWeight*content +
			e.config.CategoryWeight*category +
			e.config.BiasWeight*bias

		out = append(out, types.Recommendation{
			Article: *a,
			Score:   score,
			Reason:  reason(a.Category, top, hasTop, score),
		})
	}

	if mismatches > 0 {
		metrics.DimensionMismatches.Add(float64(mismatches))
		e.logger.Debug().
			Int("count", mismatches).
			Int("dimension", len(interest)).
			Msg("ignored article vectors with mismatched dimension")
	}

	sortByScore(out)
	return out
}

func reason(category, top types.Category, hasTop bool, score float64) string {
	switch {
	case hasTop && category == top:
		return fmt.Sprintf("You frequently read %s articles", category)
	case score > highlyRelevantThreshold:
		return ReasonHighlyRelevant
	case score > similarThreshold:
		return ReasonSimilar
	default:
		return ReasonPreferences
	}
}

// diversify walks a sorted list and caps each category at max(minPerCategory, limit/3)
// results. A capped category may still contribute while fewer than overflowRatio*limit
// results have been collected.
func diversify(sorted []types.Recommendation, limit, minPerCategory int, overflowRatio float64) []types.Recommendation {
	maxPerCategory := max(minPerCategory, limit/3)
	overflowBelow := float64(limit) * overflowRatio

	out := make([]types.Recommendation, 0, min(limit, len(sorted)))
	counts := make(map[types.Category]int)
	for _, r := range sorted {
		if len(out) >= limit {
			break
		}
		c := r.Article.Category
		if counts[c] >= maxPerCategory && float64(len(out)) >= overflowBelow {
			continue
		}
		counts[c]++
		out = append(out, r)
	}
	return out
}

// sortByScore sorts descending; equal scores keep input order.
func sortByScore(recs []types.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
