package recommend

import (
	"github.com/jonathan/news-recommender/internal/mathutil"
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/types"
)

// SimilarArticles ranks candidates by content similarity to one article. The article
// itself and candidates without a vector are skipped. It returns nothing when the
// model is not ready or the article is unknown to it.
func (e *Engine) SimilarArticles(articleID int64, candidates []types.Article, limit int) ([]types.Recommendation, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	metrics.RecommendationRequests.WithLabelValues(metrics.PathSimilar).Inc()

	snap := e.snapshot.Load()
	if snap == nil {
		return []types.Recommendation{}, nil
	}
	seed, ok := snap.unitVectors[articleID]
	if !ok {
		return []types.Recommendation{}, nil
	}

	out := make([]types.Recommendation, 0, len(candidates))
	for i := range candidates {
		a := &candidates[i]
		if a.ID == articleID {
			continue
		}
		v, ok := snap.unitVectors[a.ID]
		if !ok {
			continue
		}
		// both sides are unit length, so the dot product is the cosine
		out = append(out, types.Recommendation{
			Article: *a,
			Score:   mathutil.Dot(seed, v),
			Reason:  ReasonSimilarContent,
		})
	}

	sortByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
