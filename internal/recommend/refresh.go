package recommend

import (
	"github.com/jonathan/news-recommender/internal/metrics"
	"github.com/jonathan/news-recommender/internal/types"
)

// NoLikesMessage is returned by Refresh for users who have not liked anything yet.
const NoLikesMessage = "Like some articles first to get smart refresh recommendations"

// RefreshRequest asks for fresh articles close to what the user liked.
type RefreshRequest struct {
	UserID       int64
	Interactions []types.InteractionEvent
	Articles     []types.Article
	// Count is the number of results; zero uses the configured refresh count.
	Count int
}

// RefreshResult is the outcome of a smart refresh.
type RefreshResult struct {
	Recommendations    []types.Recommendation `json:"newRecommendations"`
	BasedOnCategories  []string               `json:"basedOnCategories,omitempty"`
	BasedOnBiasTypes   []string               `json:"basedOnBiasTypes,omitempty"`
	TotalLikedArticles int                    `json:"totalLikedArticles"`
	Message            string                 `json:"message,omitempty"`
}

// Refresh recommends articles the user has not interacted with whose category or
// bias matches one of the user's liked articles. Categories and bias types are
// reported in the order they first appear among the likes.
func (e *Engine) Refresh(req RefreshRequest) (*RefreshResult, error) {
	count := req.Count
	if count == 0 {
		count = e.config.RefreshCount
	}
	if err := checkLimit(count); err != nil {
		return nil, err
	}

	var categories []types.Category
	var biases []types.PoliticalBias
	seenCategory := make(map[types.Category]bool)
	seenBias := make(map[types.PoliticalBias]bool)
	interacted := make([]int64, 0, len(req.Interactions))
	likes := 0

	snap := e.snapshot.Load()
	for i := range req.Interactions {
		ev := snap.denormalize(&req.Interactions[i])
		interacted = append(interacted, ev.ArticleID)
		if ev.InteractionType != types.InteractionLike {
			continue
		}
		likes++
		if !seenCategory[ev.Category] {
			seenCategory[ev.Category] = true
			categories = append(categories, ev.Category)
		}
		if !seenBias[ev.PoliticalBias] {
			seenBias[ev.PoliticalBias] = true
			biases = append(biases, ev.PoliticalBias)
		}
	}

	if likes == 0 {
		return &RefreshResult{
			Recommendations: []types.Recommendation{},
			Message:         NoLikesMessage,
		}, nil
	}

	exclude := idSet(interacted)
	candidates := make([]types.Article, 0, len(req.Articles))
	for i := range req.Articles {
		a := &req.Articles[i]
		if _, done := exclude[a.ID]; done {
			continue
		}
		if seenCategory[a.Category] || seenBias[a.PoliticalBias] {
			candidates = append(candidates, *a)
		}
	}

	recs, err := e.Recommendations(Request{
		UserID:       req.UserID,
		Interactions: req.Interactions,
		Candidates:   candidates,
		ExcludeIDs:   interacted,
		Limit:        count,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecommendationRequests.WithLabelValues(metrics.PathRefresh).Inc()

	result := &RefreshResult{
		Recommendations:    recs,
		BasedOnCategories:  make([]string, len(categories)),
		BasedOnBiasTypes:   make([]string, len(biases)),
		TotalLikedArticles: likes,
	}
	for i, c := range categories {
		result.BasedOnCategories[i] = string(c)
	}
	for i, b := range biases {
		result.BasedOnBiasTypes[i] = string(b)
	}
	return result, nil
}
