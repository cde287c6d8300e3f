package recommend

import (
	"testing"

	"github.com/jonathan/news-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshCorpus() []types.Article {
	return []types.Article{
		newsArticle(1, "Quantum processor design", types.CategoryTechnology, types.BiasNeutral),
		newsArticle(2, "Quantum network outage", types.CategoryTechnology, types.BiasRight),
		newsArticle(3, "Election debate tonight", types.CategoryPolitics, types.BiasLeft),
		newsArticle(4, "Senate budget showdown", types.CategoryPolitics, types.BiasRight),
		newsArticle(5, "Hospital vaccine rollout", types.CategoryHealth, types.BiasNeutral),
		newsArticle(6, "Marathon season opener", types.CategorySports, types.BiasRight),
	}
}

func TestRefresh_NoLikes(t *testing.T) {
	e := newTestEngine(t)
	e.Initialize(refreshCorpus())

	result, err := e.Refresh(RefreshRequest{
		UserID:       1,
		Interactions: []types.InteractionEvent{interaction(1, types.InteractionView, types.CategoryTechnology, types.BiasNeutral)},
		Articles:     refreshCorpus(),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.NotNil(t, result.Recommendations)
	assert.Equal(t, NoLikesMessage, result.Message)
	assert.Zero(t, result.TotalLikedArticles)
}

func TestRefresh_FromLikes(t *testing.T) {
	e := newTestEngine(t)
	corpus := refreshCorpus()
	e.Initialize(corpus)

	result, err := e.Refresh(RefreshRequest{
		UserID: 1,
		Interactions: []types.InteractionEvent{
			interaction(1, types.InteractionLike, types.CategoryTechnology, types.BiasNeutral),
			interaction(3, types.InteractionClick, types.CategoryPolitics, types.BiasLeft),
		},
		Articles: corpus,
		Count:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"technology"}, result.BasedOnCategories)
	assert.Equal(t, []string{"neutral"}, result.BasedOnBiasTypes)
	assert.Equal(t, 1, result.TotalLikedArticles)
	assert.Empty(t, result.Message)

	// technology or neutral, never already interacted with
	assert.ElementsMatch(t, []int64{2, 5}, ids(result.Recommendations))
	assert.Equal(t, int64(2), result.Recommendations[0].Article.ID)
}

func TestRefresh_DefaultCount(t *testing.T) {
	e := newTestEngine(t)
	corpus := refreshCorpus()
	e.Initialize(corpus)

	result, err := e.Refresh(RefreshRequest{
		UserID: 1,
		Interactions: []types.InteractionEvent{
			interaction(6, types.InteractionLike, types.CategorySports, types.BiasRight),
		},
		Articles: corpus,
	})
	require.NoError(t, err)
	// right-leaning articles 2 and 4 qualify besides nothing else in sports
	assert.LessOrEqual(t, len(result.Recommendations), DefaultConfig().RefreshCount)
	assert.ElementsMatch(t, []int64{2, 4}, ids(result.Recommendations))

	_, err = e.Refresh(RefreshRequest{UserID: 1, Count: -1})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}
