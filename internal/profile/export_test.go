package profile

import (
	"testing"
	"time"

	"github.com/jonathan/news-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	events := []types.InteractionEvent{
		event(1, types.InteractionShare, 0, types.CategoryTechnology, types.BiasLeft),
		event(2, types.InteractionLike, 0, types.CategoryHealth, types.BiasRight),
		event(3, types.InteractionView, 0, types.CategoryFinance, types.BiasNeutral),
		event(4, types.InteractionClick, time.Hour, types.CategorySports, types.BiasNeutral),
		event(5, types.InteractionClick, 2*time.Hour, types.CategoryPolitics, types.BiasNeutral),
		event(6, types.InteractionClick, 3*time.Hour, types.CategoryGeneral, types.BiasNeutral),
	}
	vectors := map[int64][]float64{1: {0.5, 0}, 2: {0, 0.5}}
	p := Build(events, vectors, 2, fixedClock())

	summary, err := Export(p, []string{"chip", "vaccine"})
	require.NoError(t, err)

	assert.Equal(t, []string{"technology", "health", "finance", "sports", "politics"}, summary.PreferredCategories)
	assert.Equal(t, []string{"neutral", "left", "right"}, summary.PreferredBiasTypes)

	decoded, err := ParseSerialized(summary.SerializedProfile)
	require.NoError(t, err)
	assert.Equal(t, []string{"chip", "vaccine"}, decoded.Vocabulary)
	assert.Equal(t, 6, decoded.TotalInteractions)
	assert.InDeltaSlice(t, p.InterestVector(), decoded.Vector, 1e-12)
}

func TestExport_EmptyProfile(t *testing.T) {
	summary, err := Export(Build(nil, nil, 0, fixedClock()), nil)
	require.NoError(t, err)

	assert.Empty(t, summary.PreferredCategories)
	assert.Empty(t, summary.PreferredBiasTypes)
	assert.JSONEq(t, `{"vector":[],"vocabulary":[],"totalInteractions":0}`, summary.SerializedProfile)
}

func TestParseSerialized_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", "not json"},
		{"length mismatch", `{"vector":[1,2],"vocabulary":["one"],"totalInteractions":1}`},
		{"missing count", `{"vector":[],"vocabulary":[]}`},
		{"non-numeric weight", `{"vector":["high"],"vocabulary":["one"],"totalInteractions":1}`},
		{"negative count", `{"vector":[],"vocabulary":[],"totalInteractions":-2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSerialized(tt.blob)
			assert.Error(t, err)
		})
	}
}
