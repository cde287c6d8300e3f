// Package profile aggregates a user's interaction history into an interest profile:
// a decayed, weighted TF-IDF interest vector plus normalized category and bias
// preference distributions.
package profile

import (
	"sort"
	"time"

	"github.com/jonathan/news-recommender/internal/mathutil"
	"github.com/jonathan/news-recommender/internal/types"
)

// Options controls how events are weighted.
type Options struct {
	// DecayDays is the exponential decay time constant. Zero uses mathutil.DefaultDecayDays.
	DecayDays float64
	// Now returns the reference time for decay. Nil uses time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Profile is an immutable user interest profile. Build one with Builder or Build.
type Profile struct {
	categoryWeights   map[types.Category]float64
	biasWeights       map[types.PoliticalBias]float64
	interestVector    []float64
	totalInteractions int
	weighted          bool
}

// Empty reports whether the profile carries no preferences: it was built from no
// interactions, or from interactions whose effective weights were all zero.
func (p *Profile) Empty() bool {
	return p == nil || p.totalInteractions == 0 || !p.weighted
}

// TotalInteractions is the number of events folded into the profile.
func (p *Profile) TotalInteractions() int {
	return p.totalInteractions
}

// InterestVector returns the normalized interest vector. Callers must not modify it.
func (p *Profile) InterestVector() []float64 {
	return p.interestVector
}

// Dimension is the length of the interest vector.
func (p *Profile) Dimension() int {
	return len(p.interestVector)
}

// CategoryWeight returns the normalized weight of c, 0 if never seen.
func (p *Profile) CategoryWeight(c types.Category) float64 {
	return p.categoryWeights[c]
}

// BiasWeight returns the normalized weight of b, 0 if never seen.
func (p *Profile) BiasWeight(b types.PoliticalBias) float64 {
	return p.biasWeights[b]
}

// CategoryWeights returns a copy of the category distribution.
func (p *Profile) CategoryWeights() map[types.Category]float64 {
	out := make(map[types.Category]float64, len(p.categoryWeights))
	for k, v := range p.categoryWeights {
		out[k] = v
	}
	return out
}

// BiasWeights returns a copy of the bias distribution.
func (p *Profile) BiasWeights() map[types.PoliticalBias]float64 {
	out := make(map[types.PoliticalBias]float64, len(p.biasWeights))
	for k, v := range p.biasWeights {
		out[k] = v
	}
	return out
}

// TopCategory returns the highest weighted category. Ties go to the
// alphabetically first category.
func (p *Profile) TopCategory() (types.Category, bool) {
	top := p.TopCategories(1)
	if len(top) == 0 {
		return "", false
	}
	return top[0], true
}

// TopCategories returns up to n categories by descending weight.
func (p *Profile) TopCategories(n int) []types.Category {
	return topKeys(p.categoryWeights, n)
}

// TopBiases returns up to n bias labels by descending weight.
func (p *Profile) TopBiases(n int) []types.PoliticalBias {
	return topKeys(p.biasWeights, n)
}

func topKeys[K ~string](weights map[K]float64, n int) []K {
	keys := make([]K, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := weights[keys[i]], weights[keys[j]]
		if wi != wj {
			return wi > wj
		}
		return keys[i] < keys[j]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// EffectiveWeight is the interaction type weight scaled by time decay.
func EffectiveWeight(e *types.InteractionEvent, now time.Time, decayDays float64) float64 {
	return e.InteractionType.Weight() * mathutil.TimeDecay(e.Timestamp, now, decayDays)
}

// Build folds interactions into a profile whose interest vector has the given dimension.
// vectors maps article id to TF-IDF vector; events whose article has no vector, or a
// vector of the wrong length, still count toward category and bias weights.
func Build(interactions []types.InteractionEvent, vectors map[int64][]float64, dimension int, opts Options) *Profile {
	b := NewBuilder(dimension, opts)
	for i := range interactions {
		b.Add(&interactions[i], vectors[interactions[i].ArticleID])
	}
	return b.Build()
}
