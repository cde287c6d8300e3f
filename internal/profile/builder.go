package profile

import (
	"time"

	"github.com/jonathan/news-recommender/internal/types"
)

// Builder accumulates raw weights from interaction events. Build produces a
// normalized Profile without touching the accumulated state, so a Builder can
// keep accepting events afterwards.
type Builder struct {
	now       time.Time
	decayDays float64
	dimension int

	categories  map[types.Category]float64
	biases      map[types.PoliticalBias]float64
	vector      []float64
	totalWeight float64
	count       int
	skipped     int
}

// NewBuilder returns an empty Builder for interest vectors of the given dimension.
// The decay reference time is fixed when the Builder is created.
func NewBuilder(dimension int, opts Options) *Builder {
	if dimension < 0 {
		dimension = 0
	}
	return &Builder{
		now:        opts.now(),
		decayDays:  opts.DecayDays,
		dimension:  dimension,
		categories: make(map[types.Category]float64),
		biases:     make(map[types.PoliticalBias]float64),
		vector:     make([]float64, dimension),
	}
}

// Add folds one event into the accumulator. articleVector may be nil when the
// article is no longer in the model.
func (b *Builder) Add(e *types.InteractionEvent, articleVector []float64) {
	w := EffectiveWeight(e, b.now, b.decayDays)

	b.categories[e.Category] += w
	b.biases[e.PoliticalBias] += w

	if articleVector != nil && len(articleVector) == b.dimension {
		for i, x := range articleVector {
			b.vector[i] += x * w
		}
	} else {
		b.skipped++
	}

	b.totalWeight += w
	b.count++
}

// SkippedVectors is the number of events that contributed no content vector.
func (b *Builder) SkippedVectors() int {
	return b.skipped
}

// Build returns the normalized profile: the interest vector is divided by the total
// effective weight and each distribution is divided by its own sum. When every event
// decayed to zero weight the profile carries no preferences and reports Empty.
func (b *Builder) Build() *Profile {
	vector := make([]float64, len(b.vector))
	if b.totalWeight <= 0 {
		return &Profile{
			categoryWeights:   map[types.Category]float64{},
			biasWeights:       map[types.PoliticalBias]float64{},
			interestVector:    vector,
			totalInteractions: b.count,
		}
	}

	copy(vector, b.vector)
	for i := range vector {
		vector[i] /= b.totalWeight
	}

	return &Profile{
		weighted:          true,
		categoryWeights:   normalize(b.categories),
		biasWeights:       normalize(b.biases),
		interestVector:    vector,
		totalInteractions: b.count,
	}
}

func normalize[K comparable](weights map[K]float64) map[K]float64 {
	var total float64
	for _, w := range weights {
		total += w
	}

	out := make(map[K]float64, len(weights))
	for k, w := range weights {
		if total > 0 {
			out[k] = w / total
		} else {
			out[k] = w
		}
	}
	return out
}
