package mathutil

import (
	"math"
	"time"
)

// DefaultDecayDays is the time constant of the interaction decay curve.
const DefaultDecayDays = 30.0

// TimeDecay returns exp(-ageDays/decayDays) for an event at eventTime observed at now.
// Events at or after now (clock skew) are not decayed. A non-positive decayDays
// uses DefaultDecayDays.
func TimeDecay(eventTime, now time.Time, decayDays float64) float64 {
	if decayDays <= 0 {
		decayDays = DefaultDecayDays
	}
	ageDays := now.Sub(eventTime).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	return math.Exp(-ageDays / decayDays)
}

// WeightedAverage returns sum(values*weights)/sum(weights). Mismatched or empty
// inputs, or a zero total weight, yield 0.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) != len(weights) || len(values) == 0 {
		return 0
	}

	var total, sum float64
	for i, w := range weights {
		total += w
		sum += values[i] * w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
