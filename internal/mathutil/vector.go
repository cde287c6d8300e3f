// Package mathutil holds the numeric primitives used by the recommender:
// vector similarity, normalization, time decay and weighted averages.
package mathutil

import "math"

// Dot returns the dot product of a and b, or 0 when their lengths differ.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length, or a zero vector on either side, yield 0.
// The result is clamped to [-1, 1] to absorb rounding error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, dot/denom))
}

// NormalizeVector returns a unit-length copy of v. A zero vector is returned as a zero copy.
func NormalizeVector(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := Magnitude(v)
	if norm == 0 || math.IsNaN(norm) {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
