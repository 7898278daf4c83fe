// Package factors implements the max-sum update rules of affinity
// propagation. Exactly two factor kinds exist: the row factor (a selector
// biased by similarity potentials) and the column factor (conditioned
// deactivation around the diagonal exemplar). Both are pure functions from
// the values received since the previous round to the values sent in this
// one.
package factors

import "math"

// MaxOperator fixes the direction of the semiring the updates run under.
type MaxOperator interface {
	// Compare orders a against b, best-first: positive when a is better.
	Compare(a, b float64) int
	// WorstValue is the identity of the combine operation.
	WorstValue() float64
	Max(a, b float64) float64
	Min(a, b float64) float64
}

// Maximize runs the updates under the maximize convention used by affinity
// propagation.
type Maximize struct{}

func (Maximize) Compare(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func (Maximize) WorstValue() float64 {
	return math.Inf(-1)
}

func (Maximize) Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (Maximize) Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
