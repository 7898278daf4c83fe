// Package similarity builds similarity matrices from raw feature vectors.
package similarity

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/distributed-affinity/pkg/graph"
)

var ErrNoPoints = errors.New("no points provided")

// FromPoints builds a dense similarity matrix over the given points using
// negative squared Euclidean distance, the standard choice for affinity
// propagation. The diagonal entries (preferences) are set to the median of
// the off-diagonal similarities, which steers the algorithm toward a
// moderate number of clusters. Point indices are 1-based, matching the
// input formats.
func FromPoints(points [][]float64) ([]graph.Similarity, error) {
	similarities, offDiagonal, err := pairwise(points)
	if err != nil {
		return nil, err
	}

	// A single point has no off-diagonal entries to take a median of.
	preference := 0.0
	if len(offDiagonal) > 0 {
		sort.Float64s(offDiagonal)
		preference = stat.Quantile(0.5, stat.Empirical, offDiagonal, nil)
	}
	return withPreference(similarities, len(points), preference), nil
}

// FromPointsWithPreference is FromPoints with an explicit shared preference
// instead of the median heuristic. Larger preferences yield more exemplars.
func FromPointsWithPreference(points [][]float64, preference float64) ([]graph.Similarity, error) {
	similarities, _, err := pairwise(points)
	if err != nil {
		return nil, err
	}
	return withPreference(similarities, len(points), preference), nil
}

func pairwise(points [][]float64) (similarities []graph.Similarity, offDiagonal []float64, err error) {
	if len(points) == 0 {
		return nil, nil, ErrNoPoints
	}
	dims := len(points[0])
	for i, p := range points {
		if len(p) != dims {
			return nil, nil, fmt.Errorf("point %d has %d features, expected %d", i+1, len(p), dims)
		}
	}

	n := len(points)
	similarities = make([]graph.Similarity, 0, n*n)
	offDiagonal = make([]float64, 0, n*(n-1))
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			d := floats.Distance(points[i], points[j], 2)
			s := -(d * d)
			similarities = append(similarities, graph.Similarity{
				Row:   int64(i + 1),
				Col:   int64(j + 1),
				Value: s,
			})
			offDiagonal = append(offDiagonal, s)
		}
	}
	return similarities, offDiagonal, nil
}

func withPreference(similarities []graph.Similarity, n int, preference float64) []graph.Similarity {
	for i := range n {
		similarities = append(similarities, graph.Similarity{
			Row:   int64(i + 1),
			Col:   int64(i + 1),
			Value: preference,
		})
	}
	return similarities
}
