package kmeans

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewRand returns a PCG-backed random source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// InitCentroids picks k distinct samples as initial centroids (Forgy).
//
// The chosen indices are the first k entries of a random permutation, so no
// sample is picked twice. A nil rng falls back to a time-seeded source.
func InitCentroids(samples mat.Matrix, k int, rng *rand.Rand) (*mat.Dense, error) {
	n, dim := samples.Dims()
	if k < 1 || k > n {
		return nil, invalidClusterCount(k, n)
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}

	perm := rng.Perm(n)[:k]

	centroids := mat.NewDense(k, dim, nil)
	row := make([]float64, dim)
	for i, idx := range perm {
		mat.Row(row, idx, samples)
		centroids.SetRow(i, row)
	}

	return centroids, nil
}

// UpdateCentroids returns a new k×D matrix whose rows are the per-dimension
// means of the samples assigned to each cluster.
//
// A cluster without members gets a NaN row. Callers check ClusterSizes (or
// run Repair on the assignment first) before using such a row.
func UpdateCentroids(samples mat.Matrix, assignments []int, k int) (*mat.Dense, error) {
	n, dim := samples.Dims()
	if k < 1 {
		return nil, invalidClusterCount(k, n)
	}
	if err := validateAssignments(assignments, n, k); err != nil {
		return nil, err
	}

	sums := make([]float64, k*dim)
	counts := make([]int, k)
	row := make([]float64, dim)

	for i, c := range assignments {
		mat.Row(row, i, samples)
		floats.Add(sums[c*dim:(c+1)*dim], row)
		counts[c]++
	}

	for c := 0; c < k; c++ {
		mean := sums[c*dim : (c+1)*dim]
		if counts[c] == 0 {
			for d := range mean {
				mean[d] = math.NaN()
			}
			continue
		}
		floats.Scale(1/float64(counts[c]), mean)
	}

	return mat.NewDense(k, dim, sums), nil
}

// ClusterSizes counts the members of each cluster.
// Out-of-range labels are ignored.
func ClusterSizes(assignments []int, k int) []int {
	sizes := make([]int, k)
	for _, c := range assignments {
		if c >= 0 && c < k {
			sizes[c]++
		}
	}
	return sizes
}

func validateAssignments(assignments []int, n, k int) error {
	if len(assignments) != n {
		return fmt.Errorf("%w: %d labels for %d samples", ErrInvalidAssignment, len(assignments), n)
	}
	for i, c := range assignments {
		if c < 0 || c >= k {
			return fmt.Errorf("%w: sample %d has cluster %d, want [0,%d)", ErrInvalidAssignment, i, c, k)
		}
	}
	return nil
}
