package testutil

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BlobSeparation is the distance between neighbouring blob centers on every axis.
const BlobSeparation = 10.0

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformMatrix generates a num×dim matrix with values in range [0, 1).
func (r *RNG) UniformMatrix(num, dim int) *mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	for i := range data {
		data[i] = r.rand.Float64()
	}
	return mat.NewDense(num, dim, data)
}

// GaussianValues generates n values from a normal distribution.
func (r *RNG) GaussianValues(n int, mean, stddev float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]float64, n)
	for i := range values {
		values[i] = mean + r.rand.NormFloat64()*stddev
	}
	return values
}

// Blobs generates num samples around clusters well-separated centers and
// returns the sample matrix with the generating label of every row.
// Sample i belongs to blob i%clusters; blob c is centered at
// c*BlobSeparation on every axis. spread is the Gaussian noise stddev.
func (r *RNG) Blobs(num, dim, clusters int, spread float64) (*mat.Dense, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	labels := make([]int, num)

	for i := range num {
		c := i % clusters
		labels[i] = c
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = float64(c)*BlobSeparation + r.rand.NormFloat64()*spread
		}
	}

	return mat.NewDense(num, dim, data), labels
}

// Distribution generates a random probability vector of length n.
func (r *RNG) Distribution(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := make([]float64, n)
	for i := range p {
		p[i] = r.rand.Float64() + 1e-3
	}
	floats.Scale(1/floats.Sum(p), p)
	return p
}

// Rows converts a matrix into a slice of row copies.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, m)
	}
	return rows
}

// DistinctCount returns the number of distinct labels in assignments.
func DistinctCount(assignments []int) int {
	seen := make(map[int]struct{}, len(assignments))
	for _, c := range assignments {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// SameGrouping reports whether two labelings partition the samples the same
// way, regardless of label numbering.
func SameGrouping(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make(map[int]int)
	ba := make(map[int]int)
	for i := range a {
		if x, ok := ab[a[i]]; ok && x != b[i] {
			return false
		}
		if x, ok := ba[b[i]]; ok && x != a[i] {
			return false
		}
		ab[a[i]] = b[i]
		ba[b[i]] = a[i]
	}
	return true
}
