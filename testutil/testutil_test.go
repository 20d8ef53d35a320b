package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestUniformMatrix(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.UniformMatrix(8, 32)

	r, c := m.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 32, c)
	assert.LessOrEqual(t, m.At(0, 0), 1.0)
	assert.GreaterOrEqual(t, m.At(1, 0), 0.0)
}

func TestBlobs(t *testing.T) {
	rng := NewRNG(4711)

	m, labels := rng.Blobs(30, 2, 3, 0.1)

	r, c := m.Dims()
	assert.Equal(t, 30, r)
	assert.Equal(t, 2, c)
	assert.Len(t, labels, 30)
	assert.Equal(t, 3, DistinctCount(labels))

	for i, l := range labels {
		assert.InDelta(t, float64(l)*BlobSeparation, m.At(i, 0), 1.0)
	}
}

func TestDistribution(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.Distribution(10)

	assert.Len(t, p, 10)
	assert.InDelta(t, 1.0, floats.Sum(p), 1e-9)
	for _, v := range p {
		assert.Greater(t, v, 0.0)
	}
}

func TestGaussianValues(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GaussianValues(1000, 5, 1)

	assert.Len(t, v, 1000)
	assert.InDelta(t, 5.0, floats.Sum(v)/1000, 0.2)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.GaussianValues(10, 0, 1)

	rng.Reset()
	v2 := rng.GaussianValues(10, 0, 1)

	assert.Equal(t, v1, v2)
}

func TestSameGrouping(t *testing.T) {
	assert.True(t, SameGrouping([]int{0, 0, 1, 2}, []int{2, 2, 0, 1}))
	assert.False(t, SameGrouping([]int{0, 0, 1}, []int{0, 1, 1}))
	assert.False(t, SameGrouping([]int{0, 1}, []int{0, 0}))
	assert.False(t, SameGrouping([]int{0}, []int{0, 1}))
}

func TestDistinctCount(t *testing.T) {
	assert.Equal(t, 0, DistinctCount(nil))
	assert.Equal(t, 3, DistinctCount([]int{2, 0, 1, 1, 0}))
}
