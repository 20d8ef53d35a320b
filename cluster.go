package manifold

import (
	"context"

	"github.com/hupe1980/manifold/internal/kmeans"
	"gonum.org/v1/gonum/mat"
)

// ComputeClusters partitions samples (one row per sample) into k clusters
// and returns the assignment vector.
func ComputeClusters(ctx context.Context, samples [][]float64, k int, runOpts ...RunOption) ([]int, error) {
	m, err := toDense(samples)
	if err != nil {
		return nil, err
	}

	res, err := kmeans.Run(ctx, m, k, applyRunOptions(runOpts))
	if err != nil {
		return nil, translateError(err)
	}

	return res.Assignments, nil
}

// InitCentroids picks k distinct samples as initial centroids.
func InitCentroids(samples [][]float64, k int, seed uint64) ([][]float64, error) {
	m, err := toDense(samples)
	if err != nil {
		return nil, err
	}

	c, err := kmeans.InitCentroids(m, k, kmeans.NewRand(seed))
	if err != nil {
		return nil, translateError(err)
	}

	return fromDense(c), nil
}

// AssignClusterID returns the index of the nearest centroid for every sample.
func AssignClusterID(samples, centroids [][]float64, k int) ([]int, error) {
	s, err := toDense(samples)
	if err != nil {
		return nil, err
	}
	c, err := toDense(centroids)
	if err != nil {
		return nil, err
	}

	ids, err := kmeans.AssignClusterID(s, c, k)
	return ids, translateError(err)
}

// UpdateCentroids returns the per-cluster means of samples under
// assignments. Rows of empty clusters are NaN.
func UpdateCentroids(samples [][]float64, assignments []int, k int) ([][]float64, error) {
	m, err := toDense(samples)
	if err != nil {
		return nil, err
	}

	c, err := kmeans.UpdateCentroids(m, assignments, k)
	if err != nil {
		return nil, translateError(err)
	}

	return fromDense(c), nil
}

// FillEmptyClusters assigns every sample to its nearest cluster and repairs
// empty clusters. distances holds one row per cluster and one column per
// sample.
func FillEmptyClusters(distances [][]float64) ([]int, error) {
	m, err := toDense(distances)
	if err != nil {
		return nil, err
	}
	return kmeans.FillEmptyClusters(m), nil
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidClusterCount
	}

	d := len(rows[0])
	if d == 0 {
		return nil, &ErrInvalidDimension{Dimension: 0}
	}

	m := mat.NewDense(len(rows), d, nil)
	for i, r := range rows {
		if len(r) != d {
			return nil, &ErrDimensionMismatch{Expected: d, Actual: len(r)}
		}
		m.SetRow(i, r)
	}

	return m, nil
}

func fromDense(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
