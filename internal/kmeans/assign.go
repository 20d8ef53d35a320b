package kmeans

import (
	"math"
	"sort"

	"github.com/hupe1980/manifold/distance"
	"gonum.org/v1/gonum/mat"
)

// Distances computes the K×N matrix of distances between every centroid
// (row) and every sample (column). Inputs are not modified.
func Distances(samples, centroids mat.Matrix, metric distance.Metric) (*mat.Dense, error) {
	n, dim := samples.Dims()
	k, cdim := centroids.Dims()
	if dim != cdim {
		return nil, &ErrDimensionMismatch{Expected: cdim, Actual: dim}
	}
	if n == 0 || k == 0 {
		return nil, invalidClusterCount(k, n)
	}

	distFunc, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}

	return distanceMatrix(rowViews(samples), rowViews(centroids), distFunc), nil
}

func distanceMatrix(samples, centroids [][]float64, distFunc distance.Func) *mat.Dense {
	dists := mat.NewDense(len(centroids), len(samples), nil)
	for c, center := range centroids {
		row := dists.RawRowView(c)
		for i, vec := range samples {
			row[i] = distFunc(vec, center)
		}
	}
	return dists
}

// Assign returns, for every sample column of a K×N distance matrix, the row
// index of the smallest distance. Ties go to the lowest centroid index and
// NaN entries never win.
func Assign(distances mat.Matrix) []int {
	k, n := distances.Dims()
	assignments := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		minDist := math.Inf(1)
		for c := 0; c < k; c++ {
			if d := distances.At(c, i); d < minDist {
				minDist = d
				best = c
			}
		}
		assignments[i] = best
	}
	return assignments
}

// AssignClusterID assigns every sample to its nearest centroid under squared
// Euclidean distance. k must equal the number of centroid rows.
func AssignClusterID(samples, centroids mat.Matrix, k int) ([]int, error) {
	n, _ := samples.Dims()
	if rows, _ := centroids.Dims(); k < 1 || k != rows || k > n {
		return nil, invalidClusterCount(k, n)
	}

	dists, err := Distances(samples, centroids, distance.MetricL2)
	if err != nil {
		return nil, err
	}

	return Assign(dists), nil
}

// AssignPartition finds the closest centroid for a vector.
func AssignPartition(vec []float64, centroids mat.Matrix, metric distance.Metric) (int, error) {
	k, dim := centroids.Dims()
	if k == 0 {
		return -1, invalidClusterCount(0, 0)
	}
	if len(vec) != dim {
		return -1, &ErrDimensionMismatch{Expected: dim, Actual: len(vec)}
	}

	distFunc, err := distance.Provider(metric)
	if err != nil {
		return -1, err
	}

	bestCluster := -1
	minDist := math.Inf(1)
	for c, center := range rowViews(centroids) {
		if d := distFunc(vec, center); bestCluster < 0 || d < minDist {
			minDist = d
			bestCluster = c
		}
	}

	return bestCluster, nil
}

type centroidDist struct {
	id   int
	dist float64
}

// FindClosestCentroids returns the indices of the n closest centroids to the query vector.
func FindClosestCentroids(query []float64, centroids mat.Matrix, n int, metric distance.Metric) ([]int, error) {
	k, dim := centroids.Dims()
	if len(query) != dim {
		return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(query)}
	}
	if n > k {
		n = k
	}
	if n < 0 {
		n = 0
	}

	distFunc, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}

	dists := make([]centroidDist, k)
	for c, center := range rowViews(centroids) {
		dists[c] = centroidDist{id: c, dist: distFunc(query, center)}
	}

	sort.SliceStable(dists, func(i, j int) bool {
		return dists[i].dist < dists[j].dist
	})

	result := make([]int, n)
	for i := 0; i < n; i++ {
		result[i] = dists[i].id
	}

	return result, nil
}

// rowViews returns one slice per matrix row. Dense matrices are viewed
// without copying; anything else is copied.
func rowViews(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	if d, ok := m.(*mat.Dense); ok {
		for i := range out {
			out[i] = d.RawRowView(i)
		}
		return out
	}
	for i := range out {
		out[i] = mat.Row(make([]float64, c), i, m)
	}
	return out
}
