package kmeans

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/manifold/distance"
	"github.com/hupe1980/manifold/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func oneToTen() *mat.Dense {
	return mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
}

func TestInitCentroids(t *testing.T) {
	samples := mat.NewDense(4, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		10, 11, 12,
	})

	centroids, err := InitCentroids(samples, 2, NewRand(1))
	require.NoError(t, err)

	r, c := centroids.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)

	// Every centroid is a distinct sample row.
	seen := map[float64]bool{}
	for i := 0; i < r; i++ {
		first := centroids.At(i, 0)
		assert.Contains(t, []float64{1, 4, 7, 10}, first)
		assert.False(t, seen[first], "duplicate centroid")
		seen[first] = true
		assert.Equal(t, first+1, centroids.At(i, 1))
		assert.Equal(t, first+2, centroids.At(i, 2))
	}
}

func TestInitCentroids_AllSamples(t *testing.T) {
	samples := oneToTen()

	centroids, err := InitCentroids(samples, 10, NewRand(7))
	require.NoError(t, err)

	got := mat.Col(nil, 0, centroids)
	assert.ElementsMatch(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestInitCentroids_Seeded(t *testing.T) {
	samples := oneToTen()

	a, err := InitCentroids(samples, 3, NewRand(99))
	require.NoError(t, err)
	b, err := InitCentroids(samples, 3, NewRand(99))
	require.NoError(t, err)

	assert.True(t, mat.Equal(a, b))
}

func TestInitCentroids_InvalidK(t *testing.T) {
	samples := oneToTen()

	for _, k := range []int{0, -1, 11} {
		_, err := InitCentroids(samples, k, nil)
		assert.ErrorIs(t, err, ErrInvalidClusterCount, "k=%d", k)
	}
}

func TestAssignClusterID(t *testing.T) {
	centroids := mat.NewDense(3, 1, []float64{0, 5.5, 10})

	got, err := AssignClusterID(oneToTen(), centroids, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1, 1, 1, 1, 2, 2, 2}, got)
}

func TestAssignClusterID_Errors(t *testing.T) {
	samples := oneToTen()

	_, err := AssignClusterID(samples, mat.NewDense(2, 1, []float64{0, 1}), 3)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = AssignClusterID(samples, mat.NewDense(2, 2, []float64{0, 1, 2, 3}), 2)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)
}

func TestAssign_TieGoesToLowestIndex(t *testing.T) {
	// Sample 0 is equidistant from both centroids.
	dists := mat.NewDense(2, 2, []float64{
		1, 3,
		1, 2,
	})

	assert.Equal(t, []int{0, 1}, Assign(dists))
}

func TestAssign_NaNNeverWins(t *testing.T) {
	dists := mat.NewDense(2, 1, []float64{math.NaN(), 4})

	assert.Equal(t, []int{1}, Assign(dists))
}

func TestDistances(t *testing.T) {
	samples := mat.NewDense(2, 2, []float64{0, 0, 3, 4})
	centroids := mat.NewDense(1, 2, []float64{0, 0})

	dists, err := Distances(samples, centroids, distance.MetricL2)
	require.NoError(t, err)

	r, c := dists.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.0, dists.At(0, 0))
	assert.Equal(t, 25.0, dists.At(0, 1))

	_, err = Distances(samples, centroids, distance.Metric(999))
	assert.Error(t, err)
}

func TestUpdateCentroids(t *testing.T) {
	assignments := []int{0, 0, 1, 2, 1, 2, 1, 2, 1, 2}

	centroids, err := UpdateCentroids(oneToTen(), assignments, 3)
	require.NoError(t, err)

	r, c := centroids.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, []float64{1.5, 6, 7}, mat.Col(nil, 0, centroids))
}

func TestUpdateCentroids_PreservesShape(t *testing.T) {
	rng := testutil.NewRNG(3)
	samples := rng.UniformMatrix(50, 6)
	assignments := make([]int, 50)
	for i := range assignments {
		assignments[i] = i % 4
	}

	centroids, err := UpdateCentroids(samples, assignments, 4)
	require.NoError(t, err)

	r, c := centroids.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 6, c)
}

func TestUpdateCentroids_EmptyClusterIsNaN(t *testing.T) {
	centroids, err := UpdateCentroids(oneToTen(), []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, 3)
	require.NoError(t, err)

	assert.Equal(t, 3.0, centroids.At(0, 0))
	assert.Equal(t, 8.0, centroids.At(1, 0))
	assert.True(t, math.IsNaN(centroids.At(2, 0)))
}

func TestUpdateCentroids_InvalidAssignment(t *testing.T) {
	_, err := UpdateCentroids(oneToTen(), []int{0, 1}, 2)
	assert.ErrorIs(t, err, ErrInvalidAssignment)

	_, err = UpdateCentroids(oneToTen(), []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 5}, 2)
	assert.ErrorIs(t, err, ErrInvalidAssignment)

	_, err = UpdateCentroids(oneToTen(), make([]int, 10), 0)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)
}

func TestClusterSizes(t *testing.T) {
	assert.Equal(t, []int{2, 4, 4}, ClusterSizes([]int{0, 0, 1, 2, 1, 2, 1, 2, 1, 2}, 3))
	assert.Equal(t, []int{1, 0}, ClusterSizes([]int{0, 7, -1}, 2))
}

func TestAssignPartition(t *testing.T) {
	centroids := mat.NewDense(2, 2, []float64{0, 0, 10, 10})

	p, err := AssignPartition([]float64{9, 9}, centroids, distance.MetricL2)
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	_, err = AssignPartition([]float64{9}, centroids, distance.MetricL2)
	assert.Error(t, err)

	_, err = AssignPartition([]float64{0, 0}, centroids, distance.Metric(999))
	assert.Error(t, err)
}

func TestFindClosestCentroids(t *testing.T) {
	centroids := mat.NewDense(3, 2, []float64{
		0, 0, // 0
		10, 10, // 1
		20, 20, // 2
	})

	res, err := FindClosestCentroids([]float64{1, 1}, centroids, 2, distance.MetricL2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res)

	res, err = FindClosestCentroids([]float64{19, 19}, centroids, 5, distance.MetricL2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, res)

	_, err = FindClosestCentroids([]float64{0, 0}, centroids, 1, distance.Metric(999))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	samples, _ := rng.Blobs(90, 3, 3, 0.5)

	res, err := Run(ctx, samples, 3, Config{MaxIterations: 100, Rand: NewRand(1)})
	require.NoError(t, err)

	assert.Equal(t, StateConverged, res.State)
	assert.Len(t, res.Assignments, 90)
	assert.Equal(t, 3, testutil.DistinctCount(res.Assignments))
	assert.Equal(t, 90, res.Sizes[0]+res.Sizes[1]+res.Sizes[2])

	r, c := res.Centroids.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.GreaterOrEqual(t, res.Iterations, 2)
}

func TestRun_Deterministic(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(5)
	samples := rng.UniformMatrix(200, 4)

	for _, seed := range []uint64{0, 1, 42, 4711} {
		a, err := Run(ctx, samples, 5, Config{Rand: NewRand(seed)})
		require.NoError(t, err)
		b, err := Run(ctx, samples, 5, Config{Rand: NewRand(seed)})
		require.NoError(t, err)

		assert.Equal(t, a.Assignments, b.Assignments, "seed %d", seed)
		assert.True(t, mat.Equal(a.Centroids, b.Centroids), "seed %d", seed)
	}
}

func TestRun_EveryClusterPopulated(t *testing.T) {
	ctx := context.Background()

	for _, strategy := range []RepairStrategy{RepairNearest, RepairFarthest} {
		t.Run(strategy.String(), func(t *testing.T) {
			rng := testutil.NewRNG(11)

			for _, tc := range []struct{ n, dim, k int }{
				{5, 1, 5},
				{10, 2, 7},
				{60, 3, 12},
				{200, 2, 20},
			} {
				samples := rng.UniformMatrix(tc.n, tc.dim)
				for seed := uint64(0); seed < 5; seed++ {
					res, err := Run(ctx, samples, tc.k, Config{Rand: NewRand(seed), Repair: strategy})
					require.NoError(t, err)

					assert.Equal(t, tc.k, testutil.DistinctCount(res.Assignments))
					for _, c := range res.Assignments {
						assert.GreaterOrEqual(t, c, 0)
						assert.Less(t, c, tc.k)
					}
					for c := 0; c < tc.k; c++ {
						assert.False(t, math.IsNaN(res.Centroids.At(c, 0)))
					}
				}
			}
		})
	}
}

func TestRun_DuplicateSamples(t *testing.T) {
	for _, strategy := range []RepairStrategy{RepairNearest, RepairFarthest} {
		t.Run(strategy.String(), func(t *testing.T) {
			// Identical points force ties and empty clusters after the first pass.
			samples := mat.NewDense(6, 1, []float64{1, 1, 1, 1, 1, 1})

			res, err := Run(context.Background(), samples, 3, Config{Rand: NewRand(3), Repair: strategy})
			require.NoError(t, err)

			assert.Equal(t, 3, testutil.DistinctCount(res.Assignments))
			assert.Positive(t, res.Repairs)
		})
	}
}

func TestRun_OutlierWithDuplicates(t *testing.T) {
	samples := mat.NewDense(4, 1, []float64{0, 0, 0, 10})

	for _, strategy := range []RepairStrategy{RepairNearest, RepairFarthest} {
		t.Run(strategy.String(), func(t *testing.T) {
			for seed := uint64(0); seed < 20; seed++ {
				res, err := Run(context.Background(), samples, 4, Config{Rand: NewRand(seed), Repair: strategy})
				require.NoError(t, err)

				assert.Equal(t, 4, testutil.DistinctCount(res.Assignments), "seed %d", seed)
				for _, size := range res.Sizes {
					assert.Equal(t, 1, size, "seed %d", seed)
				}
			}
		})
	}
}

func TestRun_FixedPoint(t *testing.T) {
	rng := testutil.NewRNG(8)
	samples, _ := rng.Blobs(120, 2, 4, 0.3)

	res, err := Run(context.Background(), samples, 4, Config{MaxIterations: 100, Rand: NewRand(2)})
	require.NoError(t, err)
	require.Equal(t, StateConverged, res.State)

	dists, err := Distances(samples, res.Centroids, distance.MetricL2)
	require.NoError(t, err)
	again := Assign(dists)
	Repair(dists, again, RepairNearest)
	assert.Equal(t, res.Assignments, again)

	next, err := UpdateCentroids(samples, again, 4)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(res.Centroids, next, 1e-12))
}

func TestRun_MaxIterationsReached(t *testing.T) {
	rng := testutil.NewRNG(9)
	samples := rng.UniformMatrix(100, 2)

	res, err := Run(context.Background(), samples, 4, Config{MaxIterations: 1, Rand: NewRand(1)})
	require.NoError(t, err)

	assert.Equal(t, StateMaxIterationsReached, res.State)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Assignments, 100)
}

func TestRun_Transpose(t *testing.T) {
	rng := testutil.NewRNG(10)
	samples, _ := rng.Blobs(40, 3, 2, 0.2)

	rowMajor, err := Run(context.Background(), samples, 2, Config{Rand: NewRand(4)})
	require.NoError(t, err)

	colMajor, err := Run(context.Background(), mat.DenseCopyOf(samples.T()), 2, Config{Rand: NewRand(4), Transpose: true})
	require.NoError(t, err)

	assert.Equal(t, rowMajor.Assignments, colMajor.Assignments)
}

func TestRun_RecoversBlobs(t *testing.T) {
	rng := testutil.NewRNG(12)
	samples, labels := rng.Blobs(60, 2, 2, 0.5)

	res, err := Run(context.Background(), samples, 2, Config{MaxIterations: 50, Rand: NewRand(6)})
	require.NoError(t, err)

	assert.True(t, testutil.SameGrouping(labels, res.Assignments))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	samples := oneToTen()

	_, err := Run(ctx, samples, 0, Config{})
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Run(ctx, samples, 11, Config{})
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Run(ctx, samples, 2, Config{Metric: distance.Metric(999)})
	assert.Error(t, err)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rng := testutil.NewRNG(1)
	samples := rng.UniformMatrix(1000, 2)

	_, err := Run(ctx, samples, 10, Config{MaxIterations: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initialized", StateInitialized.String())
	assert.Equal(t, "iterating", StateIterating.String())
	assert.Equal(t, "converged", StateConverged.String())
	assert.Equal(t, "max_iterations_reached", StateMaxIterationsReached.String())
	assert.Equal(t, "Unknown(9)", State(9).String())
}
