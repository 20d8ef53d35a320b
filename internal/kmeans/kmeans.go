package kmeans

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/hupe1980/manifold/distance"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxIterations caps the Lloyd loop when Config.MaxIterations is unset.
const DefaultMaxIterations = 10

// State is the driver's lifecycle state.
type State int

const (
	StateInitialized State = iota
	StateIterating
	StateConverged
	StateMaxIterationsReached
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Config configures a clustering run.
type Config struct {
	// MaxIterations caps the number of assignment passes.
	// If <= 0, DefaultMaxIterations is used.
	MaxIterations int

	// Rand seeds initialization. If nil, a time-seeded source is used.
	Rand *rand.Rand

	// Transpose marks the input as D×N (one column per sample).
	Transpose bool

	// Metric is the assignment distance. Zero value is squared L2.
	Metric distance.Metric

	// Repair selects how empty clusters are reseeded. The zero value is
	// RepairNearest rather than the outlier rule RepairFarthest because
	// FillEmptyClusters must map [[1,2,3,4],[5,6,7,8],[9,10,11,12]] to
	// [1,2,0,0], which only the nearest-donor rule produces.
	Repair RepairStrategy
}

// Result is the outcome of a clustering run.
type Result struct {
	// Assignments holds the cluster index of every sample.
	Assignments []int
	// Centroids is the K×D matrix of cluster means for Assignments.
	Centroids *mat.Dense
	// Sizes holds the member count of every cluster.
	Sizes []int
	// Iterations is the number of assignment passes performed.
	Iterations int
	// Repairs counts empty-cluster repairs over the whole run.
	Repairs int
	// Inertia is the sum of distances from each sample to its centroid
	// at the final assignment pass.
	Inertia float64
	// State is the terminal state (Converged or MaxIterationsReached).
	State State
}

// Run clusters the rows of samples (columns when cfg.Transpose is set) into k
// groups with Lloyd's algorithm.
//
// Every pass computes distances, assigns, repairs empty clusters and compares
// the assignment with the previous pass. An unchanged assignment ends the run
// as StateConverged without touching the centroids; otherwise centroids are
// recomputed. Reaching cfg.MaxIterations ends the run as
// StateMaxIterationsReached, which is not an error. ctx is checked before
// every pass.
func Run(ctx context.Context, samples mat.Matrix, k int, cfg Config) (*Result, error) {
	if cfg.Transpose {
		samples = mat.DenseCopyOf(samples.T())
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Rand == nil {
		cfg.Rand = NewRand(uint64(time.Now().UnixNano()))
	}

	n, _ := samples.Dims()
	if k < 1 || k > n {
		return nil, invalidClusterCount(k, n)
	}

	distFunc, err := distance.Provider(cfg.Metric)
	if err != nil {
		return nil, err
	}

	centroids, err := InitCentroids(samples, k, cfg.Rand)
	if err != nil {
		return nil, err
	}

	rows := rowViews(samples)
	res := &Result{State: StateIterating}

	var prev []int
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iter >= cfg.MaxIterations {
			res.State = StateMaxIterationsReached
			break
		}

		dists := distanceMatrix(rows, rowViews(centroids), distFunc)
		assignments := Assign(dists)
		res.Repairs += len(Repair(dists, assignments, cfg.Repair))
		res.Iterations = iter + 1
		res.Inertia = inertia(dists, assignments)
		res.Assignments = assignments

		if slices.Equal(prev, assignments) {
			res.State = StateConverged
			break
		}
		prev = assignments

		centroids, err = UpdateCentroids(samples, assignments, k)
		if err != nil {
			return nil, err
		}
	}

	res.Centroids = centroids
	res.Sizes = ClusterSizes(res.Assignments, k)

	return res, nil
}

func inertia(distances *mat.Dense, assignments []int) float64 {
	var sum float64
	for i, c := range assignments {
		sum += distances.At(c, i)
	}
	return sum
}
