package manifold

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/manifold/distance"
	"github.com/hupe1980/manifold/internal/kmeans"
	"github.com/hupe1980/manifold/internal/resource"
	"github.com/hupe1980/manifold/segment"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// State is the terminal state of a clustering run.
type State = kmeans.State

const (
	StateInitialized          = kmeans.StateInitialized
	StateIterating            = kmeans.StateIterating
	StateConverged            = kmeans.StateConverged
	StateMaxIterationsReached = kmeans.StateMaxIterationsReached
)

// RepairStrategy selects how empty clusters are reseeded.
type RepairStrategy = kmeans.RepairStrategy

const (
	// RepairNearest moves the sample closest to the empty centroid.
	RepairNearest = kmeans.RepairNearest
	// RepairFarthest moves the sample farthest from its own centroid.
	RepairFarthest = kmeans.RepairFarthest
)

// ParseRepairStrategy resolves "nearest" or "farthest". The empty string
// selects RepairNearest.
func ParseRepairStrategy(s string) (RepairStrategy, error) {
	return kmeans.ParseRepairStrategy(s)
}

// DefaultMaxIterations is the iteration cap used when none is configured.
const DefaultMaxIterations = kmeans.DefaultMaxIterations

// Result is the outcome of a clustering run.
type Result struct {
	// Assignments holds the cluster index of every sample.
	Assignments []int
	// Centroids is the K×D matrix of cluster means.
	Centroids *mat.Dense
	// Sizes holds the member count of every cluster.
	Sizes []int
	// Iterations is the number of assignment passes performed.
	Iterations int
	// Repairs counts empty-cluster repairs over the run.
	Repairs int
	// Inertia is the summed distance of every sample to its centroid.
	Inertia float64
	// State is StateConverged or StateMaxIterationsReached.
	State State
}

// Converged reports whether the run stopped on a stable assignment.
func (r *Result) Converged() bool {
	return r.State == StateConverged
}

// K returns the number of clusters.
func (r *Result) K() int {
	return len(r.Sizes)
}

// Segments returns one membership bitmap per cluster.
func (r *Result) Segments() ([]*segment.Bitmap, error) {
	segs, err := segment.Partition(r.Assignments, r.K())
	return segs, translateError(err)
}

// Predict returns the cluster whose centroid is closest (squared L2) to vec.
func (r *Result) Predict(vec []float64) (int, error) {
	c, err := kmeans.AssignPartition(vec, r.Centroids, distance.MetricL2)
	return c, translateError(err)
}

// PredictTop returns the indices of the n centroids closest (squared L2) to
// vec, nearest first. n is capped at K.
func (r *Result) PredictTop(vec []float64, n int) ([]int, error) {
	ids, err := kmeans.FindClosestCentroids(vec, r.Centroids, n, distance.MetricL2)
	return ids, translateError(err)
}

func newResult(res *kmeans.Result) *Result {
	return &Result{
		Assignments: res.Assignments,
		Centroids:   res.Centroids,
		Sizes:       res.Sizes,
		Iterations:  res.Iterations,
		Repairs:     res.Repairs,
		Inertia:     res.Inertia,
		State:       res.State,
	}
}

// Segmenter runs k-means segmentations with shared logging, metrics and
// resource limits. It is safe for concurrent use.
type Segmenter struct {
	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
}

// New creates a Segmenter.
//
// Example:
//
//	s := manifold.New(
//	    manifold.WithLogger(manifold.NewJSONLogger(slog.LevelInfo)),
//	    manifold.WithResourceLimits(512<<20, 4, 0),
//	)
//	res, err := s.Cluster(ctx, samples, 3, manifold.WithSeed(42))
func New(optFns ...Option) *Segmenter {
	o := applyOptions(optFns)

	s := &Segmenter{
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	if o.resources != nil {
		s.resources = resource.NewController(*o.resources)
	}

	return s
}

// Cluster partitions the rows of samples into k clusters.
//
// The run is admitted through the Segmenter's resource limits first; a run
// whose distance matrix does not fit the memory budget fails with ErrRejected.
func (s *Segmenter) Cluster(ctx context.Context, samples mat.Matrix, k int, runOpts ...RunOption) (*Result, error) {
	cfg := applyRunOptions(runOpts)

	n, d := samples.Dims()
	if cfg.Transpose {
		n, d = d, n
	}

	release, err := s.resources.Admit(ctx, resource.RunFootprint(n, k, d))
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ErrRejected) {
			s.metrics.RecordRejected()
			s.logger.LogRejected(ctx, k, n, err)
		}
		return nil, err
	}
	defer release()

	start := time.Now()
	kres, err := kmeans.Run(ctx, samples, k, cfg)
	s.metrics.RecordCluster(k, n, time.Since(start), err)

	if err != nil {
		err = translateError(err)
		s.logger.LogCluster(ctx, k, n, nil, err)
		return nil, err
	}

	res := newResult(kres)
	s.metrics.RecordIterations(res.Iterations, res.Converged())
	s.metrics.RecordRepairs(res.Repairs)
	s.logger.LogCluster(ctx, k, n, res, nil)

	return res, nil
}

// ResourceStats is a snapshot of a Segmenter's resource usage.
type ResourceStats struct {
	// MemoryUsage is the number of bytes reserved by running clusterings.
	MemoryUsage int64
	// MemoryLimit is the configured budget, 0 if unlimited.
	MemoryLimit int64
	// ActiveRuns is the number of clusterings holding a run slot.
	ActiveRuns int64
}

// ResourceStats returns the current resource usage. Without
// WithResourceLimits all values are zero.
func (s *Segmenter) ResourceStats() ResourceStats {
	return ResourceStats{
		MemoryUsage: s.resources.MemoryUsage(),
		MemoryLimit: s.resources.MemoryLimit(),
		ActiveRuns:  s.resources.ActiveRuns(),
	}
}

// Job is one independent clustering request of a batch.
type Job struct {
	// Name identifies the job in logs.
	Name    string
	Samples mat.Matrix
	K       int
	Options []RunOption
}

// ClusterAll runs independent jobs concurrently. Results are returned in job
// order. The first failing job cancels the others and its error is returned.
func (s *Segmenter) ClusterAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := s.Cluster(gctx, job.Samples, job.K, job.Options...)
			if err != nil {
				s.logger.WithJob(job.Name).DebugContext(gctx, "job failed")
				return err
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()

	failed := 0
	for _, r := range results {
		if r == nil {
			failed++
		}
	}
	s.logger.LogBatch(ctx, len(jobs), failed)

	if err != nil {
		return nil, err
	}
	return results, nil
}
