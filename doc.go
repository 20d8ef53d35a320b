// Package manifold segments model-performance data with k-means.
//
// Each sample is a row of per-model metrics (for example the loss of every
// model on one data point). Clustering groups samples on which the models
// behave alike, and the stats and segment packages then describe how those
// groups differ.
//
// # Quick Start
//
//	s := manifold.New()
//	res, err := s.Cluster(ctx, samples, 3, manifold.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Assignments, res.State)
//
// The package-level helpers work on plain slices:
//
//	labels, err := manifold.ComputeClusters(ctx, [][]float64{{1}, {2}, {9}, {10}}, 2)
//
// # Algorithm
//
// Centroids start at k distinct samples picked at random (Forgy). Every pass
// assigns each sample to its nearest centroid, repairs clusters that ended up
// empty by moving one sample into them, and recomputes centroids as means.
// The run stops when an assignment repeats (StateConverged) or after
// WithMaxIterations passes (StateMaxIterationsReached, default 10).
//
// Repair visits empty clusters in ascending order. With RepairNearest (the
// default) the sample closest to the empty centroid moves; with
// RepairFarthest the sample farthest from its own centroid moves. A donor
// cluster is never emptied and no sample moves twice in one pass.
//
// # Observability
//
// Logging uses log/slog through Logger. Metrics go through MetricsCollector;
// see BasicMetricsCollector and the prommetrics package.
//
// # Resource Limits
//
// WithResourceLimits bounds concurrent runs and the memory their distance
// matrices may reserve. A run that cannot reserve memory fails with
// ErrRejected.
package manifold
