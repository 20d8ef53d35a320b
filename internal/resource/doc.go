// Package resource implements admission control for clustering runs.
//
// A Controller bounds three things across concurrent runs (one per
// visualization panel, for example):
//
//   - Memory: the working set of a run (distance matrix, centroids, labels)
//     is reserved up front; over-limit runs fail fast.
//   - Concurrency: at most MaxConcurrentRuns runs execute at once; further
//     runs wait for a slot.
//   - Rate: at most RunsPerSecond runs are admitted per second.
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:  256 << 20,
//	    MaxConcurrentRuns: 4,
//	})
//
//	release, err := rc.Admit(ctx, resource.RunFootprint(n, k, d))
//	if err != nil {
//	    return err
//	}
//	defer release()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
