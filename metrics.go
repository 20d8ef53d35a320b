package manifold

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordCluster is called after each clustering run.
	// k is the requested cluster count, samples the number of rows,
	// err is nil if successful.
	RecordCluster(k, samples int, duration time.Duration, err error)

	// RecordIterations is called after each successful run with the number
	// of assignment passes and whether the run converged.
	RecordIterations(iterations int, converged bool)

	// RecordRepairs is called with the number of empty-cluster repairs of a run.
	RecordRepairs(count int)

	// RecordRejected is called when the resource controller refuses a run.
	RecordRejected()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCluster(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordIterations(int, bool)                   {}
func (NoopMetricsCollector) RecordRepairs(int)                            {}
func (NoopMetricsCollector) RecordRejected()                              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ClusterCount      atomic.Int64
	ClusterErrors     atomic.Int64
	ClusterTotalNanos atomic.Int64
	Samples           atomic.Int64
	Iterations        atomic.Int64
	Converged         atomic.Int64
	Repairs           atomic.Int64
	Rejected          atomic.Int64
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(k, samples int, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
	b.Samples.Add(int64(samples))
	if err != nil {
		b.ClusterErrors.Add(1)
	}
}

// RecordIterations implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIterations(iterations int, converged bool) {
	b.Iterations.Add(int64(iterations))
	if converged {
		b.Converged.Add(1)
	}
}

// RecordRepairs implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRepairs(count int) {
	b.Repairs.Add(int64(count))
}

// RecordRejected implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRejected() {
	b.Rejected.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ClusterCount:    b.ClusterCount.Load(),
		ClusterErrors:   b.ClusterErrors.Load(),
		ClusterAvgNanos: b.getAvgClusterNanos(),
		Samples:         b.Samples.Load(),
		Iterations:      b.Iterations.Load(),
		Converged:       b.Converged.Load(),
		Repairs:         b.Repairs.Load(),
		Rejected:        b.Rejected.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgClusterNanos() int64 {
	count := b.ClusterCount.Load()
	if count == 0 {
		return 0
	}
	return b.ClusterTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ClusterCount    int64
	ClusterErrors   int64
	ClusterAvgNanos int64
	Samples         int64
	Iterations      int64
	Converged       int64
	Repairs         int64
	Rejected        int64
}
