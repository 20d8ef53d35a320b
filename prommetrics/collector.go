// Package prommetrics exports clustering metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements manifold.MetricsCollector on Prometheus metrics.
type Collector struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	samples    prometheus.Histogram
	iterations *prometheus.HistogramVec
	repairs    prometheus.Counter
	rejected   prometheus.Counter
}

// New registers the clustering metrics on reg under namespace and returns the
// collector. A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cluster_runs_total",
				Help:      "The total number of clustering runs",
			},
			[]string{"k_range", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cluster_duration_seconds",
				Help:      "The duration of clustering runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // From 100µs to ~3s
			},
			[]string{"k_range"},
		),
		samples: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cluster_samples",
				Help:      "The number of samples per clustering run",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		iterations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cluster_iterations",
				Help:      "The number of assignment passes per run",
				Buckets:   []float64{1, 2, 3, 5, 8, 10, 20, 50, 100},
			},
			[]string{"state"},
		),
		repairs: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cluster_repairs_total",
				Help:      "The total number of empty clusters repaired",
			},
		),
		rejected: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cluster_rejected_total",
				Help:      "The total number of runs refused by resource limits",
			},
		),
	}
}

// RecordCluster records one run.
func (c *Collector) RecordCluster(k, samples int, duration time.Duration, err error) {
	label := kRange(k)
	status := "ok"
	if err != nil {
		status = "error"
	}

	c.runs.WithLabelValues(label, status).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
	c.samples.Observe(float64(samples))
}

// kRange maps a cluster count to one of a fixed set of label values so that
// caller-chosen k cannot grow the series count.
func kRange(k int) string {
	switch {
	case k < 1:
		return "invalid"
	case k <= 4:
		return "1-4"
	case k <= 16:
		return "5-16"
	case k <= 64:
		return "17-64"
	default:
		return "65+"
	}
}

// RecordIterations records the pass count of a successful run.
func (c *Collector) RecordIterations(iterations int, converged bool) {
	state := "max_iterations_reached"
	if converged {
		state = "converged"
	}
	c.iterations.WithLabelValues(state).Observe(float64(iterations))
}

// RecordRepairs adds count repairs.
func (c *Collector) RecordRepairs(count int) {
	if count > 0 {
		c.repairs.Add(float64(count))
	}
}

// RecordRejected counts a refused run.
func (c *Collector) RecordRejected() {
	c.rejected.Inc()
}
