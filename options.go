package manifold

import (
	"log/slog"

	"github.com/hupe1980/manifold/distance"
	"github.com/hupe1980/manifold/internal/kmeans"
	"github.com/hupe1980/manifold/internal/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Config
}

// Option configures a Segmenter.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &manifold.BasicMetricsCollector{}
//	s := manifold.New(manifold.WithMetricsCollector(metrics))
//	// ... run clusterings ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.ClusterCount, stats.ClusterAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := manifold.NewJSONLogger(slog.LevelInfo)
//	s := manifold.New(manifold.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceLimits bounds memory, concurrency and admission rate across
// the runs of one Segmenter. Without it runs are not limited.
//
// Example:
//
//	s := manifold.New(manifold.WithResourceLimits(256<<20, 4, 0))
func WithResourceLimits(memoryLimitBytes, maxConcurrentRuns int64, runsPerSecond float64) Option {
	return func(o *options) {
		o.resources = &resource.Config{
			MemoryLimitBytes:  memoryLimitBytes,
			MaxConcurrentRuns: maxConcurrentRuns,
			RunsPerSecond:     runsPerSecond,
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

type runOptions struct {
	maxIterations int
	seed          *uint64
	transpose     bool
	metric        distance.Metric
	repair        RepairStrategy
}

// RunOption configures a single clustering run.
type RunOption func(*runOptions)

// WithMaxIterations caps the number of assignment passes (default 10).
func WithMaxIterations(n int) RunOption {
	return func(o *runOptions) {
		o.maxIterations = n
	}
}

// WithSeed fixes the initialization randomness, making the run reproducible.
func WithSeed(seed uint64) RunOption {
	return func(o *runOptions) {
		o.seed = &seed
	}
}

// WithTranspose marks the samples as D×N (one column per sample).
func WithTranspose(transpose bool) RunOption {
	return func(o *runOptions) {
		o.transpose = transpose
	}
}

// WithMetric selects the assignment distance (default squared L2).
func WithMetric(m distance.Metric) RunOption {
	return func(o *runOptions) {
		o.metric = m
	}
}

// WithRepairStrategy selects how empty clusters are reseeded
// (default RepairNearest, the rule FillEmptyClusters applies; pass
// RepairFarthest for outlier reseeding).
func WithRepairStrategy(s RepairStrategy) RunOption {
	return func(o *runOptions) {
		o.repair = s
	}
}

func applyRunOptions(optFns []RunOption) kmeans.Config {
	o := runOptions{
		maxIterations: kmeans.DefaultMaxIterations,
		metric:        distance.MetricL2,
		repair:        RepairNearest,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	cfg := kmeans.Config{
		MaxIterations: o.maxIterations,
		Transpose:     o.transpose,
		Metric:        o.metric,
		Repair:        o.repair,
	}
	if o.seed != nil {
		cfg.Rand = kmeans.NewRand(*o.seed)
	}
	return cfg
}
