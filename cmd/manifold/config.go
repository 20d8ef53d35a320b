package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/manifold"
	"github.com/hupe1980/manifold/distance"
	"github.com/hupe1980/manifold/stats"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Stats   StatsConfig   `yaml:"stats"`
	Limits  LimitsConfig  `yaml:"limits"`
	Logging LoggingConfig `yaml:"logging"`
}

// ClusterConfig holds defaults for the cluster command.
type ClusterConfig struct {
	K             int     `yaml:"k"`
	MaxIterations int     `yaml:"max_iterations"`
	Seed          *uint64 `yaml:"seed,omitempty"`
	Metric        string  `yaml:"metric"` // L2, Cosine, Manhattan
	Repair        string  `yaml:"repair"` // nearest, farthest
}

// StatsConfig holds defaults for the statistics commands.
type StatsConfig struct {
	Percentiles []float64 `yaml:"percentiles"`
	Resolution  int       `yaml:"resolution"`
	Bins        int       `yaml:"bins"`
	Divergence  string    `yaml:"divergence"` // kl, js, hellinger
}

// LimitsConfig bounds clustering runs.
type LimitsConfig struct {
	MemoryBytes       int64   `yaml:"memory_bytes"`
	MaxConcurrentRuns int64   `yaml:"max_concurrent_runs"`
	RunsPerSecond     float64 `yaml:"runs_per_second"`
}

// LoggingConfig configures diagnostics on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() Config {
	return Config{
		Cluster: ClusterConfig{
			K:             3,
			MaxIterations: manifold.DefaultMaxIterations,
			Metric:        distance.MetricL2.String(),
			Repair:        manifold.RepairNearest.String(),
		},
		Stats: StatsConfig{
			Percentiles: []float64{0.25, 0.5, 0.75},
			Resolution:  stats.DefaultResolution,
			Bins:        10,
			Divergence:  stats.KL.String(),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadConfig reads path over DefaultConfig. Keys missing from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	if c.Cluster.K < 1 {
		return fmt.Errorf("cluster.k must be >= 1, got %d", c.Cluster.K)
	}
	if _, err := distance.ParseMetric(c.Cluster.Metric); err != nil {
		return fmt.Errorf("cluster.metric: %w", err)
	}
	if _, err := manifold.ParseRepairStrategy(c.Cluster.Repair); err != nil {
		return fmt.Errorf("cluster.repair: %w", err)
	}
	if _, err := stats.ParseDivergenceKind(c.Stats.Divergence); err != nil {
		return fmt.Errorf("stats.divergence: %w", err)
	}
	if c.Stats.Bins < 1 {
		return fmt.Errorf("stats.bins must be >= 1, got %d", c.Stats.Bins)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

func (c LoggingConfig) newLogger(w io.Writer) (*manifold.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return manifold.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return manifold.NewLogger(slog.NewTextHandler(w, opts)), nil
}
