package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/manifold"
	"github.com/hupe1980/manifold/distance"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

type clusterOutput struct {
	Name        string      `json:"name,omitempty"`
	Assignments []int       `json:"assignments"`
	Centroids   [][]float64 `json:"centroids"`
	Sizes       []int       `json:"sizes"`
	Iterations  int         `json:"iterations"`
	Repairs     int         `json:"repairs"`
	Inertia     float64     `json:"inertia"`
	State       string      `json:"state"`
}

func newClusterCmd(c *cli) *cobra.Command {
	var (
		k             int
		maxIterations int
		seed          uint64
		metric        string
		repair        string
		transpose     bool
		batch         bool
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Partition samples into k segments",
		Long: `Reads a JSON matrix (one array per sample) and prints the k-means result.

With --batch the input is an object mapping a name to a matrix; every
matrix is clustered concurrently with the same settings.

Example:
  echo '[[1],[2],[9],[10]]' | manifold cluster -k 2 --seed 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.cfg.Cluster
			if cmd.Flags().Changed("k") {
				cc.K = k
			}
			if cmd.Flags().Changed("max-iterations") {
				cc.MaxIterations = maxIterations
			}
			if cmd.Flags().Changed("seed") {
				cc.Seed = &seed
			}
			if cmd.Flags().Changed("metric") {
				cc.Metric = metric
			}
			if cmd.Flags().Changed("repair") {
				cc.Repair = repair
			}

			runOpts, err := cc.runOptions(transpose)
			if err != nil {
				return err
			}

			opts := []manifold.Option{manifold.WithLogger(c.logger.WithK(cc.K))}
			if l := c.cfg.Limits; l != (LimitsConfig{}) {
				opts = append(opts, manifold.WithResourceLimits(l.MemoryBytes, l.MaxConcurrentRuns, l.RunsPerSecond))
			}
			s := manifold.New(opts...)

			if batch {
				return c.clusterBatch(cmd, s, cc.K, runOpts)
			}

			var rows [][]float64
			if err := c.readInput(cmd, &rows); err != nil {
				return err
			}
			samples, err := denseOf(rows)
			if err != nil {
				return err
			}

			res, err := s.Cluster(cmd.Context(), samples, cc.K, runOpts...)
			c.logResources(cmd, s)
			if err != nil {
				return err
			}
			return c.writeOutput(cmd, newClusterOutput("", res))
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 3, "Number of clusters")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", manifold.DefaultMaxIterations, "Maximum assignment passes")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for reproducible runs")
	cmd.Flags().StringVar(&metric, "metric", distance.MetricL2.String(), "Distance metric (L2, Cosine, Manhattan)")
	cmd.Flags().StringVar(&repair, "repair", manifold.RepairNearest.String(), "Empty cluster repair (nearest, farthest)")
	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input holds one array per feature instead of per sample")
	cmd.Flags().BoolVar(&batch, "batch", false, "Input maps names to matrices")

	return cmd
}

func (c *cli) clusterBatch(cmd *cobra.Command, s *manifold.Segmenter, k int, runOpts []manifold.RunOption) error {
	var named map[string][][]float64
	if err := c.readInput(cmd, &named); err != nil {
		return err
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]manifold.Job, len(names))
	for i, name := range names {
		samples, err := denseOf(named[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		jobs[i] = manifold.Job{Name: name, Samples: samples, K: k, Options: runOpts}
	}

	results, err := s.ClusterAll(cmd.Context(), jobs)
	c.logResources(cmd, s)
	if err != nil {
		return err
	}

	out := make([]clusterOutput, len(results))
	for i, res := range results {
		out[i] = newClusterOutput(names[i], res)
	}
	return c.writeOutput(cmd, out)
}

func (c *cli) logResources(cmd *cobra.Command, s *manifold.Segmenter) {
	stats := s.ResourceStats()
	c.logger.DebugContext(cmd.Context(), "resource usage",
		"memory_bytes", stats.MemoryUsage,
		"memory_limit_bytes", stats.MemoryLimit,
		"active_runs", stats.ActiveRuns,
	)
}

func (cc ClusterConfig) runOptions(transpose bool) ([]manifold.RunOption, error) {
	metric, err := distance.ParseMetric(cc.Metric)
	if err != nil {
		return nil, err
	}
	repair, err := manifold.ParseRepairStrategy(cc.Repair)
	if err != nil {
		return nil, err
	}

	opts := []manifold.RunOption{
		manifold.WithMaxIterations(cc.MaxIterations),
		manifold.WithMetric(metric),
		manifold.WithRepairStrategy(repair),
		manifold.WithTranspose(transpose),
	}
	if cc.Seed != nil {
		opts = append(opts, manifold.WithSeed(*cc.Seed))
	}
	return opts, nil
}

func newClusterOutput(name string, res *manifold.Result) clusterOutput {
	out := clusterOutput{
		Name:        name,
		Assignments: res.Assignments,
		Sizes:       res.Sizes,
		Iterations:  res.Iterations,
		Repairs:     res.Repairs,
		Inertia:     res.Inertia,
		State:       res.State.String(),
	}

	r, _ := res.Centroids.Dims()
	out.Centroids = make([][]float64, r)
	for i := range out.Centroids {
		out.Centroids[i] = mat.Row(nil, i, res.Centroids)
	}
	return out
}

func denseOf(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("input matrix is empty")
	}

	d := len(rows[0])
	m := mat.NewDense(len(rows), d, nil)
	for i, r := range rows {
		if len(r) != d {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), d)
		}
		m.SetRow(i, r)
	}
	return m, nil
}
