package main

import (
	"fmt"
	"slices"

	"github.com/hupe1980/manifold/segment"
	"github.com/hupe1980/manifold/stats"
	"github.com/spf13/cobra"
)

func newPercentilesCmd(c *cli) *cobra.Command {
	var ps []float64

	cmd := &cobra.Command{
		Use:   "percentiles",
		Short: "Linearly interpolated percentiles of a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("p") {
				ps = c.cfg.Stats.Percentiles
			}

			var values []float64
			if err := c.readInput(cmd, &values); err != nil {
				return err
			}

			return c.writeOutput(cmd, map[string]any{
				"p":      ps,
				"values": nonNil(stats.Percentiles(values, ps)),
			})
		},
	}

	cmd.Flags().Float64SliceVarP(&ps, "p", "p", nil, "Percentiles in [0,1] (default from config: 0.25,0.5,0.75)")

	return cmd
}

func newDensityCmd(c *cli) *cobra.Command {
	var resolution int

	cmd := &cobra.Command{
		Use:   "density",
		Short: "Gaussian kernel density estimate of a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("resolution") {
				resolution = c.cfg.Stats.Resolution
			}

			var values []float64
			if err := c.readInput(cmd, &values); err != nil {
				return err
			}

			points := stats.Density(values, resolution)
			if points == nil {
				points = []stats.Point{}
			}
			return c.writeOutput(cmd, points)
		},
	}

	cmd.Flags().IntVarP(&resolution, "resolution", "r", stats.DefaultResolution, "Number of evaluation points")

	return cmd
}

type divergenceInput struct {
	P []float64 `json:"p"`
	Q []float64 `json:"q"`
}

func newDivergenceCmd(c *cli) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "divergence",
		Short: "Divergence between two distributions",
		Long: `Reads {"p": [...], "q": [...]} and prints the divergence of p from q.

Kinds: kl (Kullback-Leibler), js (Jensen-Shannon), hellinger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("kind") {
				kind = c.cfg.Stats.Divergence
			}
			k, err := stats.ParseDivergenceKind(kind)
			if err != nil {
				return err
			}

			var in divergenceInput
			if err := c.readInput(cmd, &in); err != nil {
				return err
			}

			d, err := stats.Divergence(in.P, in.Q, k)
			if err != nil {
				return err
			}
			return c.writeOutput(cmd, map[string]any{"kind": k.String(), "divergence": d})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", stats.KL.String(), "Divergence kind (kl, js, hellinger)")

	return cmd
}

type rankInput struct {
	Features    [][]float64 `json:"features"`
	Assignments []int       `json:"assignments"`
}

func newRankCmd(c *cli) *cobra.Command {
	var (
		groupA []int
		groupB []int
		bins   int
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank features by how differently two segment groups distribute them",
		Long: `Reads {"features": [[...]], "assignments": [...]} where features has one
row per sample, and prints features sorted by divergence between the
samples of clusters --a and the samples of clusters --b.

Example:
  manifold rank --a 0 --b 1,2 -i segments.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bins") {
				bins = c.cfg.Stats.Bins
			}
			if !cmd.Flags().Changed("kind") {
				kind = c.cfg.Stats.Divergence
			}
			k, err := stats.ParseDivergenceKind(kind)
			if err != nil {
				return err
			}
			if len(groupA) == 0 || len(groupB) == 0 {
				return fmt.Errorf("both --a and --b need at least one cluster")
			}

			var in rankInput
			if err := c.readInput(cmd, &in); err != nil {
				return err
			}
			features, err := denseOf(in.Features)
			if err != nil {
				return err
			}

			numClusters := 0
			if len(in.Assignments) > 0 {
				numClusters = slices.Max(in.Assignments) + 1
			}
			segs, err := segment.Partition(in.Assignments, numClusters)
			if err != nil {
				return err
			}

			a, err := pick(segs, groupA)
			if err != nil {
				return err
			}
			b, err := pick(segs, groupB)
			if err != nil {
				return err
			}

			scores, err := segment.RankFeatures(cmd.Context(), features, a, b, bins, k)
			if err != nil {
				return err
			}
			c.logger.DebugContext(cmd.Context(), "features ranked",
				"features", len(scores),
				"group_a", a.Cardinality(),
				"group_b", b.Cardinality(),
			)
			return c.writeOutput(cmd, scores)
		},
	}

	cmd.Flags().IntSliceVar(&groupA, "a", nil, "Clusters of the first group")
	cmd.Flags().IntSliceVar(&groupB, "b", nil, "Clusters of the second group")
	cmd.Flags().IntVar(&bins, "bins", 10, "Histogram bins per feature")
	cmd.Flags().StringVar(&kind, "kind", stats.KL.String(), "Divergence kind (kl, js, hellinger)")

	return cmd
}

func pick(segs []*segment.Bitmap, clusters []int) (*segment.Bitmap, error) {
	picked := make([]*segment.Bitmap, 0, len(clusters))
	for _, c := range clusters {
		if c < 0 || c >= len(segs) {
			return nil, fmt.Errorf("cluster %d out of range [0,%d)", c, len(segs))
		}
		picked = append(picked, segs[c])
	}
	return segment.Group(picked...), nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
