package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/manifold"
	"github.com/spf13/cobra"
)

// cli holds state shared by all subcommands.
type cli struct {
	configPath string
	inputPath  string
	verbose    bool
	pretty     bool

	cfg    Config
	logger *manifold.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: DefaultConfig()}

	root := &cobra.Command{
		Use:   "manifold",
		Short: "Cluster model-performance data and compare segments",
		Long: `manifold groups samples (one row of per-model metrics each) with k-means
and computes the statistics used to compare the resulting segments.

Input is JSON, read from --input or stdin. Settings come from an optional
YAML file (--config); flags override file values.

Example:
  manifold cluster -k 3 --seed 42 < losses.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				cfg, err := LoadConfig(c.configPath)
				if err != nil {
					return err
				}
				c.cfg = cfg
			}
			if c.verbose {
				c.cfg.Logging.Level = "debug"
			}

			logger, err := c.cfg.Logging.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVarP(&c.inputPath, "input", "i", "", "JSON input file (default stdin)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&c.pretty, "pretty", false, "Indent JSON output")

	root.AddCommand(
		newClusterCmd(c),
		newPercentilesCmd(c),
		newDensityCmd(c),
		newDivergenceCmd(c),
		newRankCmd(c),
	)

	return root
}

func (c *cli) readInput(cmd *cobra.Command, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if c.inputPath != "" && c.inputPath != "-" {
		f, err := os.Open(c.inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}
	return nil
}

func (c *cli) writeOutput(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if c.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
