package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/manifold/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClusterCmd(t *testing.T) {
	out, err := execute(t, `[[1],[2],[9],[10]]`, "cluster", "-k", "2", "--seed", "1")
	require.NoError(t, err)

	var res clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, testutil.SameGrouping([]int{0, 0, 1, 1}, res.Assignments))
	assert.Equal(t, "converged", res.State)
	assert.Len(t, res.Centroids, 2)
	assert.Equal(t, []int{2, 2}, res.Sizes)
}

func TestClusterCmd_Batch(t *testing.T) {
	input := `{"b": [[1],[2],[3]], "a": [[0,0],[0,1],[5,5],[5,6]]}`
	out, err := execute(t, input, "cluster", "--batch", "-k", "2", "--seed", "3")
	require.NoError(t, err)

	var res []clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Name)
	assert.Equal(t, "b", res[1].Name)
	assert.True(t, testutil.SameGrouping([]int{0, 0, 1, 1}, res[0].Assignments))
	assert.Len(t, res[1].Assignments, 3)
}

func TestClusterCmd_ConfigAndFlags(t *testing.T) {
	cfg := writeConfig(t, `
cluster:
  k: 2
  seed: 1
  max_iterations: 20
`)
	input := `[[1],[2],[9],[10]]`

	out, err := execute(t, input, "cluster", "--config", cfg)
	require.NoError(t, err)
	var res clusterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, testutil.DistinctCount(res.Assignments))

	out, err = execute(t, input, "cluster", "--config", cfg, "-k", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []int{0, 0, 0, 0}, res.Assignments)
}

func TestClusterCmd_Errors(t *testing.T) {
	_, err := execute(t, `[]`, "cluster")
	assert.Error(t, err)

	_, err = execute(t, `[[1],[2]]`, "cluster", "-k", "3")
	assert.Error(t, err)

	_, err = execute(t, `[[1],[2]]`, "cluster", "-k", "1", "--metric", "Chebyshev")
	assert.Error(t, err)

	_, err = execute(t, `[[1,2],[3]]`, "cluster", "-k", "1")
	assert.Error(t, err)

	_, err = execute(t, `not json`, "cluster")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, `
cluster:
  repair: sideways
`)
	_, err := execute(t, `[[1]]`, "cluster", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster.repair")

	_, err = execute(t, `[[1]]`, "cluster", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "stats:\n  bins: 4\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Stats.Bins)
	assert.Equal(t, DefaultConfig().Cluster, cfg.Cluster)
	assert.Equal(t, "kl", cfg.Stats.Divergence)
	assert.NoError(t, DefaultConfig().Validate())
}

func TestPercentilesCmd(t *testing.T) {
	out, err := execute(t, `[5,1,4,2,3]`, "percentiles", "-p", "0,0.5,1")
	require.NoError(t, err)

	var res struct {
		P      []float64 `json:"p"`
		Values []float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []float64{1, 3, 5}, res.Values)

	out, err = execute(t, `[]`, "percentiles")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Values)
	assert.Equal(t, []float64{0.25, 0.5, 0.75}, res.P)
}

func TestDensityCmd(t *testing.T) {
	out, err := execute(t, `[1,2,3]`, "density", "-r", "5")
	require.NoError(t, err)

	var points []struct {
		X       float64 `json:"x"`
		Density float64 `json:"density"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 5)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].X, points[i-1].X)
	}
}

func TestDivergenceCmd(t *testing.T) {
	out, err := execute(t, `{"p":[0.5,0.5],"q":[0.5,0.5]}`, "divergence", "--kind", "js")
	require.NoError(t, err)

	var res struct {
		Kind       string  `json:"kind"`
		Divergence float64 `json:"divergence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "js", res.Kind)
	assert.InDelta(t, 0, res.Divergence, 1e-9)

	_, err = execute(t, `{"p":[1],"q":[0.5,0.5]}`, "divergence")
	assert.Error(t, err)

	_, err = execute(t, `{"p":[1],"q":[1]}`, "divergence", "--kind", "chi2")
	assert.Error(t, err)
}

func TestRankCmd(t *testing.T) {
	input := `{
  "features": [[0,5],[0.1,6],[0.2,7],[10,5],[10.1,6],[10.2,7]],
  "assignments": [0,0,0,1,1,1]
}`
	out, err := execute(t, input, "rank", "--a", "0", "--b", "1", "--bins", "4")
	require.NoError(t, err)

	var scores []struct {
		Feature int     `json:"feature"`
		Score   float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &scores))
	require.Len(t, scores, 2)
	assert.Equal(t, 0, scores[0].Feature)
	assert.Greater(t, scores[0].Score, scores[1].Score)
	assert.InDelta(t, 0, scores[1].Score, 1e-6)

	_, err = execute(t, input, "rank", "--a", "0", "--b", "7")
	assert.Error(t, err)

	_, err = execute(t, input, "rank", "--a", "0")
	assert.Error(t, err)
}

func TestClusterCmd_LogsResourceUsage(t *testing.T) {
	cfg := writeConfig(t, `
limits:
  memory_bytes: 1048576
  max_concurrent_runs: 2
`)

	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetIn(strings.NewReader(`[[1],[2],[9],[10]]`))
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs([]string{"cluster", "-v", "-k", "2", "--seed", "1", "--config", cfg})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, logs.String(), "resource usage")
	assert.Contains(t, logs.String(), "memory_limit_bytes=1048576")
	assert.Contains(t, logs.String(), "active_runs=0")
}
