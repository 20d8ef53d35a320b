package segment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/hupe1980/manifold/internal/conv"
	"github.com/hupe1980/manifold/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidAssignment is returned when a cluster label is outside [0, k).
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrOutOfRange is returned when a segment refers to a row or feature that
	// does not exist.
	ErrOutOfRange = errors.New("index out of range")
)

// Partition builds one segment per cluster from an assignment vector.
// Segment c holds the indices of every sample assigned to cluster c.
func Partition(assignments []int, k int) ([]*Bitmap, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidAssignment, k)
	}

	segments := make([]*Bitmap, k)
	for c := range segments {
		segments[c] = NewBitmap()
	}

	for i, c := range assignments {
		if c < 0 || c >= k {
			return nil, fmt.Errorf("%w: sample %d has cluster %d, want [0,%d)", ErrInvalidAssignment, i, c, k)
		}
		id, err := conv.IntToUint32(i)
		if err != nil {
			return nil, err
		}
		segments[c].Add(id)
	}

	return segments, nil
}

// Where returns the segment of rows whose feature j satisfies pred.
func Where(features mat.Matrix, j int, pred func(float64) bool) (*Bitmap, error) {
	r, c := features.Dims()
	if j < 0 || j >= c {
		return nil, fmt.Errorf("%w: feature %d of %d", ErrOutOfRange, j, c)
	}

	b := NewBitmap()
	for i := 0; i < r; i++ {
		if pred(features.At(i, j)) {
			id, err := conv.IntToUint32(i)
			if err != nil {
				return nil, err
			}
			b.Add(id)
		}
	}
	return b, nil
}

// Column returns feature j of every row in members, in ascending row order.
func Column(features mat.Matrix, j int, members *Bitmap) ([]float64, error) {
	r, c := features.Dims()
	if j < 0 || j >= c {
		return nil, fmt.Errorf("%w: feature %d of %d", ErrOutOfRange, j, c)
	}
	if err := checkRows(members, r); err != nil {
		return nil, err
	}

	values := make([]float64, 0, members.Cardinality())
	for id := range members.Iterator() {
		values = append(values, features.At(int(id), j))
	}
	return values, nil
}

// FeatureDistribution holds the per-group distribution of one feature.
type FeatureDistribution struct {
	// Feature is the column index.
	Feature int
	// Dividers are the bin edges shared by every group.
	Dividers []float64
	// Distributions holds one normalized histogram per group.
	Distributions [][]float64
	// Quartiles holds the 25th, 50th and 75th percentile per group.
	Quartiles [][]float64
}

// FeatureDistributions computes, for every feature column, a normalized
// histogram per group over bins shared across groups. Bin edges span the
// values of all rows in any group. Features are processed concurrently.
func FeatureDistributions(ctx context.Context, features mat.Matrix, groups []*Bitmap, bins int) ([]FeatureDistribution, error) {
	r, c := features.Dims()
	for _, g := range groups {
		if err := checkRows(g, r); err != nil {
			return nil, err
		}
	}

	all := Group(groups...)
	out := make([]FeatureDistribution, c)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for j := 0; j < c; j++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			values, err := Column(features, j, all)
			if err != nil {
				return err
			}

			fd := FeatureDistribution{
				Feature:       j,
				Dividers:      stats.Dividers(values, bins),
				Distributions: make([][]float64, len(groups)),
				Quartiles:     make([][]float64, len(groups)),
			}

			for gi, members := range groups {
				col, err := Column(features, j, members)
				if err != nil {
					return err
				}
				fd.Distributions[gi] = stats.NumericalDistribution(col, fd.Dividers)
				fd.Quartiles[gi] = stats.Percentiles(col, []float64{0.25, 0.5, 0.75})
			}

			out[j] = fd
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FeatureScore is the divergence of one feature between two groups.
type FeatureScore struct {
	Feature int     `json:"feature"`
	Score   float64 `json:"score"`
}

// RankFeatures scores every feature by the divergence of its distribution in
// group a from its distribution in group b and returns the scores in
// descending order. Equal scores keep ascending feature order.
func RankFeatures(ctx context.Context, features mat.Matrix, a, b *Bitmap, bins int, kind stats.DivergenceKind) ([]FeatureScore, error) {
	dists, err := FeatureDistributions(ctx, features, []*Bitmap{a, b}, bins)
	if err != nil {
		return nil, err
	}

	scores := make([]FeatureScore, len(dists))
	for i, fd := range dists {
		score, err := stats.Divergence(fd.Distributions[0], fd.Distributions[1], kind)
		if err != nil {
			return nil, err
		}
		scores[i] = FeatureScore{Feature: fd.Feature, Score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

func checkRows(b *Bitmap, rows int) error {
	if b == nil {
		return fmt.Errorf("%w: nil segment", ErrOutOfRange)
	}
	if b.IsEmpty() {
		return nil
	}
	if maxID, err := conv.Uint32ToInt(b.Maximum()); err != nil || maxID >= rows {
		return fmt.Errorf("%w: row %d of %d", ErrOutOfRange, b.Maximum(), rows)
	}
	return nil
}
