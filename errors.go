package manifold

import (
	"errors"
	"fmt"

	"github.com/hupe1980/manifold/internal/kmeans"
	"github.com/hupe1980/manifold/internal/resource"
	"github.com/hupe1980/manifold/segment"
)

var (
	// ErrInvalidClusterCount is returned when k < 1 or k exceeds the number of samples.
	ErrInvalidClusterCount = errors.New("invalid cluster count")

	// ErrInvalidAssignment is returned when an assignment vector does not fit the samples or k.
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrRejected is returned when the resource controller refuses a run.
	ErrRejected = errors.New("run rejected")
)

// ErrDimensionMismatch indicates that samples and centroids (or the rows of
// a sample matrix) disagree on the number of features.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates samples without any feature.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *kmeans.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, kmeans.ErrInvalidClusterCount) {
		return fmt.Errorf("%w: %w", ErrInvalidClusterCount, err)
	}
	if errors.Is(err, kmeans.ErrInvalidAssignment) || errors.Is(err, segment.ErrInvalidAssignment) {
		return fmt.Errorf("%w: %w", ErrInvalidAssignment, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	return err
}
