package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClusterCount is returned when k < 1 or k exceeds the number of samples.
	ErrInvalidClusterCount = errors.New("invalid cluster count")

	// ErrInvalidAssignment is returned when an assignment vector does not fit the samples or k.
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// ErrDimensionMismatch indicates that samples and centroids disagree on
// the number of features.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func invalidClusterCount(k, n int) error {
	return fmt.Errorf("%w: k=%d, samples=%d", ErrInvalidClusterCount, k, n)
}
