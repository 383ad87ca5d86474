package clustergo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrEmptyDataset is returned when Fit is called without any points.
	ErrEmptyDataset = errors.New("dataset must contain at least one point")

	// ErrZeroDimension is returned when points have no features.
	ErrZeroDimension = errors.New("points must have at least one dimension")

	// ErrInvalidSnapshot is returned when snapshot data is corrupt or has
	// an unknown format.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// ErrDimensionMismatch indicates a vector dimensionality mismatch, either
// between rows of a dataset or between a query and the trained model.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
