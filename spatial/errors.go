package spatial

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when longitude and latitude slices differ in length.
	ErrLengthMismatch = errors.New("coordinate length mismatch")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// LengthMismatchError carries the two slice lengths that disagreed.
// It unwraps to ErrLengthMismatch.
type LengthMismatchError struct {
	Lons int
	Lats int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("coordinate length mismatch: %d longitudes, %d latitudes", e.Lons, e.Lats)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

func checkLengths(lons, lats []float64) error {
	if len(lons) != len(lats) {
		return &LengthMismatchError{Lons: len(lons), Lats: len(lats)}
	}
	return nil
}
