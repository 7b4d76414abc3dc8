package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrShape indicates incompatible or invalid dimensions.
	ErrShape = errors.New("matrix: dimension mismatch")

	// ErrIndexOutOfRange indicates a row or column index outside the
	// matrix bounds.
	ErrIndexOutOfRange = errors.New("matrix: index out of range")

	// ErrInvalidPattern indicates a structural invariant violation:
	// unsorted or duplicate coordinates, broken offsets, stray padding.
	ErrInvalidPattern = errors.New("matrix: invalid pattern")

	// ErrUnsuitableFormat is the sentinel all conversion failures wrap.
	// Callers test it with errors.Is to skip a format and fall back.
	ErrUnsuitableFormat = errors.New("matrix: pattern unsuitable for target format")
)

// ConversionError reports a refused format conversion. No destination
// matrix exists when it is returned.
//
// It unwraps to ErrUnsuitableFormat.
type ConversionError struct {
	From, To            Format
	Rows, Cols, Entries int
	Reason              string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("matrix: cannot convert %s to %s (%d×%d, %d entries): %s",
		e.From, e.To, e.Rows, e.Cols, e.Entries, e.Reason)
}

func (e *ConversionError) Unwrap() error { return ErrUnsuitableFormat }
