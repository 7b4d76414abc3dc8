package sparsego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsego/krylov"
	"github.com/hupe1980/sparsego/matrix"
)

var (
	// ErrEmptyFormatChain is returned by Build when no fallback
	// formats are configured.
	ErrEmptyFormatChain = errors.New("sparsego: format fallback chain is empty")

	// ErrOpenFormatChain is returned by Build when the fallback chain
	// does not end in a total conversion (COO or CSR); such a chain
	// could leave Solve with no representation at all.
	ErrOpenFormatChain = errors.New("sparsego: format fallback chain must end in COO or CSR")

	// ErrInvalidTolerance is returned by Build for a non-positive
	// relative tolerance.
	ErrInvalidTolerance = errors.New("sparsego: relative tolerance must be positive")

	// ErrInvalidIterationLimit is returned by Build for a non-positive
	// iteration limit.
	ErrInvalidIterationLimit = errors.New("sparsego: iteration limit must be positive")

	// ErrNotSquare is returned by Solve for a rectangular system matrix.
	ErrNotSquare = errors.New("sparsego: system matrix is not square")

	// ErrBreakdown is returned by Solve when the recurrence degenerates.
	ErrBreakdown = errors.New("sparsego: solver breakdown")
)

// ErrShapeMismatch indicates x or b does not match the system size.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	Rows, Cols int
	LenX, LenB int
	cause      error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("sparsego: %d×%d system needs x of %d and b of %d, got %d and %d",
		e.Rows, e.Cols, e.Cols, e.Rows, e.LenX, e.LenB)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

// translateError maps internal package errors onto the facade's public
// set. Errors with no public counterpart pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, krylov.ErrNotSquare) {
		return fmt.Errorf("%w: %w", ErrNotSquare, err)
	}
	if errors.Is(err, krylov.ErrBreakdown) {
		return fmt.Errorf("%w: %w", ErrBreakdown, err)
	}
	if errors.Is(err, matrix.ErrShape) || errors.Is(err, krylov.ErrDimension) {
		return fmt.Errorf("sparsego: %w", err)
	}

	return err
}
