package matrix

import (
	"fmt"

	"github.com/hupe1980/sparsego/blas"
)

// The FromParts constructors wrap caller-owned buffers without copying.
// The buffers are adopted as-is and stay untracked, so the container
// behaves as a literal host-resident one and Free is a no-op. Only array
// lengths are checked here; call Validate to check the full invariants.

// COOFromParts wraps existing coordinate arrays. The entries must already
// be in canonical (row, col) order with no duplicates.
func COOFromParts[T blas.Scalar](rows, cols int, rowIndices, colIndices []int, values []T) (*COO[T], error) {
	checkDims(rows, cols, len(values))
	if len(rowIndices) != len(values) || len(colIndices) != len(values) {
		return nil, fmt.Errorf("%w: parallel arrays disagree (%d rows, %d cols, %d values)",
			ErrShape, len(rowIndices), len(colIndices), len(values))
	}
	return &COO[T]{RowIndices: rowIndices, ColIndices: colIndices, Values: values, rows: rows, cols: cols}, nil
}

// CSRFromParts wraps existing compressed row arrays.
func CSRFromParts[T blas.Scalar](rows, cols int, rowOffsets, colIndices []int, values []T) (*CSR[T], error) {
	checkDims(rows, cols, len(values))
	if len(rowOffsets) != rows+1 {
		return nil, fmt.Errorf("%w: %d row offsets for %d rows", ErrShape, len(rowOffsets), rows)
	}
	if len(colIndices) != len(values) {
		return nil, fmt.Errorf("%w: parallel arrays disagree (%d cols, %d values)",
			ErrShape, len(colIndices), len(values))
	}
	return &CSR[T]{RowOffsets: rowOffsets, ColIndices: colIndices, Values: values, rows: rows, cols: cols}, nil
}

// DIAFromParts wraps existing diagonal lanes. data must hold one stride-long
// lane per offset and nnz must count the nonzero in-bounds slots.
func DIAFromParts[T blas.Scalar](rows, cols, nnz int, offsets []int, data []T) (*DIA[T], error) {
	checkDims(rows, cols, nnz)
	m := &DIA[T]{Offsets: offsets, Data: data, rows: rows, cols: cols, nnz: nnz}
	if len(data) != len(offsets)*m.Stride() {
		return nil, fmt.Errorf("%w: %d lane elements for %d diagonals of stride %d",
			ErrShape, len(data), len(offsets), m.Stride())
	}
	return m, nil
}

// ELLFromParts wraps existing column-major slot arrays sized width·rows.
// nnz must count the real (non-padding) entries.
func ELLFromParts[T blas.Scalar](rows, cols, nnz, width int, colIndices []int, values []T) (*ELL[T], error) {
	checkDims(rows, cols, nnz)
	if width < 0 {
		panic(ErrShape)
	}
	if len(colIndices) != width*rows || len(values) != width*rows {
		return nil, fmt.Errorf("%w: slot arrays of %d and %d elements, want %d",
			ErrShape, len(colIndices), len(values), width*rows)
	}
	return &ELL[T]{Width: width, ColIndices: colIndices, Values: values, rows: rows, cols: cols, nnz: nnz}, nil
}

// DenseFromParts wraps an existing row-major array.
func DenseFromParts[T blas.Scalar](rows, cols int, data []T) (*Dense[T], error) {
	checkDims(rows, cols, 0)
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d elements for a %d×%d matrix", ErrShape, len(data), rows, cols)
	}
	return &Dense[T]{Rows: rows, Cols: cols, Data: data}, nil
}
