package matrix

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// CSR stores a matrix in compressed sparse row form: RowOffsets[i] and
// RowOffsets[i+1] delimit row i's slice of ColIndices and Values. Column
// indices are ascending within each row with no duplicates. The workhorse
// format for row-oriented kernels and solvers.
type CSR[T blas.Scalar] struct {
	RowOffsets []int
	ColIndices []int
	Values     []T

	rows, cols int
	tag
}

var _ Matrix[float64] = (*CSR[float64])(nil)

// NewCSR creates a host-space CSR with room for nnz entries, all zero and
// all offsets zero (every row empty). Panics with ErrShape on negative
// dimensions.
func NewCSR[T blas.Scalar](rows, cols, nnz int) *CSR[T] {
	m, err := NewCSROn[T](mem.Host(), rows, cols, nnz)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewCSROn creates a CSR in the given space.
func NewCSROn[T blas.Scalar](s *mem.Space, rows, cols, nnz int) (*CSR[T], error) {
	checkDims(rows, cols, nnz)
	m := &CSR[T]{rows: rows, cols: cols, tag: tag{space: s}}

	var err error
	if m.RowOffsets, err = allocBuf[int](m.tag, rows+1); err != nil {
		return nil, err
	}
	if m.ColIndices, err = allocBuf[int](m.tag, nnz); err != nil {
		freeBuf(m.tag, m.RowOffsets)
		return nil, err
	}
	if m.Values, err = allocBuf[T](m.tag, nnz); err != nil {
		freeBuf(m.tag, m.RowOffsets)
		freeBuf(m.tag, m.ColIndices)
		return nil, err
	}
	return m, nil
}

// Dims returns the logical shape.
func (m *CSR[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// NumEntries returns the stored entry count.
func (m *CSR[T]) NumEntries() int { return len(m.Values) }

// Format returns FormatCSR.
func (m *CSR[T]) Format() Format { return FormatCSR }

// RowView returns the column indices and values of row i as sub-slices of
// the backing arrays. Mutating them mutates the matrix.
func (m *CSR[T]) RowView(i int) (cols []int, vals []T) {
	lo, hi := m.RowOffsets[i], m.RowOffsets[i+1]
	return m.ColIndices[lo:hi], m.Values[lo:hi]
}

// RowNNZ returns the entry count of row i.
func (m *CSR[T]) RowNNZ(i int) int {
	return m.RowOffsets[i+1] - m.RowOffsets[i]
}

// Entries iterates rows in order, columns ascending within each row.
func (m *CSR[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for i := 0; i < m.rows; i++ {
			for k := m.RowOffsets[i]; k < m.RowOffsets[i+1]; k++ {
				if !yield(Entry[T]{Row: i, Col: m.ColIndices[k], Value: m.Values[k]}) {
					return
				}
			}
		}
	}
}

// At returns the value at (i, j), zero when no entry is stored there.
func (m *CSR[T]) At(i, j int) T {
	checkAt(i, j, m.rows, m.cols)
	cols, vals := m.RowView(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	var zero T
	return zero
}

// Validate checks the structural invariants: offsets of length rows+1
// starting at zero, monotone, ending at the entry count; columns in range
// and strictly ascending within each row.
func (m *CSR[T]) Validate() error {
	if len(m.ColIndices) != len(m.Values) {
		return fmt.Errorf("%w: parallel arrays disagree (%d cols, %d values)",
			ErrInvalidPattern, len(m.ColIndices), len(m.Values))
	}
	if len(m.RowOffsets) != m.rows+1 {
		return fmt.Errorf("%w: row offsets length %d, want %d",
			ErrInvalidPattern, len(m.RowOffsets), m.rows+1)
	}
	if m.RowOffsets[0] != 0 {
		return fmt.Errorf("%w: row offsets start at %d, want 0", ErrInvalidPattern, m.RowOffsets[0])
	}
	if last := m.RowOffsets[m.rows]; last != len(m.Values) {
		return fmt.Errorf("%w: row offsets end at %d, want entry count %d",
			ErrInvalidPattern, last, len(m.Values))
	}
	for i := 0; i < m.rows; i++ {
		lo, hi := m.RowOffsets[i], m.RowOffsets[i+1]
		if hi < lo {
			return fmt.Errorf("%w: row %d offsets decrease (%d then %d)", ErrInvalidPattern, i, lo, hi)
		}
		for k := lo; k < hi; k++ {
			c := m.ColIndices[k]
			if c < 0 || c >= m.cols {
				return fmt.Errorf("%w: row %d column %d outside %d columns",
					ErrIndexOutOfRange, i, c, m.cols)
			}
			if k > lo && c <= m.ColIndices[k-1] {
				return fmt.Errorf("%w: row %d columns out of order (%d then %d)",
					ErrInvalidPattern, i, m.ColIndices[k-1], c)
			}
		}
	}
	return nil
}

// Resize changes the shape and entry capacity. Offsets and entries keep
// their common prefix; new offset slots zero-fill, which keeps the offsets
// array monotone only if callers rebuild it before use. Validate reports
// any inconsistency.
func (m *CSR[T]) Resize(rows, cols, nnz int) error {
	checkDims(rows, cols, nnz)
	ro, err := resizeBuf(m.tag, m.RowOffsets, rows+1)
	if err != nil {
		return err
	}
	ci, err := resizeBuf(m.tag, m.ColIndices, nnz)
	if err != nil {
		return err
	}
	vs, err := resizeBuf(m.tag, m.Values, nnz)
	if err != nil {
		return err
	}
	m.RowOffsets, m.ColIndices, m.Values = ro, ci, vs
	m.rows, m.cols = rows, cols
	return nil
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *CSR[T]) Swap(o *CSR[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *CSR[T]) Clone() (*CSR[T], error) {
	c := &CSR[T]{rows: m.rows, cols: m.cols, tag: m.tag}
	var err error
	if c.RowOffsets, err = copyBuf(c.tag, m.RowOffsets); err != nil {
		return nil, err
	}
	if c.ColIndices, err = copyBuf(c.tag, m.ColIndices); err != nil {
		c.Free()
		return nil, err
	}
	if c.Values, err = copyBuf(c.tag, m.Values); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

// Rebind copies the matrix into space s and returns the copy.
func (m *CSR[T]) Rebind(ctx context.Context, s *mem.Space) (*CSR[T], error) {
	nm, err := NewCSROn[T](s, m.rows, m.cols, len(m.Values))
	if err != nil {
		return nil, err
	}
	src := m.Space()
	if err := mem.Copy(ctx, nm.RowOffsets, s, m.RowOffsets, src); err != nil {
		nm.Free()
		return nil, err
	}
	if err := mem.Copy(ctx, nm.ColIndices, s, m.ColIndices, src); err != nil {
		nm.Free()
		return nil, err
	}
	if err := mem.Copy(ctx, nm.Values, s, m.Values, src); err != nil {
		nm.Free()
		return nil, err
	}
	return nm, nil
}

// Free releases the buffers' budget and empties the matrix.
func (m *CSR[T]) Free() {
	freeBuf(m.tag, m.RowOffsets)
	freeBuf(m.tag, m.ColIndices)
	freeBuf(m.tag, m.Values)
	m.RowOffsets, m.ColIndices, m.Values = nil, nil, nil
}

// MulVec computes y = A·x serially, overwriting y row by row.
func (m *CSR[T]) MulVec(y, x []T) error {
	if err := checkMulVec(m.rows, m.cols, len(y), len(x)); err != nil {
		return err
	}
	for i := 0; i < m.rows; i++ {
		var sum T
		for k := m.RowOffsets[i]; k < m.RowOffsets[i+1]; k++ {
			sum += m.Values[k] * x[m.ColIndices[k]]
		}
		y[i] = sum
	}
	return nil
}
