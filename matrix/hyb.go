package matrix

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// HYB pairs an ELL part holding the typical-width prefix of every row with
// a COO part holding the per-row overflow. Within any row the ELL columns
// all precede the COO columns, so the two parts interleave back into one
// sorted entry stream row by row.
type HYB[T blas.Scalar] struct {
	ELL *ELL[T]
	COO *COO[T]
}

var _ Matrix[float64] = (*HYB[float64])(nil)

// NewHYB creates a host-space HYB from empty parts.
func NewHYB[T blas.Scalar](rows, cols, ellNNZ, width, cooNNZ int) *HYB[T] {
	m, err := NewHYBOn[T](mem.Host(), rows, cols, ellNNZ, width, cooNNZ)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewHYBOn creates a HYB in the given space.
func NewHYBOn[T blas.Scalar](s *mem.Space, rows, cols, ellNNZ, width, cooNNZ int) (*HYB[T], error) {
	ell, err := NewELLOn[T](s, rows, cols, ellNNZ, width)
	if err != nil {
		return nil, err
	}
	coo, err := NewCOOOn[T](s, rows, cols, cooNNZ)
	if err != nil {
		ell.Free()
		return nil, err
	}
	return &HYB[T]{ELL: ell, COO: coo}, nil
}

// Dims returns the logical shape.
func (m *HYB[T]) Dims() (rows, cols int) {
	if m.ELL == nil {
		return 0, 0
	}
	return m.ELL.Dims()
}

// NumEntries returns the combined entry count of both parts.
func (m *HYB[T]) NumEntries() int {
	n := 0
	if m.ELL != nil {
		n += m.ELL.NumEntries()
	}
	if m.COO != nil {
		n += m.COO.NumEntries()
	}
	return n
}

// Format returns FormatHYB.
func (m *HYB[T]) Format() Format { return FormatHYB }

// Space returns the space both parts live in.
func (m *HYB[T]) Space() *mem.Space {
	if m.ELL == nil {
		return mem.Host()
	}
	return m.ELL.Space()
}

// Entries iterates both parts merged back into lexicographic (row, col)
// order: for each row the ELL slots come first, then the row's overflow.
func (m *HYB[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		if m.ELL == nil || m.COO == nil {
			return
		}
		rows, _ := m.Dims()
		stride := m.ELL.Stride()
		k := 0 // cursor into the overflow triples
		for i := 0; i < rows; i++ {
			for s := 0; s < m.ELL.Width; s++ {
				c := m.ELL.ColIndices[s*stride+i]
				if c == PadColumn {
					break
				}
				if !yield(Entry[T]{Row: i, Col: c, Value: m.ELL.Values[s*stride+i]}) {
					return
				}
			}
			for k < len(m.COO.Values) && m.COO.RowIndices[k] == i {
				if !yield(Entry[T]{Row: i, Col: m.COO.ColIndices[k], Value: m.COO.Values[k]}) {
					return
				}
				k++
			}
		}
	}
}

// At returns the value at (i, j), checking the ELL slots first.
func (m *HYB[T]) At(i, j int) T {
	if v := m.ELL.At(i, j); v != 0 {
		return v
	}
	// An explicit zero in the ELL part and a missing entry both read as
	// zero here; the overflow lookup settles anything the ELL part holds
	// no slot for.
	return m.COO.At(i, j)
}

// Validate checks both parts plus the pairing invariants: matching shapes
// and spaces, overflow rows with a full ELL prefix, and every ELL column
// preceding every overflow column of the same row.
func (m *HYB[T]) Validate() error {
	if m.ELL == nil || m.COO == nil {
		return fmt.Errorf("%w: missing part", ErrInvalidPattern)
	}
	if err := m.ELL.Validate(); err != nil {
		return err
	}
	if err := m.COO.Validate(); err != nil {
		return err
	}
	er, ec := m.ELL.Dims()
	cr, cc := m.COO.Dims()
	if er != cr || ec != cc {
		return fmt.Errorf("%w: parts disagree on shape (%d×%d and %d×%d)",
			ErrShape, er, ec, cr, cc)
	}
	if m.ELL.Space() != m.COO.Space() {
		return mem.ErrSpaceMismatch
	}
	stride := m.ELL.Stride()
	for k := range m.COO.Values {
		i := m.COO.RowIndices[k]
		if m.ELL.Width == 0 {
			continue
		}
		last := m.ELL.ColIndices[(m.ELL.Width-1)*stride+i]
		if last == PadColumn {
			return fmt.Errorf("%w: row %d overflows with unused slots", ErrInvalidPattern, i)
		}
		if m.COO.ColIndices[k] <= last {
			return fmt.Errorf("%w: row %d overflow column %d behind slot column %d",
				ErrInvalidPattern, i, m.COO.ColIndices[k], last)
		}
	}
	return nil
}

// Resize delegates to both parts.
func (m *HYB[T]) Resize(rows, cols, ellNNZ, width, cooNNZ int) error {
	if err := m.ELL.Resize(rows, cols, ellNNZ, width); err != nil {
		return err
	}
	return m.COO.Resize(rows, cols, cooNNZ)
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *HYB[T]) Swap(o *HYB[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *HYB[T]) Clone() (*HYB[T], error) {
	ell, err := m.ELL.Clone()
	if err != nil {
		return nil, err
	}
	coo, err := m.COO.Clone()
	if err != nil {
		ell.Free()
		return nil, err
	}
	return &HYB[T]{ELL: ell, COO: coo}, nil
}

// Rebind copies the matrix into space s and returns the copy.
func (m *HYB[T]) Rebind(ctx context.Context, s *mem.Space) (*HYB[T], error) {
	ell, err := m.ELL.Rebind(ctx, s)
	if err != nil {
		return nil, err
	}
	coo, err := m.COO.Rebind(ctx, s)
	if err != nil {
		ell.Free()
		return nil, err
	}
	return &HYB[T]{ELL: ell, COO: coo}, nil
}

// Free releases both parts.
func (m *HYB[T]) Free() {
	if m.ELL != nil {
		m.ELL.Free()
	}
	if m.COO != nil {
		m.COO.Free()
	}
}

// MulVec computes y = A·x serially: the ELL part overwrites y, then the
// overflow accumulates on top.
func (m *HYB[T]) MulVec(y, x []T) error {
	if err := m.ELL.MulVec(y, x); err != nil {
		return err
	}
	for k := range m.COO.Values {
		y[m.COO.RowIndices[k]] += m.COO.Values[k] * x[m.COO.ColIndices[k]]
	}
	return nil
}
