package matrix

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// PadColumn marks unused ELL slots. Padded slots carry a zero value.
const PadColumn = -1

// ELL stores a matrix with a fixed number of slots per row. ColIndices and
// Values are column-major with stride rows: slot k of row i sits at
// k*Stride()+i, so a row-parallel kernel reads consecutive rows from
// consecutive memory. Within a row, real entries come first with ascending
// columns; the rest of the slots hold PadColumn and zero.
type ELL[T blas.Scalar] struct {
	Width      int
	ColIndices []int
	Values     []T

	rows, cols int
	nnz        int
	tag
}

var _ Matrix[float64] = (*ELL[float64])(nil)

// NewELL creates a host-space ELL with width slots per row, all padded.
// nnz records how many entries the caller intends to scatter in.
func NewELL[T blas.Scalar](rows, cols, nnz, width int) *ELL[T] {
	m, err := NewELLOn[T](mem.Host(), rows, cols, nnz, width)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewELLOn creates an ELL in the given space.
func NewELLOn[T blas.Scalar](s *mem.Space, rows, cols, nnz, width int) (*ELL[T], error) {
	checkDims(rows, cols, nnz)
	if width < 0 {
		panic(ErrShape)
	}
	m := &ELL[T]{Width: width, rows: rows, cols: cols, nnz: nnz, tag: tag{space: s}}

	var err error
	if m.ColIndices, err = allocBuf[int](m.tag, width*rows); err != nil {
		return nil, err
	}
	if m.Values, err = allocBuf[T](m.tag, width*rows); err != nil {
		freeBuf(m.tag, m.ColIndices)
		return nil, err
	}
	for i := range m.ColIndices {
		m.ColIndices[i] = PadColumn
	}
	return m, nil
}

// Dims returns the logical shape.
func (m *ELL[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// NumEntries returns the occupied slot count.
func (m *ELL[T]) NumEntries() int { return m.nnz }

// Format returns FormatELL.
func (m *ELL[T]) Format() Format { return FormatELL }

// Stride returns the row pitch between consecutive slots of a row.
func (m *ELL[T]) Stride() int { return m.rows }

// Recount rescans the slots and updates the entry count. Call it after
// writing slots directly.
func (m *ELL[T]) Recount() int {
	m.nnz = 0
	for _, c := range m.ColIndices {
		if c != PadColumn {
			m.nnz++
		}
	}
	return m.nnz
}

// Entries iterates occupied slots in lexicographic (row, col) order,
// explicit zeros included.
func (m *ELL[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		stride := m.Stride()
		for i := 0; i < m.rows; i++ {
			for k := 0; k < m.Width; k++ {
				c := m.ColIndices[k*stride+i]
				if c == PadColumn {
					break // padding trails the real entries
				}
				if !yield(Entry[T]{Row: i, Col: c, Value: m.Values[k*stride+i]}) {
					return
				}
			}
		}
	}
}

// At returns the value at (i, j), zero when no slot holds that column.
func (m *ELL[T]) At(i, j int) T {
	checkAt(i, j, m.rows, m.cols)
	stride := m.Stride()
	for k := 0; k < m.Width; k++ {
		c := m.ColIndices[k*stride+i]
		if c == PadColumn || c > j {
			break
		}
		if c == j {
			return m.Values[k*stride+i]
		}
	}
	var zero T
	return zero
}

// Validate checks the structural invariants: arrays sized width·rows, real
// entries before padding with ascending in-range columns, padded slots
// zero-valued, and the entry count matching the occupied slots.
func (m *ELL[T]) Validate() error {
	want := m.Width * m.rows
	if len(m.ColIndices) != want || len(m.Values) != want {
		return fmt.Errorf("%w: slot arrays %d and %d, want width %d by %d rows",
			ErrInvalidPattern, len(m.ColIndices), len(m.Values), m.Width, m.rows)
	}
	stride := m.Stride()
	nnz := 0
	for i := 0; i < m.rows; i++ {
		padded := false
		prev := PadColumn
		for k := 0; k < m.Width; k++ {
			c := m.ColIndices[k*stride+i]
			if c == PadColumn {
				padded = true
				if m.Values[k*stride+i] != 0 {
					return fmt.Errorf("%w: row %d slot %d padded with nonzero value",
						ErrInvalidPattern, i, k)
				}
				continue
			}
			if padded {
				return fmt.Errorf("%w: row %d slot %d follows padding", ErrInvalidPattern, i, k)
			}
			if c < 0 || c >= m.cols {
				return fmt.Errorf("%w: row %d column %d outside %d columns",
					ErrIndexOutOfRange, i, c, m.cols)
			}
			if c <= prev && k > 0 {
				return fmt.Errorf("%w: row %d columns out of order (%d then %d)",
					ErrInvalidPattern, i, prev, c)
			}
			prev = c
			nnz++
		}
	}
	if nnz != m.nnz {
		return fmt.Errorf("%w: entry count %d, slots hold %d entries",
			ErrInvalidPattern, m.nnz, nnz)
	}
	return nil
}

// Resize changes the shape and slot geometry. Because the layout is keyed
// to rows and width, changing either resets every slot to padding; a pure
// cols or nnz update preserves the slots.
func (m *ELL[T]) Resize(rows, cols, nnz, width int) error {
	checkDims(rows, cols, nnz)
	if width < 0 {
		panic(ErrShape)
	}
	reset := rows != m.rows || width != m.Width
	ci, err := resizeBuf(m.tag, m.ColIndices, width*rows)
	if err != nil {
		return err
	}
	vs, err := resizeBuf(m.tag, m.Values, width*rows)
	if err != nil {
		return err
	}
	m.ColIndices, m.Values = ci, vs
	m.Width, m.rows, m.cols, m.nnz = width, rows, cols, nnz
	if reset {
		for i := range m.ColIndices {
			m.ColIndices[i] = PadColumn
		}
		clear(m.Values)
	}
	return nil
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *ELL[T]) Swap(o *ELL[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *ELL[T]) Clone() (*ELL[T], error) {
	c := &ELL[T]{Width: m.Width, rows: m.rows, cols: m.cols, nnz: m.nnz, tag: m.tag}
	var err error
	if c.ColIndices, err = copyBuf(c.tag, m.ColIndices); err != nil {
		return nil, err
	}
	if c.Values, err = copyBuf(c.tag, m.Values); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

// Rebind copies the matrix into space s and returns the copy.
func (m *ELL[T]) Rebind(ctx context.Context, s *mem.Space) (*ELL[T], error) {
	nm, err := NewELLOn[T](s, m.rows, m.cols, m.nnz, m.Width)
	if err != nil {
		return nil, err
	}
	src := m.Space()
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
func (m *ELL[T]) Free() {
	freeBuf(m.tag, m.ColIndices)
	freeBuf(m.tag, m.Values)
	m.ColIndices, m.Values = nil, nil
	m.Width, m.nnz = 0, 0
}

// MulVec computes y = A·x serially, overwriting y row by row.
func (m *ELL[T]) MulVec(y, x []T) error {
	if err := checkMulVec(m.rows, m.cols, len(y), len(x)); err != nil {
		return err
	}
	stride := m.Stride()
	for i := 0; i < m.rows; i++ {
		var sum T
		for k := 0; k < m.Width; k++ {
			c := m.ColIndices[k*stride+i]
			if c == PadColumn {
				break
			}
			sum += m.Values[k*stride+i] * x[c]
		}
		y[i] = sum
	}
	return nil
}
