package matrix

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// Dense stores every element row-major. It is the endpoint the sparse
// formats convert to and from, and the slow but obviously correct operand
// in checks.
type Dense[T blas.Scalar] struct {
	Rows, Cols int
	Data       []T

	tag
}

var _ Matrix[float64] = (*Dense[float64])(nil)

// NewDense creates a zero host-space matrix.
func NewDense[T blas.Scalar](rows, cols int) *Dense[T] {
	m, err := NewDenseOn[T](mem.Host(), rows, cols)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewDenseOn creates a zero matrix in the given space.
func NewDenseOn[T blas.Scalar](s *mem.Space, rows, cols int) (*Dense[T], error) {
	checkDims(rows, cols, 0)
	m := &Dense[T]{Rows: rows, Cols: cols, tag: tag{space: s}}

	var err error
	if m.Data, err = allocBuf[T](m.tag, rows*cols); err != nil {
		return nil, err
	}
	return m, nil
}

// Dims returns the shape.
func (m *Dense[T]) Dims() (rows, cols int) { return m.Rows, m.Cols }

// NumEntries counts the nonzero elements. It scans the full buffer.
func (m *Dense[T]) NumEntries() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Format returns FormatDense.
func (m *Dense[T]) Format() Format { return FormatDense }

// Entries iterates the nonzero elements row-major.
func (m *Dense[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for i := 0; i < m.Rows; i++ {
			row := m.Data[i*m.Cols : (i+1)*m.Cols]
			for j, v := range row {
				if v == 0 {
					continue
				}
				if !yield(Entry[T]{Row: i, Col: j, Value: v}) {
					return
				}
			}
		}
	}
}

// At returns the element at (i, j).
func (m *Dense[T]) At(i, j int) T {
	checkAt(i, j, m.Rows, m.Cols)
	return m.Data[i*m.Cols+j]
}

// Set stores v at (i, j).
func (m *Dense[T]) Set(i, j int, v T) {
	checkAt(i, j, m.Rows, m.Cols)
	m.Data[i*m.Cols+j] = v
}

// Validate checks the buffer length against the shape.
func (m *Dense[T]) Validate() error {
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: data length %d, want %d×%d",
			ErrInvalidPattern, len(m.Data), m.Rows, m.Cols)
	}
	return nil
}

// Resize reshapes the matrix, keeping the overlapping top-left rectangle
// and zeroing everything else.
func (m *Dense[T]) Resize(rows, cols int) error {
	checkDims(rows, cols, 0)
	if cols == m.Cols {
		data, err := resizeBuf(m.tag, m.Data, rows*cols)
		if err != nil {
			return err
		}
		m.Data, m.Rows = data, rows
		return nil
	}
	data, err := allocBuf[T](m.tag, rows*cols)
	if err != nil {
		return err
	}
	kr, kc := min(rows, m.Rows), min(cols, m.Cols)
	for i := 0; i < kr; i++ {
		copy(data[i*cols:i*cols+kc], m.Data[i*m.Cols:i*m.Cols+kc])
	}
	freeBuf(m.tag, m.Data)
	m.Data, m.Rows, m.Cols = data, rows, cols
	return nil
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *Dense[T]) Swap(o *Dense[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *Dense[T]) Clone() (*Dense[T], error) {
	c := &Dense[T]{Rows: m.Rows, Cols: m.Cols, tag: m.tag}
	var err error
	if c.Data, err = copyBuf(c.tag, m.Data); err != nil {
		return nil, err
	}
	return c, nil
}

// Rebind copies the matrix into space s and returns the copy.
func (m *Dense[T]) Rebind(ctx context.Context, s *mem.Space) (*Dense[T], error) {
	nm, err := NewDenseOn[T](s, m.Rows, m.Cols)
	if err != nil {
		return nil, err
	}
	if err := mem.Copy(ctx, nm.Data, s, m.Data, m.Space()); err != nil {
		nm.Free()
		return nil, err
	}
	return nm, nil
}

// Free releases the buffer's budget and empties the matrix.
func (m *Dense[T]) Free() {
	freeBuf(m.tag, m.Data)
	m.Data = nil
}

// MulVec computes y = A·x serially, overwriting y row by row.
func (m *Dense[T]) MulVec(y, x []T) error {
	if err := checkMulVec(m.Rows, m.Cols, len(y), len(x)); err != nil {
		return err
	}
	for i := 0; i < m.Rows; i++ {
		row := m.Data[i*m.Cols : (i+1)*m.Cols]
		var sum T
		for j, v := range row {
			sum += v * x[j]
		}
		y[i] = sum
	}
	return nil
}
