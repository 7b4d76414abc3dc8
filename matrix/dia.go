package matrix

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// DIA stores a matrix by its occupied diagonals. Offsets holds the
// distinct col−row offsets in ascending order; Data holds one dense strided
// lane per diagonal, so the entry (i, i+off) of diagonal d sits at
// Data[d*Stride()+i]. Slots that fall outside the matrix are zero padding.
//
// The dense lanes cannot distinguish a stored zero from structural absence,
// so Entries skips zero-valued slots and the entry count tracks nonzero
// in-bounds slots.
type DIA[T blas.Scalar] struct {
	Offsets []int
	Data    []T

	rows, cols int
	nnz        int
	tag
}

var _ Matrix[float64] = (*DIA[float64])(nil)

// NewDIA creates a host-space DIA with the given number of diagonal lanes,
// all offsets and data zero. nnz records how many nonzero entries the
// caller intends to scatter in; Recount fixes it up after direct edits.
func NewDIA[T blas.Scalar](rows, cols, nnz, diagonals int) *DIA[T] {
	m, err := NewDIAOn[T](mem.Host(), rows, cols, nnz, diagonals)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewDIAOn creates a DIA in the given space.
func NewDIAOn[T blas.Scalar](s *mem.Space, rows, cols, nnz, diagonals int) (*DIA[T], error) {
	checkDims(rows, cols, nnz)
	if diagonals < 0 {
		panic(ErrShape)
	}
	m := &DIA[T]{rows: rows, cols: cols, nnz: nnz, tag: tag{space: s}}

	var err error
	if m.Offsets, err = allocBuf[int](m.tag, diagonals); err != nil {
		return nil, err
	}
	if m.Data, err = allocBuf[T](m.tag, diagonals*m.Stride()); err != nil {
		freeBuf(m.tag, m.Offsets)
		return nil, err
	}
	return m, nil
}

// Dims returns the logical shape.
func (m *DIA[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// NumEntries returns the nonzero in-bounds slot count.
func (m *DIA[T]) NumEntries() int { return m.nnz }

// NumDiagonals returns the stored lane count.
func (m *DIA[T]) NumDiagonals() int { return len(m.Offsets) }

// Format returns FormatDIA.
func (m *DIA[T]) Format() Format { return FormatDIA }

// Stride returns the row pitch of each diagonal lane in Data.
func (m *DIA[T]) Stride() int {
	if m.rows > m.cols {
		return m.rows
	}
	return m.cols
}

// Recount rescans Data and updates the entry count. Call it after writing
// lanes directly.
func (m *DIA[T]) Recount() int {
	m.nnz = 0
	stride := m.Stride()
	for d, off := range m.Offsets {
		lo, hi := diagRowRange(off, m.rows, m.cols)
		lane := m.Data[d*stride : d*stride+stride]
		for i := lo; i < hi; i++ {
			if lane[i] != 0 {
				m.nnz++
			}
		}
	}
	return m.nnz
}

// Entries iterates nonzero in-bounds slots in lexicographic (row, col)
// order. Ascending offsets give ascending columns within each row.
func (m *DIA[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		stride := m.Stride()
		for i := 0; i < m.rows; i++ {
			for d, off := range m.Offsets {
				j := i + off
				if j < 0 || j >= m.cols {
					continue
				}
				v := m.Data[d*stride+i]
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

// At returns the value at (i, j), zero when the diagonal j−i is absent.
func (m *DIA[T]) At(i, j int) T {
	checkAt(i, j, m.rows, m.cols)
	d := sort.SearchInts(m.Offsets, j-i)
	if d < len(m.Offsets) && m.Offsets[d] == j-i {
		return m.Data[d*m.Stride()+i]
	}
	var zero T
	return zero
}

// Validate checks the structural invariants: offsets strictly ascending and
// intersecting the matrix, Data sized to lanes·stride, padding slots zero,
// and the entry count matching the nonzero slots.
func (m *DIA[T]) Validate() error {
	stride := m.Stride()
	if len(m.Data) != len(m.Offsets)*stride {
		return fmt.Errorf("%w: data length %d, want %d lanes of stride %d",
			ErrInvalidPattern, len(m.Data), len(m.Offsets), stride)
	}
	nnz := 0
	for d, off := range m.Offsets {
		if d > 0 && off <= m.Offsets[d-1] {
			return fmt.Errorf("%w: offsets out of order (%d then %d)",
				ErrInvalidPattern, m.Offsets[d-1], off)
		}
		if off <= -m.rows || off >= m.cols {
			return fmt.Errorf("%w: diagonal offset %d outside %d×%d",
				ErrIndexOutOfRange, off, m.rows, m.cols)
		}
		lo, hi := diagRowRange(off, m.rows, m.cols)
		lane := m.Data[d*stride : d*stride+stride]
		for i := range lane {
			if i >= lo && i < hi {
				if lane[i] != 0 {
					nnz++
				}
				continue
			}
			if lane[i] != 0 {
				return fmt.Errorf("%w: diagonal %d has nonzero padding at row %d",
					ErrInvalidPattern, off, i)
			}
		}
	}
	if nnz != m.nnz {
		return fmt.Errorf("%w: entry count %d, data holds %d nonzeros",
			ErrInvalidPattern, m.nnz, nnz)
	}
	return nil
}

// Resize changes the shape and lane count. Lane data is preserved per
// diagonal index only while the stride is unchanged; otherwise callers
// rebuild. The entry count is left to Recount.
func (m *DIA[T]) Resize(rows, cols, nnz, diagonals int) error {
	checkDims(rows, cols, nnz)
	if diagonals < 0 {
		panic(ErrShape)
	}
	stride := rows
	if cols > rows {
		stride = cols
	}
	offs, err := resizeBuf(m.tag, m.Offsets, diagonals)
	if err != nil {
		return err
	}
	data, err := resizeBuf(m.tag, m.Data, diagonals*stride)
	if err != nil {
		return err
	}
	m.Offsets, m.Data = offs, data
	m.rows, m.cols, m.nnz = rows, cols, nnz
	return nil
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *DIA[T]) Swap(o *DIA[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *DIA[T]) Clone() (*DIA[T], error) {
	c := &DIA[T]{rows: m.rows, cols: m.cols, nnz: m.nnz, tag: m.tag}
	var err error
	if c.Offsets, err = copyBuf(c.tag, m.Offsets); err != nil {
		return nil, err
	}
	if c.Data, err = copyBuf(c.tag, m.Data); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

// Rebind copies the matrix into space s and returns the copy.
func (m *DIA[T]) Rebind(ctx context.Context, s *mem.Space) (*DIA[T], error) {
	nm, err := NewDIAOn[T](s, m.rows, m.cols, m.nnz, len(m.Offsets))
	if err != nil {
		return nil, err
	}
	src := m.Space()
	if err := mem.Copy(ctx, nm.Offsets, s, m.Offsets, src); err != nil {
		nm.Free()
		return nil, err
	}
	if err := mem.Copy(ctx, nm.Data, s, m.Data, src); err != nil {
		nm.Free()
		return nil, err
	}
	return nm, nil
}

// Free releases the buffers' budget and empties the matrix.
func (m *DIA[T]) Free() {
	freeBuf(m.tag, m.Offsets)
	freeBuf(m.tag, m.Data)
	m.Offsets, m.Data = nil, nil
	m.nnz = 0
}

// MulVec computes y = A·x serially, overwriting y. Lanes are walked with
// edge masking so padding never contributes.
func (m *DIA[T]) MulVec(y, x []T) error {
	if err := checkMulVec(m.rows, m.cols, len(y), len(x)); err != nil {
		return err
	}
	blas.Fill(y, 0)
	stride := m.Stride()
	for d, off := range m.Offsets {
		lo, hi := diagRowRange(off, m.rows, m.cols)
		lane := m.Data[d*stride:]
		for i := lo; i < hi; i++ {
			y[i] += lane[i] * x[i+off]
		}
	}
	return nil
}

// diagRowRange returns the half-open row range [lo, hi) for which the
// diagonal with the given offset stays inside a rows×cols matrix.
func diagRowRange(off, rows, cols int) (lo, hi int) {
	lo, hi = 0, rows
	if off < 0 {
		lo = -off
	}
	if cols-off < hi {
		hi = cols - off
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
