package matrix

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// COO stores a matrix as parallel coordinate triples sorted
// lexicographically by (row, col) with no duplicates. It is the canonical
// interchange format: every conversion can produce it and every conversion
// can start from it.
type COO[T blas.Scalar] struct {
	RowIndices []int
	ColIndices []int
	Values     []T

	rows, cols int
	tag
}

var _ Matrix[float64] = (*COO[float64])(nil)

// NewCOO creates a host-space COO with room for entries triples, all zero.
// Panics with ErrShape on negative dimensions.
func NewCOO[T blas.Scalar](rows, cols, entries int) *COO[T] {
	m, err := NewCOOOn[T](mem.Host(), rows, cols, entries)
	if err != nil {
		panic(err) // host space is unbounded
	}
	return m
}

// NewCOOOn creates a COO in the given space. Fails with
// mem.ErrSpaceExhausted when the space cannot fit the buffers.
func NewCOOOn[T blas.Scalar](s *mem.Space, rows, cols, entries int) (*COO[T], error) {
	checkDims(rows, cols, entries)
	m := &COO[T]{rows: rows, cols: cols, tag: tag{space: s}}

	var err error
	if m.RowIndices, err = allocBuf[int](m.tag, entries); err != nil {
		return nil, err
	}
	if m.ColIndices, err = allocBuf[int](m.tag, entries); err != nil {
		freeBuf(m.tag, m.RowIndices)
		return nil, err
	}
	if m.Values, err = allocBuf[T](m.tag, entries); err != nil {
		freeBuf(m.tag, m.RowIndices)
		freeBuf(m.tag, m.ColIndices)
		return nil, err
	}
	return m, nil
}

// BuildOptions controls construction from loose entries.
type BuildOptions struct {
	// SumDuplicates merges entries at the same coordinate by addition
	// instead of rejecting them.
	SumDuplicates bool
}

// DefaultBuildOptions rejects duplicate coordinates.
var DefaultBuildOptions = BuildOptions{
	SumDuplicates: false,
}

// WithSumDuplicates merges duplicate coordinates by addition, the behavior
// wanted when assembling from element contributions or Matrix Market files.
func WithSumDuplicates() func(*BuildOptions) {
	return func(o *BuildOptions) { o.SumDuplicates = true }
}

// COOFromEntries builds a canonical COO from entries in any order. Input
// coordinates are validated against the shape; duplicates are an error
// unless WithSumDuplicates is given.
func COOFromEntries[T blas.Scalar](rows, cols int, entries []Entry[T], optFns ...func(*BuildOptions)) (*COO[T], error) {
	o := DefaultBuildOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	m := NewCOO[T](rows, cols, len(entries))
	for k, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			m.Free()
			return nil, fmt.Errorf("%w: entry %d at (%d, %d) outside %d×%d",
				ErrIndexOutOfRange, k, e.Row, e.Col, rows, cols)
		}
		m.RowIndices[k] = e.Row
		m.ColIndices[k] = e.Col
		m.Values[k] = e.Value
	}
	m.SortByRowCol()

	// Collapse or reject duplicates after sorting places them adjacently.
	w := 0
	for k := 0; k < len(m.Values); k++ {
		if w > 0 && m.RowIndices[k] == m.RowIndices[w-1] && m.ColIndices[k] == m.ColIndices[w-1] {
			if !o.SumDuplicates {
				r, c := m.RowIndices[k], m.ColIndices[k]
				m.Free()
				return nil, fmt.Errorf("%w: duplicate coordinate (%d, %d)", ErrInvalidPattern, r, c)
			}
			m.Values[w-1] += m.Values[k]
			continue
		}
		m.RowIndices[w] = m.RowIndices[k]
		m.ColIndices[w] = m.ColIndices[k]
		m.Values[w] = m.Values[k]
		w++
	}
	m.RowIndices = m.RowIndices[:w]
	m.ColIndices = m.ColIndices[:w]
	m.Values = m.Values[:w]
	return m, nil
}

// Dims returns the logical shape.
func (m *COO[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// NumEntries returns the stored triple count.
func (m *COO[T]) NumEntries() int { return len(m.Values) }

// Format returns FormatCOO.
func (m *COO[T]) Format() Format { return FormatCOO }

// Entries iterates the triples in stored (canonical) order.
func (m *COO[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for k := range m.Values {
			if !yield(Entry[T]{Row: m.RowIndices[k], Col: m.ColIndices[k], Value: m.Values[k]}) {
				return
			}
		}
	}
}

// At returns the value at (i, j), zero when no entry is stored there.
// Panics with ErrIndexOutOfRange outside the matrix bounds.
func (m *COO[T]) At(i, j int) T {
	checkAt(i, j, m.rows, m.cols)
	lo := sort.SearchInts(m.RowIndices, i)
	hi := sort.SearchInts(m.RowIndices, i+1)
	cols := m.ColIndices[lo:hi]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return m.Values[lo+k]
	}
	var zero T
	return zero
}

// SortByRowCol restores canonical order in place, keeping the three arrays
// in step.
func (m *COO[T]) SortByRowCol() {
	sort.Sort(cooSorter[T]{m})
}

// Validate checks the structural invariants: equal array lengths, indices
// in range, strict lexicographic order (which also rules out duplicates).
func (m *COO[T]) Validate() error {
	if len(m.RowIndices) != len(m.Values) || len(m.ColIndices) != len(m.Values) {
		return fmt.Errorf("%w: parallel arrays disagree (%d rows, %d cols, %d values)",
			ErrInvalidPattern, len(m.RowIndices), len(m.ColIndices), len(m.Values))
	}
	for k := range m.Values {
		r, c := m.RowIndices[k], m.ColIndices[k]
		if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
			return fmt.Errorf("%w: entry %d at (%d, %d) outside %d×%d",
				ErrIndexOutOfRange, k, r, c, m.rows, m.cols)
		}
		if k > 0 {
			pr, pc := m.RowIndices[k-1], m.ColIndices[k-1]
			if r < pr || (r == pr && c <= pc) {
				return fmt.Errorf("%w: entries %d and %d out of order: (%d, %d) then (%d, %d)",
					ErrInvalidPattern, k-1, k, pr, pc, r, c)
			}
		}
	}
	return nil
}

// Resize changes the shape and entry capacity, preserving the common
// prefix of each array; growth zero-fills. Entries left outside the new
// shape surface in Validate, not here.
func (m *COO[T]) Resize(rows, cols, entries int) error {
	checkDims(rows, cols, entries)
	ri, err := resizeBuf(m.tag, m.RowIndices, entries)
	if err != nil {
		return err
	}
	ci, err := resizeBuf(m.tag, m.ColIndices, entries)
	if err != nil {
		return err
	}
	vs, err := resizeBuf(m.tag, m.Values, entries)
	if err != nil {
		return err
	}
	m.RowIndices, m.ColIndices, m.Values = ri, ci, vs
	m.rows, m.cols = rows, cols
	return nil
}

// Swap exchanges contents with o in O(1). Both must live in the same space.
func (m *COO[T]) Swap(o *COO[T]) error {
	if m.Space() != o.Space() {
		return mem.ErrSpaceMismatch
	}
	*m, *o = *o, *m
	return nil
}

// Clone returns a deep copy in the same space.
func (m *COO[T]) Clone() (*COO[T], error) {
	c := &COO[T]{rows: m.rows, cols: m.cols, tag: m.tag}
	var err error
	if c.RowIndices, err = copyBuf(c.tag, m.RowIndices); err != nil {
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

// Rebind copies the matrix into space s via explicit bulk transfers and
// returns the copy; the receiver is untouched.
func (m *COO[T]) Rebind(ctx context.Context, s *mem.Space) (*COO[T], error) {
	nm, err := NewCOOOn[T](s, m.rows, m.cols, len(m.Values))
	if err != nil {
		return nil, err
	}
	src := m.Space()
	if err := mem.Copy(ctx, nm.RowIndices, s, m.RowIndices, src); err != nil {
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
func (m *COO[T]) Free() {
	freeBuf(m.tag, m.RowIndices)
	freeBuf(m.tag, m.ColIndices)
	freeBuf(m.tag, m.Values)
	m.RowIndices, m.ColIndices, m.Values = nil, nil, nil
}

// MulVec computes y = A·x serially. It is the reference product the tuned
// kernels are checked against. x and y must not alias.
func (m *COO[T]) MulVec(y, x []T) error {
	if err := checkMulVec(m.rows, m.cols, len(y), len(x)); err != nil {
		return err
	}
	blas.Fill(y, 0)
	for k := range m.Values {
		y[m.RowIndices[k]] += m.Values[k] * x[m.ColIndices[k]]
	}
	return nil
}

// cooSorter orders the three parallel arrays by (row, col).
type cooSorter[T blas.Scalar] struct{ m *COO[T] }

func (s cooSorter[T]) Len() int { return len(s.m.Values) }

func (s cooSorter[T]) Less(i, j int) bool {
	ri, rj := s.m.RowIndices[i], s.m.RowIndices[j]
	if ri != rj {
		return ri < rj
	}
	return s.m.ColIndices[i] < s.m.ColIndices[j]
}

func (s cooSorter[T]) Swap(i, j int) {
	s.m.RowIndices[i], s.m.RowIndices[j] = s.m.RowIndices[j], s.m.RowIndices[i]
	s.m.ColIndices[i], s.m.ColIndices[j] = s.m.ColIndices[j], s.m.ColIndices[i]
	s.m.Values[i], s.m.Values[j] = s.m.Values[j], s.m.Values[i]
}

func checkDims(rows, cols, entries int) {
	if rows < 0 || cols < 0 || entries < 0 {
		panic(ErrShape)
	}
}

func checkAt(i, j, rows, cols int) {
	if i < 0 || i >= rows || j < 0 || j >= cols {
		panic(ErrIndexOutOfRange)
	}
}

func checkMulVec(rows, cols, leny, lenx int) error {
	if lenx != cols || leny != rows {
		return fmt.Errorf("%w: product wants x of %d and y of %d, got %d and %d",
			ErrShape, cols, rows, lenx, leny)
	}
	return nil
}
