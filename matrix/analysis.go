package matrix

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/sparsego/blas"
)

// Analysis summarizes the sparsity pattern of a matrix. It looks only at
// structure, never values, and feeds both the conversion suitability rules
// and the pattern reports.
type Analysis struct {
	Rows, Cols int
	Entries    int

	MaxRowLen  int
	MinRowLen  int
	MeanRowLen float64

	// OccupiedRows counts rows holding at least one entry.
	OccupiedRows int

	// OccupiedDiagonals counts distinct col−row offsets in use. A banded
	// pattern keeps this small while a scattered one approaches
	// rows+cols−1.
	OccupiedDiagonals int

	// RowLengthHistogram[k] counts the rows holding exactly k entries.
	RowLengthHistogram []int

	diagonals *roaring64.Bitmap
}

// Analyze scans the entry stream of m once and returns its pattern
// profile. Diagonal occupancy is tracked in a compressed bitmap keyed by
// col−row shifted to be non-negative.
func Analyze[T blas.Scalar](m Matrix[T]) Analysis {
	rows, cols := m.Dims()
	a := Analysis{
		Rows:      rows,
		Cols:      cols,
		diagonals: roaring64.NewBitmap(),
	}

	rowLen := make([]int, rows)
	for e := range m.Entries() {
		a.Entries++
		rowLen[e.Row]++
		a.diagonals.Add(uint64(e.Col - e.Row + (rows - 1)))
	}
	a.OccupiedDiagonals = int(a.diagonals.GetCardinality())

	if rows == 0 {
		a.RowLengthHistogram = []int{}
		return a
	}
	a.MinRowLen = rowLen[0]
	for _, n := range rowLen {
		if n > a.MaxRowLen {
			a.MaxRowLen = n
		}
		if n < a.MinRowLen {
			a.MinRowLen = n
		}
		if n > 0 {
			a.OccupiedRows++
		}
	}
	a.MeanRowLen = float64(a.Entries) / float64(rows)

	a.RowLengthHistogram = make([]int, a.MaxRowLen+1)
	for _, n := range rowLen {
		a.RowLengthHistogram[n]++
	}
	return a
}

// Diagonals returns the occupied col−row offsets in ascending order.
func (a Analysis) Diagonals() []int {
	if a.diagonals == nil {
		return nil
	}
	keys := a.diagonals.ToArray()
	offs := make([]int, len(keys))
	for i, k := range keys {
		offs[i] = int(k) - (a.Rows - 1)
	}
	return offs
}

// RowsLongerThan counts the rows holding more than w entries.
func (a Analysis) RowsLongerThan(w int) int {
	n := 0
	for k := w + 1; k < len(a.RowLengthHistogram); k++ {
		n += a.RowLengthHistogram[k]
	}
	return n
}

// EntriesBeyond counts the entries past the first w of their row, the
// overflow a width-w slotted layout spills.
func (a Analysis) EntriesBeyond(w int) int {
	n := 0
	for k := w + 1; k < len(a.RowLengthHistogram); k++ {
		n += a.RowLengthHistogram[k] * (k - w)
	}
	return n
}
