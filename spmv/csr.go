package spmv

import (
	"sort"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// CSRScalar computes y = A·x with one worker per block of rows, each row
// summed front to back. It overwrites y. The partitioning is by row count,
// so heavily skewed rows can leave workers idle; CSRVector handles that
// case.
func CSRScalar[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.CSR[T], x, y []T) error {
	rows, cols := a.Dims()
	if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
		return err
	}
	offs, idx, vals := a.RowOffsets, a.ColIndices, a.Values
	p.ParallelFor(rows, h.rowGrain(), func(start, end int) {
		for i := start; i < end; i++ {
			var sum T
			for k := offs[i]; k < offs[i+1]; k++ {
				sum += vals[k] * x[idx[k]]
			}
			y[i] = sum
		}
	})
	return nil
}

// CSRVector computes y = A·x with the nonzero stream cut into equal
// chunks, so a few long rows cannot starve the pool. Rows split across a
// chunk boundary are reduced to partial sums and merged serially in chunk
// order; rows fully inside a chunk are written directly. It overwrites y.
//
// For a fixed pool and hint the chunk boundaries, and therefore the
// summation order, are fixed.
func CSRVector[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.CSR[T], x, y []T) error {
	rows, cols := a.Dims()
	if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
		return err
	}
	offs, idx, vals := a.RowOffsets, a.ColIndices, a.Values
	nnz := len(vals)
	grain := h.nnzGrain()
	chunks := p.NumChunks(nnz, grain)
	if chunks <= 1 {
		return CSRScalar(nil, h, a, x, y)
	}

	carries := make([]rowCarry[T], 2*chunks)
	p.ForEachChunk(nnz, grain, func(chunk, start, end int) {
		cs := carries[2*chunk : 2*chunk+2]
		cs[0].row, cs[1].row = -1, -1
		nc := 0

		first := rowOf(offs, start)
		last := rowOf(offs, end-1)
		for r := first; r <= last; r++ {
			lo, hi := max(offs[r], start), min(offs[r+1], end)
			var sum T
			for k := lo; k < hi; k++ {
				sum += vals[k] * x[idx[k]]
			}
			if offs[r] >= start && offs[r+1] <= end {
				// Sorted entries keep a row's range contiguous, so a row
				// fully inside one chunk is invisible to every other chunk.
				y[r] = sum
			} else {
				cs[nc] = rowCarry[T]{row: r, sum: sum}
				nc++
			}
		}

		// Rows without entries are owned by the chunk that precedes them
		// in the stream. Their product is zero and y is overwritten.
		if chunk == 0 {
			for r := 0; r < first; r++ {
				y[r] = 0
			}
		}
		gap := rows
		if end < nnz {
			gap = rowOf(offs, end)
		}
		for r := last + 1; r < gap; r++ {
			y[r] = 0
		}
	})

	// Split rows appear as carries in consecutive chunks. Walking the
	// carries in chunk order visits them adjacently: the first sighting
	// seeds y, the rest accumulate.
	prev := -1
	for _, c := range carries {
		if c.row < 0 {
			continue
		}
		if c.row == prev {
			y[c.row] += c.sum
		} else {
			y[c.row] = c.sum
			prev = c.row
		}
	}
	return nil
}

// rowOf returns the row whose entry range contains stream position k.
func rowOf(offs []int, k int) int {
	return sort.Search(len(offs)-1, func(r int) bool { return offs[r+1] > k })
}
