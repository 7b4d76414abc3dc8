package spmv

import (
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// rowCarry holds the partial sum a chunk computed for a row it shares
// with a neighbouring chunk. row is -1 for unused slots.
type rowCarry[T blas.Scalar] struct {
	row int
	sum T
}

// COO computes y += A·x as a segmented reduction over the entry stream.
// The caller zeroes y (or seeds it with a prior result). Entries must be
// in canonical row-then-column order.
//
// The stream is cut into equal chunks. Within a chunk, runs of equal row
// index collapse to one sum; runs belonging to the chunk's first or last
// row may continue in a neighbour, so they are carried out and merged
// serially in chunk order. Interior runs accumulate into y directly.
func COO[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.COO[T], x, y []T) error {
	rows, cols := a.Dims()
	if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
		return err
	}
	ri, ci, vals := a.RowIndices, a.ColIndices, a.Values
	nnz := len(vals)
	if nnz == 0 {
		return nil
	}
	grain := h.nnzGrain()
	chunks := p.NumChunks(nnz, grain)
	if chunks <= 1 {
		for k := range vals {
			y[ri[k]] += vals[k] * x[ci[k]]
		}
		return nil
	}

	carries := make([]rowCarry[T], 2*chunks)
	p.ForEachChunk(nnz, grain, func(chunk, start, end int) {
		cs := carries[2*chunk : 2*chunk+2]
		cs[0].row, cs[1].row = -1, -1

		first, last := ri[start], ri[end-1]
		k := start
		for k < end {
			r := ri[k]
			var sum T
			for k < end && ri[k] == r {
				sum += vals[k] * x[ci[k]]
				k++
			}
			switch r {
			case first:
				cs[0] = rowCarry[T]{row: r, sum: sum}
			case last:
				cs[1] = rowCarry[T]{row: r, sum: sum}
			default:
				// Interior rows live entirely inside this chunk.
				y[r] += sum
			}
		}
	})

	// Chunk order is entry order, so boundary rows accumulate their
	// partials in the same order a serial walk would.
	for _, c := range carries {
		if c.row >= 0 {
			y[c.row] += c.sum
		}
	}
	return nil
}
