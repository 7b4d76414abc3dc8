package spmv

import (
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// ELL computes y = A·x over the fixed-width slot table, rows in parallel.
// It overwrites y. Slots are packed to the front of each row, so the scan
// stops at the first pad slot.
func ELL[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.ELL[T], x, y []T) error {
	rows, cols := a.Dims()
	if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
		return err
	}
	idx, vals := a.ColIndices, a.Values
	width, stride := a.Width, a.Stride()
	p.ParallelFor(rows, h.rowGrain(), func(start, end int) {
		for i := start; i < end; i++ {
			var sum T
			for k := 0; k < width; k++ {
				c := idx[k*stride+i]
				if c == matrix.PadColumn {
					break
				}
				sum += vals[k*stride+i] * x[c]
			}
			y[i] = sum
		}
	})
	return nil
}
