package spmv

import (
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// DIA computes y += A·x by gathering along diagonal lanes, rows in
// parallel. The caller zeroes y. Lane edges are masked to the rows where
// the diagonal stays inside the shape, so padding never contributes.
//
// Each row is owned by exactly one chunk and sums its diagonals in lane
// order, which makes the result independent of the partitioning.
func DIA[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.DIA[T], x, y []T) error {
	rows, cols := a.Dims()
	if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
		return err
	}
	offsets, data := a.Offsets, a.Data
	stride := a.Stride()
	p.ParallelFor(rows, h.rowGrain(), func(start, end int) {
		for d, off := range offsets {
			lane := data[d*stride:]
			lo := max(0, -off, start)
			hi := min(rows, cols-off, end)
			for i := lo; i < hi; i++ {
				y[i] += lane[i] * x[i+off]
			}
		}
	})
	return nil
}
