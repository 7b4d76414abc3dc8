package spmv

import (
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// HYB computes y = A·x in two phases: the ELL prefix overwrites y, then
// the overflow entries accumulate on top. Callers never need to zero y.
func HYB[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.HYB[T], x, y []T) error {
	if err := ELL(p, h, a.ELL, x, y); err != nil {
		return err
	}
	return COO(p, h, a.COO, x, y)
}
