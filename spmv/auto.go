package spmv

import (
	"fmt"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
)

// csrVectorRowLen is the mean row length above which Auto prefers the
// nonzero-balanced CSR kernel over the row-parallel one.
const csrVectorRowLen = 32

// Auto computes y = A·x with the kernel matching the concrete format.
// It owns the write discipline: y always comes back as the full product,
// whatever it held before. Matrices outside the built-in formats fall
// back to a serial walk of their entry stream.
func Auto[T blas.Scalar](p *compute.Pool, h Hint, m matrix.Matrix[T], x, y []T) error {
	switch a := m.(type) {
	case *matrix.CSR[T]:
		rows, _ := a.Dims()
		if rows > 0 && len(a.Values)/rows >= csrVectorRowLen {
			return CSRVector(p, h, a, x, y)
		}
		return CSRScalar(p, h, a, x, y)
	case *matrix.COO[T]:
		rows, cols := a.Dims()
		if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
			return err
		}
		blas.Fill(y, 0)
		return COO(p, h, a, x, y)
	case *matrix.DIA[T]:
		rows, cols := a.Dims()
		if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
			return err
		}
		blas.Fill(y, 0)
		return DIA(p, h, a, x, y)
	case *matrix.ELL[T]:
		return ELL(p, h, a, x, y)
	case *matrix.HYB[T]:
		return HYB(p, h, a, x, y)
	case *matrix.Dense[T]:
		return denseMulVec(p, h, a, x, y)
	default:
		rows, cols := m.Dims()
		if err := checkOperands(rows, cols, len(y), len(x)); err != nil {
			return err
		}
		blas.Fill(y, 0)
		for e := range m.Entries() {
			y[e.Row] += e.Value * x[e.Col]
		}
		return nil
	}
}

func denseMulVec[T blas.Scalar](p *compute.Pool, h Hint, a *matrix.Dense[T], x, y []T) error {
	if err := checkOperands(a.Rows, a.Cols, len(y), len(x)); err != nil {
		return err
	}
	data, cols := a.Data, a.Cols
	p.ParallelFor(a.Rows, h.rowGrain(), func(start, end int) {
		for i := start; i < end; i++ {
			row := data[i*cols : (i+1)*cols]
			var sum T
			for j, v := range row {
				sum += v * x[j]
			}
			y[i] = sum
		}
	})
	return nil
}

func checkOperands(rows, cols, leny, lenx int) error {
	if lenx != cols || leny != rows {
		return fmt.Errorf("%w: product wants x of %d and y of %d, got %d and %d",
			matrix.ErrShape, cols, rows, lenx, leny)
	}
	return nil
}
