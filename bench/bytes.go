package bench

import (
	"strconv"
	"unsafe"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

const indexBytes = strconv.IntSize / 8

// bytesPerSpMV models the memory traffic of one product: pattern and
// value arrays read once, one x gather per stored slot, y written per
// row (read and written where the kernel accumulates). A throughput
// proxy, not a cache simulation.
func bytesPerSpMV[T blas.Scalar](m matrix.Matrix[T]) int64 {
	var z T
	vb := int64(unsafe.Sizeof(z))
	ib := int64(indexBytes)

	rows, _ := m.Dims()
	nnz := int64(m.NumEntries())

	switch a := m.(type) {
	case *matrix.COO[T]:
		// row+col+value per entry, x gather, y read+write.
		return nnz*(2*ib+2*vb) + int64(rows)*2*vb
	case *matrix.CSR[T]:
		return int64(rows+1)*ib + nnz*(ib+2*vb) + int64(rows)*vb
	case *matrix.DIA[T]:
		lanes := int64(a.NumDiagonals()) * int64(a.Stride())
		return int64(a.NumDiagonals())*ib + lanes*2*vb + int64(rows)*2*vb
	case *matrix.ELL[T]:
		slots := int64(a.Width) * int64(rows)
		return slots*(ib+2*vb) + int64(rows)*vb
	case *matrix.HYB[T]:
		return bytesPerSpMV[T](a.ELL) + bytesPerSpMV[T](a.COO)
	case *matrix.Dense[T]:
		dr, dc := a.Dims()
		return int64(dr)*int64(dc)*2*vb + int64(dr)*vb
	default:
		return nnz*(2*ib+2*vb) + int64(rows)*2*vb
	}
}
