// Package gallery generates the stock test matrices: discretized
// operators with known structure and seeded random patterns. Solvers,
// kernels and benchmarks use them as ground truth inputs.
package gallery

import (
	"math/rand"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

// Poisson5pt builds the five-point Laplacian stencil on an nx×ny grid:
// 4 on the diagonal, -1 for each grid neighbour. The result is symmetric
// positive definite, the classic well-behaved solver input.
func Poisson5pt[T blas.Scalar](nx, ny int) *matrix.CSR[T] {
	if nx < 1 || ny < 1 {
		panic(matrix.ErrShape)
	}
	n := nx * ny
	nnz := 5*n - 2*nx - 2*ny
	m := matrix.NewCSR[T](n, n, nnz)

	four := blas.FromFloat[T](4)
	negOne := blas.FromFloat[T](-1)

	k := 0
	put := func(col int, v T) {
		m.ColIndices[k], m.Values[k] = col, v
		k++
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			r := j*nx + i
			if j > 0 {
				put(r-nx, negOne)
			}
			if i > 0 {
				put(r-1, negOne)
			}
			put(r, four)
			if i < nx-1 {
				put(r+1, negOne)
			}
			if j < ny-1 {
				put(r+nx, negOne)
			}
			m.RowOffsets[r+1] = k
		}
	}
	return m
}

// Tridiagonal builds an n×n matrix with constant bands below, on and
// above the diagonal.
func Tridiagonal[T blas.Scalar](n int, lower, diag, upper T) *matrix.CSR[T] {
	if n < 1 {
		panic(matrix.ErrShape)
	}
	m := matrix.NewCSR[T](n, n, 3*n-2)

	k := 0
	put := func(col int, v T) {
		m.ColIndices[k], m.Values[k] = col, v
		k++
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			put(i-1, lower)
		}
		put(i, diag)
		if i < n-1 {
			put(i+1, upper)
		}
		m.RowOffsets[i+1] = k
	}
	return m
}

// Identity builds the n×n identity as a single diagonal lane.
func Identity[T blas.Scalar](n int) *matrix.DIA[T] {
	if n < 1 {
		panic(matrix.ErrShape)
	}
	m := matrix.NewDIA[T](n, n, n, 1)
	one := blas.FromFloat[T](1)
	for i := 0; i < n; i++ {
		m.Data[i] = one
	}
	return m
}

// Options configure Random.
type Options struct {
	// Seed fixes the pattern and the values.
	Seed int64
	// Integer draws values from the small integers instead of [-1, 1),
	// so sums are exact in any order.
	Integer bool
}

// DefaultOptions seed the generator with 1 and draw real values.
var DefaultOptions = Options{
	Seed: 1,
}

// WithSeed fixes the random source.
func WithSeed(seed int64) func(*Options) {
	return func(o *Options) {
		o.Seed = seed
	}
}

// WithIntegerValues draws values from [-10, 10] integers.
func WithIntegerValues() func(*Options) {
	return func(o *Options) {
		o.Integer = true
	}
}

// Random builds a rows×cols matrix where each cell is occupied with the
// given probability. The same seed reproduces the same matrix.
func Random[T blas.Scalar](rows, cols int, density float64, optFns ...func(*Options)) *matrix.COO[T] {
	o := DefaultOptions
	for _, fn := range optFns {
		fn(&o)
	}
	rng := rand.New(rand.NewSource(o.Seed))

	entries := make([]matrix.Entry[T], 0, int(density*float64(rows*cols))+1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() >= density {
				continue
			}
			var v T
			if o.Integer {
				v = blas.FromFloat[T](float64(rng.Intn(21) - 10))
			} else {
				v = blas.FromFloat[T](rng.Float64()*2 - 1)
			}
			entries = append(entries, matrix.Entry[T]{Row: i, Col: j, Value: v})
		}
	}
	m, err := matrix.COOFromEntries(rows, cols, entries)
	if err != nil {
		panic(err) // cells are generated in range and in order
	}
	return m
}
