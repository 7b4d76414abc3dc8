// Package operator lifts matrices and plain functions into the linear
// operator shape the solvers consume. Solvers only ever see Apply, so a
// preconditioner, a matrix-free stencil and a stored matrix all plug in
// the same way.
package operator

import (
	"fmt"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

// Operator applies a fixed linear map to a vector.
type Operator[T blas.Scalar] interface {
	// Dims returns the shape of the map.
	Dims() (rows, cols int)
	// Apply computes y = A·x, overwriting y.
	Apply(y, x []T) error
}

// Options configure the matrix adapter.
type Options struct {
	// Pool runs products in parallel. Nil means serial.
	Pool *compute.Pool
	// Hint is forwarded to the product kernels.
	Hint spmv.Hint
}

// DefaultOptions are serial products with no hint.
var DefaultOptions = Options{}

// WithPool runs products through the given worker pool.
func WithPool(p *compute.Pool) func(*Options) {
	return func(o *Options) {
		o.Pool = p
	}
}

// WithHint forwards the access hint to the product kernels.
func WithHint(h spmv.Hint) func(*Options) {
	return func(o *Options) {
		o.Hint = h
	}
}

var (
	_ Operator[float64] = (*matrixOperator[float64])(nil)
	_ Operator[float64] = identity[float64]{}
	_ Operator[float64] = Func[float64]{}
)

// Matrix adapts a stored matrix to the Operator interface. Products run
// through the tuned kernels, which own the per-format write discipline,
// so Apply always overwrites y.
func Matrix[T blas.Scalar](m matrix.Matrix[T], optFns ...func(*Options)) Operator[T] {
	o := DefaultOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return &matrixOperator[T]{m: m, opts: o}
}

type matrixOperator[T blas.Scalar] struct {
	m    matrix.Matrix[T]
	opts Options
}

func (a *matrixOperator[T]) Dims() (rows, cols int) { return a.m.Dims() }

func (a *matrixOperator[T]) Apply(y, x []T) error {
	return spmv.Auto(a.opts.Pool, a.opts.Hint, a.m, x, y)
}

// Identity returns the n×n identity map. Solvers fall back to it when no
// preconditioner is configured.
func Identity[T blas.Scalar](n int) Operator[T] {
	return identity[T]{n: n}
}

type identity[T blas.Scalar] struct{ n int }

func (a identity[T]) Dims() (rows, cols int) { return a.n, a.n }

func (a identity[T]) Apply(y, x []T) error {
	if len(y) != a.n || len(x) != a.n {
		return fmt.Errorf("%w: identity of %d applied to y of %d and x of %d",
			matrix.ErrShape, a.n, len(y), len(x))
	}
	blas.Copy(y, x)
	return nil
}

// Func wraps a plain function as an operator. F must overwrite y.
type Func[T blas.Scalar] struct {
	Rows, Cols int
	F          func(y, x []T) error
}

// Dims returns the declared shape.
func (a Func[T]) Dims() (rows, cols int) { return a.Rows, a.Cols }

// Apply calls F.
func (a Func[T]) Apply(y, x []T) error { return a.F(y, x) }
