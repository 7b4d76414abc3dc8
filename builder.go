// Package sparsego provides sparse linear algebra for Go.
//
// This file implements the fluent builder API for configuring solvers.
// Builders are immutable - each method returns a new builder with the
// updated configuration.
package sparsego

import (
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/krylov"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/operator"
	"github.com/hupe1980/sparsego/spmv"
)

// BiCGSTAB creates a new solver builder for the biconjugate gradient
// stabilized method.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents
// accidental state sharing.
//
// Example:
//
//	s, err := sparsego.BiCGSTAB[float64]().
//	    Tolerance(1e-8).
//	    MaxIterations(200).
//	    Formats(matrix.FormatDIA, matrix.FormatELL, matrix.FormatCSR).
//	    Workers(8).
//	    Build()
func BiCGSTAB[T blas.Scalar]() SolverBuilder[T] {
	return SolverBuilder[T]{
		tolerance: krylov.DefaultMonitorOptions.RelativeTolerance,
		maxIter:   krylov.DefaultMonitorOptions.IterationLimit,
		formats:   []matrix.Format{matrix.FormatCSR},
		hint:      spmv.HintAuto,
	}
}

// SolverBuilder is an immutable fluent builder for creating Solver
// instances. Each method returns a new builder with the updated
// configuration.
type SolverBuilder[T blas.Scalar] struct {
	tolerance float64
	absTol    float64
	maxIter   int
	formats   []matrix.Format
	workers   int
	hint      spmv.Hint
	precond   operator.Operator[T]
	monitor   krylov.Monitor[T]
	logger    *Logger
	metrics   MetricsCollector
	convert   []func(*matrix.ConvertOptions)
	verbose   bool
}

// Tolerance sets the relative residual tolerance ‖r‖ ≤ tol·‖b‖.
// Default: the library default monitor tolerance.
func (b SolverBuilder[T]) Tolerance(tol float64) SolverBuilder[T] {
	b.tolerance = tol
	return b
}

// AbsoluteTolerance adds an absolute term to the convergence bound.
// Default: 0.
func (b SolverBuilder[T]) AbsoluteTolerance(tol float64) SolverBuilder[T] {
	b.absTol = tol
	return b
}

// MaxIterations sets the iteration limit. Hitting it is a reported
// outcome, not an error.
func (b SolverBuilder[T]) MaxIterations(n int) SolverBuilder[T] {
	b.maxIter = n
	return b
}

// Formats sets the format fallback chain: Solve converts the system
// matrix to the first format that accepts its pattern. Formats that may
// refuse (DIA, ELL, HYB) are skipped on refusal, so the final element
// must be total (COO or CSR). Default: CSR only.
func (b SolverBuilder[T]) Formats(formats ...matrix.Format) SolverBuilder[T] {
	b.formats = formats
	return b
}

// Workers sets the kernel worker pool size. 0 keeps the products
// serial. Default: 0.
func (b SolverBuilder[T]) Workers(n int) SolverBuilder[T] {
	b.workers = n
	return b
}

// Hint sets the access-pattern hint handed to the product kernels.
func (b SolverBuilder[T]) Hint(h spmv.Hint) SolverBuilder[T] {
	b.hint = h
	return b
}

// Preconditioner sets the preconditioner operator. Default: identity.
func (b SolverBuilder[T]) Preconditioner(m operator.Operator[T]) SolverBuilder[T] {
	b.precond = m
	return b
}

// Monitor replaces the stopping rule entirely; Tolerance,
// AbsoluteTolerance, and MaxIterations are ignored when set.
func (b SolverBuilder[T]) Monitor(m krylov.Monitor[T]) SolverBuilder[T] {
	b.monitor = m
	return b
}

// ConvertOptions adjusts the padding thresholds of the fallback
// conversions.
func (b SolverBuilder[T]) ConvertOptions(optFns ...func(*matrix.ConvertOptions)) SolverBuilder[T] {
	b.convert = optFns
	return b
}

// Logger sets the structured logger for operation tracing.
func (b SolverBuilder[T]) Logger(l *Logger) SolverBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b SolverBuilder[T]) Metrics(mc MetricsCollector) SolverBuilder[T] {
	b.metrics = mc
	return b
}

// Verbose logs the residual norm every iteration through the Logger.
func (b SolverBuilder[T]) Verbose() SolverBuilder[T] {
	b.verbose = true
	return b
}

// Build validates the configuration and creates the Solver.
func (b SolverBuilder[T]) Build() (*Solver[T], error) {
	if b.monitor == nil {
		if b.tolerance <= 0 {
			return nil, ErrInvalidTolerance
		}
		if b.maxIter <= 0 {
			return nil, ErrInvalidIterationLimit
		}
	}
	if len(b.formats) == 0 {
		return nil, ErrEmptyFormatChain
	}
	last := b.formats[len(b.formats)-1]
	if last != matrix.FormatCOO && last != matrix.FormatCSR {
		return nil, ErrOpenFormatChain
	}

	s := &Solver[T]{
		tolerance: b.tolerance,
		absTol:    b.absTol,
		maxIter:   b.maxIter,
		formats:   append([]matrix.Format(nil), b.formats...),
		hint:      b.hint,
		precond:   b.precond,
		monitor:   b.monitor,
		convert:   b.convert,
		verbose:   b.verbose,
		logger:    b.logger,
		metrics:   b.metrics,
	}
	if s.logger == nil {
		s.logger = NoopLogger()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if b.workers > 0 {
		s.pool = compute.NewPool(b.workers)
	}
	return s, nil
}

// MustBuild creates the Solver, panicking on error.
func (b SolverBuilder[T]) MustBuild() *Solver[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
