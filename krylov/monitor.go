package krylov

import (
	"log/slog"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/operator"
)

// Solver stopping defaults.
const (
	DefaultRelativeTolerance = 1e-5
	DefaultIterationLimit    = 500
)

// Monitor decides when a solver run is over. Initialize is called once
// before the first iteration; Converged is consulted with the current
// residual norm once per iteration.
type Monitor[T blas.Scalar] interface {
	Initialize(a operator.Operator[T], x, b []T)
	Converged(a operator.Operator[T], x, b []T, rnorm float64) bool
	ReachedIterationLimit(iteration int) bool
}

// MonitorOptions configure DefaultMonitor.
type MonitorOptions struct {
	// RelativeTolerance scales the norm of b into the convergence bound.
	RelativeTolerance float64
	// AbsoluteTolerance is added to the bound. It keeps zero right-hand
	// sides solvable.
	AbsoluteTolerance float64
	// IterationLimit caps the number of iterations.
	IterationLimit int
}

// DefaultMonitorOptions stop at a 1e-5 relative residual or 500
// iterations, whichever comes first.
var DefaultMonitorOptions = MonitorOptions{
	RelativeTolerance: DefaultRelativeTolerance,
	IterationLimit:    DefaultIterationLimit,
}

// WithRelativeTolerance sets the relative residual target.
func WithRelativeTolerance(tol float64) func(*MonitorOptions) {
	return func(o *MonitorOptions) {
		o.RelativeTolerance = tol
	}
}

// WithAbsoluteTolerance sets the absolute residual target.
func WithAbsoluteTolerance(tol float64) func(*MonitorOptions) {
	return func(o *MonitorOptions) {
		o.AbsoluteTolerance = tol
	}
}

// WithIterationLimit caps the iteration count.
func WithIterationLimit(limit int) func(*MonitorOptions) {
	return func(o *MonitorOptions) {
		o.IterationLimit = limit
	}
}

var _ Monitor[float64] = (*DefaultMonitor[float64])(nil)

// DefaultMonitor converges when ‖r‖ ≤ relTol·‖b‖ + absTol.
type DefaultMonitor[T blas.Scalar] struct {
	opts  MonitorOptions
	bound float64
}

// NewDefaultMonitor creates the standard stopping rule.
func NewDefaultMonitor[T blas.Scalar](optFns ...func(*MonitorOptions)) *DefaultMonitor[T] {
	o := DefaultMonitorOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return &DefaultMonitor[T]{opts: o}
}

// Initialize fixes the convergence bound from the right-hand side.
func (m *DefaultMonitor[T]) Initialize(_ operator.Operator[T], _, b []T) {
	m.bound = m.opts.RelativeTolerance*blas.Nrm2(b) + m.opts.AbsoluteTolerance
}

// Converged compares the residual norm to the bound.
func (m *DefaultMonitor[T]) Converged(_ operator.Operator[T], _, _ []T, rnorm float64) bool {
	return rnorm <= m.bound
}

// ReachedIterationLimit reports whether the cap is hit.
func (m *DefaultMonitor[T]) ReachedIterationLimit(iteration int) bool {
	return iteration >= m.opts.IterationLimit
}

var _ Monitor[float64] = (*VerboseMonitor[float64])(nil)

// VerboseMonitor wraps another monitor and logs the residual each time
// it is consulted.
type VerboseMonitor[T blas.Scalar] struct {
	Monitor[T]
	logger *slog.Logger
	calls  int
}

// Verbose wraps m so every convergence check is logged at debug level.
func Verbose[T blas.Scalar](m Monitor[T], logger *slog.Logger) *VerboseMonitor[T] {
	return &VerboseMonitor[T]{Monitor: m, logger: logger}
}

// Converged logs the residual and delegates.
func (m *VerboseMonitor[T]) Converged(a operator.Operator[T], x, b []T, rnorm float64) bool {
	ok := m.Monitor.Converged(a, x, b, rnorm)
	m.logger.Debug("residual",
		slog.Int("iteration", m.calls),
		slog.Float64("rnorm", rnorm),
		slog.Bool("converged", ok),
	)
	m.calls++
	return ok
}
