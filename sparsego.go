package sparsego

import (
	"context"
	"errors"
	"strconv"
	"time"
	"unsafe"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/corpus"
	"github.com/hupe1980/sparsego/krylov"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/operator"
	"github.com/hupe1980/sparsego/spmv"
	"github.com/hupe1980/sparsego/vector"
)

// Solver solves A·x = b with BiCGSTAB over a configurable format
// fallback chain. Create one with the BiCGSTAB builder; a Solver is
// safe for sequential reuse across systems.
type Solver[T blas.Scalar] struct {
	tolerance float64
	absTol    float64
	maxIter   int
	formats   []matrix.Format
	hint      spmv.Hint
	precond   operator.Operator[T]
	monitor   krylov.Monitor[T]
	convert   []func(*matrix.ConvertOptions)
	verbose   bool

	pool    *compute.Pool
	logger  *Logger
	metrics MetricsCollector
}

// Close releases the worker pool. The Solver must not be used after.
func (s *Solver[T]) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Solve converts a to the first accepting format of the fallback
// chain, then runs BiCGSTAB on the converted system. x holds the
// initial guess on entry and the best available solution on return;
// check Result.Converged rather than assuming success.
func (s *Solver[T]) Solve(ctx context.Context, a matrix.Matrix[T], x, b *vector.Vector[T]) (krylov.Result, error) {
	rows, cols := a.Dims()
	if x.Len() != cols || b.Len() != rows {
		return krylov.Result{}, &ErrShapeMismatch{
			Rows: rows, Cols: cols,
			LenX: x.Len(), LenB: b.Len(),
		}
	}

	m, err := s.pick(ctx, a)
	if err != nil {
		return krylov.Result{}, err
	}

	op := s.instrument(operator.Matrix(m,
		operator.WithPool(s.pool),
		operator.WithHint(s.hint),
	), m.Format().String())

	return s.SolveOperator(ctx, op, x.Data, b.Data)
}

// SolveOperator is the low-level variant: it runs BiCGSTAB directly on
// a prebuilt operator, skipping the format chain.
func (s *Solver[T]) SolveOperator(ctx context.Context, a operator.Operator[T], x, b []T) (krylov.Result, error) {
	opts := []func(*krylov.Options[T]){
		krylov.WithMonitor[T](s.buildMonitor()),
	}
	if s.precond != nil {
		opts = append(opts, krylov.WithPreconditioner[T](s.precond))
	}

	res, err := krylov.BiCGSTAB(ctx, a, x, b, opts...)
	err = translateError(err)

	s.metrics.RecordSolve(res.Iterations, res.Residual, res.Duration)
	s.logger.LogSolve(ctx, res, err)
	return res, err
}

// Load fetches a matrix blob from a corpus store and decodes it to
// canonical COO, recording the transfer.
func (s *Solver[T]) Load(ctx context.Context, store corpus.Store, name string) (*matrix.COO[T], error) {
	start := time.Now()
	m, err := corpus.FetchCOO[T](ctx, store, name)
	if err != nil {
		return nil, err
	}
	d := time.Since(start)

	var z T
	bytes := int64(m.NumEntries()) * int64(2*strconv.IntSize/8+int(unsafe.Sizeof(z)))
	s.metrics.RecordTransfer(bytes, d)
	s.logger.LogTransfer(ctx, name, bytes, d)
	return m, nil
}

// pick walks the fallback chain, skipping formats that refuse the
// pattern. Build guarantees the final format is total, so pick cannot
// run out of candidates for a valid matrix.
func (s *Solver[T]) pick(ctx context.Context, a matrix.Matrix[T]) (matrix.Matrix[T], error) {
	for i, f := range s.formats {
		if a.Format() == f {
			return a, nil
		}

		start := time.Now()
		m, err := matrix.Convert(a, f, s.convert...)
		d := time.Since(start)

		s.metrics.RecordConversion(a.Format().String(), f.String(), d, err == nil)
		s.logger.LogConvert(ctx, a.Format().String(), f.String(), d, err)

		if err != nil {
			if errors.Is(err, matrix.ErrUnsuitableFormat) && i < len(s.formats)-1 {
				continue
			}
			return nil, translateError(err)
		}
		return m, nil
	}
	return nil, ErrEmptyFormatChain
}

func (s *Solver[T]) buildMonitor() krylov.Monitor[T] {
	m := s.monitor
	if m == nil {
		m = krylov.NewDefaultMonitor[T](
			krylov.WithRelativeTolerance(s.tolerance),
			krylov.WithAbsoluteTolerance(s.absTol),
			krylov.WithIterationLimit(s.maxIter),
		)
	}
	if s.verbose {
		m = krylov.Verbose(m, s.logger.Logger)
	}
	return m
}

// instrument wraps an operator so every application is recorded.
func (s *Solver[T]) instrument(op operator.Operator[T], format string) operator.Operator[T] {
	if _, ok := s.metrics.(NoopMetrics); ok {
		return op
	}
	rows, cols := op.Dims()
	return operator.Func[T]{
		Rows: rows,
		Cols: cols,
		F: func(y, x []T) error {
			start := time.Now()
			err := op.Apply(y, x)
			s.metrics.RecordSpMV(format, time.Since(start))
			return err
		},
	}
}
