package krylov

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/operator"
)

var (
	// ErrNotSquare is returned when the system operator is rectangular.
	ErrNotSquare = errors.New("krylov: operator is not square")
	// ErrDimension is returned when x, b or the preconditioner do not
	// match the operator shape.
	ErrDimension = errors.New("krylov: dimension mismatch")
	// ErrBreakdown is returned when the recurrence hits a zero or
	// non-finite denominator and cannot continue.
	ErrBreakdown = errors.New("krylov: solver breakdown")
)

// Result describes how a solver run ended. Failing to converge within
// the iteration limit is reported here, not as an error.
type Result struct {
	// Converged is the monitor's final verdict.
	Converged bool
	// Breakdown marks a run aborted by a degenerate recurrence.
	Breakdown bool
	// Iterations counts completed iterations.
	Iterations int
	// MatVecs counts operator applications.
	MatVecs int
	// PSolves counts preconditioner applications.
	PSolves int
	// Residual is the norm of the final residual.
	Residual float64
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Options configure BiCGSTAB.
type Options[T blas.Scalar] struct {
	// Preconditioner approximates A⁻¹. Nil means identity.
	Preconditioner operator.Operator[T]
	// Monitor decides when to stop. Nil means NewDefaultMonitor.
	Monitor Monitor[T]
}

// WithPreconditioner applies m before every operator application.
func WithPreconditioner[T blas.Scalar](m operator.Operator[T]) func(*Options[T]) {
	return func(o *Options[T]) {
		o.Preconditioner = m
	}
}

// WithMonitor replaces the stopping rule.
func WithMonitor[T blas.Scalar](m Monitor[T]) func(*Options[T]) {
	return func(o *Options[T]) {
		o.Monitor = m
	}
}

// BiCGSTAB solves A·x = b for general non-symmetric A using the
// stabilized bi-conjugate gradient recurrence. x holds the initial
// guess on entry and the best iterate on return.
//
// The context is checked once per iteration; cancellation returns the
// context error with the partial result. Monitor outcomes come back in
// the Result with a nil error.
func BiCGSTAB[T blas.Scalar](ctx context.Context, a operator.Operator[T], x, b []T, optFns ...func(*Options[T])) (Result, error) {
	rows, cols := a.Dims()
	if rows != cols {
		return Result{}, fmt.Errorf("%w: operator is %d×%d", ErrNotSquare, rows, cols)
	}
	n := rows
	if len(x) != n || len(b) != n {
		return Result{}, fmt.Errorf("%w: operator of %d against x of %d and b of %d",
			ErrDimension, n, len(x), len(b))
	}

	var o Options[T]
	for _, fn := range optFns {
		fn(&o)
	}
	mon := o.Monitor
	if mon == nil {
		mon = NewDefaultMonitor[T]()
	}
	pre := o.Preconditioner
	if pre == nil {
		pre = operator.Identity[T](n)
	}
	if pr, pc := pre.Dims(); pr != n || pc != n {
		return Result{}, fmt.Errorf("%w: preconditioner is %d×%d against an operator of %d",
			ErrDimension, pr, pc, n)
	}

	start := time.Now()
	var res Result

	y := make([]T, n)
	p := make([]T, n)
	r := make([]T, n)
	rStar := make([]T, n)
	s := make([]T, n)
	mp := make([]T, n)
	amp := make([]T, n)
	ms := make([]T, n)
	ams := make([]T, n)

	mon.Initialize(a, x, b)

	// r = b - A·x
	if err := a.Apply(y, x); err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to apply operator: %w", err)
	}
	res.MatVecs++
	blas.Axpby(r, b, y, 1, -1)

	blas.Copy(p, r)
	blas.Copy(rStar, r)

	rNorm := blas.Nrm2(r)
	rrStar := blas.Dotc(rStar, r)

	var solveErr error
	for {
		if mon.Converged(a, x, b, rNorm) {
			res.Converged = true
			break
		}
		if mon.ReachedIterationLimit(res.Iterations) {
			break
		}
		if err := ctx.Err(); err != nil {
			solveErr = err
			break
		}
		if math.IsNaN(rNorm) || math.IsInf(rNorm, 0) {
			res.Breakdown = true
			solveErr = ErrBreakdown
			break
		}

		// Mp = M·p, AMp = A·Mp
		if solveErr = pre.Apply(mp, p); solveErr != nil {
			solveErr = fmt.Errorf("failed to apply preconditioner: %w", solveErr)
			break
		}
		res.PSolves++
		if solveErr = a.Apply(amp, mp); solveErr != nil {
			solveErr = fmt.Errorf("failed to apply operator: %w", solveErr)
			break
		}
		res.MatVecs++

		// α = (r, r*) / (AMp, r*)
		den := blas.Dotc(rStar, amp)
		if den == 0 || !blas.IsFinite(den) {
			res.Breakdown = true
			solveErr = ErrBreakdown
			break
		}
		alpha := rrStar / den

		// s = r - α·AMp
		blas.Axpby(s, r, amp, 1, -alpha)

		// Ms = M·s, AMs = A·Ms
		if solveErr = pre.Apply(ms, s); solveErr != nil {
			solveErr = fmt.Errorf("failed to apply preconditioner: %w", solveErr)
			break
		}
		res.PSolves++
		if solveErr = a.Apply(ams, ms); solveErr != nil {
			solveErr = fmt.Errorf("failed to apply operator: %w", solveErr)
			break
		}
		res.MatVecs++

		// ω = (AMs, s) / (AMs, AMs)
		den2 := blas.Dotc(ams, ams)
		if den2 == 0 {
			// A vanishing AMs with s = 0 means the half step landed on
			// the solution; anything else is a dead recurrence.
			if blas.Nrm2(s) == 0 {
				blas.Axpy(x, mp, alpha)
				blas.Copy(r, s)
				rNorm = 0
				res.Iterations++
				continue
			}
			res.Breakdown = true
			solveErr = ErrBreakdown
			break
		}
		omega := blas.Dotc(ams, s) / den2
		if omega == 0 || !blas.IsFinite(omega) {
			res.Breakdown = true
			solveErr = ErrBreakdown
			break
		}

		// x = x + α·Mp + ω·Ms
		blas.Axpbypcz(x, x, mp, ms, 1, alpha, omega)

		// r = s - ω·AMs
		blas.Axpby(r, s, ams, 1, -omega)

		// β = (r₁, r*)/(r₀, r*) · α/ω
		rrStarNew := blas.Dotc(rStar, r)
		beta := (rrStarNew / rrStar) * (alpha / omega)
		rrStar = rrStarNew

		// p = r + β·p - β·ω·AMp
		blas.Axpbypcz(p, r, p, amp, 1, beta, -beta*omega)

		rNorm = blas.Nrm2(r)
		res.Iterations++
	}

	res.Residual = rNorm
	res.Duration = time.Since(start)
	return res, solveErr
}
