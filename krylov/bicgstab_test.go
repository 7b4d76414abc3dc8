package krylov

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/gallery"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/operator"
)

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func residual(t *testing.T, a operator.Operator[float64], x, b []float64) float64 {
	t.Helper()
	y := make([]float64, len(b))
	require.NoError(t, a.Apply(y, x))
	for i := range y {
		y[i] = b[i] - y[i]
	}
	return blas.Nrm2(y)
}

func TestBiCGSTABPoisson(t *testing.T) {
	m := gallery.Poisson5pt[float64](10, 10)
	a := operator.Matrix[float64](m)
	n := 100

	b := ones(n)
	x := make([]float64, n)

	res, err := BiCGSTAB(context.Background(), a, x, b,
		WithMonitor[float64](NewDefaultMonitor[float64](WithRelativeTolerance(1e-8))))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.False(t, res.Breakdown)
	assert.Greater(t, res.Iterations, 0)
	assert.Less(t, res.Iterations, 200)
	assert.Equal(t, 2*res.Iterations+1, res.MatVecs)
	assert.Equal(t, 2*res.Iterations, res.PSolves)
	assert.Positive(t, res.Duration)

	rel := residual(t, a, x, b) / blas.Nrm2(b)
	assert.Less(t, rel, 1e-7)
}

func TestBiCGSTABRecoversKnownSolution(t *testing.T) {
	m := gallery.Poisson5pt[float64](8, 8)
	n := 64

	rng := rand.New(rand.NewSource(9))
	want := make([]float64, n)
	for i := range want {
		want[i] = rng.Float64()*2 - 1
	}
	b := make([]float64, n)
	require.NoError(t, m.MulVec(b, want))

	x := make([]float64, n)
	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](m), x, b,
		WithMonitor[float64](NewDefaultMonitor[float64](WithRelativeTolerance(1e-10))))
	require.NoError(t, err)
	require.True(t, res.Converged)

	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-6, "component %d", i)
	}
}

func TestBiCGSTABWithPool(t *testing.T) {
	p := compute.NewPool(4)
	defer p.Close()

	m := gallery.Poisson5pt[float64](12, 12)
	n := 144
	a := operator.Matrix[float64](m, operator.WithPool(p))

	x := make([]float64, n)
	res, err := BiCGSTAB(context.Background(), a, x, ones(n))
	require.NoError(t, err)
	assert.True(t, res.Converged)
}

func TestIterationLimitIsNotAnError(t *testing.T) {
	m := gallery.Poisson5pt[float64](20, 20)
	n := 400

	x := make([]float64, n)
	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](m), x, ones(n),
		WithMonitor[float64](NewDefaultMonitor[float64](
			WithRelativeTolerance(1e-14),
			WithIterationLimit(3),
		)))
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.False(t, res.Breakdown)
	assert.Equal(t, 3, res.Iterations)
	assert.Positive(t, res.Residual)
}

func TestBreakdownOnZeroOperator(t *testing.T) {
	zero := matrix.NewCOO[float64](4, 4, 0)

	x := make([]float64, 4)
	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](zero), x, ones(4))
	require.ErrorIs(t, err, ErrBreakdown)

	assert.True(t, res.Breakdown)
	assert.False(t, res.Converged)
}

func TestIdentitySolvesInOneIteration(t *testing.T) {
	a := operator.Identity[float64](5)
	b := []float64{1, 2, 3, 4, 5}
	x := make([]float64, 5)

	res, err := BiCGSTAB(context.Background(), a, x, b)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, b, x)
	assert.Zero(t, res.Residual)
}

func TestZeroRightHandSide(t *testing.T) {
	m := gallery.Poisson5pt[float64](4, 4)
	x := make([]float64, 16)

	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](m), x, make([]float64, 16))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, 1, res.MatVecs)
}

func TestAbsoluteTolerance(t *testing.T) {
	a := operator.Identity[float64](4)
	x := ones(4)

	res, err := BiCGSTAB(context.Background(), a, x, make([]float64, 4),
		WithMonitor[float64](NewDefaultMonitor[float64](WithAbsoluteTolerance(1e-12))))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, make([]float64, 4), x)
}

func TestShapeErrors(t *testing.T) {
	ctx := context.Background()

	rect := operator.Func[float64]{Rows: 3, Cols: 2, F: func(y, x []float64) error { return nil }}
	_, err := BiCGSTAB(ctx, rect, make([]float64, 2), make([]float64, 3))
	require.ErrorIs(t, err, ErrNotSquare)

	id := operator.Identity[float64](3)
	_, err = BiCGSTAB(ctx, id, make([]float64, 2), make([]float64, 3))
	require.ErrorIs(t, err, ErrDimension)

	_, err = BiCGSTAB(ctx, id, make([]float64, 3), make([]float64, 3),
		WithPreconditioner[float64](operator.Identity[float64](2)))
	require.ErrorIs(t, err, ErrDimension)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := gallery.Poisson5pt[float64](6, 6)
	x := make([]float64, 36)
	res, err := BiCGSTAB(ctx, operator.Matrix[float64](m), x, ones(36))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Converged)
	assert.Zero(t, res.Iterations)
}

func TestJacobiPreconditioner(t *testing.T) {
	n := 50
	m := gallery.Tridiagonal[float64](n, -1, 4, -1)
	jacobi := operator.Func[float64]{
		Rows: n, Cols: n,
		F: func(y, x []float64) error {
			for i := range y {
				y[i] = x[i] / 4
			}
			return nil
		},
	}

	x := make([]float64, n)
	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](m), x, ones(n),
		WithPreconditioner[float64](jacobi),
		WithMonitor[float64](NewDefaultMonitor[float64](WithRelativeTolerance(1e-10))))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 2*res.Iterations, res.PSolves)

	rel := residual(t, operator.Matrix[float64](m), x, ones(n)) / blas.Nrm2(ones(n))
	assert.Less(t, rel, 1e-9)
}

func TestVerboseMonitorLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := gallery.Poisson5pt[float64](4, 4)
	x := make([]float64, 16)
	res, err := BiCGSTAB(context.Background(), operator.Matrix[float64](m), x, ones(16),
		WithMonitor[float64](Verbose(NewDefaultMonitor[float64](), logger)))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Contains(t, buf.String(), "rnorm")
	assert.Contains(t, buf.String(), "converged=true")
}

func TestFloat32Solve(t *testing.T) {
	m := gallery.Poisson5pt[float32](5, 5)
	n := 25

	b := make([]float32, n)
	for i := range b {
		b[i] = 1
	}
	x := make([]float32, n)

	res, err := BiCGSTAB(context.Background(), operator.Matrix[float32](m), x, b,
		WithMonitor[float32](NewDefaultMonitor[float32](WithRelativeTolerance(1e-3))))
	require.NoError(t, err)
	assert.True(t, res.Converged)
}
