package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/gallery"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

func fastOpts() []func(*Options) {
	return []func(*Options){
		WithTargetSeconds(0.001),
		WithMinIterations(1),
		WithMaxIterations(3),
	}
}

func TestCheckSpMVExactKernels(t *testing.T) {
	src := gallery.Poisson5pt[float64](12, 9)
	ref, err := matrix.ToDense[float64](src)
	require.NoError(t, err)

	for _, f := range allFormats {
		t.Run(f.String(), func(t *testing.T) {
			m, err := matrix.Convert[float64](src, f)
			require.NoError(t, err)

			relErr, err := CheckSpMV(nil, spmv.HintAuto, m, ref, 7)
			require.NoError(t, err)
			// Integer-valued inputs: sums are exact in float64.
			assert.Zero(t, relErr)
		})
	}
}

func TestTimeSpMVClampsIterations(t *testing.T) {
	m := gallery.Tridiagonal[float64](200, -1, 2, -1)

	timing, err := TimeSpMV[float64](nil, spmv.HintAuto, m, fastOpts()...)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, timing.Iterations, 1)
	assert.LessOrEqual(t, timing.Iterations, 3)
	assert.Greater(t, timing.SecondsPerCall, 0.0)
	assert.Greater(t, timing.GFLOPS, 0.0)
	assert.Greater(t, timing.GBps, 0.0)
}

func TestRunAllStructured(t *testing.T) {
	pool := compute.NewPool(2)
	defer pool.Close()

	src := gallery.Poisson5pt[float64](10, 10)
	reports, err := RunAll[float64](src, pool, spmv.HintAuto, fastOpts()...)
	require.NoError(t, err)
	require.Len(t, reports, len(allFormats))

	for _, r := range reports {
		// A 5-point stencil fits every format.
		assert.False(t, r.Skipped, r.Format)
		assert.Zero(t, r.MaxError, r.Format)
		assert.Greater(t, r.Iterations, 0, r.Format)
	}
}

func TestRunAllSkipsRefusedFormats(t *testing.T) {
	// A scattered random pattern occupies nearly every diagonal, so the
	// DIA conversion refuses and the harness records the skip.
	src := gallery.Random[float64](2000, 2000, 0.002, gallery.WithSeed(3), gallery.WithIntegerValues())

	reports, err := RunAll[float64](src, nil, spmv.HintAuto, fastOpts()...)
	require.NoError(t, err)

	byFormat := map[string]Report{}
	for _, r := range reports {
		byFormat[r.Format] = r
	}

	dia := byFormat[matrix.FormatDIA.String()]
	assert.True(t, dia.Skipped)
	assert.NotEmpty(t, dia.SkipReason)

	// COO and CSR are total conversions: never skipped.
	assert.False(t, byFormat[matrix.FormatCOO.String()].Skipped)
	assert.False(t, byFormat[matrix.FormatCSR.String()].Skipped)
}

func TestRunAllFormatFilter(t *testing.T) {
	src := gallery.Poisson5pt[float64](10, 10)

	opts := append(fastOpts(), WithFormats(matrix.FormatCSR, matrix.FormatCOO))
	reports, err := RunAll[float64](src, nil, spmv.HintAuto, opts...)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "csr", reports[0].Format)
	assert.Equal(t, "coo", reports[1].Format)
}
