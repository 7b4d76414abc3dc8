package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

func fixture(t *testing.T) *matrix.COO[float64] {
	t.Helper()
	m, err := matrix.COOFromEntries(4, 3, []matrix.Entry[float64]{
		{Row: 0, Col: 0, Value: 10}, {Row: 0, Col: 2, Value: 20},
		{Row: 2, Col: 2, Value: 30},
		{Row: 3, Col: 0, Value: 40}, {Row: 3, Col: 1, Value: 50}, {Row: 3, Col: 2, Value: 60},
	})
	require.NoError(t, err)
	return m
}

func TestMatrixOperator(t *testing.T) {
	src := fixture(t)
	x := []float64{1, 1, 1}

	for _, f := range []matrix.Format{matrix.FormatCOO, matrix.FormatCSR, matrix.FormatHYB} {
		m, err := matrix.Convert[float64](src, f)
		require.NoError(t, err)

		a := Matrix(m)
		rows, cols := a.Dims()
		assert.Equal(t, 4, rows)
		assert.Equal(t, 3, cols)

		// Dirty y: Apply owns the write discipline.
		y := []float64{1e30, 1e30, 1e30, 1e30}
		require.NoError(t, a.Apply(y, x))
		assert.Equal(t, []float64{30, 0, 30, 150}, y, "format %s", f)
	}
}

func TestMatrixOperatorWithPool(t *testing.T) {
	p := compute.NewPool(4)
	defer p.Close()

	m, err := matrix.ToCSR[float64](fixture(t))
	require.NoError(t, err)

	a := Matrix[float64](m, WithPool(p), WithHint(spmv.HintTemporal))
	y := make([]float64, 4)
	require.NoError(t, a.Apply(y, []float64{1, 1, 1}))
	assert.Equal(t, []float64{30, 0, 30, 150}, y)
}

func TestIdentity(t *testing.T) {
	a := Identity[float64](3)
	rows, cols := a.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)

	y := make([]float64, 3)
	require.NoError(t, a.Apply(y, []float64{7, -1, 2}))
	assert.Equal(t, []float64{7, -1, 2}, y)

	assert.ErrorIs(t, a.Apply(make([]float64, 2), y), matrix.ErrShape)
}

func TestFunc(t *testing.T) {
	double := Func[float64]{
		Rows: 2, Cols: 2,
		F: func(y, x []float64) error {
			for i := range y {
				y[i] = 2 * x[i]
			}
			return nil
		},
	}
	y := make([]float64, 2)
	require.NoError(t, double.Apply(y, []float64{3, 4}))
	assert.Equal(t, []float64{6, 8}, y)
}
