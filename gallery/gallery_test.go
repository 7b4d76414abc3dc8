package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/matrix"
)

func TestPoisson5pt(t *testing.T) {
	m := Poisson5pt[float64](3, 3)
	require.NoError(t, m.Validate())

	rows, cols := m.Dims()
	assert.Equal(t, 9, rows)
	assert.Equal(t, 9, cols)
	assert.Equal(t, 33, m.NumEntries())

	// Center point touches all four neighbours.
	wantCols, wantVals := m.RowView(4)
	assert.Equal(t, []int{1, 3, 4, 5, 7}, wantCols)
	assert.Equal(t, []float64{-1, -1, 4, -1, -1}, wantVals)

	// Corner touches two.
	assert.Equal(t, 4.0, m.At(0, 0))
	assert.Equal(t, -1.0, m.At(0, 1))
	assert.Equal(t, -1.0, m.At(0, 3))
	assert.Equal(t, 0.0, m.At(0, 4))

	// Symmetric.
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
		}
	}
}

func TestPoisson5ptDegenerate(t *testing.T) {
	m := Poisson5pt[float64](1, 1)
	require.NoError(t, m.Validate())
	assert.Equal(t, 1, m.NumEntries())
	assert.Equal(t, 4.0, m.At(0, 0))

	line := Poisson5pt[float64](4, 1)
	require.NoError(t, line.Validate())
	assert.Equal(t, 10, line.NumEntries())

	assert.PanicsWithValue(t, matrix.ErrShape, func() { Poisson5pt[float64](0, 3) })
}

func TestTridiagonal(t *testing.T) {
	m := Tridiagonal[float64](5, -1, 2, -1)
	require.NoError(t, m.Validate())
	assert.Equal(t, 13, m.NumEntries())

	assert.Equal(t, []int{0, 2, 5, 8, 11, 13}, m.RowOffsets)
	assert.Equal(t, 2.0, m.At(2, 2))
	assert.Equal(t, -1.0, m.At(2, 1))
	assert.Equal(t, -1.0, m.At(2, 3))
	assert.Equal(t, 0.0, m.At(0, 4))

	one := Tridiagonal[float64](1, -1, 7, -1)
	assert.Equal(t, 1, one.NumEntries())
	assert.Equal(t, 7.0, one.At(0, 0))
}

func TestIdentity(t *testing.T) {
	m := Identity[float64](4)
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.NumEntries())

	x := []float64{3, -1, 0, 9}
	y := make([]float64, 4)
	require.NoError(t, m.MulVec(y, x))
	assert.Equal(t, x, y)
}

func TestRandomReproducible(t *testing.T) {
	a := Random[float64](40, 30, 0.2, WithSeed(7))
	b := Random[float64](40, 30, 0.2, WithSeed(7))
	require.NoError(t, a.Validate())

	assert.Equal(t, a.RowIndices, b.RowIndices)
	assert.Equal(t, a.ColIndices, b.ColIndices)
	assert.Equal(t, a.Values, b.Values)

	c := Random[float64](40, 30, 0.2, WithSeed(8))
	assert.NotEqual(t, a.Values, c.Values)

	// Roughly the requested density.
	assert.InDelta(t, 0.2*40*30, float64(a.NumEntries()), 0.5*0.2*40*30)
}

func TestRandomIntegerValues(t *testing.T) {
	m := Random[float64](20, 20, 0.5, WithSeed(3), WithIntegerValues())
	for _, v := range m.Values {
		assert.Equal(t, float64(int(v)), v)
		assert.GreaterOrEqual(t, v, -10.0)
		assert.LessOrEqual(t, v, 10.0)
	}
}
