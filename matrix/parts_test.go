package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCOOFromParts(t *testing.T) {
	rows := []int{0, 0, 2}
	cols := []int{0, 2, 1}
	vals := []float64{1, 2, 3}

	m, err := COOFromParts(3, 3, rows, cols, vals)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, m.NumEntries())

	// Buffers are adopted, not copied.
	vals[0] = 9
	assert.Equal(t, 9.0, m.At(0, 0))

	_, err = COOFromParts(3, 3, rows[:2], cols, vals)
	assert.ErrorIs(t, err, ErrShape)
}

func TestCSRFromParts(t *testing.T) {
	offs := []int{0, 2, 2, 3}
	cols := []int{0, 2, 1}
	vals := []float64{1, 2, 3}

	m, err := CSRFromParts(3, 3, offs, cols, vals)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.NumEntries())

	_, err = CSRFromParts(2, 3, offs, cols, vals)
	assert.ErrorIs(t, err, ErrShape)
	_, err = CSRFromParts(3, 3, offs, cols[:2], vals)
	assert.ErrorIs(t, err, ErrShape)
}

func TestDIAFromParts(t *testing.T) {
	// 3×3 with main diagonal only, stride 3.
	m, err := DIAFromParts(3, 3, 3, []int{0}, []float64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 2.0, m.At(1, 1))
	assert.Equal(t, 3, m.NumEntries())

	_, err = DIAFromParts(3, 3, 3, []int{0}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShape)
}

func TestELLFromParts(t *testing.T) {
	// 2×3, width 1, column-major stride 2.
	cols := []int{0, 2}
	vals := []float64{5, 7}

	m, err := ELLFromParts(2, 3, 2, 1, cols, vals)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 5.0, m.At(0, 0))
	assert.Equal(t, 7.0, m.At(1, 2))

	_, err = ELLFromParts(2, 3, 2, 2, cols, vals)
	assert.ErrorIs(t, err, ErrShape)
}

func TestDenseFromParts(t *testing.T) {
	m, err := DenseFromParts(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(1, 0))

	_, err = DenseFromParts(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShape)
}
