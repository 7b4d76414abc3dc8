package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worked returns the 4×3 example used throughout the conversion tests:
//
//	10  0 20
//	 0  0  0
//	 0  0 30
//	40 50 60
func worked(t *testing.T) *COO[float64] {
	t.Helper()
	m, err := COOFromEntries(4, 3, []Entry[float64]{
		{Row: 3, Col: 2, Value: 60},
		{Row: 0, Col: 0, Value: 10},
		{Row: 3, Col: 0, Value: 40},
		{Row: 2, Col: 2, Value: 30},
		{Row: 0, Col: 2, Value: 20},
		{Row: 3, Col: 1, Value: 50},
	})
	require.NoError(t, err)
	return m
}

var workedDense = [][]float64{
	{10, 0, 20},
	{0, 0, 0},
	{0, 0, 30},
	{40, 50, 60},
}

type atMatrix interface {
	Dims() (int, int)
	At(i, j int) float64
}

func assertElements(t *testing.T, want [][]float64, m atMatrix) {
	t.Helper()
	rows, cols := m.Dims()
	require.Equal(t, len(want), rows)
	require.Equal(t, len(want[0]), cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, want[i][j], m.At(i, j), "element (%d, %d)", i, j)
		}
	}
}

func TestCOOFromEntries(t *testing.T) {
	t.Run("SortsIntoCanonicalOrder", func(t *testing.T) {
		m := worked(t)

		assert.Equal(t, []int{0, 0, 2, 3, 3, 3}, m.RowIndices)
		assert.Equal(t, []int{0, 2, 2, 0, 1, 2}, m.ColIndices)
		assert.Equal(t, []float64{10, 20, 30, 40, 50, 60}, m.Values)
		assert.NoError(t, m.Validate())
	})

	t.Run("RejectsDuplicates", func(t *testing.T) {
		_, err := COOFromEntries(2, 2, []Entry[float64]{
			{Row: 0, Col: 1, Value: 1},
			{Row: 0, Col: 1, Value: 2},
		})
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("SumsDuplicatesOnRequest", func(t *testing.T) {
		m, err := COOFromEntries(2, 2, []Entry[float64]{
			{Row: 0, Col: 1, Value: 1},
			{Row: 1, Col: 0, Value: 5},
			{Row: 0, Col: 1, Value: 2},
		}, WithSumDuplicates())
		require.NoError(t, err)

		assert.Equal(t, 2, m.NumEntries())
		assert.Equal(t, 3.0, m.At(0, 1))
		assert.Equal(t, 5.0, m.At(1, 0))
	})

	t.Run("RejectsOutOfRange", func(t *testing.T) {
		_, err := COOFromEntries(2, 2, []Entry[float64]{{Row: 2, Col: 0, Value: 1}})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestCOOAt(t *testing.T) {
	m := worked(t)

	assertElements(t, workedDense, m)
	assert.Panics(t, func() { m.At(4, 0) })
	assert.Panics(t, func() { m.At(0, -1) })
}

func TestCOOValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *COO[float64])
		want   error
	}{
		{
			"UnsortedEntries",
			func(m *COO[float64]) {
				m.RowIndices[0], m.RowIndices[1] = m.RowIndices[1], m.RowIndices[0]
				m.ColIndices[0], m.ColIndices[1] = m.ColIndices[1], m.ColIndices[0]
			},
			ErrInvalidPattern,
		},
		{
			"DuplicateCoordinate",
			func(m *COO[float64]) { m.ColIndices[1] = m.ColIndices[0] },
			ErrInvalidPattern,
		},
		{
			"ColumnOutOfRange",
			func(m *COO[float64]) { m.ColIndices[5] = 3 },
			ErrIndexOutOfRange,
		},
		{
			"RaggedArrays",
			func(m *COO[float64]) { m.Values = m.Values[:5] },
			ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := worked(t)
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), tt.want)
		})
	}
}

func TestCOOEntriesOrder(t *testing.T) {
	m := worked(t)

	var prev Entry[float64]
	first := true
	n := 0
	for e := range m.Entries() {
		if !first {
			less := prev.Row < e.Row || (prev.Row == e.Row && prev.Col < e.Col)
			assert.True(t, less, "entries out of order: %+v then %+v", prev, e)
		}
		prev, first = e, false
		n++
	}
	assert.Equal(t, m.NumEntries(), n)
}

func TestCOOResize(t *testing.T) {
	m := worked(t)

	require.NoError(t, m.Resize(4, 3, 3))
	assert.Equal(t, 3, m.NumEntries())
	assert.Equal(t, []float64{10, 20, 30}, m.Values)
	assert.NoError(t, m.Validate())

	// Growth zero-fills; the placeholder (0, 0) triples collide until the
	// caller scatters real entries in.
	require.NoError(t, m.Resize(5, 4, 5))
	assert.Equal(t, []float64{10, 20, 30, 0, 0}, m.Values)
	assert.ErrorIs(t, m.Validate(), ErrInvalidPattern)
}

func TestCOOCloneIndependence(t *testing.T) {
	m := worked(t)
	c, err := m.Clone()
	require.NoError(t, err)

	c.Values[0] = -1
	assert.Equal(t, 10.0, m.Values[0])
}

func TestCOOMulVec(t *testing.T) {
	m := worked(t)

	y := make([]float64, 4)
	require.NoError(t, m.MulVec(y, []float64{1, 1, 1}))
	assert.Equal(t, []float64{30, 0, 30, 150}, y)

	assert.ErrorIs(t, m.MulVec(make([]float64, 3), []float64{1, 1, 1}), ErrShape)
	assert.ErrorIs(t, m.MulVec(y, []float64{1, 1}), ErrShape)
}

func TestCOOSwap(t *testing.T) {
	a := worked(t)
	b := NewCOO[float64](1, 1, 0)

	require.NoError(t, a.Swap(b))
	assert.Equal(t, 0, a.NumEntries())
	assert.Equal(t, 6, b.NumEntries())

	rows, cols := b.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, cols)
}
