package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workedCSR(t *testing.T) *CSR[float64] {
	t.Helper()
	m, err := ToCSR[float64](worked(t))
	require.NoError(t, err)
	return m
}

func TestCSRFromCOO(t *testing.T) {
	m := workedCSR(t)

	assert.Equal(t, []int{0, 2, 2, 3, 6}, m.RowOffsets)
	assert.Equal(t, []int{0, 2, 2, 0, 1, 2}, m.ColIndices)
	assert.Equal(t, []float64{10, 20, 30, 40, 50, 60}, m.Values)
	assert.NoError(t, m.Validate())
	assertElements(t, workedDense, m)
}

func TestCSRRowView(t *testing.T) {
	m := workedCSR(t)

	cols, vals := m.RowView(3)
	assert.Equal(t, []int{0, 1, 2}, cols)
	assert.Equal(t, []float64{40, 50, 60}, vals)

	cols, vals = m.RowView(1)
	assert.Empty(t, cols)
	assert.Empty(t, vals)

	assert.Equal(t, 2, m.RowNNZ(0))
	assert.Equal(t, 0, m.RowNNZ(1))
}

func TestCSRValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *CSR[float64])
		want   error
	}{
		{
			"OffsetsWrongLength",
			func(m *CSR[float64]) { m.RowOffsets = m.RowOffsets[:4] },
			ErrInvalidPattern,
		},
		{
			"OffsetsNotStartingAtZero",
			func(m *CSR[float64]) { m.RowOffsets[0] = 1 },
			ErrInvalidPattern,
		},
		{
			"OffsetsNotEndingAtCount",
			func(m *CSR[float64]) { m.RowOffsets[4] = 5 },
			ErrInvalidPattern,
		},
		{
			"OffsetsDecreasing",
			func(m *CSR[float64]) { m.RowOffsets[1] = 3 },
			ErrInvalidPattern,
		},
		{
			"ColumnOutOfRange",
			func(m *CSR[float64]) { m.ColIndices[5] = 7 },
			ErrIndexOutOfRange,
		},
		{
			"ColumnsOutOfOrder",
			func(m *CSR[float64]) {
				m.ColIndices[3], m.ColIndices[4] = m.ColIndices[4], m.ColIndices[3]
			},
			ErrInvalidPattern,
		},
		{
			"DuplicateColumn",
			func(m *CSR[float64]) { m.ColIndices[4] = m.ColIndices[3] },
			ErrInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := workedCSR(t)
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), tt.want)
		})
	}
}

func TestCSRMulVec(t *testing.T) {
	m := workedCSR(t)

	// Dirty output proves the product overwrites instead of accumulating.
	y := []float64{99, 99, 99, 99}
	require.NoError(t, m.MulVec(y, []float64{1, 1, 1}))
	assert.Equal(t, []float64{30, 0, 30, 150}, y)

	require.NoError(t, m.MulVec(y, []float64{1, 0, -1}))
	assert.Equal(t, []float64{-10, 0, -30, -20}, y)
}

func TestCSREntriesMatchCOO(t *testing.T) {
	coo := worked(t)
	csr := workedCSR(t)

	var fromCSR []Entry[float64]
	for e := range csr.Entries() {
		fromCSR = append(fromCSR, e)
	}
	var fromCOO []Entry[float64]
	for e := range coo.Entries() {
		fromCOO = append(fromCOO, e)
	}
	assert.Equal(t, fromCOO, fromCSR)
}
