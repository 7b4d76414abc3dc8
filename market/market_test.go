package market

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/matrix"
)

func TestReadCoordinateGeneral(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real general
% worked example
4 3 6
1 1 10
1 3 20
3 3 30
4 1 40
4 2 50
4 3 60
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 6, m.NumEntries())

	// Indices come in 1-based.
	assert.Equal(t, 10.0, m.At(0, 0))
	assert.Equal(t, 60.0, m.At(3, 2))
	assert.Equal(t, 0.0, m.At(1, 1))
}

func TestReadSymmetricExpands(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real symmetric
3 3 4
1 1 2
2 1 -1
3 2 -1
3 3 2
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 6, m.NumEntries())
	assert.Equal(t, -1.0, m.At(1, 0))
	assert.Equal(t, -1.0, m.At(0, 1))
	assert.Equal(t, -1.0, m.At(2, 1))
	assert.Equal(t, -1.0, m.At(1, 2))
}

func TestReadSkewSymmetric(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real skew-symmetric
3 3 2
2 1 5
3 1 -2
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumEntries())
	assert.Equal(t, 5.0, m.At(1, 0))
	assert.Equal(t, -5.0, m.At(0, 1))
	assert.Equal(t, -2.0, m.At(2, 0))
	assert.Equal(t, 2.0, m.At(0, 2))
}

func TestReadHermitian(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate complex hermitian
2 2 2
1 1 3 0
2 1 1 -2
`
	m, err := Read[complex128](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumEntries())
	assert.Equal(t, complex(1, -2), m.At(1, 0))
	assert.Equal(t, complex(1, 2), m.At(0, 1))
}

func TestReadPattern(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate pattern general
2 2 3
1 1
1 2
2 2
`
	m, err := Read[float32](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumEntries())
	for _, v := range m.Values {
		assert.Equal(t, float32(1), v)
	}
}

func TestReadIntegerField(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate integer general
2 2 2
1 1 7
2 2 -3
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 7.0, m.At(0, 0))
	assert.Equal(t, -3.0, m.At(1, 1))
}

func TestReadDuplicatesSummed(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real general
2 2 3
1 1 1.5
1 1 2.5
2 2 1
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumEntries())
	assert.Equal(t, 4.0, m.At(0, 0))
}

func TestReadArrayColumnMajor(t *testing.T) {
	// Column-major: (1,1)=1 (2,1)=0 (1,2)=2 (2,2)=3. The zero is dropped.
	in := `%%MatrixMarket matrix array real general
2 2
1
0
2
3
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumEntries())
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 0.0, m.At(1, 0))
	assert.Equal(t, 2.0, m.At(0, 1))
	assert.Equal(t, 3.0, m.At(1, 1))
}

func TestReadArraySymmetric(t *testing.T) {
	// Lower triangle only, column by column: (1,1) (2,1) then (2,2).
	in := `%%MatrixMarket matrix array real symmetric
2 2
4
-1
4
`
	m, err := Read[float64](strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumEntries())
	assert.Equal(t, -1.0, m.At(0, 1))
	assert.Equal(t, -1.0, m.At(1, 0))
	assert.Equal(t, 4.0, m.At(1, 1))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrBadHeader},
		{"bad banner", "%%NotMarket matrix coordinate real general\n1 1 0\n", ErrBadHeader},
		{"bad layout", "%%MatrixMarket matrix cord real general\n1 1 0\n", ErrBadHeader},
		{"bad field", "%%MatrixMarket matrix coordinate half general\n1 1 0\n", ErrBadHeader},
		{"bad symmetry", "%%MatrixMarket matrix coordinate real banded\n1 1 0\n", ErrBadHeader},
		{"array pattern", "%%MatrixMarket matrix array pattern general\n1 1\n", ErrBadHeader},
		{"missing size", "%%MatrixMarket matrix coordinate real general\n% only comments\n", ErrBadHeader},
		{"complex into real", "%%MatrixMarket matrix coordinate complex general\n1 1 1\n1 1 2 3\n", ErrUnsupportedField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read[float64](strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("truncated entries", func(t *testing.T) {
		_, err := Read[float64](strings.NewReader("%%MatrixMarket matrix coordinate real general\n2 2 2\n1 1 5\n"))
		require.Error(t, err)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := Read[float64](strings.NewReader("%%MatrixMarket matrix coordinate real general\n2 2 1\n3 1 5\n"))
		require.ErrorIs(t, err, matrix.ErrIndexOutOfRange)
	})
}

func TestWriteReadRoundTrip(t *testing.T) {
	src, err := matrix.COOFromEntries(4, 3, []matrix.Entry[float64]{
		{Row: 0, Col: 0, Value: 10.5}, {Row: 0, Col: 2, Value: -20.25},
		{Row: 2, Col: 2, Value: 1e-17},
		{Row: 3, Col: 0, Value: 40}, {Row: 3, Col: 1, Value: 50}, {Row: 3, Col: 2, Value: 60},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write[float64](&buf, src, WithComment("round trip", "second line")))
	assert.True(t, strings.HasPrefix(buf.String(), "%%MatrixMarket matrix coordinate real general\n"))
	assert.Contains(t, buf.String(), "% round trip\n")

	got, err := Read[float64](&buf)
	require.NoError(t, err)
	assert.Equal(t, src.RowIndices, got.RowIndices)
	assert.Equal(t, src.ColIndices, got.ColIndices)
	assert.Equal(t, src.Values, got.Values)
}

func TestWriteComplex(t *testing.T) {
	src, err := matrix.COOFromEntries(2, 2, []matrix.Entry[complex128]{
		{Row: 0, Col: 0, Value: complex(1, -2)},
		{Row: 1, Col: 1, Value: complex(0.5, 3)},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write[complex128](&buf, src))
	assert.Contains(t, buf.String(), "coordinate complex general")

	got, err := Read[complex128](&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Values, got.Values)
}

func TestWriteOtherFormats(t *testing.T) {
	src, err := matrix.COOFromEntries(3, 3, []matrix.Entry[float64]{
		{Row: 0, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: 2}, {Row: 2, Col: 0, Value: 3},
	})
	require.NoError(t, err)
	csr, err := matrix.ToCSR[float64](src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write[float64](&buf, csr))

	got, err := Read[float64](&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Values, got.Values)
}

func TestGzipRoundTripThroughFiles(t *testing.T) {
	src, err := matrix.COOFromEntries(3, 4, []matrix.Entry[float64]{
		{Row: 0, Col: 1, Value: 2}, {Row: 2, Col: 3, Value: -7},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "m.mtx.gz")
	require.NoError(t, WriteFile[float64](path, src))

	got, err := ReadFile[float64](path)
	require.NoError(t, err)
	assert.Equal(t, src.RowIndices, got.RowIndices)
	assert.Equal(t, src.ColIndices, got.ColIndices)
	assert.Equal(t, src.Values, got.Values)
}
