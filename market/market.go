// Package market reads and writes Matrix Market exchange files, the
// lingua franca for sparse matrix corpora. Coordinate and array layouts
// are supported with real, integer, complex and pattern fields, and the
// symmetric, skew-symmetric and hermitian storage conventions are
// expanded to the full pattern on read. Gzipped files are detected by
// their magic bytes.
package market

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

var (
	// ErrBadHeader is returned for a banner or size line that does not
	// follow the exchange format.
	ErrBadHeader = errors.New("market: malformed header")
	// ErrUnsupportedField is returned when the file's field cannot be
	// represented in the requested element type.
	ErrUnsupportedField = errors.New("market: unsupported field")
)

const banner = "%%MatrixMarket"

// header is the parsed banner.
type header struct {
	layout   string // coordinate | array
	field    string // real | integer | complex | pattern
	symmetry string // general | symmetric | skew-symmetric | hermitian
}

// ReadFile reads a Matrix Market file. Gzipped files work regardless of
// their extension.
func ReadFile[T blas.Scalar](path string) (*matrix.COO[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Read[T](f)
}

// Read parses a Matrix Market stream into a canonical COO matrix.
// Duplicate coordinates are summed.
func Read[T blas.Scalar](r io.Reader) (*matrix.COO[T], error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		return read[T](bufio.NewScanner(gz))
	}
	return read[T](bufio.NewScanner(br))
}

func read[T blas.Scalar](sc *bufio.Scanner) (*matrix.COO[T], error) {
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	h, err := readBanner(sc)
	if err != nil {
		return nil, err
	}
	if h.field == "complex" && !blas.IsComplex[T]() {
		return nil, fmt.Errorf("%w: complex values need a complex element type", ErrUnsupportedField)
	}

	dims, err := readSizeLine(sc)
	if err != nil {
		return nil, err
	}

	switch h.layout {
	case "coordinate":
		return readCoordinate[T](sc, h, dims)
	default:
		return readArray[T](sc, h, dims)
	}
}

func readBanner(sc *bufio.Scanner) (header, error) {
	if !sc.Scan() {
		return header{}, fmt.Errorf("%w: empty input", ErrBadHeader)
	}
	fields := strings.Fields(strings.ToLower(sc.Text()))
	if len(fields) != 5 || fields[0] != strings.ToLower(banner) || fields[1] != "matrix" {
		return header{}, fmt.Errorf("%w: bad banner %q", ErrBadHeader, sc.Text())
	}

	h := header{layout: fields[2], field: fields[3], symmetry: fields[4]}
	switch h.layout {
	case "coordinate", "array":
	default:
		return header{}, fmt.Errorf("%w: unknown layout %q", ErrBadHeader, h.layout)
	}
	switch h.field {
	case "real", "integer", "complex", "pattern":
	default:
		return header{}, fmt.Errorf("%w: unknown field %q", ErrBadHeader, h.field)
	}
	switch h.symmetry {
	case "general", "symmetric", "skew-symmetric", "hermitian":
	default:
		return header{}, fmt.Errorf("%w: unknown symmetry %q", ErrBadHeader, h.symmetry)
	}
	if h.layout == "array" && h.field == "pattern" {
		return header{}, fmt.Errorf("%w: array layout cannot carry a pattern field", ErrBadHeader)
	}
	return h, nil
}

// readSizeLine returns the first non-comment line split into integers:
// rows, cols and, for coordinate layout, the entry count.
func readSizeLine(sc *bufio.Scanner) ([]int, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 && len(fields) != 3 {
			return nil, fmt.Errorf("%w: bad size line %q", ErrBadHeader, line)
		}
		dims := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad size line %q", ErrBadHeader, line)
			}
			dims[i] = n
		}
		return dims, nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: missing size line", ErrBadHeader)
}

func readCoordinate[T blas.Scalar](sc *bufio.Scanner, h header, dims []int) (*matrix.COO[T], error) {
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: coordinate layout wants rows, cols and entries", ErrBadHeader)
	}
	rows, cols, nnz := dims[0], dims[1], dims[2]

	entries := make([]matrix.Entry[T], 0, 2*nnz)
	for k := 0; k < nnz; {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("market: entry %d: unexpected end of input", k+1)
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("market: entry %d: short line %q", k+1, line)
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("market: entry %d: bad row index %q", k+1, fields[0])
		}
		j, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("market: entry %d: bad column index %q", k+1, fields[1])
		}
		v, err := parseValue[T](h.field, fields[2:])
		if err != nil {
			return nil, fmt.Errorf("market: entry %d: %w", k+1, err)
		}

		// Indices are 1-based on the wire.
		entries = appendExpanded(entries, h.symmetry, i-1, j-1, v)
		k++
	}
	return buildCOO(rows, cols, entries)
}

// readArray reads the dense column-major value list. Zeros are dropped,
// the result is still a sparse matrix. Symmetric variants store only the
// lower triangle, column by column.
func readArray[T blas.Scalar](sc *bufio.Scanner, h header, dims []int) (*matrix.COO[T], error) {
	if len(dims) != 2 {
		return nil, fmt.Errorf("%w: array layout wants rows and cols", ErrBadHeader)
	}
	rows, cols := dims[0], dims[1]

	next := func() ([]string, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			return strings.Fields(line), nil
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("market: unexpected end of array data")
	}

	var entries []matrix.Entry[T]
	for j := 0; j < cols; j++ {
		lo := 0
		switch h.symmetry {
		case "symmetric", "hermitian":
			lo = j
		case "skew-symmetric":
			lo = j + 1
		}
		for i := lo; i < rows; i++ {
			fields, err := next()
			if err != nil {
				return nil, err
			}
			v, err := parseValue[T](h.field, fields)
			if err != nil {
				return nil, fmt.Errorf("market: array cell (%d,%d): %w", i+1, j+1, err)
			}
			if v == 0 {
				continue
			}
			entries = appendExpanded(entries, h.symmetry, i, j, v)
		}
	}
	return buildCOO(rows, cols, entries)
}

func parseValue[T blas.Scalar](field string, tokens []string) (T, error) {
	var zero T
	switch field {
	case "pattern":
		return blas.FromFloat[T](1), nil
	case "complex":
		if len(tokens) < 2 {
			return zero, fmt.Errorf("complex value wants two tokens, got %d", len(tokens))
		}
		re, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return zero, fmt.Errorf("bad value %q", tokens[0])
		}
		im, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return zero, fmt.Errorf("bad value %q", tokens[1])
		}
		return blas.FromComplex[T](re, im), nil
	default:
		if len(tokens) < 1 {
			return zero, fmt.Errorf("missing value")
		}
		f, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return zero, fmt.Errorf("bad value %q", tokens[0])
		}
		return blas.FromFloat[T](f), nil
	}
}

// appendExpanded adds the entry and, for the symmetric conventions, its
// mirror across the diagonal.
func appendExpanded[T blas.Scalar](entries []matrix.Entry[T], symmetry string, i, j int, v T) []matrix.Entry[T] {
	entries = append(entries, matrix.Entry[T]{Row: i, Col: j, Value: v})
	if i == j {
		return entries
	}
	switch symmetry {
	case "symmetric":
		entries = append(entries, matrix.Entry[T]{Row: j, Col: i, Value: v})
	case "skew-symmetric":
		entries = append(entries, matrix.Entry[T]{Row: j, Col: i, Value: -v})
	case "hermitian":
		entries = append(entries, matrix.Entry[T]{Row: j, Col: i, Value: blas.Conj(v)})
	}
	return entries
}

func buildCOO[T blas.Scalar](rows, cols int, entries []matrix.Entry[T]) (*matrix.COO[T], error) {
	m, err := matrix.COOFromEntries(rows, cols, entries, matrix.WithSumDuplicates())
	if err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}
	return m, nil
}
