package matrix

import (
	"iter"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// Format identifies a storage format.
type Format int

const (
	FormatCOO Format = iota
	FormatCSR
	FormatDIA
	FormatELL
	FormatHYB
	FormatDense
)

// String returns the conventional lower-case name of the format.
func (f Format) String() string {
	switch f {
	case FormatCOO:
		return "coo"
	case FormatCSR:
		return "csr"
	case FormatDIA:
		return "dia"
	case FormatELL:
		return "ell"
	case FormatHYB:
		return "hyb"
	case FormatDense:
		return "dense"
	}
	return "unknown"
}

// ParseFormat maps a format name to its Format value.
func ParseFormat(s string) (Format, bool) {
	for _, f := range []Format{FormatCOO, FormatCSR, FormatDIA, FormatELL, FormatHYB, FormatDense} {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}

// Entry is one stored element.
type Entry[T blas.Scalar] struct {
	Row, Col int
	Value    T
}

// Matrix is the capability every storage format provides. Entries yields
// stored elements in lexicographic (row, col) order with no duplicate
// coordinates; formats that cannot represent explicit zeros (DIA) omit them.
type Matrix[T blas.Scalar] interface {
	// Dims returns the logical shape.
	Dims() (rows, cols int)

	// NumEntries returns the stored entry count. Dense scans for nonzeros,
	// all sparse formats answer in O(1).
	NumEntries() int

	// Format identifies the concrete storage format.
	Format() Format

	// Space returns the memory space the buffers live in.
	Space() *mem.Space

	// Entries iterates stored elements in canonical order.
	Entries() iter.Seq[Entry[T]]
}
