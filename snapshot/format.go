package snapshot

import (
	"bytes"
	"errors"
	"hash/crc32"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

const (
	// MagicNumber identifies snapshot containers (ASCII: "SPXS").
	MagicNumber = 0x53505853
	// VersionNumber is the current container version (v1.0.0).
	VersionNumber = 0x00010000
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	ErrValueKind      = errors.New("snapshot: value kind mismatch")
	ErrChecksum       = errors.New("snapshot: checksum mismatch")
	ErrCorrupt        = errors.New("snapshot: corrupt container")
	ErrUnknownCodec   = errors.New("snapshot: unknown codec")
)

// Wire tags for the stored format, stable across releases.
const (
	tagCOO uint8 = iota + 1
	tagCSR
	tagDIA
	tagELL
	tagHYB
	tagDense
)

func formatTag(f matrix.Format) (uint8, bool) {
	switch f {
	case matrix.FormatCOO:
		return tagCOO, true
	case matrix.FormatCSR:
		return tagCSR, true
	case matrix.FormatDIA:
		return tagDIA, true
	case matrix.FormatELL:
		return tagELL, true
	case matrix.FormatHYB:
		return tagHYB, true
	case matrix.FormatDense:
		return tagDense, true
	}
	return 0, false
}

func tagFormat(t uint8) (matrix.Format, bool) {
	switch t {
	case tagCOO:
		return matrix.FormatCOO, true
	case tagCSR:
		return matrix.FormatCSR, true
	case tagDIA:
		return matrix.FormatDIA, true
	case tagELL:
		return matrix.FormatELL, true
	case tagHYB:
		return matrix.FormatHYB, true
	case tagDense:
		return matrix.FormatDense, true
	}
	return 0, false
}

// sectionCount returns how many sections a format serializes to.
func sectionCount(t uint8) int {
	switch t {
	case tagCOO, tagCSR:
		return 3 // offsets or rows, cols, values
	case tagDIA, tagELL:
		return 2 // offsets or slot columns, values
	case tagHYB:
		return 5 // ell cols, ell values, coo rows, coo cols, coo values
	case tagDense:
		return 1 // values
	}
	return 0
}

// Value kinds stored in the header.
const (
	kindFloat32 uint8 = iota + 1
	kindFloat64
	kindComplex64
	kindComplex128
)

func kindOf[T blas.Scalar]() uint8 {
	var z T
	switch any(z).(type) {
	case float32:
		return kindFloat32
	case float64:
		return kindFloat64
	case complex64:
		return kindComplex64
	default:
		return kindComplex128
	}
}

func kindName(k uint8) string {
	switch k {
	case kindFloat32:
		return "float32"
	case kindFloat64:
		return "float64"
	case kindComplex64:
		return "complex64"
	case kindComplex128:
		return "complex128"
	}
	return "unknown"
}

// kindSize returns the encoded bytes per value; complex kinds count both
// components.
func kindSize(k uint8) int {
	switch k {
	case kindFloat32:
		return 4
	case kindFloat64, kindComplex64:
		return 8
	case kindComplex128:
		return 16
	}
	return 0
}

const (
	fileHeaderSize    = 96
	sectionHeaderSize = 24
	codecNameSize     = 8
	sectionAlign      = 8
)

// fileHeader is the fixed header at the start of every container. Extra
// carries format-specific dimensions:
//
//	COO:   [nnz]
//	CSR:   [nnz]
//	DIA:   [diagonals, nnz]
//	ELL:   [width, nnz]
//	HYB:   [width, ell nnz, coo nnz]
//	Dense: unused
type fileHeader struct {
	Magic    uint32
	Version  uint32
	Format   uint8
	Kind     uint8
	Sections uint8
	Padding  [5]byte
	Codec    [codecNameSize]byte
	Rows     uint64
	Cols     uint64
	Extra    [4]uint64
	Reserved [24]byte
}

// sectionHeader describes one payload. EncLen 0 means the section is
// stored raw and occupies RawLen bytes; CRC covers the decoded payload.
type sectionHeader struct {
	RawLen  uint64
	EncLen  uint64
	CRC     uint32
	Padding [4]byte
}

// crcTable is the Castagnoli polynomial, hardware-accelerated on amd64
// and arm64.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

func checksum(b []byte) uint32 {
	return crc32.Checksum(b, crcTable)
}

func codecName(b [codecNameSize]byte) string {
	n := bytes.IndexByte(b[:], 0)
	if n < 0 {
		n = len(b)
	}
	return string(b[:n])
}
