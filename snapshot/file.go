package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/internal/mmap"
	"github.com/hupe1980/sparsego/matrix"
)

// File is an open snapshot container backed by a memory mapping. The
// metadata is parsed eagerly; section payloads stay untouched until Load.
type File struct {
	mapping    *mmap.Mapping
	header     fileHeader
	sections   []sectionHeader
	offsets    []int
	rows, cols int
}

// Open maps the container at path and parses its metadata.
func Open(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	f, err := parseFile(m)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return f, nil
}

func parseFile(m *mmap.Mapping) (*File, error) {
	r := bytes.NewReader(m.Bytes())

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if err := checkContainer(hdr); err != nil {
		return nil, err
	}
	rows, err := dimension(hdr.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := dimension(hdr.Cols)
	if err != nil {
		return nil, err
	}

	sections := make([]sectionHeader, hdr.Sections)
	if err := binary.Read(r, binary.LittleEndian, sections); err != nil {
		return nil, fmt.Errorf("snapshot: read section table: %w", err)
	}

	offsets := make([]int, len(sections))
	off := fileHeaderSize + len(sections)*sectionHeaderSize
	for i, s := range sections {
		_, stored, err := sectionLens(s)
		if err != nil {
			return nil, fmt.Errorf("snapshot: section %d: %w", i, err)
		}
		offsets[i] = off
		off += stored
		if n := stored % sectionAlign; n != 0 {
			off += sectionAlign - n
		}
		if off > m.Size() || off < offsets[i] {
			return nil, fmt.Errorf("%w: section %d extends beyond file", ErrCorrupt, i)
		}
	}

	// Loads walk the sections front to back.
	_ = m.Advise(mmap.AccessSequential)

	return &File{mapping: m, header: hdr, sections: sections, offsets: offsets, rows: rows, cols: cols}, nil
}

// Format returns the stored matrix format.
func (f *File) Format() matrix.Format {
	fm, _ := tagFormat(f.header.Format) // validated during Open
	return fm
}

// Kind returns the stored value kind name, one of float32, float64,
// complex64 and complex128.
func (f *File) Kind() string { return kindName(f.header.Kind) }

// Codec returns the section compressor name.
func (f *File) Codec() string { return codecName(f.header.Codec) }

// Dims returns the stored shape.
func (f *File) Dims() (rows, cols int) { return f.rows, f.cols }

// NumSections returns the payload section count.
func (f *File) NumSections() int { return len(f.sections) }

// Close unmaps the container. Matrices served zero-copy out of the
// mapping must not be used afterwards.
func (f *File) Close() error { return f.mapping.Close() }

// Load materializes the stored matrix. Raw-coded sections are served
// zero-copy out of the read-only mapping on little-endian hosts, so the
// File must stay open while the matrix is in use and its arrays must not
// be written to; compressed sections decode into fresh memory. Fails
// with ErrValueKind when T disagrees with the stored kind.
func Load[T blas.Scalar](f *File) (matrix.Matrix[T], error) {
	if err := checkKind[T](f.header); err != nil {
		return nil, err
	}

	codec, err := ByName(f.Codec())
	if err != nil {
		return nil, err
	}

	raws := make([][]byte, len(f.sections))
	for i, s := range f.sections {
		raw, err := f.section(i, s, codec)
		if err != nil {
			return nil, fmt.Errorf("snapshot: section %d: %w", i, err)
		}
		raws[i] = raw
	}

	return assemble[T](f.header, raws)
}

func (f *File) section(i int, s sectionHeader, codec Codec) ([]byte, error) {
	rawLen, stored, err := sectionLens(s)
	if err != nil {
		return nil, err
	}

	region, err := f.mapping.Region(f.offsets[i], stored)
	if err != nil {
		return nil, err
	}

	decoded := region.Bytes()
	if s.EncLen != 0 {
		if decoded, err = codec.Decode(decoded, rawLen); err != nil {
			return nil, err
		}
	}
	if got := checksum(decoded); got != s.CRC {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksum, got, s.CRC)
	}
	return decoded, nil
}
