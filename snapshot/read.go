package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/internal/conv"
	"github.com/hupe1980/sparsego/matrix"
)

// Read deserializes a container from r, returning the concrete stored
// format. Fails with ErrValueKind when T disagrees with the stored kind.
func Read[T blas.Scalar](r io.Reader) (matrix.Matrix[T], error) {
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if err := checkContainer(hdr); err != nil {
		return nil, err
	}
	if err := checkKind[T](hdr); err != nil {
		return nil, err
	}

	codec, err := ByName(codecName(hdr.Codec))
	if err != nil {
		return nil, err
	}

	sections := make([]sectionHeader, hdr.Sections)
	if err := binary.Read(r, binary.LittleEndian, sections); err != nil {
		return nil, fmt.Errorf("snapshot: read section table: %w", err)
	}

	raws := make([][]byte, len(sections))
	for i, s := range sections {
		raw, err := readSection(r, s, codec)
		if err != nil {
			return nil, fmt.Errorf("snapshot: section %d: %w", i, err)
		}
		raws[i] = raw
	}

	return assemble[T](hdr, raws)
}

// ReadFile reads a container from disk through a buffered reader.
func ReadFile[T blas.Scalar](path string) (matrix.Matrix[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read[T](bufio.NewReaderSize(f, 256*1024))
}

func checkContainer(hdr fileHeader) error {
	if hdr.Magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, hdr.Magic)
	}
	if hdr.Version != VersionNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, hdr.Version)
	}
	f, ok := tagFormat(hdr.Format)
	if !ok {
		return fmt.Errorf("%w: unknown format tag %d", ErrCorrupt, hdr.Format)
	}
	if kindSize(hdr.Kind) == 0 {
		return fmt.Errorf("%w: unknown value kind %d", ErrCorrupt, hdr.Kind)
	}
	if want := sectionCount(hdr.Format); int(hdr.Sections) != want {
		return fmt.Errorf("%w: %s container with %d sections, want %d", ErrCorrupt, f, hdr.Sections, want)
	}
	return nil
}

func checkKind[T blas.Scalar](hdr fileHeader) error {
	if want := kindOf[T](); hdr.Kind != want {
		return fmt.Errorf("%w: container holds %s, requested %s", ErrValueKind, kindName(hdr.Kind), kindName(want))
	}
	return nil
}

func sectionLens(s sectionHeader) (rawLen, stored int, err error) {
	rawLen, err = conv.Uint64ToInt(s.RawLen)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	stored, err = conv.Uint64ToInt(s.EncLen)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if stored == 0 {
		stored = rawLen
	}
	return rawLen, stored, nil
}

func readSection(r io.Reader, s sectionHeader, codec Codec) ([]byte, error) {
	rawLen, stored, err := sectionLens(s)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, stored)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n := stored % sectionAlign; n != 0 {
		var pad [sectionAlign]byte
		if _, err := io.ReadFull(r, pad[:sectionAlign-n]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	decoded := payload
	if s.EncLen != 0 {
		if decoded, err = codec.Decode(payload, rawLen); err != nil {
			return nil, err
		}
	}
	if got := checksum(decoded); got != s.CRC {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksum, got, s.CRC)
	}
	return decoded, nil
}

// assemble validates the decoded payloads against the header dimensions
// and wraps them into the stored format without copying.
func assemble[T blas.Scalar](hdr fileHeader, raws [][]byte) (matrix.Matrix[T], error) {
	rows, err := dimension(hdr.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := dimension(hdr.Cols)
	if err != nil {
		return nil, err
	}
	size := kindSize(hdr.Kind)

	switch hdr.Format {
	case tagCOO:
		nnz, err := dimension(hdr.Extra[0])
		if err != nil {
			return nil, err
		}
		if err := wantLens(raws, nnz*8, nnz*8, nnz*size); err != nil {
			return nil, err
		}
		m, err := matrix.COOFromParts(rows, cols, intsFromBytes(raws[0]), intsFromBytes(raws[1]), valuesFromBytes[T](raws[2]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](m)

	case tagCSR:
		nnz, err := dimension(hdr.Extra[0])
		if err != nil {
			return nil, err
		}
		if err := wantLens(raws, (rows+1)*8, nnz*8, nnz*size); err != nil {
			return nil, err
		}
		m, err := matrix.CSRFromParts(rows, cols, intsFromBytes(raws[0]), intsFromBytes(raws[1]), valuesFromBytes[T](raws[2]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](m)

	case tagDIA:
		diagonals, err := dimension(hdr.Extra[0])
		if err != nil {
			return nil, err
		}
		nnz, err := dimension(hdr.Extra[1])
		if err != nil {
			return nil, err
		}
		stride := max(rows, cols)
		if err := wantLens(raws, diagonals*8, diagonals*stride*size); err != nil {
			return nil, err
		}
		m, err := matrix.DIAFromParts(rows, cols, nnz, intsFromBytes(raws[0]), valuesFromBytes[T](raws[1]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](m)

	case tagELL:
		width, err := dimension(hdr.Extra[0])
		if err != nil {
			return nil, err
		}
		nnz, err := dimension(hdr.Extra[1])
		if err != nil {
			return nil, err
		}
		if err := wantLens(raws, width*rows*8, width*rows*size); err != nil {
			return nil, err
		}
		m, err := matrix.ELLFromParts(rows, cols, nnz, width, intsFromBytes(raws[0]), valuesFromBytes[T](raws[1]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](m)

	case tagHYB:
		width, err := dimension(hdr.Extra[0])
		if err != nil {
			return nil, err
		}
		ellNNZ, err := dimension(hdr.Extra[1])
		if err != nil {
			return nil, err
		}
		cooNNZ, err := dimension(hdr.Extra[2])
		if err != nil {
			return nil, err
		}
		if err := wantLens(raws, width*rows*8, width*rows*size, cooNNZ*8, cooNNZ*8, cooNNZ*size); err != nil {
			return nil, err
		}
		ell, err := matrix.ELLFromParts(rows, cols, ellNNZ, width, intsFromBytes(raws[0]), valuesFromBytes[T](raws[1]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		coo, err := matrix.COOFromParts(rows, cols, intsFromBytes(raws[2]), intsFromBytes(raws[3]), valuesFromBytes[T](raws[4]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](&matrix.HYB[T]{ELL: ell, COO: coo})

	case tagDense:
		if err := wantLens(raws, rows*cols*size); err != nil {
			return nil, err
		}
		m, err := matrix.DenseFromParts(rows, cols, valuesFromBytes[T](raws[0]))
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		return validated[T](m)
	}
	return nil, fmt.Errorf("%w: unknown format tag %d", ErrCorrupt, hdr.Format)
}

func dimension(v uint64) (int, error) {
	n, err := conv.Uint64ToInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return n, nil
}

func wantLens(raws [][]byte, sizes ...int) error {
	for i, want := range sizes {
		if len(raws[i]) != want {
			return fmt.Errorf("%w: section %d holds %d bytes, want %d", ErrCorrupt, i, len(raws[i]), want)
		}
	}
	return nil
}

type validator interface {
	Validate() error
}

// validated runs the format's own structural checks so a container that
// passes its checksums still cannot smuggle out-of-range indices in.
func validated[T blas.Scalar](m matrix.Matrix[T]) (matrix.Matrix[T], error) {
	if err := m.(validator).Validate(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return m, nil
}
