package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

// Options holds the serialization parameters.
type Options struct {
	// Codec names the registered section compressor.
	Codec string
}

// DefaultOptions is the baseline configuration for Write.
var DefaultOptions = Options{
	Codec: CodecZstd,
}

// WithCodec selects the section compressor by registry name.
func WithCodec(name string) func(*Options) {
	return func(o *Options) { o.Codec = name }
}

// Write serializes m as a snapshot container. All six storage formats
// serialize through their native arrays.
func Write[T blas.Scalar](w io.Writer, m matrix.Matrix[T], optFns ...func(*Options)) error {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	codec, err := ByName(opts.Codec)
	if err != nil {
		return err
	}

	hdr, raws, err := disassemble[T](m)
	if err != nil {
		return err
	}
	copy(hdr.Codec[:], opts.Codec)

	sections := make([]sectionHeader, len(raws))
	payloads := make([][]byte, len(raws))
	for i, raw := range raws {
		sections[i].RawLen = uint64(len(raw))
		sections[i].CRC = checksum(raw)

		payloads[i] = raw
		if len(raw) == 0 {
			continue
		}
		enc, err := codec.Encode(raw)
		if err != nil {
			return fmt.Errorf("snapshot: encode section %d: %w", i, err)
		}
		// Marginal ratios stay raw so reads skip the decode.
		if enc != nil && float64(len(enc)) <= float64(len(raw))*0.9 {
			sections[i].EncLen = uint64(len(enc))
			payloads[i] = enc
		}
	}

	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, sections); err != nil {
		return fmt.Errorf("snapshot: write section table: %w", err)
	}

	var pad [sectionAlign]byte
	for i, payload := range payloads {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("snapshot: write section %d: %w", i, err)
		}
		if n := len(payload) % sectionAlign; n != 0 {
			if _, err := w.Write(pad[:sectionAlign-n]); err != nil {
				return fmt.Errorf("snapshot: write section %d: %w", i, err)
			}
		}
	}
	return nil
}

// disassemble splits m into its header and per-array payloads. The
// payloads may alias the matrix buffers.
func disassemble[T blas.Scalar](m matrix.Matrix[T]) (fileHeader, [][]byte, error) {
	rows, cols := m.Dims()
	hdr := fileHeader{
		Magic:   MagicNumber,
		Version: VersionNumber,
		Kind:    kindOf[T](),
		Rows:    uint64(rows),
		Cols:    uint64(cols),
	}

	var raws [][]byte
	switch a := m.(type) {
	case *matrix.COO[T]:
		hdr.Format = tagCOO
		hdr.Extra[0] = uint64(a.NumEntries())
		raws = [][]byte{intsToBytes(a.RowIndices), intsToBytes(a.ColIndices), valuesToBytes(a.Values)}
	case *matrix.CSR[T]:
		hdr.Format = tagCSR
		hdr.Extra[0] = uint64(a.NumEntries())
		raws = [][]byte{intsToBytes(a.RowOffsets), intsToBytes(a.ColIndices), valuesToBytes(a.Values)}
	case *matrix.DIA[T]:
		hdr.Format = tagDIA
		hdr.Extra[0] = uint64(a.NumDiagonals())
		hdr.Extra[1] = uint64(a.NumEntries())
		raws = [][]byte{intsToBytes(a.Offsets), valuesToBytes(a.Data)}
	case *matrix.ELL[T]:
		hdr.Format = tagELL
		hdr.Extra[0] = uint64(a.Width)
		hdr.Extra[1] = uint64(a.NumEntries())
		raws = [][]byte{intsToBytes(a.ColIndices), valuesToBytes(a.Values)}
	case *matrix.HYB[T]:
		if a.ELL == nil || a.COO == nil {
			return hdr, nil, fmt.Errorf("snapshot: incomplete HYB matrix")
		}
		hdr.Format = tagHYB
		hdr.Extra[0] = uint64(a.ELL.Width)
		hdr.Extra[1] = uint64(a.ELL.NumEntries())
		hdr.Extra[2] = uint64(a.COO.NumEntries())
		raws = [][]byte{
			intsToBytes(a.ELL.ColIndices), valuesToBytes(a.ELL.Values),
			intsToBytes(a.COO.RowIndices), intsToBytes(a.COO.ColIndices), valuesToBytes(a.COO.Values),
		}
	case *matrix.Dense[T]:
		hdr.Format = tagDense
		raws = [][]byte{valuesToBytes(a.Data)}
	default:
		return hdr, nil, fmt.Errorf("snapshot: unsupported matrix type %T", m)
	}
	hdr.Sections = uint8(len(raws))
	return hdr, raws, nil
}

// WriteFile saves m to path. The container is written to a temp file and
// renamed into place so readers never observe a partial write.
func WriteFile[T blas.Scalar](path string, m matrix.Matrix[T], optFns ...func(*Options)) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Write(buf, m, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}
