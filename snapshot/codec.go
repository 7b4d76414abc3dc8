package snapshot

import (
	"fmt"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses section payloads. Implementations must be safe for
// concurrent use.
type Codec interface {
	// Name returns the registry key, at most 8 bytes.
	Name() string

	// Encode compresses src into a fresh buffer. A nil result with nil
	// error marks src as incompressible; the writer then stores it raw.
	Encode(src []byte) ([]byte, error)

	// Decode decompresses src into a buffer of exactly rawLen bytes.
	// The result may alias src.
	Decode(src []byte, rawLen int) ([]byte, error)
}

// Codec names understood out of the box.
const (
	CodecRaw  = "raw"
	CodecZstd = "zstd"
	CodecLZ4  = "lz4"
)

var (
	codecsMu sync.RWMutex
	codecs   = make(map[string]Codec)
)

// Register makes a codec available to ByName, replacing any earlier codec
// of the same name. Panics on names the header cannot hold.
func Register(c Codec) {
	name := c.Name()
	if name == "" || len(name) > codecNameSize {
		panic(fmt.Sprintf("snapshot: invalid codec name %q", name))
	}

	codecsMu.Lock()
	defer codecsMu.Unlock()

	codecs[name] = c
}

// ByName looks up a registered codec.
func ByName(name string) (Codec, error) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Codecs returns the registered codec names in sorted order.
func Codecs() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(rawCodec{})
	Register(zstdCodec{})
	Register(lz4Codec{})
}

// rawCodec stores payloads unchanged.
type rawCodec struct{}

func (rawCodec) Name() string { return CodecRaw }

func (rawCodec) Encode(src []byte) ([]byte, error) { return nil, nil }

func (rawCodec) Decode(src []byte, rawLen int) ([]byte, error) {
	if len(src) != rawLen {
		return nil, fmt.Errorf("%w: raw section holds %d bytes, want %d", ErrCorrupt, len(src), rawLen)
	}
	return src, nil
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	// Level 3 balances compression ratio vs speed
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// zstdCodec compresses with zstd (better ratio, good for cold data).
type zstdCodec struct{}

func (zstdCodec) Name() string { return CodecZstd }

func (zstdCodec) Encode(src []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(src, nil), nil
}

func (zstdCodec) Decode(src []byte, rawLen int) ([]byte, error) {
	dec := getZstdDecoder()
	defer putZstdDecoder(dec)

	out, err := dec.DecodeAll(src, make([]byte, 0, rawLen))
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd decode: %w", err)
	}
	if len(out) != rawLen {
		return nil, fmt.Errorf("%w: zstd section decodes to %d bytes, want %d", ErrCorrupt, len(out), rawLen)
	}
	return out, nil
}

// lz4Codec compresses with LZ4 blocks (fast, good for hot data).
type lz4Codec struct{}

func (lz4Codec) Name() string { return CodecLZ4 }

func (lz4Codec) Encode(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: lz4 encode: %w", err)
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return dst[:n], nil
}

func (lz4Codec) Decode(src []byte, rawLen int) ([]byte, error) {
	dst := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("snapshot: lz4 decode: %w", err)
	}
	if n != rawLen {
		return nil, fmt.Errorf("%w: lz4 section decodes to %d bytes, want %d", ErrCorrupt, n, rawLen)
	}
	return dst, nil
}
