package corpus

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
// The default maps to os.ErrNotExist so plain filesystem errors pass
// the same test.
var ErrNotFound = os.ErrNotExist

// Store is a read-only collection of named matrix blobs.
type Store interface {
	// Open opens a blob for reading. Returns ErrNotFound when the
	// name does not exist.
	Open(ctx context.Context, name string) (Blob, error)

	// List returns the blob names under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to one matrix blob.
type Blob interface {
	io.ReaderAt
	io.Closer

	// Size returns the blob length in bytes.
	Size() int64

	// Reader returns a fresh sequential reader over the whole blob.
	Reader() io.Reader
}

// Putter is an optional interface for stores that accept uploads.
// size may be -1 when unknown; stores that need it buffer the stream.
type Putter interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}

// sectionReader adapts any Blob to a sequential Reader.
func blobReader(b Blob) io.Reader {
	return io.NewSectionReader(b, 0, b.Size())
}
