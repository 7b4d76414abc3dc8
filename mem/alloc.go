package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer handed out by a space.
// 64 bytes keeps rows of strided formats cache-line aligned and leaves the
// door open for vectorized kernels.
const Alignment = 64

// Element constrains the buffer element types spaces allocate: the scalar
// kinds, indices, and raw bytes.
type Element interface {
	float32 | float64 | complex64 | complex128 | int | int64 | byte
}

// Make allocates an n-element buffer charged to s, aligned to Alignment.
// Returns ErrSpaceExhausted when the space's budget cannot fit it. A zero n
// yields a nil slice and charges nothing.
func Make[T Element](s *Space, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	var zero T
	bytes := int64(n) * int64(unsafe.Sizeof(zero))
	if err := s.reserve(bytes); err != nil {
		return nil, err
	}
	raw := allocAligned(int(bytes))
	ptr := unsafe.Pointer(&raw[0])
	return unsafe.Slice((*T)(ptr), n), nil
}

// Release returns the budget held by a buffer obtained from Make. Pass the
// slice exactly as returned; subslices under-release. Safe on nil.
func Release[T Element](s *Space, buf []T) {
	if len(buf) == 0 {
		return
	}
	var zero T
	s.ReleaseBytes(int64(len(buf)) * int64(unsafe.Sizeof(zero)))
}

// SizeOf returns the byte footprint of an n-element buffer of T, the amount
// Make would charge.
func SizeOf[T Element](n int) int64 {
	var zero T
	return int64(n) * int64(unsafe.Sizeof(zero))
}

// allocAligned allocates size bytes whose first byte sits on an Alignment
// boundary. Slightly over-allocates; the backing array stays alive through
// the returned slice.
func allocAligned(size int) []byte {
	buf := make([]byte, size+Alignment)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)
	return buf[offset : offset+uintptr(size)]
}
