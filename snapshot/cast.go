package snapshot

import (
	"encoding/binary"
	"math"
	"strconv"
	"unsafe"

	"github.com/hupe1980/sparsego/blas"
)

// Payloads are reinterpreted in place when the host matches the wire
// layout and the buffer is suitably aligned; otherwise they are encoded
// or decoded element-wise. Index sections additionally need a 64-bit int.

var hostLittleEndian = func() bool {
	var test uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&test)) == 1
}()

func alignedTo(b []byte, align uintptr) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))%align == 0
}

// intsToBytes views an index array as little-endian int64 payload bytes.
func intsToBytes(xs []int) []byte {
	if len(xs) == 0 {
		return nil
	}
	if hostLittleEndian && strconv.IntSize == 64 {
		return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(xs))), len(xs)*8)
	}

	out := make([]byte, 0, len(xs)*8)
	for _, x := range xs {
		out = binary.LittleEndian.AppendUint64(out, uint64(int64(x)))
	}
	return out
}

// intsFromBytes reinterprets or decodes a little-endian int64 payload.
// The result may alias b.
func intsFromBytes(b []byte) []int {
	n := len(b) / 8
	if n == 0 {
		return nil
	}
	if hostLittleEndian && strconv.IntSize == 64 && alignedTo(b, 8) {
		return unsafe.Slice((*int)(unsafe.Pointer(unsafe.SliceData(b))), n)
	}

	out := make([]int, n)
	for i := range out {
		out[i] = int(int64(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return out
}

// valuesToBytes views a value array as little-endian payload bytes.
func valuesToBytes[T blas.Scalar](vals []T) []byte {
	if len(vals) == 0 {
		return nil
	}

	var z T
	size := int(unsafe.Sizeof(z))
	if hostLittleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(vals))), len(vals)*size)
	}

	out := make([]byte, 0, len(vals)*size)
	switch vs := any(vals).(type) {
	case []float32:
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	case []float64:
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
		}
	case []complex64:
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(real(v)))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(imag(v)))
		}
	case []complex128:
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(real(v)))
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(imag(v)))
		}
	}
	return out
}

// valuesFromBytes reinterprets or decodes a little-endian value payload.
// The result may alias b.
func valuesFromBytes[T blas.Scalar](b []byte) []T {
	var z T
	size := int(unsafe.Sizeof(z))
	n := len(b) / size
	if n == 0 {
		return nil
	}
	if hostLittleEndian && alignedTo(b, unsafe.Alignof(z)) {
		return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
	}

	out := make([]T, n)
	switch vs := any(out).(type) {
	case []float32:
		for i := range vs {
			vs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
	case []float64:
		for i := range vs {
			vs[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	case []complex64:
		for i := range vs {
			re := math.Float32frombits(binary.LittleEndian.Uint32(b[i*8:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(b[i*8+4:]))
			vs[i] = complex(re, im)
		}
	case []complex128:
		for i := range vs {
			re := math.Float64frombits(binary.LittleEndian.Uint64(b[i*16:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(b[i*16+8:]))
			vs[i] = complex(re, im)
		}
	}
	return out
}
