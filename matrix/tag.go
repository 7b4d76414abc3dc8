package matrix

import (
	"github.com/hupe1980/sparsego/mem"
)

// tag records which space a container's buffers were allocated from. A nil
// space marks a literal-constructed container whose buffers were never
// charged anywhere; such containers behave as host-resident and skip budget
// bookkeeping.
type tag struct {
	space *mem.Space
}

// Space returns the memory space the container lives in.
func (t tag) Space() *mem.Space {
	if t.space == nil {
		return mem.Host()
	}
	return t.space
}

func (t tag) tracked() bool { return t.space != nil }

// allocBuf allocates n elements in the container's space, or untracked for
// literal containers.
func allocBuf[T mem.Element](t tag, n int) ([]T, error) {
	if !t.tracked() {
		return make([]T, n), nil
	}
	return mem.Make[T](t.space, n)
}

// freeBuf returns a buffer's budget if the container is tracked.
func freeBuf[T mem.Element](t tag, buf []T) {
	if t.tracked() {
		mem.Release(t.space, buf[:cap(buf)])
	}
}

// resizeBuf grows or shrinks a buffer preserving the common prefix; growth
// zero-fills. Shrinks keep capacity.
func resizeBuf[T mem.Element](t tag, buf []T, n int) ([]T, error) {
	switch {
	case n == len(buf):
		return buf, nil
	case n <= cap(buf):
		old := len(buf)
		buf = buf[:n]
		var zero T
		for i := old; i < n; i++ {
			buf[i] = zero
		}
		return buf, nil
	}
	nb, err := allocBuf[T](t, n)
	if err != nil {
		return nil, err
	}
	copy(nb, buf)
	freeBuf(t, buf)
	return nb, nil
}

// copyBuf duplicates a buffer inside the container's space.
func copyBuf[T mem.Element](t tag, buf []T) ([]T, error) {
	nb, err := allocBuf[T](t, len(buf))
	if err != nil {
		return nil, err
	}
	copy(nb, buf)
	return nb, nil
}
