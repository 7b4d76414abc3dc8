package mem

import (
	"context"
	"unsafe"
)

// transferChunk is the granularity of cross-space copies. Each chunk is a
// separate pacing unit, so cancellation and throttling act at this
// resolution.
const transferChunk = 1 << 20

// Copy moves src (living in srcSpace) into dst (living in dstSpace) as an
// ordered, synchronous bulk transfer. Both limiters are consulted per chunk;
// ctx cancels between chunks. Lengths must match.
//
// Copy is the only sanctioned way to move data across spaces. Same-space
// copies are allowed and still pace against the space's limiter.
func Copy[T Element](ctx context.Context, dst []T, dstSpace *Space, src []T, srcSpace *Space) error {
	if len(dst) != len(src) {
		return ErrSizeMismatch
	}
	if len(src) == 0 {
		return nil
	}

	var zero T
	elem := int(unsafe.Sizeof(zero))

	// A chunk must fit in both limiters' bursts or WaitN can never admit it.
	maxBytes := transferChunk
	if b := srcSpace.transferBurst(); b < maxBytes {
		maxBytes = b
	}
	if b := dstSpace.transferBurst(); b < maxBytes {
		maxBytes = b
	}
	perChunk := maxBytes / elem
	if perChunk < 1 {
		perChunk = 1
	}

	for off := 0; off < len(src); off += perChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := off + perChunk
		if end > len(src) {
			end = len(src)
		}
		nbytes := (end - off) * elem
		if err := srcSpace.waitTransfer(ctx, nbytes); err != nil {
			return err
		}
		if dstSpace != srcSpace {
			if err := dstSpace.waitTransfer(ctx, nbytes); err != nil {
				return err
			}
		}
		copy(dst[off:end], src[off:end])
	}
	return nil
}
