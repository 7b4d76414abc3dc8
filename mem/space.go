package mem

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrSpaceExhausted is returned when an allocation does not fit in a
	// bounded space's remaining budget.
	ErrSpaceExhausted = errors.New("mem: space exhausted")

	// ErrSpaceMismatch is returned by operations that require both operands
	// to live in the same space, such as O(1) buffer swaps.
	ErrSpaceMismatch = errors.New("mem: containers belong to different spaces")

	// ErrSizeMismatch is returned by Copy when source and destination
	// lengths differ.
	ErrSizeMismatch = errors.New("mem: transfer size mismatch")
)

// Options holds the construction parameters of a bounded space.
type Options struct {
	// CapacityBytes is the hard limit for resident bytes. If 0, the space
	// only tracks usage without enforcing a limit.
	CapacityBytes int64

	// TransferBytesPerSec paces transfers in and out of the space.
	// If 0, transfers are unthrottled.
	TransferBytesPerSec float64
}

// DefaultOptions is the baseline configuration for New.
var DefaultOptions = Options{
	CapacityBytes:       0,
	TransferBytesPerSec: 0,
}

// WithCapacity sets the hard byte budget of the space.
func WithCapacity(bytes int64) func(*Options) {
	return func(o *Options) { o.CapacityBytes = bytes }
}

// WithTransferRate sets the sustained transfer bandwidth in bytes per
// second.
func WithTransferRate(bytesPerSec float64) func(*Options) {
	return func(o *Options) { o.TransferBytesPerSec = bytesPerSec }
}

// Space is a memory location tag. The zero value is not usable; construct
// spaces with Host or New.
type Space struct {
	name string

	sem  *semaphore.Weighted // nil if unlimited
	lim  *rate.Limiter       // nil if unthrottled
	used atomic.Int64
}

var hostSpace = &Space{name: "host"}

// Host returns the process-wide host space: unbounded and unthrottled.
func Host() *Space { return hostSpace }

// New creates a named bounded space.
func New(name string, optFns ...func(*Options)) *Space {
	o := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	s := &Space{name: name}
	if o.CapacityBytes > 0 {
		s.sem = semaphore.NewWeighted(o.CapacityBytes)
	}
	if o.TransferBytesPerSec > 0 {
		burst := int(o.TransferBytesPerSec)
		if burst < minTransferBurst {
			burst = minTransferBurst
		}
		if burst > transferChunk {
			burst = transferChunk
		}
		s.lim = rate.NewLimiter(rate.Limit(o.TransferBytesPerSec), burst)
	}
	return s
}

// minTransferBurst keeps WaitN satisfiable for any element size even at
// absurdly small rates.
const minTransferBurst = 4096

// Name returns the space's name; the host space is named "host".
func (s *Space) Name() string { return s.name }

// InUse returns the bytes currently charged to the space.
func (s *Space) InUse() int64 { return s.used.Load() }

// Reserve blocks until n bytes of budget are available or ctx is done.
// Allocation helpers use the non-blocking path; Reserve exists for staged
// pipelines that would rather wait than fail.
func (s *Space) Reserve(ctx context.Context, n int64) error {
	if n <= 0 {
		return nil
	}
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, n); err != nil {
			return err
		}
	}
	s.used.Add(n)
	return nil
}

// reserve is the non-blocking budget charge behind Make.
func (s *Space) reserve(n int64) error {
	if n <= 0 {
		return nil
	}
	if s.sem != nil && !s.sem.TryAcquire(n) {
		return fmt.Errorf("%w: space %q cannot fit %d bytes (%d in use)",
			ErrSpaceExhausted, s.name, n, s.used.Load())
	}
	s.used.Add(n)
	return nil
}

// ReleaseBytes returns n bytes of budget to the space.
func (s *Space) ReleaseBytes(n int64) {
	if n <= 0 {
		return
	}
	if s.sem != nil {
		s.sem.Release(n)
	}
	s.used.Add(-n)
}

// waitTransfer paces one transfer chunk against the space's limiter.
func (s *Space) waitTransfer(ctx context.Context, n int) error {
	if s.lim == nil {
		return nil
	}
	return s.lim.WaitN(ctx, n)
}

// transferBurst returns the largest chunk the limiter admits at once.
func (s *Space) transferBurst() int {
	if s.lim == nil {
		return transferChunk
	}
	return s.lim.Burst()
}
