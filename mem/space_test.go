package mem

import (
	"context"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostSpace(t *testing.T) {
	h := Host()
	assert.Equal(t, "host", h.Name())

	buf, err := Make[float64](h, 100)
	require.NoError(t, err)
	assert.Len(t, buf, 100)
	assert.Equal(t, int64(800), h.InUse())

	Release(h, buf)
	assert.Equal(t, int64(0), h.InUse())
}

func TestMakeAlignment(t *testing.T) {
	for _, n := range []int{1, 7, 64, 1000} {
		buf, err := Make[float32](Host(), n)
		require.NoError(t, err)
		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Zero(t, addr%Alignment, "allocation of %d elements not aligned", n)
		Release(Host(), buf)
	}
}

func TestMakeZeroLength(t *testing.T) {
	buf, err := Make[int](Host(), 0)
	require.NoError(t, err)
	assert.Nil(t, buf)
}

func TestBoundedSpaceBudget(t *testing.T) {
	s := New("accel0", WithCapacity(1024))

	a, err := Make[byte](s, 512)
	require.NoError(t, err)
	assert.Equal(t, int64(512), s.InUse())

	b, err := Make[byte](s, 512)
	require.NoError(t, err)

	_, err = Make[byte](s, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpaceExhausted)

	Release(s, a)
	c, err := Make[byte](s, 256)
	require.NoError(t, err)
	assert.Equal(t, int64(768), s.InUse())

	Release(s, b)
	Release(s, c)
	assert.Equal(t, int64(0), s.InUse())
}

func TestReserveBlocksUntilReleased(t *testing.T) {
	s := New("small", WithCapacity(100))
	require.NoError(t, s.Reserve(context.Background(), 100))

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- s.Reserve(ctx, 50)
	}()

	time.Sleep(20 * time.Millisecond)
	s.ReleaseBytes(60)

	require.NoError(t, <-done)
	assert.Equal(t, int64(90), s.InUse())
}

func TestReserveCanceled(t *testing.T) {
	s := New("tiny", WithCapacity(10))
	require.NoError(t, s.Reserve(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Reserve(ctx, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(10), s.InUse())
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, int64(32), SizeOf[float64](4))
	assert.Equal(t, int64(64), SizeOf[complex128](4))
	assert.Equal(t, int64(4), SizeOf[byte](4))
}
