package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/mem"
)

func TestNewAndFill(t *testing.T) {
	v := New[float64](5)
	assert.Equal(t, 5, v.Len())
	assert.Equal(t, mem.Host(), v.Space())
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, v.Data)

	v.Fill(3)
	assert.Equal(t, []float64{3, 3, 3, 3, 3}, v.Data)
	v.Free()
}

func TestNorm(t *testing.T) {
	v := FromSlice([]float64{3, 4})
	assert.Equal(t, 5.0, v.Norm())
}

func TestResizePreservesPrefix(t *testing.T) {
	v := FromSlice([]float64{1, 2, 3, 4})

	t.Run("shrink keeps prefix", func(t *testing.T) {
		require.NoError(t, v.Resize(2))
		assert.Equal(t, []float64{1, 2}, v.Data)
	})

	t.Run("grow zero-fills tail", func(t *testing.T) {
		require.NoError(t, v.Resize(4))
		assert.Equal(t, []float64{1, 2, 0, 0}, v.Data)
	})

	t.Run("grow past capacity reallocates", func(t *testing.T) {
		require.NoError(t, v.Resize(6))
		assert.Equal(t, []float64{1, 2, 0, 0, 0, 0}, v.Data)
	})
}

func TestSwap(t *testing.T) {
	a := FromSlice([]float32{1, 2})
	b := FromSlice([]float32{3, 4, 5})

	require.NoError(t, a.Swap(b))
	assert.Equal(t, []float32{3, 4, 5}, a.Data)
	assert.Equal(t, []float32{1, 2}, b.Data)

	t.Run("cross-space swap refused", func(t *testing.T) {
		dev := mem.New("dev", mem.WithCapacity(1<<10))
		c, err := NewOn[float32](dev, 2)
		require.NoError(t, err)
		defer c.Free()
		assert.ErrorIs(t, a.Swap(c), mem.ErrSpaceMismatch)
	})
}

func TestRebind(t *testing.T) {
	ctx := context.Background()
	dev := mem.New("dev", mem.WithCapacity(1<<16))

	v := FromSlice([]float64{1, 2, 3})
	d, err := v.Rebind(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, v.Data, d.Data)
	assert.Equal(t, dev, d.Space())
	assert.Equal(t, int64(24), dev.InUse())

	// Mutating the copy leaves the original alone: no aliasing.
	d.Data[0] = 99
	assert.Equal(t, 1.0, v.Data[0])

	d.Free()
	assert.Equal(t, int64(0), dev.InUse())
}

func TestRebindBudgetExhausted(t *testing.T) {
	dev := mem.New("dev", mem.WithCapacity(8))
	v := FromSlice([]float64{1, 2, 3})
	_, err := v.Rebind(context.Background(), dev)
	assert.ErrorIs(t, err, mem.ErrSpaceExhausted)
	assert.Equal(t, int64(0), dev.InUse())
}

func TestOnSpaceBudgetLifecycle(t *testing.T) {
	dev := mem.New("dev", mem.WithCapacity(64))

	v, err := NewOn[complex128](dev, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(64), dev.InUse())

	_, err = NewOn[complex128](dev, 1)
	assert.ErrorIs(t, err, mem.ErrSpaceExhausted)

	v.Free()
	v.Free() // idempotent
	assert.Equal(t, int64(0), dev.InUse())
}

func TestClone(t *testing.T) {
	v := FromSlice([]float64{7, 8})
	c, err := v.Clone()
	require.NoError(t, err)
	c.Data[0] = 0
	assert.Equal(t, 7.0, v.Data[0])
}
