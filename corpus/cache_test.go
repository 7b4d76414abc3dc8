package corpus

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStorePullThrough(t *testing.T) {
	ctx := context.Background()
	remote := Memory()
	require.NoError(t, remote.PutBytes(ctx, "a.mtx", []byte("matrix bytes")))

	cache := Cache(remote, t.TempDir())

	blob, err := cache.Open(ctx, "a.mtx")
	require.NoError(t, err)
	data, err := io.ReadAll(blob.Reader())
	require.NoError(t, err)
	assert.Equal(t, "matrix bytes", string(data))
	require.NoError(t, blob.Close())
	assert.Equal(t, int64(1), cache.Fetches())

	// Second open is served from disk.
	blob, err = cache.Open(ctx, "a.mtx")
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	assert.Equal(t, int64(1), cache.Fetches())

	_, err = cache.Open(ctx, "missing.mtx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheStoreDedup(t *testing.T) {
	ctx := context.Background()
	remote := Memory()
	require.NoError(t, remote.PutBytes(ctx, "hot.mtx", []byte("contended")))

	cache := Cache(remote, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			blob, err := cache.Open(ctx, "hot.mtx")
			assert.NoError(t, err)
			if blob != nil {
				_ = blob.Close()
			}
		}()
	}
	wg.Wait()

	// Singleflight collapses the concurrent misses; a few distinct
	// flights are possible when goroutines miss at different times,
	// but nowhere near one fetch per caller.
	assert.LessOrEqual(t, cache.Fetches(), int64(4))
}

func TestCacheStorePrefetch(t *testing.T) {
	ctx := context.Background()
	remote := Memory()
	var names []string
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("m%d.mtx", i)
		require.NoError(t, remote.PutBytes(ctx, name, []byte{byte(i)}))
		names = append(names, name)
	}

	cache := Cache(remote, t.TempDir())
	require.NoError(t, cache.Prefetch(ctx, 3, names...))
	assert.Equal(t, int64(8), cache.Fetches())

	// All warmed: no new fetches on open.
	for _, name := range names {
		blob, err := cache.Open(ctx, name)
		require.NoError(t, err)
		require.NoError(t, blob.Close())
	}
	assert.Equal(t, int64(8), cache.Fetches())

	// Prefetching again is a no-op.
	require.NoError(t, cache.Prefetch(ctx, 3, names...))
	assert.Equal(t, int64(8), cache.Fetches())

	list, err := cache.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 8)
}
