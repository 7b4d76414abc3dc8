package corpus

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CacheStore is a pull-through disk cache in front of a remote store.
// The first Open of a name downloads the whole blob into dir; later
// opens are served from the local memory-mapped copy. Concurrent
// fetches of the same name are deduplicated.
//
// Blobs are immutable, so cached copies never expire; wipe dir to
// invalidate.
type CacheStore struct {
	remote Store
	local  *LocalStore
	dir    string

	group   singleflight.Group
	fetches atomic.Int64
}

// fetcher is the whole-blob fast path a remote store may offer (the S3
// store routes it through the transfer manager).
type fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Cache wraps remote with a disk cache rooted at dir.
func Cache(remote Store, dir string) *CacheStore {
	return &CacheStore{
		remote: remote,
		local:  Local(dir),
		dir:    dir,
	}
}

// Open returns the cached blob, filling the cache on a miss.
func (s *CacheStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.local.Open(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := s.fill(ctx, name); err != nil {
		return nil, err
	}
	return s.local.Open(ctx, name)
}

// List always consults the remote store: the cache holds a subset.
func (s *CacheStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}

// Prefetch warms the cache for the given names, at most limit fetches
// in flight (limit <= 0 means 4). The first error cancels the rest.
func (s *CacheStore) Prefetch(ctx context.Context, limit int, names ...string) error {
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, name := range names {
		g.Go(func() error {
			if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
				return nil
			}
			return s.fill(ctx, name)
		})
	}
	return g.Wait()
}

// Fetches reports how many remote downloads the cache has performed.
func (s *CacheStore) Fetches() int64 {
	return s.fetches.Load()
}

// fill downloads name into the cache directory. Singleflight collapses
// concurrent fills of the same name into one download.
func (s *CacheStore) fill(ctx context.Context, name string) error {
	_, err, _ := s.group.Do(name, func() (any, error) {
		s.fetches.Add(1)

		if f, ok := s.remote.(fetcher); ok {
			data, err := f.Fetch(ctx, name)
			if err != nil {
				return nil, err
			}
			return nil, s.local.Put(ctx, name, bytes.NewReader(data), int64(len(data)))
		}

		blob, err := s.remote.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer func() { _ = blob.Close() }()
		return nil, s.local.Put(ctx, name, blob.Reader(), blob.Size())
	})
	return err
}
