// Package compute provides the persistent worker pool the product kernels
// run on. A Pool is created once and reused across many operations; chunk
// boundaries depend only on (n, grain, workers), never on scheduling, so
// kernels that reduce per chunk stay deterministic.
//
// A nil *Pool is valid everywhere and means serial execution.
package compute

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines fed through a single channel.
type Pool struct {
	workers   int
	workC     chan workItem
	closeOnce sync.Once
	closed    atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// NewPool creates a pool with the given number of workers, spawned
// immediately. workers <= 0 selects GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		workC:   make(chan workItem, workers*2),
	}
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// Workers returns the worker count; a nil pool reports 1.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Close shuts the pool down after pending work completes. Safe to call more
// than once; parallel calls on a closed pool fall back to serial.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// NumChunks returns how many chunks ForEachChunk will produce for n items
// with the given minimum chunk size. Deterministic for fixed pool size.
func (p *Pool) NumChunks(n, grain int) int {
	if n <= 0 {
		return 0
	}
	size := chunkSize(n, grain, p.Workers())
	return (n + size - 1) / size
}

// ForEachChunk partitions [0, n) into NumChunks contiguous chunks and calls
// fn once per chunk with its index and bounds, in parallel. Blocks until all
// chunks complete. A panic in any chunk is re-raised on the caller after the
// remaining chunks finish.
func (p *Pool) ForEachChunk(n, grain int, fn func(chunk, start, end int)) {
	if n <= 0 {
		return
	}

	size := chunkSize(n, grain, p.Workers())
	chunks := (n + size - 1) / size

	if p == nil || chunks == 1 || p.closed.Load() {
		for c := 0; c < chunks; c++ {
			start := c * size
			end := min(start+size, n)
			fn(c, start, end)
		}
		return
	}

	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicked  any
	)
	wg.Add(chunks)
	for c := 0; c < chunks; c++ {
		start := c * size
		end := min(start+size, n)
		chunk := c
		p.workC <- workItem{
			fn: func() {
				defer func() {
					if r := recover(); r != nil {
						panicOnce.Do(func() { panicked = r })
					}
				}()
				fn(chunk, start, end)
			},
			barrier: &wg,
		}
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
}

// ParallelFor runs fn over contiguous ranges covering [0, n). Equivalent to
// ForEachChunk without the chunk index.
func (p *Pool) ParallelFor(n, grain int, fn func(start, end int)) {
	p.ForEachChunk(n, grain, func(_, start, end int) { fn(start, end) })
}

// chunkSize spreads n items over the workers, never below grain.
func chunkSize(n, grain, workers int) int {
	if grain < 1 {
		grain = 1
	}
	size := (n + workers - 1) / workers
	if size < grain {
		size = grain
	}
	return size
}
