// Package workerpool provides a persistent fork-join worker pool for the
// compute kernel. A Pool is created once and reused across operations, so a
// Sum or Scale call pays for a channel send per lane instead of a goroutine
// spawn.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(rows, func(start, end int) {
//		scaleRows(start, end)
//	})
//
// Every Parallel* call blocks until all of its work has finished (the join
// barrier), so callers may read results immediately after it returns.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem represents one lane's share of a parallel operation.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	for range numWorkers {
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

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe. Close must not race with a
// Parallel* call on the same pool.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor executes fn over [0, n) split into contiguous chunks, one per
// worker. Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	if p.closed.Load() {
		fn(0, n)
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}

		p.workC <- workItem{
			fn: func() {
				fn(start, end)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}

// ParallelLanes calls fn once for every lane index in [0, lanes) and blocks
// until all calls return. Lanes may exceed the number of workers; extra lanes
// queue behind busy workers.
//
// Unlike ParallelFor the split of work is left to fn, which makes strided
// assignments (lane i handles items i, i+lanes, i+2*lanes, ...) possible.
// On a closed pool the lanes run sequentially in index order.
func (p *Pool) ParallelLanes(lanes int, fn func(lane int)) {
	if lanes <= 0 {
		return
	}

	if lanes == 1 || p.closed.Load() {
		for lane := range lanes {
			fn(lane)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(lanes)

	for lane := range lanes {
		p.workC <- workItem{
			fn: func() {
				fn(lane)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}
