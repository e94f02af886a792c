// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is handed to a pool after Close.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// WorkerPool is a fixed set of goroutines executing independent work units.
//
// Every worker owns a queue and steals from the other queues when its own is
// empty, which keeps workers busy when units have uneven cost (escape-time
// rows near the set boundary are far slower than rows outside it).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queues holds per-worker work queues.
	queues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// mu orders submission against Close: units are only enqueued while
	// the pool is running, so no unit can land in a queue nobody drains.
	mu      sync.RWMutex
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4x workers of buffering hides submission latency.
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

// drain executes whatever is left in a queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one unit from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes the units round-robin and blocks until every unit
// has returned. The return is the barrier: all side effects of all units
// happen before ExecuteAll returns.
//
// Units run in no particular order. Nil units are skipped.
// ExecuteAll returns ErrPoolClosed without running anything if the pool has
// been closed.
func (p *WorkerPool) ExecuteAll(work []func()) error {
	if len(work) == 0 {
		return nil
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return ErrPoolClosed
	}

	var barrier sync.WaitGroup
	barrier.Add(len(work))
	for i, fn := range work {
		if fn == nil {
			barrier.Done()
			continue
		}
		p.queues[i%p.workers] <- func() {
			defer barrier.Done()
			fn()
		}
	}
	p.mu.RUnlock()

	barrier.Wait()
	return nil
}

// Close stops accepting work, lets queued units finish, and stops all
// workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
