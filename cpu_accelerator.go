// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/mandel/internal/parallel"
)

// CPUAccelerator runs the escape-time kernel on a pool of goroutines.
//
// The grid is cut into bands of BlockRows rows. Each band is one work unit
// writing a disjoint sub-slice of the output, so no locking is needed; the
// pool's ExecuteAll is the only synchronisation point.
//
// Usage:
//
//	a := mandel.NewCPUAccelerator(mandel.WithWorkers(8))
//	defer a.Close()
//	g, err := mandel.NewParallel(a).Evaluate(ctx, p)
type CPUAccelerator struct {
	mu   sync.RWMutex
	pool *parallel.WorkerPool

	workers   int
	blockRows int
}

var _ Accelerator = (*CPUAccelerator)(nil)

// CPUOption configures a CPUAccelerator.
type CPUOption func(*CPUAccelerator)

// WithWorkers sets the number of worker goroutines.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) CPUOption {
	return func(a *CPUAccelerator) {
		a.workers = n
	}
}

// WithBlockRows sets the number of grid rows per work unit.
// Values below 1 are ignored.
func WithBlockRows(n int) CPUOption {
	return func(a *CPUAccelerator) {
		if n > 0 {
			a.blockRows = n
		}
	}
}

// NewCPUAccelerator creates and initializes a CPU accelerator.
func NewCPUAccelerator(opts ...CPUOption) *CPUAccelerator {
	a := &CPUAccelerator{blockRows: parallel.DefaultBandRows}
	for _, opt := range opts {
		opt(a)
	}
	_ = a.Init()
	return a
}

// Name returns "cpu".
func (a *CPUAccelerator) Name() string { return "cpu" }

// Init starts the worker pool. Calling Init on a running accelerator is a
// no-op; calling it after Close starts a fresh pool.
func (a *CPUAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil && a.pool.IsRunning() {
		return nil
	}
	if a.blockRows <= 0 {
		a.blockRows = parallel.DefaultBandRows
	}
	a.pool = parallel.NewWorkerPool(a.workers)
	Logger().Debug("mandel: cpu accelerator started",
		"workers", a.pool.Workers(), "block_rows", a.blockRows)
	return nil
}

// Close stops the worker pool.
func (a *CPUAccelerator) Close() {
	a.mu.Lock()
	pool := a.pool
	a.pool = nil
	a.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
}

// IsAvailable reports whether the worker pool is running.
func (a *CPUAccelerator) IsAvailable() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pool != nil && a.pool.IsRunning()
}

// Workers returns the number of worker goroutines, or 0 if closed.
func (a *CPUAccelerator) Workers() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.pool == nil {
		return 0
	}
	return a.pool.Workers()
}

// Submit implements Accelerator.
func (a *CPUAccelerator) Submit(ctx context.Context, p Params) ([]uint32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	pool, blockRows := a.pool, a.blockRows
	a.mu.RUnlock()
	if pool == nil {
		return nil, fmt.Errorf("%w: cpu accelerator closed", ErrUnavailableAccelerator)
	}

	counts := make([]uint32, p.Cells())
	bands := parallel.SplitRows(p.Height, blockRows)
	work := make([]func(), len(bands))
	for i, b := range bands {
		start, end := b.Span(p.Width)
		dst := counts[start:end]
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			evaluateRows(p, b.Y0, b.Y1, dst)
		}
	}

	if err := pool.ExecuteAll(work); err != nil {
		if errors.Is(err, parallel.ErrPoolClosed) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailableAccelerator, err)
		}
		return nil, err
	}

	// Units skip once the context is done, so a cancelled dispatch has
	// holes and is discarded whole.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: cpu dispatch cancelled: %w", ErrAcceleratorFailure, err)
	}
	return counts, nil
}
