// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"context"
	"errors"
	"fmt"
)

// Accelerator is a parallel execution substrate for the escape-time kernel.
//
// Submit fans the grid out into independent work units, waits for all of
// them and returns the assembled counts, flat and row-major, one uint32 per
// cell. Units read nothing but the three scalars of Params and their own
// coordinates, so they may run in any order. A cancelled or failed dispatch
// returns no counts.
//
// Implementations in this module:
//   - CPUAccelerator: goroutine worker pool, always available until closed
//   - gpu.New: WebGPU compute shader through wgpu/hal
type Accelerator interface {
	// Name returns the accelerator name (e.g., "cpu", "wgpu").
	Name() string

	// Init acquires the substrate. Failing to find a device is not an
	// error; it leaves IsAvailable false.
	Init() error

	// Close releases the substrate. IsAvailable reports false afterwards.
	Close()

	// IsAvailable reports whether Submit can currently run work.
	IsAvailable() bool

	// Submit evaluates every cell of p and blocks until all are written.
	Submit(ctx context.Context, p Params) ([]uint32, error)
}

// Parallel evaluates grids on an Accelerator. Its results equal Reference's
// element for element.
type Parallel struct {
	accel Accelerator
}

var _ Evaluator = (*Parallel)(nil)

// NewParallel returns a parallel evaluator backed by a. The current package
// logger is handed to a if it accepts one.
func NewParallel(a Accelerator) *Parallel {
	if a != nil {
		propagateLogger(a, Logger())
	}
	return &Parallel{accel: a}
}

// Name returns the accelerator name.
func (e *Parallel) Name() string {
	if e.accel == nil {
		return "parallel"
	}
	return e.accel.Name()
}

// Accelerator returns the substrate, or nil.
func (e *Parallel) Accelerator() Accelerator {
	return e.accel
}

// Evaluate implements Evaluator.
//
// Errors, in the order they are checked:
//   - ErrInvalidParameters before anything else
//   - ErrUnavailableAccelerator if there is no usable substrate
//   - ErrAcceleratorFailure if the dispatch did not complete, including
//     cancellation (the context error is wrapped as well)
func (e *Parallel) Evaluate(ctx context.Context, p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if e.accel == nil || !e.accel.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", ErrUnavailableAccelerator, e.Name())
	}

	counts, err := e.accel.Submit(ctx, p)
	if err != nil {
		return nil, classifySubmitError(e.accel.Name(), err)
	}
	if len(counts) != p.Cells() {
		return nil, fmt.Errorf("%w: %s returned %d cells, want %d",
			ErrAcceleratorFailure, e.accel.Name(), len(counts), p.Cells())
	}
	return &Grid{Params: p, Counts: counts}, nil
}

// classifySubmitError maps a Submit error onto the package taxonomy.
func classifySubmitError(name string, err error) error {
	switch {
	case errors.Is(err, ErrUnavailableAccelerator),
		errors.Is(err, ErrInvalidParameters),
		errors.Is(err, ErrAcceleratorFailure):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrAcceleratorFailure, name, err)
	}
}

// EvaluateParallel is the free-function form of Parallel.Evaluate.
func EvaluateParallel(ctx context.Context, a Accelerator, width, height, maxIter int) (*Grid, error) {
	return NewParallel(a).Evaluate(ctx, Params{Width: width, Height: height, MaxIter: maxIter})
}
