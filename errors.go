// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import "errors"

var (
	// ErrInvalidParameters is returned when a grid has a non-positive
	// dimension or an iteration cap outside [0, MaxUint32]. It is reported
	// before any work begins.
	ErrInvalidParameters = errors.New("mandel: invalid parameters")

	// ErrUnavailableAccelerator indicates that no parallel execution
	// substrate can run the evaluation. It is a capability signal: callers
	// may fall back to the reference evaluator.
	ErrUnavailableAccelerator = errors.New("mandel: accelerator unavailable")

	// ErrAcceleratorFailure indicates that a dispatch was submitted but did
	// not complete. No partial output accompanies it.
	ErrAcceleratorFailure = errors.New("mandel: accelerator failure")
)
