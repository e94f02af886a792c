// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogpu

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/mandel"
)

// DispatchTimeout bounds the fence wait of a single dispatch.
const DispatchTimeout = 5 * time.Second

// EscapeAccelerator is the nogpu stand-in. It is never available.
type EscapeAccelerator struct{}

var _ mandel.Accelerator = (*EscapeAccelerator)(nil)

// Name returns "wgpu".
func (a *EscapeAccelerator) Name() string { return "wgpu" }

// SetLogger sets the package logger.
func (a *EscapeAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Init logs that GPU support was compiled out.
func (a *EscapeAccelerator) Init() error {
	slogger().Debug("gpu-escape: built with nogpu, accelerator unavailable")
	return nil
}

// IsAvailable always reports false.
func (a *EscapeAccelerator) IsAvailable() bool { return false }

// AdapterName returns "".
func (a *EscapeAccelerator) AdapterName() string { return "" }

// Close is a no-op.
func (a *EscapeAccelerator) Close() {}

// SetDeviceProvider always fails under nogpu.
func (a *EscapeAccelerator) SetDeviceProvider(any) error {
	return fmt.Errorf("%w: gpu-escape: built with nogpu", mandel.ErrUnavailableAccelerator)
}

// Submit always reports the accelerator unavailable.
func (a *EscapeAccelerator) Submit(_ context.Context, p mandel.Params) ([]uint32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: gpu-escape: built with nogpu", mandel.ErrUnavailableAccelerator)
}
