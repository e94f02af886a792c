// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"log/slog"
	"sync/atomic"
)

// gpuLog receives the accelerator's device and dispatch messages. It
// discards everything until mandel.PropagateLogger reaches an accelerator.
var gpuLog atomic.Pointer[slog.Logger]

func init() { gpuLog.Store(slog.New(slog.DiscardHandler)) }

func slogger() *slog.Logger { return gpuLog.Load() }

// setLogger backs EscapeAccelerator.SetLogger. The logger is shared by every
// accelerator in the process; nil goes back to discarding.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	gpuLog.Store(l)
}
