// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"log/slog"
	"sync/atomic"
)

var (
	silent    = slog.New(slog.DiscardHandler)
	activeLog atomic.Pointer[slog.Logger]
)

func init() { activeLog.Store(silent) }

// SetLogger routes mandel's diagnostics to l; nil silences them again.
// The package is quiet until this is called.
//
// Debug records describe each evaluation (grid size, band count, buffer
// sizes), Info records the adapter an accelerator opened, and Warn records a
// Fallback switching evaluators or a resource that failed to release.
//
// NewParallel hands the logger to the accelerator it wraps. Accelerators
// built before the call keep the old one until PropagateLogger runs.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	activeLog.Store(l)
}

// Logger returns the logger set by SetLogger, or a discarding one.
func Logger() *slog.Logger { return activeLog.Load() }

// loggerSetter is the optional half of an Accelerator that takes a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// PropagateLogger gives a the current logger. Accelerators without a
// SetLogger method are left alone.
func PropagateLogger(a Accelerator) {
	propagateLogger(a, Logger())
}

func propagateLogger(a Accelerator, l *slog.Logger) {
	if ls, ok := a.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
