// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package bench times single evaluations and reports them.
//
// Only the Evaluate call is timed: parameter construction, colorizing and
// output are outside the measured interval. Each Run produces exactly one
// sample; there is no warm-up and no statistics.
package bench

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mandel"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic system clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Sample is the result of one timed evaluation.
type Sample struct {
	Evaluator string
	Params    mandel.Params
	Elapsed   time.Duration
	Grid      *mandel.Grid
}

// CellsPerSecond returns the evaluation throughput, or 0 when no time was
// measured.
func (s Sample) CellsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Params.Cells()) / s.Elapsed.Seconds()
}

// Run evaluates p once on ev and times the call with clock. A nil clock
// means SystemClock.
func Run(ctx context.Context, ev mandel.Evaluator, p mandel.Params, clock Clock) (Sample, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	start := clock.Now()
	g, err := ev.Evaluate(ctx, p)
	elapsed := clock.Now().Sub(start)
	if err != nil {
		return Sample{}, fmt.Errorf("bench: %s: %w", ev.Name(), err)
	}
	mandel.Logger().Debug("bench: sample", "evaluator", ev.Name(), "grid", p.String(), "elapsed", elapsed)
	return Sample{Evaluator: ev.Name(), Params: p, Elapsed: elapsed, Grid: g}, nil
}

// Report writes one line per sample, formatting numbers for tag.
//
//	reference  256x256@255        12.345 ms       5,308,416 cells/s
func Report(w io.Writer, tag language.Tag, samples ...Sample) error {
	pr := message.NewPrinter(tag)
	for _, s := range samples {
		ms := float64(s.Elapsed) / float64(time.Millisecond)
		_, err := pr.Fprintf(w, "%-10s %-14s %12.3f ms  %15d cells/s\n",
			s.Evaluator, s.Params.String(), ms, int64(math.Round(s.CellsPerSecond())))
		if err != nil {
			return fmt.Errorf("bench: write report: %w", err)
		}
	}
	return nil
}
