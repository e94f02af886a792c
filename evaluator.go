// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"context"
	"errors"
	"fmt"
)

// Evaluator computes the escape-time grid for a parameter triple.
//
// Implementations validate p before allocating anything and return either a
// complete grid or an error, never both.
type Evaluator interface {
	// Name identifies the evaluator in reports (e.g., "reference", "cpu").
	Name() string

	// Evaluate computes every cell of the grid described by p.
	Evaluate(ctx context.Context, p Params) (*Grid, error)
}

// Fallback evaluates on Primary and, only if Primary reports
// ErrUnavailableAccelerator, on Secondary. Failures other than an absent
// capability are returned as-is and never retried.
type Fallback struct {
	Primary   Evaluator
	Secondary Evaluator
}

var _ Evaluator = Fallback{}

// Name returns the primary evaluator's name, or the secondary's when there
// is no primary.
func (f Fallback) Name() string {
	switch {
	case f.Primary != nil:
		return f.Primary.Name()
	case f.Secondary != nil:
		return f.Secondary.Name()
	}
	return "none"
}

// Evaluate implements Evaluator. A missing Primary counts as unavailable.
func (f Fallback) Evaluate(ctx context.Context, p Params) (*Grid, error) {
	if f.Primary == nil {
		if f.Secondary == nil {
			if err := p.Validate(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: no evaluator configured", ErrUnavailableAccelerator)
		}
		return f.Secondary.Evaluate(ctx, p)
	}
	g, err := f.Primary.Evaluate(ctx, p)
	if err == nil || !errors.Is(err, ErrUnavailableAccelerator) || f.Secondary == nil {
		return g, err
	}
	Logger().Warn("mandel: accelerator unavailable, falling back",
		"primary", f.Primary.Name(), "fallback", f.Secondary.Name(), "err", err)
	return f.Secondary.Evaluate(ctx, p)
}
