// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import "context"

// Reference is the sequential evaluator. It scans the grid row by row on the
// calling goroutine and is authoritative for correctness: every other
// evaluator must agree with it cell for cell.
type Reference struct{}

var _ Evaluator = Reference{}

// Name returns "reference".
func (Reference) Name() string { return "reference" }

// Evaluate implements Evaluator. The context is only consulted before the
// scan starts; once started the scan runs to completion.
func (Reference) Evaluate(ctx context.Context, p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := newGrid(p)
	evaluateRows(p, 0, p.Height, g.Counts)
	return g, nil
}

// EvaluateReference is the free-function form of Reference.Evaluate.
func EvaluateReference(width, height, maxIter int) (*Grid, error) {
	return Reference{}.Evaluate(context.Background(), Params{Width: width, Height: height, MaxIter: maxIter})
}
