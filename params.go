// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"fmt"
	"math"
)

// MaxCells bounds the number of cells in a single evaluation (1 GiB of
// uint32 escape counts).
const MaxCells = 1 << 28

// Params is the immutable parameter triple of one evaluation.
type Params struct {
	Width   int
	Height  int
	MaxIter int
}

// Validate reports ErrInvalidParameters if the grid cannot be evaluated.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d must have positive dimensions", ErrInvalidParameters, p.Width, p.Height)
	case p.MaxIter < 0 || uint64(p.MaxIter) > math.MaxUint32:
		return fmt.Errorf("%w: max iterations %d out of range", ErrInvalidParameters, p.MaxIter)
	case p.Width > MaxCells/p.Height:
		return fmt.Errorf("%w: grid %dx%d exceeds %d cells", ErrInvalidParameters, p.Width, p.Height, MaxCells)
	}
	return nil
}

// Cells returns Width*Height.
func (p Params) Cells() int {
	return p.Width * p.Height
}

// Index returns the row-major offset of cell (x, y).
func (p Params) Index(x, y int) int {
	return y*p.Width + x
}

// Point maps cell (x, y) to its complex-plane sample point:
//
//	cx = (x/width  - 0.75) * 2.5
//	cy = (y/height - 0.5)  * 2.0
//
// evaluated in float32. The GPU kernel in shaders/escape.wgsl performs the
// same operations in the same order.
func (p Params) Point(x, y int) (cx, cy float32) {
	fx := float32(x) / float32(p.Width)
	fy := float32(y) / float32(p.Height)
	cx = float32(fx-0.75) * 2.5
	cy = float32(fy-0.5) * 2.0
	return cx, cy
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("%dx%d@%d", p.Width, p.Height, p.MaxIter)
}
