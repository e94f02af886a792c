// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

// EscapeThreshold is the squared magnitude at which an orbit has escaped.
const EscapeThreshold float32 = 4.0

// EscapeTime iterates z = z*z + c from z = 0 and returns the number of
// iterations performed before |z|^2 reached EscapeThreshold, clamped to
// maxIter. A result of maxIter means the point is assumed to be in the set.
//
// Every product is converted back to float32 explicitly. Go may otherwise
// fuse a multiply and an add, which would make results depend on the
// target architecture.
func EscapeTime(cx, cy float32, maxIter uint32) uint32 {
	var zx, zy float32
	var i uint32
	for i < maxIter {
		zx2 := float32(zx * zx)
		zy2 := float32(zy * zy)
		if float32(zx2+zy2) >= EscapeThreshold {
			break
		}
		nzx := float32(zx2-zy2) + cx
		zy = float32(float32(2*zx)*zy) + cy
		zx = nzx
		i++
	}
	return i
}

// EvaluateCell returns the escape count of cell (x, y) of p.
// It reads nothing but p and the coordinate, so cells may be evaluated in
// any order and on any goroutine.
func EvaluateCell(p Params, x, y int) uint32 {
	cx, cy := p.Point(x, y)
	return EscapeTime(cx, cy, uint32(p.MaxIter)) //nolint:gosec // MaxIter validated to fit uint32
}

// evaluateRows writes the escape counts of rows [y0, y1) into dst, which
// holds exactly those rows in row-major order.
func evaluateRows(p Params, y0, y1 int, dst []uint32) {
	i := 0
	for y := y0; y < y1; y++ {
		for x := 0; x < p.Width; x++ {
			dst[i] = EvaluateCell(p, x, y)
			i++
		}
	}
}
