// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel provides the CPU data-parallel substrate: a work-stealing
// worker pool and the row-band partitioning used to cut a grid into
// independent work units.
package parallel

// DefaultBandRows is the default number of grid rows per work unit.
const DefaultBandRows = 8

// Band is a half-open range of grid rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.Y1 - b.Y0
}

// Span returns the [start, end) offsets of the band in a row-major buffer
// whose rows are width cells wide.
func (b Band) Span(width int) (start, end int) {
	return b.Y0 * width, b.Y1 * width
}

// SplitRows splits height rows into bands of rows rows each.
// The last band is shorter if height is not divisible by rows.
func SplitRows(height, rows int) []Band {
	if rows <= 0 {
		panic("parallel: band rows must be positive")
	}
	if height <= 0 {
		return nil
	}

	bands := make([]Band, 0, (height+rows-1)/rows)
	for y := 0; y < height; y += rows {
		bands = append(bands, Band{Y0: y, Y1: min(y+rows, height)})
	}
	return bands
}
