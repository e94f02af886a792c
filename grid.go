// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

// Grid holds the escape counts of one evaluation in row-major order.
// len(Counts) == Width*Height.
type Grid struct {
	Params
	Counts []uint32
}

// newGrid allocates a zeroed grid for p. p must already be valid.
func newGrid(p Params) *Grid {
	return &Grid{Params: p, Counts: make([]uint32, p.Cells())}
}

// At returns the escape count of cell (x, y).
func (g *Grid) At(x, y int) uint32 {
	return g.Counts[g.Index(x, y)]
}

// Mismatches returns the number of cells whose counts differ between g and
// other. Grids with different parameters mismatch in every cell of the
// larger grid.
func (g *Grid) Mismatches(other *Grid) int {
	if other == nil || g.Params != other.Params || len(g.Counts) != len(other.Counts) {
		n := len(g.Counts)
		if other != nil {
			n = max(n, len(other.Counts))
		}
		return n
	}
	n := 0
	for i, c := range g.Counts {
		if c != other.Counts[i] {
			n++
		}
	}
	return n
}

// Equal reports whether g and other have identical parameters and counts.
func (g *Grid) Equal(other *Grid) bool {
	return other != nil && g.Params == other.Params && g.Mismatches(other) == 0
}
