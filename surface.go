// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Surface is an opaque RGBA pixel buffer for displaying a colorized grid.
type Surface struct {
	width  int
	height int
	pix    []uint8 // RGBA, 4 bytes per pixel, row-major
}

// NewSurface creates a black surface of the given size.
func NewSurface(width, height int) *Surface {
	s := &Surface{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
	for i := 3; i < len(s.pix); i += 4 {
		s.pix[i] = 0xff
	}
	return s
}

// Width returns the surface width.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height.
func (s *Surface) Height() int { return s.height }

// Pix returns the raw RGBA buffer.
func (s *Surface) Pix() []uint8 { return s.pix }

// Paint colorizes every cell of g onto the surface. The grid and the
// surface must have the same dimensions.
func (s *Surface) Paint(g *Grid) error {
	if g.Width != s.width || g.Height != s.height {
		return fmt.Errorf("mandel: grid %dx%d does not fit surface %dx%d",
			g.Width, g.Height, s.width, s.height)
	}
	maxIter := uint32(g.MaxIter) //nolint:gosec // validated grid
	for i, n := range g.Counts {
		c := Colorize(n, maxIter)
		o := i * 4
		s.pix[o+0] = c.R
		s.pix[o+1] = c.G
		s.pix[o+2] = c.B
		s.pix[o+3] = 0xff
	}
	return nil
}

// At returns the color of pixel (x, y).
func (s *Surface) At(x, y int) ColorSample {
	o := (y*s.width + x) * 4
	return ColorSample{R: s.pix[o], G: s.pix[o+1], B: s.pix[o+2]}
}

// Image returns a copy of the surface as an image.RGBA.
func (s *Surface) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.pix)
	return img
}

// Scaled returns the surface enlarged by an integer factor with
// nearest-neighbour sampling, so every cell stays a crisp block.
// Factors below 2 return an unscaled copy.
func (s *Surface) Scaled(factor int) *image.RGBA {
	src := s.Image()
	if factor < 2 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, s.width*factor, s.height*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SavePNG writes the surface, scaled by factor, to a PNG file.
func (s *Surface) SavePNG(path string, factor int) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.Scaled(factor)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Render colorizes a computed grid into a new surface.
func Render(g *Grid) *Surface {
	s := NewSurface(g.Width, g.Height)
	_ = s.Paint(g)
	return s
}
