// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"image/color"
	"math"
)

// ColorSample is an opaque RGB color.
type ColorSample struct {
	R, G, B uint8
}

// RGBA implements color.Color. Samples are always fully opaque.
func (c ColorSample) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Black is the color of cells assumed to be in the set.
var Black = ColorSample{}

// Colorize maps an escape count to a color.
//
// Counts at or above maxIter are interior points and map to Black. Other
// counts map linearly onto the hue circle, hue = 360*escapeCount/maxIter,
// at full saturation and half lightness.
func Colorize(escapeCount, maxIter uint32) ColorSample {
	if escapeCount >= maxIter {
		return Black
	}
	hue := 360 * float64(escapeCount) / float64(maxIter)
	return HSLToRGB(hue, 1, 0.5)
}

// HSLToRGB converts hue (degrees), saturation and lightness in [0, 1] to a
// color with the six-sector formula. Hue is taken modulo 360.
func HSLToRGB(h, s, l float64) ColorSample {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return ColorSample{R: channel(r + m), G: channel(g + m), B: channel(b + m)}
}

// channel converts a [0, 1] intensity to [0, 255], rounding to nearest.
func channel(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
