// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mandel

import (
	"image/color"
	"testing"
)

func TestColorizeInterior(t *testing.T) {
	for _, maxIter := range []uint32{0, 1, 16, 255, 1000} {
		if got := Colorize(maxIter, maxIter); got != Black {
			t.Errorf("Colorize(%d, %d) = %+v, want black", maxIter, maxIter, got)
		}
	}
	if got := Colorize(300, 255); got != Black {
		t.Errorf("Colorize above maxIter = %+v, want black", got)
	}
}

func TestColorizeHues(t *testing.T) {
	tests := []struct {
		n, maxIter uint32
		want       ColorSample
	}{
		{0, 10, ColorSample{255, 0, 0}},    // 0 degrees
		{5, 30, ColorSample{255, 255, 0}},  // 60
		{1, 3, ColorSample{0, 255, 0}},     // 120
		{1, 2, ColorSample{0, 255, 255}},   // 180
		{2, 3, ColorSample{0, 0, 255}},     // 240
		{25, 30, ColorSample{255, 0, 255}}, // 300
		{1, 12, ColorSample{255, 128, 0}},  // 30
	}
	for _, tt := range tests {
		if got := Colorize(tt.n, tt.maxIter); got != tt.want {
			t.Errorf("Colorize(%d, %d) = %+v, want %+v", tt.n, tt.maxIter, got, tt.want)
		}
	}
}

func TestColorizeDeterministicAndTotal(t *testing.T) {
	for _, maxIter := range []uint32{1, 7, 255} {
		for n := uint32(0); n <= maxIter+1; n++ {
			a, b := Colorize(n, maxIter), Colorize(n, maxIter)
			if a != b {
				t.Fatalf("Colorize(%d, %d) not deterministic: %+v vs %+v", n, maxIter, a, b)
			}
			if n < maxIter && a == Black {
				t.Errorf("Colorize(%d, %d) is black for an escaping cell", n, maxIter)
			}
		}
	}
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    ColorSample
	}{
		{0, 0, 0.5, ColorSample{128, 128, 128}},
		{0, 1, 1, ColorSample{255, 255, 255}},
		{0, 1, 0, ColorSample{0, 0, 0}},
		{360, 1, 0.5, ColorSample{255, 0, 0}},
		{-120, 1, 0.5, ColorSample{0, 0, 255}},
	}
	for _, tt := range tests {
		if got := HSLToRGB(tt.h, tt.s, tt.l); got != tt.want {
			t.Errorf("HSLToRGB(%v, %v, %v) = %+v, want %+v", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}

func TestColorSampleIsColor(t *testing.T) {
	var c color.Color = ColorSample{R: 10, G: 20, B: 30}
	got := color.RGBAModel.Convert(c).(color.RGBA)
	if got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("RGBA conversion = %+v", got)
	}
}
