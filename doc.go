// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mandel evaluates the Mandelbrot escape-time function over a pixel
// grid, sequentially and in parallel, and colorizes the result.
//
// # Overview
//
// A grid of Width x Height cells is mapped onto the complex plane with a
// fixed affine transform (see Params.Point). For every cell the recurrence
// z = z*z + c is iterated until |z|^2 reaches 4 or MaxIter iterations have
// run; the iteration count is the cell's escape count.
//
// Two evaluators compute the same grid:
//
//   - Reference scans the grid on the calling goroutine and is authoritative.
//   - Parallel dispatches independent work units to an Accelerator and must
//     agree with Reference cell for cell.
//
// # Quick Start
//
//	p := mandel.Params{Width: 512, Height: 512, MaxIter: 255}
//
//	cpu := mandel.NewCPUAccelerator()
//	defer cpu.Close()
//
//	g, err := mandel.NewParallel(cpu).Evaluate(ctx, p)
//	if err != nil {
//		return err
//	}
//	return mandel.Render(g).SavePNG("mandel.png", 1)
//
// # Accelerators
//
// CPUAccelerator runs row bands on a work-stealing goroutine pool. The gpu
// sub-package provides a WebGPU compute accelerator through gogpu/wgpu:
//
//	import "github.com/gogpu/mandel/gpu"
//
//	a, err := gpu.New()
//
// When an accelerator is not available, Parallel returns
// ErrUnavailableAccelerator; wrap it in a Fallback to continue on Reference.
//
// # Numerics
//
// All arithmetic is float32 so the CPU and GPU paths share one numeric
// domain. The escape comparison is strict (< 4), and the count is clamped
// to MaxIter rather than using a sentinel.
package mandel
