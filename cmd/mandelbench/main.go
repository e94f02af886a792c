// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command mandelbench evaluates the Mandelbrot escape-time grid
// sequentially and in parallel, reports the timings and writes the
// colorized result as a PNG.
//
//	mandelbench -width 1024 -height 768 -iter 255 -gpu -verify -output mandel.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/text/language"

	"github.com/gogpu/mandel"
	"github.com/gogpu/mandel/bench"
	"github.com/gogpu/mandel/gpu"
)

// gpuTolerance is the fraction of cells the GPU grid may disagree on with
// the reference grid under -verify.
const gpuTolerance = 0.001

// errMismatch reports a failed -verify comparison.
var errMismatch = errors.New("mandelbench: grids differ")

type config struct {
	width, height, maxIter int
	workers, blockRows     int
	useGPU, verify         bool
	output                 string
	scale                  int
	lang                   string
	verbose                bool
}

func parseFlags(args []string) (config, error) {
	var c config
	fs := flag.NewFlagSet("mandelbench", flag.ContinueOnError)
	fs.IntVar(&c.width, "width", 800, "grid width in cells")
	fs.IntVar(&c.height, "height", 600, "grid height in cells")
	fs.IntVar(&c.maxIter, "iter", 255, "maximum iterations per cell")
	fs.IntVar(&c.workers, "workers", 0, "CPU worker goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&c.blockRows, "block", 8, "rows per CPU work unit")
	fs.BoolVar(&c.useGPU, "gpu", false, "also evaluate on the GPU (falls back to CPU)")
	fs.BoolVar(&c.verify, "verify", false, "compare parallel grids with the reference grid")
	fs.StringVar(&c.output, "output", "mandel.png", "output PNG file (empty to skip)")
	fs.IntVar(&c.scale, "scale", 1, "integer upscale factor for the PNG")
	fs.StringVar(&c.lang, "lang", "en", "BCP 47 language tag for number formatting")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging to stderr")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	return c, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	if cfg.verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	tag, err := language.Parse(cfg.lang)
	if err != nil {
		return fmt.Errorf("mandelbench: -lang: %w", err)
	}
	p := mandel.Params{Width: cfg.width, Height: cfg.height, MaxIter: cfg.maxIter}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("mandelbench: %w", err)
	}

	ref, err := bench.Run(ctx, mandel.Reference{}, p, nil)
	if err != nil {
		return err
	}
	samples := []bench.Sample{ref}

	cpu := mandel.NewCPUAccelerator(mandel.WithWorkers(cfg.workers), mandel.WithBlockRows(cfg.blockRows))
	defer cpu.Close()
	par, err := bench.Run(ctx, mandel.NewParallel(cpu), p, nil)
	if err != nil {
		return err
	}
	samples = append(samples, par)

	var gpuSample *bench.Sample
	if cfg.useGPU {
		accel, err := gpu.New()
		if err != nil {
			return fmt.Errorf("mandelbench: gpu: %w", err)
		}
		defer accel.Close()
		ev := mandel.Fallback{Primary: mandel.NewParallel(accel), Secondary: mandel.NewParallel(cpu)}
		s, err := bench.Run(ctx, ev, p, nil)
		if err != nil {
			return err
		}
		if !accel.IsAvailable() {
			s.Evaluator = "wgpu->cpu"
		}
		samples = append(samples, s)
		gpuSample = &s
	}

	if err := bench.Report(out, tag, samples...); err != nil {
		return err
	}

	if cfg.verify {
		if err := verify(out, ref.Grid, par.Grid, 0); err != nil {
			return err
		}
		if gpuSample != nil {
			allowed := int(float64(p.Cells()) * gpuTolerance)
			if err := verify(out, ref.Grid, gpuSample.Grid, allowed); err != nil {
				return err
			}
		}
	}

	if cfg.output != "" {
		if err := mandel.Render(ref.Grid).SavePNG(cfg.output, cfg.scale); err != nil {
			return fmt.Errorf("mandelbench: save %s: %w", cfg.output, err)
		}
		fmt.Fprintf(out, "wrote %s\n", cfg.output)
	}
	return nil
}

// verify compares got with want and fails if more than allowed cells differ.
func verify(out io.Writer, want, got *mandel.Grid, allowed int) error {
	n := got.Mismatches(want)
	fmt.Fprintf(out, "verify: %d/%d cells differ (allowed %d)\n", n, want.Cells(), allowed)
	if n > allowed {
		return fmt.Errorf("%w: %d cells", errMismatch, n)
	}
	return nil
}
