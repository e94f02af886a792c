// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu implements the WebGPU escape-time accelerator on top of
// gogpu/wgpu's HAL.
//
// The kernel (shaders/escape.wgsl) runs one invocation per grid cell in 8x8
// workgroups. A dispatch uploads the 16-byte parameter record, runs a single
// compute pass, copies the counts to a staging buffer and waits on a fence,
// which is the only synchronisation point. Nothing is cached between
// dispatches except the pipeline.
//
// Building with the nogpu tag replaces the accelerator with a stub that is
// never available.
package gpu
