// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// WorkgroupSize is the edge of the square compute workgroup declared by
// the kernel (@workgroup_size(8, 8, 1)).
const WorkgroupSize = 8

// MaxWorkgroupsPerDimension is the WebGPU default limit on dispatch size.
const MaxWorkgroupsPerDimension = 65535

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

//go:embed shaders/escape.wgsl
var escapeShaderSource string

// KernelSource returns the WGSL source of the escape-time kernel.
func KernelSource() string {
	return escapeShaderSource
}

// CompileKernel compiles the kernel to SPIR-V words with naga.
func CompileKernel() ([]uint32, error) {
	spirvBytes, err := naga.Compile(escapeShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile escape kernel: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile escape kernel: malformed SPIR-V (%d bytes)", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("compile escape kernel: invalid SPIR-V magic 0x%08X", words[0])
	}
	return words, nil
}

// workgroups returns the dispatch size covering n cells along one axis.
func workgroups(n int) uint32 {
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize) //nolint:gosec // bounded by mandel.MaxCells
}
