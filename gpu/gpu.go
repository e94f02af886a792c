// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu provides the WebGPU accelerator for parallel escape-time
// evaluation.
//
// The accelerator runs the escape-time kernel as a wgpu/hal compute shader,
// one invocation per cell. If no Vulkan adapter can be opened, New still
// succeeds and the accelerator reports IsAvailable() == false; evaluating on
// it then fails with mandel.ErrUnavailableAccelerator, which mandel.Fallback
// turns into a CPU evaluation.
//
// Usage:
//
//	accel, err := gpu.New()
//	if err != nil {
//		return err
//	}
//	defer accel.Close()
//	ev := mandel.Fallback{
//		Primary:   mandel.NewParallel(accel),
//		Secondary: mandel.Reference{},
//	}
//
// Build with -tags nogpu to compile the GPU path out entirely.
package gpu

import (
	"errors"
	"reflect"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/mandel"
	gpuimpl "github.com/gogpu/mandel/internal/gpu"
)

// ErrNilProvider is returned by SetDeviceProvider for a nil provider,
// including a nil pointer stored in the interface.
var ErrNilProvider = errors.New("gpu: nil DeviceProvider")

// Accelerator is the WebGPU escape-time accelerator.
type Accelerator = gpuimpl.EscapeAccelerator

// DispatchTimeout bounds a single GPU dispatch.
const DispatchTimeout = gpuimpl.DispatchTimeout

// New creates an accelerator on a standalone GPU device. The current
// mandel logger is installed before the device is opened.
func New() (*Accelerator, error) {
	a := &Accelerator{}
	mandel.PropagateLogger(a)
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a, nil
}

// SetDeviceProvider moves a onto the device of an external provider (e.g.,
// gogpu), so that both share one GPU instance. The provider must also
// expose HalDevice() and HalQueue() for direct HAL access.
func SetDeviceProvider(a *Accelerator, provider gpucontext.DeviceProvider) error {
	if isNil(provider) {
		return ErrNilProvider
	}
	return a.SetDeviceProvider(provider)
}

func isNil(provider gpucontext.DeviceProvider) bool {
	if provider == nil {
		return true
	}
	v := reflect.ValueOf(provider)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// KernelSource returns the WGSL source of the escape-time kernel.
func KernelSource() string {
	return gpuimpl.KernelSource()
}
