// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mandel"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// DispatchTimeout bounds the wait for a single dispatch to complete.
const DispatchTimeout = 5 * time.Second

// pollInterval is how often a pending submission is checked.
const pollInterval = 200 * time.Microsecond

// EscapeAccelerator evaluates escape-time grids with a wgpu/hal compute
// pipeline. It implements mandel.Accelerator.
//
// Dispatches are serialised on the accelerator's mutex; each one allocates
// its buffers, runs one compute pass and destroys them again.
type EscapeAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Limits the device was opened with.
	maxBindingSize uint64
	maxWorkgroups  uint32

	adapterName    string
	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var _ mandel.Accelerator = (*EscapeAccelerator)(nil)

// Name returns "wgpu".
func (a *EscapeAccelerator) Name() string { return "wgpu" }

// SetLogger sets the logger for the GPU accelerator.
func (a *EscapeAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Init opens a standalone Vulkan device. A machine without a usable GPU is
// not an error: the accelerator simply stays unavailable.
func (a *EscapeAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gpuReady {
		return nil
	}
	if err := a.initGPU(); err != nil {
		slogger().Warn("gpu-escape: GPU init failed, accelerator unavailable", "err", err)
		a.releaseLocked()
	}
	return nil
}

// IsAvailable reports whether a device and pipeline are ready.
func (a *EscapeAccelerator) IsAvailable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// AdapterName returns the name of the selected GPU adapter, if any.
func (a *EscapeAccelerator) AdapterName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.adapterName
}

// Close releases the pipeline and, unless it is shared, the device.
func (a *EscapeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
}

func (a *EscapeAccelerator) releaseLocked() {
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
	a.adapterName = ""
}

// SetDeviceProvider switches the accelerator to a shared GPU device. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func (a *EscapeAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu-escape: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu-escape: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu-escape: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
	if err := a.useDeviceLocked(device, queue, true); err != nil {
		return fmt.Errorf("gpu-escape: create pipelines with shared device: %w", err)
	}
	a.adapterName = "shared"
	slogger().Info("gpu-escape: switched to shared GPU device")
	return nil
}

// useDeviceLocked adopts device and queue and builds the pipeline on them.
// Devices are opened with gputypes.DefaultLimits, so those bound every
// dispatch.
func (a *EscapeAccelerator) useDeviceLocked(device hal.Device, queue hal.Queue, external bool) error {
	limits := gputypes.DefaultLimits()
	a.device = device
	a.queue = queue
	a.externalDevice = external
	// The counts buffer is bound as storage, so the binding limit applies
	// on top of the plain buffer limit.
	a.maxBindingSize = min(limits.MaxBufferSize, limits.MaxStorageBufferBindingSize)
	a.maxWorkgroups = min(limits.MaxComputeWorkgroupsPerDimension, MaxWorkgroupsPerDimension)
	if err := a.createPipelines(); err != nil {
		a.destroyPipelines()
		a.gpuReady = false
		return err
	}
	a.gpuReady = true
	return nil
}

// Submit implements mandel.Accelerator.
//
// Grids the device cannot hold (output larger than a storage binding or
// more workgroups along an axis than the device dispatches) are reported as
// mandel.ErrUnavailableAccelerator so the caller can fall back.
func (a *EscapeAccelerator) Submit(ctx context.Context, p mandel.Params) ([]uint32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.gpuReady {
		return nil, fmt.Errorf("%w: gpu-escape: no device", mandel.ErrUnavailableAccelerator)
	}
	if err := a.checkFits(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: gpu-escape: %w", mandel.ErrAcceleratorFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, DispatchTimeout)
	defer cancel()

	readback, err := a.dispatch(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: gpu-escape: %w", mandel.ErrAcceleratorFailure, err)
	}
	return mandel.UnmarshalCounts(readback, p.Cells())
}

func (a *EscapeAccelerator) checkFits(p mandel.Params) error {
	if size := mandel.CountsSize(p); size > a.maxBindingSize {
		return fmt.Errorf("%w: gpu-escape: output of %d bytes exceeds storage binding limit %d",
			mandel.ErrUnavailableAccelerator, size, a.maxBindingSize)
	}
	if workgroups(p.Width) > a.maxWorkgroups || workgroups(p.Height) > a.maxWorkgroups {
		return fmt.Errorf("%w: gpu-escape: grid %s exceeds dispatch limits",
			mandel.ErrUnavailableAccelerator, p)
	}
	return nil
}

// dispatch runs one compute pass over the grid and returns the raw counts
// buffer. Every buffer it creates is destroyed before it returns.
func (a *EscapeAccelerator) dispatch(ctx context.Context, p mandel.Params) ([]byte, error) {
	paramsBytes := mandel.MarshalParams(p)
	countsSize := mandel.CountsSize(p)

	uniformBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_params", Size: uint64(len(paramsBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("create params buffer: %w", err)
	}
	defer a.device.DestroyBuffer(uniformBuf)

	storageBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_counts", Size: countsSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create counts buffer: %w", err)
	}
	defer a.device.DestroyBuffer(storageBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "escape_staging", Size: countsSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	if err := a.queue.WriteBuffer(uniformBuf, 0, paramsBytes); err != nil {
		return nil, fmt.Errorf("write params: %w", err)
	}

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "escape_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramsBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: countsSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bindGroup)

	gx, gy := workgroups(p.Width), workgroups(p.Height)
	slogger().Debug("gpu-escape: dispatch",
		"grid", p.String(), "workgroups_x", gx, "workgroups_y", gy, "counts_bytes", countsSize)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "escape_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("escape"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "escape_pass"})
	computePass.SetPipeline(a.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch(gx, gy, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(storageBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: countsSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index, err := a.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := a.waitSubmission(ctx, index); err != nil {
		return nil, err
	}

	mapping, err := a.device.MapBuffer(stagingBuf, 0, countsSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, countsSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), countsSize))
	if err := a.device.UnmapBuffer(stagingBuf); err != nil {
		slogger().Warn("gpu-escape: unmap staging buffer", "err", err)
	}
	return readback, nil
}

// waitSubmission polls the queue until submission index completes or ctx is
// done. On ctx expiry it still drains the device, so the deferred buffer
// releases in dispatch never free memory the GPU is using.
func (a *EscapeAccelerator) waitSubmission(ctx context.Context, index uint64) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for a.queue.PollCompleted() < index {
		select {
		case <-ctx.Done():
			if err := a.device.WaitIdle(); err != nil {
				slogger().Warn("gpu-escape: wait idle after abandoned dispatch", "err", err)
			}
			return fmt.Errorf("wait for GPU: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

func (a *EscapeAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	if err := a.useDeviceLocked(openDev.Device, openDev.Queue, false); err != nil {
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.adapterName = selected.Info.Name
	slogger().Info("gpu-escape: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

// shaderSource prefers SPIR-V compiled by naga and falls back to handing the
// WGSL text to the backend.
func shaderSource() hal.ShaderSource {
	words, err := CompileKernel()
	if err != nil {
		slogger().Warn("gpu-escape: naga compile failed, passing WGSL to backend", "err", err)
		return hal.ShaderSource{WGSL: escapeShaderSource}
	}
	return hal.ShaderSource{SPIRV: words}
}

func (a *EscapeAccelerator) createPipelines() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "escape",
		Source: shaderSource(),
	})
	if err != nil {
		return fmt.Errorf("compile escape shader: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "escape_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "escape_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "escape_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *EscapeAccelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}
