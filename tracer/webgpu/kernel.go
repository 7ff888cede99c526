package webgpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene/encoding"
	"github.com/achilleasa/prism/tracer"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/trace.wgsl
var DefaultShader string

const (
	// Kernel entry point and workgroup dimensions.
	entryPoint    = "main"
	workgroupSize = 8

	// Binding slots following the scene buffers.
	frameBinding  = 7
	paramsBinding = 8

	// RGBA float32 pixels.
	sizeofPixel = 16

	// Size of the buffer bound to slots with no scene data.
	placeholderSize = 16
)

var ErrFrameNotAllocated = errors.New("webgpu kernel: frame buffer not allocated")

// A compute kernel rendering one progressive sample per dispatch.
type Kernel struct {
	id     string
	dev    *Device
	logger log.Logger

	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline

	bindGroup   *wgpu.BindGroup
	bindingsSet bool

	// Scene buffers in binding order; nil slots use the placeholder.
	sceneBuffers []*wgpu.Buffer
	placeholder  *wgpu.Buffer

	params  *wgpu.Buffer
	frame   *wgpu.Buffer
	staging *wgpu.Buffer

	frameW uint32
	frameH uint32
}

// Create a new kernel using the given WGSL source. If source is empty the
// default shader is used.
func NewKernel(id string, dev *Device, source string) (*Kernel, error) {
	if source == "" {
		source = DefaultShader
	}

	k := &Kernel{
		id:           id,
		dev:          dev,
		logger:       log.New(fmt.Sprintf("webgpu kernel (%s)", id)),
		sceneBuffers: make([]*wgpu.Buffer, len(encoding.BufferNames)),
	}

	if err := k.init(source); err != nil {
		k.Close()
		return nil, err
	}
	return k, nil
}

func (k *Kernel) init(source string) error {
	module, err := k.dev.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: k.id,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not compile shader: %w", k.id, err)
	}
	defer module.Release()

	entries := make([]wgpu.BindGroupLayoutEntry, 0, paramsBinding+1)
	for slot := range encoding.BufferNames {
		entries = append(entries, layoutEntry(slot, wgpu.BufferBindingTypeReadOnlyStorage))
	}
	entries = append(entries,
		layoutEntry(frameBinding, wgpu.BufferBindingTypeStorage),
		layoutEntry(paramsBinding, wgpu.BufferBindingTypeUniform),
	)

	k.layout, err = k.dev.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   k.id + " layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not create bind group layout: %w", k.id, err)
	}

	pipelineLayout, err := k.dev.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            k.id + " pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{k.layout},
	})
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not create pipeline layout: %w", k.id, err)
	}
	defer pipelineLayout.Release()

	k.pipeline, err = k.dev.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  k.id + " pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not create compute pipeline: %w", k.id, err)
	}

	if k.placeholder, err = k.dev.createBuffer(k.id+" placeholder", placeholderSize, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if k.params, err = k.dev.createBuffer(k.id+" params", tracer.SizeofKernelParams, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}

	return nil
}

func layoutEntry(slot int, bindingType wgpu.BufferBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    uint32(slot),
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type: bindingType,
		},
	}
}

// Get kernel id.
func (k *Kernel) Id() string {
	return k.id
}

// Resize the frame buffer. The frame contents are discarded.
func (k *Kernel) Resize(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("webgpu kernel (%s): invalid frame size %dx%d", k.id, frameW, frameH)
	}
	if frameW == k.frameW && frameH == k.frameH && k.frame != nil {
		return nil
	}

	k.releaseFrame()
	size := int(frameW*frameH) * sizeofPixel

	var err error
	if k.frame, err = k.dev.createBuffer(k.id+" frame", size, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc); err != nil {
		return err
	}
	if k.staging, err = k.dev.createBuffer(k.id+" staging", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}

	k.frameW, k.frameH = frameW, frameH
	k.logger.Debugf("resized frame buffer to %dx%d", frameW, frameH)
	return k.rebuildBindGroup()
}

// Bind scene buffers. Unallocated buffers are replaced by a placeholder so
// the bind group layout is always satisfied.
func (k *Kernel) Bind(bs *tracer.BufferSet) error {
	for slot, buf := range bs.Buffers() {
		k.sceneBuffers[slot] = nil
		if !buf.Allocated() {
			continue
		}

		s, ok := buf.Storage().(*storage)
		if !ok {
			return fmt.Errorf("webgpu kernel (%s): buffer %s is not backed by a webgpu device", k.id, buf.Name())
		}
		k.sceneBuffers[slot] = s.buffer
	}

	k.bindingsSet = true
	return k.rebuildBindGroup()
}

func (k *Kernel) rebuildBindGroup() error {
	if k.bindGroup != nil {
		k.bindGroup.Release()
		k.bindGroup = nil
	}
	if k.frame == nil || !k.bindingsSet {
		return nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, paramsBinding+1)
	for slot, buf := range k.sceneBuffers {
		if buf == nil {
			buf = k.placeholder
		}
		entries = append(entries, bindEntry(slot, buf))
	}
	entries = append(entries, bindEntry(frameBinding, k.frame), bindEntry(paramsBinding, k.params))

	var err error
	k.bindGroup, err = k.dev.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   k.id + " bind group",
		Layout:  k.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not create bind group: %w", k.id, err)
	}
	return nil
}

func bindEntry(slot int, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: uint32(slot),
		Buffer:  buf,
		Offset:  0,
		Size:    wgpu.WholeSize,
	}
}

// Upload parameters and render a sample.
func (k *Kernel) Dispatch(params tracer.KernelParams) error {
	if k.bindGroup == nil {
		return fmt.Errorf("webgpu kernel (%s): dispatch before resize and bind", k.id)
	}

	params.FrameW, params.FrameH = k.frameW, k.frameH
	if err := k.dev.queue.WriteBuffer(k.params, 0, params.Marshal()); err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not upload params: %w", k.id, err)
	}

	encoder, err := k.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, k.bindGroup, nil)
	pass.DispatchWorkgroups(workgroups(k.frameW), workgroups(k.frameH), 1)
	pass.End()
	pass.Release()

	return k.submit(encoder)
}

func workgroups(size uint32) uint32 {
	return (size + workgroupSize - 1) / workgroupSize
}

func (k *Kernel) submit(encoder *wgpu.CommandEncoder) error {
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not finish command buffer: %w", k.id, err)
	}
	defer cmdBuffer.Release()

	k.dev.queue.Submit(cmdBuffer)
	return nil
}

// Copy the last rendered sample into dst as packed RGBA values. dst must
// hold at least 4 x frameW x frameH values.
func (k *Kernel) ReadFrame(dst []float32) error {
	if k.frame == nil {
		return ErrFrameNotAllocated
	}
	pixelCount := int(k.frameW * k.frameH)
	if len(dst) < pixelCount*4 {
		return fmt.Errorf("webgpu kernel (%s): destination holds %d values; need %d", k.id, len(dst), pixelCount*4)
	}
	size := uint64(pixelCount * sizeofPixel)

	encoder, err := k.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if err = encoder.CopyBufferToBuffer(k.frame, 0, k.staging, 0, size); err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not copy frame: %w", k.id, err)
	}
	if err = k.submit(encoder); err != nil {
		return err
	}

	var mapStatus wgpu.BufferMapAsyncStatus
	if err = k.staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapStatus = status
	}); err != nil {
		return fmt.Errorf("webgpu kernel (%s): could not map frame: %w", k.id, err)
	}
	k.dev.device.Poll(true, nil)
	if mapStatus != wgpu.BufferMapAsyncStatusSuccess {
		return fmt.Errorf("webgpu kernel (%s): frame mapping failed with status %d", k.id, mapStatus)
	}
	defer k.staging.Unmap()

	data := k.staging.GetMappedRange(0, uint(size))
	for i := 0; i < pixelCount*4; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return nil
}

func (k *Kernel) releaseFrame() {
	if k.frame != nil {
		k.frame.Release()
		k.frame = nil
	}
	if k.staging != nil {
		k.staging.Release()
		k.staging = nil
	}
}

// Shutdown and cleanup kernel. The device is not closed.
func (k *Kernel) Close() {
	if k.bindGroup != nil {
		k.bindGroup.Release()
		k.bindGroup = nil
	}
	k.releaseFrame()
	for _, buf := range []**wgpu.Buffer{&k.params, &k.placeholder} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if k.pipeline != nil {
		k.pipeline.Release()
		k.pipeline = nil
	}
	if k.layout != nil {
		k.layout.Release()
		k.layout = nil
	}
}

var (
	_ tracer.Kernel      = (*Kernel)(nil)
	_ tracer.FrameReader = (*Kernel)(nil)
	_ tracer.Allocator   = (*Device)(nil)
)
