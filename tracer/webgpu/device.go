// Package webgpu implements the tracer device and kernel interfaces on top of
// a headless WebGPU compute device.
package webgpu

import (
	"fmt"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/tracer"
	"github.com/cogentcore/webgpu/wgpu"
)

// A headless compute device.
type Device struct {
	Name string

	logger log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

// Device storage for a kernel buffer.
type storage struct {
	name   string
	buffer *wgpu.Buffer
	size   uint64
	queue  *wgpu.Queue
}

// Create a new device. If forceFallback is true, a software adapter is
// requested.
func NewDevice(name string, forceFallback bool) (*Device, error) {
	d := &Device{
		Name:     name,
		logger:   log.New(fmt.Sprintf("webgpu device (%s)", name)),
		instance: wgpu.CreateInstance(nil),
	}

	var err error
	d.adapter, err = d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallback,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("webgpu device (%s): could not acquire adapter: %w", name, err)
	}

	d.device, err = d.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: name,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("webgpu device (%s): could not create device: %w", name, err)
	}
	d.queue = d.device.GetQueue()

	d.logger.Info("device ready")
	return d, nil
}

// Allocate a storage buffer large enough to hold size bytes.
func (d *Device) Allocate(name string, size int) (tracer.Storage, error) {
	buf, err := d.createBuffer(name, size, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	d.logger.Debugf("allocated buffer %s (%d bytes)", name, size)
	return &storage{
		name:   name,
		buffer: buf,
		size:   buf.GetSize(),
		queue:  d.queue,
	}, nil
}

// Storage buffer sizes must be a multiple of 4.
func (d *Device) createBuffer(name string, size int, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	alignedSize := uint64(size)
	if alignedSize%4 != 0 {
		alignedSize += 4 - (alignedSize % 4)
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            name,
		Size:             alignedSize,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu device (%s): could not allocate buffer %s of size %d: %w", d.Name, name, size, err)
	}
	return buf, nil
}

// Shutdown device.
func (d *Device) Close() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Write data to the storage buffer.
func (s *storage) Write(data []byte) error {
	if s.buffer == nil {
		return fmt.Errorf("%w: %s", tracer.ErrNotAllocated, s.name)
	}
	if uint64(len(data)) > s.size {
		return fmt.Errorf("webgpu: insufficient buffer space (%d) in %s for data of length %d", s.size, s.name, len(data))
	}

	// Queue writes must also be 4-byte aligned.
	if pad := len(data) % 4; pad != 0 {
		data = append(data[:len(data):len(data)], make([]byte, 4-pad)...)
	}
	return s.queue.WriteBuffer(s.buffer, 0, data)
}

// Release buffer.
func (s *storage) Release() {
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}
