package tracer

import "errors"

var (
	ErrBufferSize   = errors.New("tracer: data size does not match count x stride")
	ErrNotAllocated = errors.New("tracer: storage not allocated")
)

// Device-side storage backing a kernel buffer.
type Storage interface {
	// Copy data to the start of the storage.
	Write(data []byte) error

	// Free device resources.
	Release()
}

// The Allocator interface is implemented by devices that can allocate
// storage for kernel buffers.
type Allocator interface {
	Allocate(name string, size int) (Storage, error)
}

// A compute kernel that consumes the scene buffers and renders a single
// progressive sample per dispatch.
type Kernel interface {
	// Get kernel id.
	Id() string

	// Resize the kernel render target.
	Resize(frameW, frameH uint32) error

	// Bind scene buffers. Unallocated buffers are skipped.
	Bind(*BufferSet) error

	// Render a sample using the given parameters.
	Dispatch(KernelParams) error

	// Shutdown and cleanup kernel.
	Close()
}

// Kernels implementing FrameReader can copy the last rendered sample back to
// the host as packed RGBA float values.
type FrameReader interface {
	ReadFrame(dst []float32) error
}
