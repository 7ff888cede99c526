package tracer

import (
	"fmt"

	"github.com/achilleasa/prism/log"
)

var bufLogger = log.New("buffers")

// A named kernel buffer holding count records of stride bytes each.
type Buffer struct {
	// A name for identifying the buffer.
	name string

	allocator Allocator
	storage   Storage

	count  int
	stride int

	// Number of storage allocations made by this buffer.
	allocations int
}

// Create a new unallocated buffer.
func NewBuffer(name string, allocator Allocator) *Buffer {
	return &Buffer{
		name:      name,
		allocator: allocator,
	}
}

// Get buffer name.
func (b *Buffer) Name() string {
	return b.name
}

// Get number of records.
func (b *Buffer) Count() int {
	return b.count
}

// Get record size in bytes.
func (b *Buffer) Stride() int {
	return b.stride
}

// Get allocated size in bytes.
func (b *Buffer) Size() int {
	return b.count * b.stride
}

// Get the backing storage or nil if the buffer is not allocated.
func (b *Buffer) Storage() Storage {
	return b.storage
}

// Returns true if the buffer has backing storage.
func (b *Buffer) Allocated() bool {
	return b.storage != nil
}

// Get number of storage allocations performed so far.
func (b *Buffer) Allocations() int {
	return b.allocations
}

// Upload count records of stride bytes each. The backing storage is released
// when count is zero and recreated whenever the count or stride changes.
func (b *Buffer) Upload(data []byte, count, stride int) error {
	if count < 0 || stride < 0 || len(data) != count*stride {
		return fmt.Errorf("%w: buffer %s got %d bytes for %d x %d", ErrBufferSize, b.name, len(data), count, stride)
	}

	if count == 0 {
		b.Release()
		return nil
	}

	if b.storage != nil && (b.count != count || b.stride != stride) {
		bufLogger.Debugf("recreating buffer %s (%d x %d -> %d x %d)", b.name, b.count, b.stride, count, stride)
		b.Release()
	}

	if b.storage == nil {
		storage, err := b.allocator.Allocate(b.name, count*stride)
		if err != nil {
			return fmt.Errorf("tracer: could not allocate buffer %s of size %d: %w", b.name, count*stride, err)
		}
		b.storage = storage
		b.count = count
		b.stride = stride
		b.allocations++
	}

	if err := b.storage.Write(data); err != nil {
		return fmt.Errorf("tracer: could not write buffer %s: %w", b.name, err)
	}
	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.storage != nil {
		b.storage.Release()
		b.storage = nil
	}
	b.count = 0
	b.stride = 0
}
