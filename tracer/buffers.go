package tracer

import (
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/encoding"
)

// The set of scene buffers bound to a kernel. Buffers are kept in binding
// slot order.
type BufferSet struct {
	buffers []*Buffer
}

// Allocate new buffer set.
func NewBufferSet(allocator Allocator) *BufferSet {
	bs := &BufferSet{
		buffers: make([]*Buffer, len(encoding.BufferNames)),
	}
	for index, name := range encoding.BufferNames {
		bs.buffers[index] = NewBuffer(name, allocator)
	}
	return bs
}

// Get a buffer by name or nil if no such buffer exists.
func (bs *BufferSet) Buffer(name string) *Buffer {
	if slot := encoding.Binding(name); slot >= 0 {
		return bs.buffers[slot]
	}
	return nil
}

// Get all buffers in binding slot order.
func (bs *BufferSet) Buffers() []*Buffer {
	return bs.buffers
}

// Get the total allocated size in bytes.
func (bs *BufferSet) Size() int {
	total := 0
	for _, buf := range bs.buffers {
		total += buf.Size()
	}
	return total
}

// Upload scene data to the device buffers.
func (bs *BufferSet) UploadSceneData(sc *scene.Scene) error {
	for _, rec := range encoding.EncodeScene(sc) {
		if err := bs.Buffer(rec.Name).Upload(rec.Data, rec.Count, rec.Stride); err != nil {
			return err
		}
	}

	bufLogger.Debugf("uploaded %d bytes of scene data", bs.Size())
	return nil
}

// Release all buffers.
func (bs *BufferSet) Release() {
	for _, buf := range bs.buffers {
		buf.Release()
	}
}
