package tracer

import (
	"encoding/binary"
	"math"

	"github.com/achilleasa/prism/types"
)

const (
	// Size of the encoded kernel parameters. The uniform block is padded to
	// a multiple of 16 bytes.
	SizeofKernelParams = 176

	DefaultBounces      uint32 = 8
	DefaultRaysPerPixel uint32 = 1
)

// Per-dispatch kernel parameters.
type KernelParams struct {
	CameraToWorld     types.Mat4 // offset   0
	InverseProjection types.Mat4 // offset  64

	// Sub-pixel jitter in the [0, 1) range.
	PixelOffset types.Vec2 // offset 128
	Seed        float32    // offset 136

	Bounces      uint32 // offset 140
	RaysPerPixel uint32 // offset 144

	// Number of nodes in each BVH buffer.
	MeshBvhLen   uint32 // offset 148
	SphereBvhLen uint32 // offset 152

	// Progressive sample counter.
	Sample uint32 // offset 156

	FrameW uint32 // offset 160
	FrameH uint32 // offset 164
}

// Get the encoded size in bytes.
func (p *KernelParams) Size() int {
	return SizeofKernelParams
}

// Serialize the parameters into a buffer suitable for a uniform upload.
func (p *KernelParams) Marshal() []byte {
	buf := make([]byte, SizeofKernelParams)
	for i, v := range p.CameraToWorld {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range p.InverseProjection {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[128:132], math.Float32bits(p.PixelOffset[0]))
	binary.LittleEndian.PutUint32(buf[132:136], math.Float32bits(p.PixelOffset[1]))
	binary.LittleEndian.PutUint32(buf[136:140], math.Float32bits(p.Seed))
	binary.LittleEndian.PutUint32(buf[140:144], p.Bounces)
	binary.LittleEndian.PutUint32(buf[144:148], p.RaysPerPixel)
	binary.LittleEndian.PutUint32(buf[148:152], p.MeshBvhLen)
	binary.LittleEndian.PutUint32(buf[152:156], p.SphereBvhLen)
	binary.LittleEndian.PutUint32(buf[156:160], p.Sample)
	binary.LittleEndian.PutUint32(buf[160:164], p.FrameW)
	binary.LittleEndian.PutUint32(buf[164:168], p.FrameH)
	return buf
}
