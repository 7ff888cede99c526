package tracer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/scene/compiler"
	"github.com/achilleasa/prism/scene/encoding"
	"github.com/achilleasa/prism/types"
)

func TestBufferUploadLifecycle(t *testing.T) {
	alloc := NewMemoryAllocator()
	buf := NewBuffer("test", alloc)

	if err := buf.Upload(make([]byte, 8), 2, 4); err != nil {
		t.Fatal(err)
	}
	if !buf.Allocated() || buf.Size() != 8 || buf.Allocations() != 1 {
		t.Fatalf("expected an 8 byte allocation; got size %d after %d allocations", buf.Size(), buf.Allocations())
	}

	// Same shape: storage is reused
	if err := buf.Upload([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 2, 4); err != nil {
		t.Fatal(err)
	}
	if buf.Allocations() != 1 {
		t.Fatalf("expected storage to be reused; got %d allocations", buf.Allocations())
	}
	if got := alloc.Lookup("test").Data; got[7] != 8 {
		t.Fatalf("expected data to be written; got %v", got)
	}

	// Count change: storage is recreated
	if err := buf.Upload(make([]byte, 12), 3, 4); err != nil {
		t.Fatal(err)
	}
	if buf.Allocations() != 2 || buf.Count() != 3 {
		t.Fatalf("expected storage to be recreated for 3 records; got %d allocations and count %d", buf.Allocations(), buf.Count())
	}

	// Stride change with the same byte size: storage is recreated
	if err := buf.Upload(make([]byte, 12), 1, 12); err != nil {
		t.Fatal(err)
	}
	if buf.Allocations() != 3 || buf.Stride() != 12 {
		t.Fatalf("expected storage to be recreated for stride 12; got %d allocations and stride %d", buf.Allocations(), buf.Stride())
	}
	if live := alloc.Live(); len(live) != 1 {
		t.Fatalf("expected previous storages to be released; live storages: %v", live)
	}

	// Zero count: storage is released and nothing is allocated
	if err := buf.Upload(nil, 0, 12); err != nil {
		t.Fatal(err)
	}
	if buf.Allocated() || buf.Size() != 0 || len(alloc.Live()) != 0 {
		t.Fatal("expected empty upload to release the buffer")
	}
	if alloc.Allocations != 3 {
		t.Fatalf("expected empty upload to skip allocation; got %d allocations", alloc.Allocations)
	}
}

func TestBufferUploadSizeMismatch(t *testing.T) {
	alloc := NewMemoryAllocator()
	buf := NewBuffer("test", alloc)

	err := buf.Upload(make([]byte, 7), 2, 4)
	if !errors.Is(err, ErrBufferSize) {
		t.Fatalf("expected ErrBufferSize; got %v", err)
	}
	if buf.Allocated() || alloc.Allocations != 0 {
		t.Fatal("expected failed upload to leave the buffer unallocated")
	}
}

func TestBufferSetUploadSceneData(t *testing.T) {
	reg := scene.NewRegistry()
	reg.Register(scene.NewSphereObject("a", types.XYZ(0, 0, 0), 1, scene.DefaultLighting()))
	reg.Register(scene.NewSphereObject("b", types.XYZ(10, 0, 0), 1, scene.DefaultLighting()))

	sc, err := compiler.Compile(reg, bvh.BottomUp)
	if err != nil {
		t.Fatal(err)
	}

	alloc := NewMemoryAllocator()
	bs := NewBufferSet(alloc)
	if err = bs.UploadSceneData(sc); err != nil {
		t.Fatal(err)
	}

	expLive := []string{encoding.SphereBvhBuffer, encoding.SpheresBuffer}
	if live := alloc.Live(); !reflect.DeepEqual(live, expLive) {
		t.Fatalf("expected live buffers %v; got %v", expLive, live)
	}
	if got := bs.Buffer(encoding.SpheresBuffer).Size(); got != 2*encoding.SizeofSphere {
		t.Fatalf("expected sphere buffer size %d; got %d", 2*encoding.SizeofSphere, got)
	}
	if got := bs.Buffer(encoding.SphereBvhBuffer).Count(); got != 3 {
		t.Fatalf("expected 3 sphere BVH nodes; got %d", got)
	}
	if bs.Buffer(encoding.MeshBvhBuffer).Allocated() {
		t.Fatal("expected mesh BVH buffer to be unallocated")
	}
	if bs.Buffer("bogus") != nil {
		t.Fatal("expected unknown buffer lookup to return nil")
	}

	// Removing every sphere releases the sphere buffers
	for _, obj := range reg.Objects() {
		reg.Unregister(obj)
	}
	if sc, err = compiler.Compile(reg, bvh.BottomUp); err != nil {
		t.Fatal(err)
	}
	if err = bs.UploadSceneData(sc); err != nil {
		t.Fatal(err)
	}
	if live := alloc.Live(); len(live) != 0 {
		t.Fatalf("expected all buffers to be released; live buffers: %v", live)
	}

	bs.Release()
	if bs.Size() != 0 {
		t.Fatalf("expected released buffer set to have size 0; got %d", bs.Size())
	}
}

func TestKernelParamsMarshal(t *testing.T) {
	params := KernelParams{
		CameraToWorld:     types.Ident4(),
		InverseProjection: types.Ident4(),
		PixelOffset:       types.XY(0.25, 0.75),
		Seed:              0.5,
		Bounces:           DefaultBounces,
		RaysPerPixel:      DefaultRaysPerPixel,
		MeshBvhLen:        7,
		SphereBvhLen:      3,
		Sample:            42,
		FrameW:            640,
		FrameH:            480,
	}

	data := params.Marshal()
	if len(data) != SizeofKernelParams || len(data)%16 != 0 {
		t.Fatalf("expected %d bytes aligned to 16; got %d", SizeofKernelParams, len(data))
	}

	r := &fieldReader{data}
	specs := []struct {
		offset int
		exp    uint32
	}{
		{0, 0x3f800000},       // cameraToWorld[0][0] = 1
		{64 + 20, 0x3f800000}, // invProj[1][1] = 1
		{128, 0x3e800000},     // 0.25
		{132, 0x3f400000},     // 0.75
		{136, 0x3f000000},     // 0.5
		{140, 8},
		{144, 1},
		{148, 7},
		{152, 3},
		{156, 42},
		{160, 640},
		{164, 480},
		{168, 0},
	}
	for _, spec := range specs {
		if got := r.uint32(spec.offset); got != spec.exp {
			t.Fatalf("expected value 0x%x at offset %d; got 0x%x", spec.exp, spec.offset, got)
		}
	}
}

type fieldReader struct {
	data []byte
}

func (r *fieldReader) uint32(offset int) uint32 {
	b := r.data[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
