package webgpu

import (
	"fmt"
	"strings"
	"testing"

	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/scene/compiler"
	"github.com/achilleasa/prism/scene/encoding"
	"github.com/achilleasa/prism/tracer"
	"github.com/achilleasa/prism/types"
)

func TestDefaultShaderBindings(t *testing.T) {
	for slot, name := range encoding.BufferNames {
		decl := fmt.Sprintf("@binding(%d) var<storage, read> %s:", slot, name)
		if !strings.Contains(DefaultShader, decl) {
			t.Fatalf("expected default shader to declare %q", decl)
		}
	}

	for _, decl := range []string{
		fmt.Sprintf("@binding(%d) var<storage, read_write> frame", frameBinding),
		fmt.Sprintf("@binding(%d) var<uniform> params", paramsBinding),
		fmt.Sprintf("fn %s(", entryPoint),
	} {
		if !strings.Contains(DefaultShader, decl) {
			t.Fatalf("expected default shader to contain %q", decl)
		}
	}
}

func TestWorkgroups(t *testing.T) {
	specs := []struct {
		size, exp uint32
	}{
		{1, 1},
		{8, 1},
		{9, 2},
		{512, 64},
		{513, 65},
	}

	for _, spec := range specs {
		if got := workgroups(spec.size); got != spec.exp {
			t.Fatalf("expected %d workgroups for size %d; got %d", spec.exp, spec.size, got)
		}
	}
}

func TestKernelRender(t *testing.T) {
	dev, err := NewDevice("test", true)
	if err != nil {
		t.Skipf("no webgpu adapter available: %v", err)
	}
	defer dev.Close()

	kernel, err := NewKernel("test", dev, "")
	if err != nil {
		t.Fatal(err)
	}
	defer kernel.Close()

	reg := scene.NewRegistry()
	reg.Register(scene.NewSphereObject("a", types.XYZ(0, 0, -5), 1, scene.DefaultLighting()))
	sc, err := compiler.Compile(reg, bvh.BottomUp)
	if err != nil {
		t.Fatal(err)
	}

	bs := tracer.NewBufferSet(dev)
	defer bs.Release()
	if err = bs.UploadSceneData(sc); err != nil {
		t.Fatal(err)
	}

	const frameW, frameH = 16, 8
	if err = kernel.Resize(frameW, frameH); err != nil {
		t.Fatal(err)
	}
	if err = kernel.Bind(bs); err != nil {
		t.Fatal(err)
	}

	camera := scene.NewCamera(45)
	camera.SetupProjection(float32(frameW) / float32(frameH))
	err = kernel.Dispatch(tracer.KernelParams{
		CameraToWorld:     camera.CameraToWorld(),
		InverseProjection: camera.InverseProjection(),
		Bounces:           tracer.DefaultBounces,
		RaysPerPixel:      tracer.DefaultRaysPerPixel,
		SphereBvhLen:      uint32(sc.SphereBvh.Len()),
	})
	if err != nil {
		t.Fatal(err)
	}

	frame := make([]float32, frameW*frameH*4)
	if err = kernel.ReadFrame(frame); err != nil {
		t.Fatal(err)
	}
	for pixel := 0; pixel < frameW*frameH; pixel++ {
		if alpha := frame[pixel*4+3]; alpha != 1 {
			t.Fatalf("expected pixel %d to be written with alpha 1; got %f", pixel, alpha)
		}
	}
}
