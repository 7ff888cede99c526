package renderer

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/compiler"
	"github.com/achilleasa/prism/tracer"
	"github.com/achilleasa/prism/types"
)

// The Driver renders progressive samples of a registry-backed scene. Scene
// data is rebuilt lazily whenever the registry is flagged as dirty.
//
// A Driver is not safe for concurrent use; screenshots may be requested
// from any goroutine.
type Driver struct {
	logger log.Logger

	options  Options
	registry *scene.Registry
	camera   *scene.Camera

	kernel   tracer.Kernel
	buffers  *tracer.BufferSet
	compiler *compiler.Compiler
	scene    *scene.Scene

	accumulator *Accumulator
	frame       []float32
	rng         *rand.Rand

	// Progressive sample counter.
	sample uint32

	// Camera state used by the last frame.
	lastViewProj types.Mat4

	// Frame size the kernel was sized for.
	frameW uint32
	frameH uint32

	// Set once scene buffers have been bound to the kernel.
	bound bool

	screenshotChan chan struct{}
	stats          FrameStats

	// Clock used for naming screenshots.
	now func() time.Time
}

// Create a new driver that renders the objects in reg through kernel. Scene
// buffers are allocated using allocator. If camera is nil a default camera
// looking down the negative Z axis is used.
func NewDriver(reg *scene.Registry, camera *scene.Camera, kernel tracer.Kernel, allocator tracer.Allocator, opts Options) (*Driver, error) {
	if kernel == nil {
		return nil, ErrNoKernel
	}
	if reg == nil {
		return nil, ErrNoRegistry
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrFrameSize, opts.FrameW, opts.FrameH)
	}
	opts.setDefaults()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if camera == nil {
		camera = scene.NewCamera(60)
	}

	comp := compiler.New(opts.Strategy)
	comp.Verify = opts.Verify

	d := &Driver{
		logger:         log.New("renderer"),
		options:        opts,
		registry:       reg,
		camera:         camera,
		kernel:         kernel,
		buffers:        tracer.NewBufferSet(allocator),
		compiler:       comp,
		scene:          &scene.Scene{},
		accumulator:    NewAccumulator(0, 0),
		rng:            rand.New(rand.NewSource(seed)),
		screenshotChan: make(chan struct{}, 1),
		now:            time.Now,
	}

	d.camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))
	return d, nil
}

// Render the next progressive sample.
func (d *Driver) Render() error {
	start := time.Now()
	d.stats = FrameStats{Kernel: d.kernel.Id()}

	if err := d.resizeIfNeeded(); err != nil {
		return err
	}
	if err := d.rebuildIfDirty(); err != nil {
		return err
	}

	// Camera movement invalidates the accumulated image.
	viewProj := d.camera.ProjMat.Mul4(d.camera.ViewMat)
	if viewProj != d.lastViewProj {
		d.lastViewProj = viewProj
		d.sample = 0
	}

	dispatchStart := time.Now()
	if err := d.kernel.Dispatch(d.kernelParams()); err != nil {
		return err
	}
	if reader, ok := d.kernel.(tracer.FrameReader); ok {
		if err := reader.ReadFrame(d.frame); err != nil {
			return err
		}
		d.accumulator.Blend(d.frame, d.sample)
	}
	d.stats.DispatchTime = time.Since(dispatchStart)

	select {
	case <-d.screenshotChan:
		d.saveScreenshot()
	default:
	}

	d.stats.Sample = d.sample
	d.sample++
	d.stats.RenderTime = time.Since(start)
	return nil
}

// Change the frame size. The new size takes effect on the next frame.
func (d *Driver) Resize(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("%w: %dx%d", ErrFrameSize, frameW, frameH)
	}
	d.options.FrameW, d.options.FrameH = frameW, frameH
	return nil
}

func (d *Driver) resizeIfNeeded() error {
	if d.frameW == d.options.FrameW && d.frameH == d.options.FrameH {
		return nil
	}

	if err := d.kernel.Resize(d.options.FrameW, d.options.FrameH); err != nil {
		return err
	}
	d.frameW, d.frameH = d.options.FrameW, d.options.FrameH
	d.accumulator.Reset(int(d.frameW), int(d.frameH))
	d.frame = make([]float32, int(d.frameW*d.frameH)*4)
	d.camera.SetupProjection(float32(d.frameW) / float32(d.frameH))
	d.sample = 0

	d.logger.Infof("render target resized to %dx%d", d.frameW, d.frameH)
	return nil
}

// Rebuild and bind scene buffers if the registry changed or nothing has
// been bound yet. The dirty flag is only cleared once the kernel accepts
// the new buffers so a failed rebuild is retried on the next frame.
func (d *Driver) rebuildIfDirty() error {
	if d.bound && !d.registry.Dirty() {
		return nil
	}

	start := time.Now()
	d.sample = 0

	sc, err := d.compiler.Compile(d.registry)
	if err != nil {
		return d.rebuildFailed(err)
	}
	if err = d.buffers.UploadSceneData(sc); err != nil {
		return d.rebuildFailed(err)
	}
	if err = d.kernel.Bind(d.buffers); err != nil {
		return d.rebuildFailed(err)
	}
	d.scene = sc
	d.bound = true
	d.registry.ClearDirty()

	d.stats.Rebuilt = true
	d.stats.SceneBytes = d.buffers.Size()
	d.stats.RebuildTime = time.Since(start)
	d.logger.Noticef(
		"rebuilt scene with %d mesh objects and %d spheres in %d ms",
		len(sc.MeshObjects), len(sc.Spheres), d.stats.RebuildTime.Nanoseconds()/1e6,
	)
	return nil
}

// The kernel may reference partially uploaded buffers until the next
// successful rebuild.
func (d *Driver) rebuildFailed(err error) error {
	d.bound = false
	d.logger.Warningf("scene rebuild failed; retrying on next frame: %v", err)
	return err
}

func (d *Driver) kernelParams() tracer.KernelParams {
	return tracer.KernelParams{
		CameraToWorld:     d.camera.CameraToWorld(),
		InverseProjection: d.camera.InverseProjection(),
		PixelOffset:       types.XY(d.rng.Float32(), d.rng.Float32()),
		Seed:              d.rng.Float32(),
		Bounces:           d.options.NumBounces,
		RaysPerPixel:      d.options.RaysPerPixel,
		MeshBvhLen:        uint32(d.scene.MeshBvh.Len()),
		SphereBvhLen:      uint32(d.scene.SphereBvh.Len()),
		Sample:            d.sample,
		FrameW:            d.frameW,
		FrameH:            d.frameH,
	}
}

// Capture the converged image after the next frame.
func (d *Driver) RequestScreenshot() {
	select {
	case d.screenshotChan <- struct{}{}:
	default:
	}
}

func (d *Driver) saveScreenshot() {
	name := ScreenshotName(d.now(), d.sample)
	path, err := writeScreenshot(d.options.ScreenshotDir, name, d.accumulator.Image())
	if err != nil {
		d.logger.Errorf("could not save screenshot: %v", err)
		return
	}
	d.logger.Noticef("saved screenshot to %s", path)
}

// Get the progressive sample counter for the next frame.
func (d *Driver) Sample() uint32 {
	return d.sample
}

// Get the camera.
func (d *Driver) Camera() *scene.Camera {
	return d.camera
}

// Get the last compiled scene.
func (d *Driver) Scene() *scene.Scene {
	return d.scene
}

// Get the converged image.
func (d *Driver) Image() image.Image {
	return d.accumulator.Image()
}

// Get last frame statistics.
func (d *Driver) Stats() FrameStats {
	return d.stats
}

// Release scene buffers and shutdown the kernel.
func (d *Driver) Close() {
	d.buffers.Release()
	d.kernel.Close()
}

var _ Renderer = (*Driver)(nil)
