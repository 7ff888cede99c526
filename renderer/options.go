package renderer

import "github.com/achilleasa/prism/scene/bvh"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of indirect bounces.
	NumBounces uint32

	// Number of rays traced per pixel and sample.
	RaysPerPixel uint32

	// BVH construction strategy used when the scene is rebuilt.
	Strategy bvh.Strategy

	// Validate BVH trees after each rebuild.
	Verify bool

	// Directory for screenshots; defaults to the working directory.
	ScreenshotDir string

	// Seed for the jitter and kernel seed generator. A zero value seeds
	// from the current time.
	Seed int64
}

// Fill unset options with their defaults.
func (o *Options) setDefaults() {
	if o.NumBounces == 0 {
		o.NumBounces = tracerDefaultBounces
	}
	if o.RaysPerPixel == 0 {
		o.RaysPerPixel = tracerDefaultRaysPerPixel
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = "."
	}
}
