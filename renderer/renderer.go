package renderer

import "github.com/achilleasa/prism/tracer"

const (
	tracerDefaultBounces      = tracer.DefaultBounces
	tracerDefaultRaysPerPixel = tracer.DefaultRaysPerPixel
)

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached kernel.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
