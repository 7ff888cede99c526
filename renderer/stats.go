package renderer

import "time"

type FrameStats struct {
	// The kernel id.
	Kernel string

	// The progressive sample rendered by this frame.
	Sample uint32

	// True if the scene was rebuilt and uploaded during this frame.
	Rebuilt bool

	// Size of the uploaded scene buffers in bytes.
	SceneBytes int

	// Time spent compiling and uploading the scene.
	RebuildTime time.Duration

	// Time spent in kernel dispatch and frame readback.
	DispatchTime time.Duration

	// Total render time for entire frame.
	RenderTime time.Duration
}
