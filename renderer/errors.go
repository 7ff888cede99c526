package renderer

import "errors"

var (
	ErrNoKernel   = errors.New("renderer: no kernel attached")
	ErrNoRegistry = errors.New("renderer: no scene registry defined")
	ErrFrameSize  = errors.New("renderer: invalid frame size")
)
