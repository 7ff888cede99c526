package encoding

import (
	"github.com/achilleasa/prism/scene"
)

// Compiled scene archives are zip files containing a gob-encoded manifest
// and one entry with the raw record data of each non-empty scene buffer.
const (
	ManifestFile    = "manifest.gob"
	ArchiveVersion  = 1
	bufferExtension = ".bin"
)

// Describes a buffer stored in a compiled scene archive.
type BufferHeader struct {
	Name   string
	Count  int
	Stride int
}

// The archive manifest.
type Manifest struct {
	Version int
	Buffers []BufferHeader

	// Optional camera settings.
	Camera *scene.Camera
}

// Get the archive entry name for a buffer.
func BufferFile(name string) string {
	return name + bufferExtension
}
