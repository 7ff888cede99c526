package reader

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/encoding"
)

type zipSceneReader struct {
	logger log.Logger
}

// Read a compiled scene archive. The returned camera is nil if the archive
// does not include camera settings.
func ReadCompiled(sceneFile string) (*scene.Scene, *scene.Camera, error) {
	r := &zipSceneReader{
		logger: log.New("zip scene reader"),
	}

	r.logger.Noticef("parsing compiled scene from %s", sceneFile)
	start := time.Now()

	zr, err := zip.OpenReader(sceneFile)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()

	sc, camera, err := r.Read(&zr.Reader)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, camera, nil
}

// Read scene archive contents.
func (r *zipSceneReader) Read(zr *zip.Reader) (*scene.Scene, *scene.Camera, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	manifestFile, exists := files[encoding.ManifestFile]
	if !exists {
		return nil, nil, fmt.Errorf("zip scene reader: missing %s", encoding.ManifestFile)
	}

	var manifest encoding.Manifest
	if err := readEntry(manifestFile, func(rc io.Reader) error {
		return gob.NewDecoder(rc).Decode(&manifest)
	}); err != nil {
		return nil, nil, fmt.Errorf("zip scene reader: failed to load %s: %w", encoding.ManifestFile, err)
	}
	if manifest.Version != encoding.ArchiveVersion {
		return nil, nil, fmt.Errorf("zip scene reader: unsupported archive version %d", manifest.Version)
	}

	records := make([]encoding.Record, 0, len(manifest.Buffers))
	for _, header := range manifest.Buffers {
		rec := encoding.Record{
			Name:   header.Name,
			Count:  header.Count,
			Stride: header.Stride,
		}

		if header.Count != 0 {
			f, exists := files[encoding.BufferFile(header.Name)]
			if !exists {
				return nil, nil, fmt.Errorf("zip scene reader: missing data for buffer %q", header.Name)
			}
			if err := readEntry(f, func(rc io.Reader) (err error) {
				rec.Data, err = io.ReadAll(rc)
				return err
			}); err != nil {
				return nil, nil, fmt.Errorf("zip scene reader: failed to load %s: %w", f.Name, err)
			}
		}

		records = append(records, rec)
	}

	sc, err := encoding.DecodeScene(records)
	if err != nil {
		return nil, nil, err
	}
	if manifest.Camera != nil {
		manifest.Camera.Update()
	}
	return sc, manifest.Camera, nil
}

func readEntry(f *zip.File, fn func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}
