package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/prism/log"
	"github.com/achilleasa/prism/scene"
	"github.com/achilleasa/prism/scene/encoding"
)

type zipSceneWriter struct {
	logger log.Logger
}

// Write a compiled scene and an optional camera to a zip archive.
func WriteFile(sceneFile string, sc *scene.Scene, camera *scene.Camera) error {
	w := newZipSceneWriter()
	w.logger.Noticef("writing compressed scene to %s", sceneFile)
	start := time.Now()

	zipFile, err := os.Create(sceneFile)
	if err != nil {
		return err
	}

	if err = w.Write(zipFile, sc, camera); err != nil {
		zipFile.Close()
		return err
	}
	if err = zipFile.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Create a new zip scene writer
func newZipSceneWriter() *zipSceneWriter {
	return &zipSceneWriter{
		logger: log.New("zip scene writer"),
	}
}

// Write scene archive to out.
func (w *zipSceneWriter) Write(out io.Writer, sc *scene.Scene, camera *scene.Camera) error {
	zw := zip.NewWriter(out)

	manifest := encoding.Manifest{
		Version: encoding.ArchiveVersion,
		Camera:  camera,
	}

	for _, rec := range encoding.EncodeScene(sc) {
		manifest.Buffers = append(manifest.Buffers, encoding.BufferHeader{
			Name:   rec.Name,
			Count:  rec.Count,
			Stride: rec.Stride,
		})

		if rec.Empty() {
			continue
		}

		cw, err := zw.Create(encoding.BufferFile(rec.Name))
		if err != nil {
			return err
		}
		if _, err = cw.Write(rec.Data); err != nil {
			return fmt.Errorf("zip scene writer: could not write buffer %q: %w", rec.Name, err)
		}
		w.logger.Debugf("wrote buffer %q (%d records, %d bytes)", rec.Name, rec.Count, len(rec.Data))
	}

	cw, err := zw.Create(encoding.ManifestFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(cw).Encode(&manifest); err != nil {
		return fmt.Errorf("zip scene writer: could not write manifest: %w", err)
	}

	return zw.Close()
}
