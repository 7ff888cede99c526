package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Get the screenshot filename for a frame captured at the given time.
func ScreenshotName(at time.Time, sample uint32) string {
	return fmt.Sprintf("%d-%d.png", at.Unix(), sample)
}

// Encode img as a PNG file in dir.
func writeScreenshot(dir, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		return "", fmt.Errorf("renderer: could not encode %s: %w", path, err)
	}
	return path, f.Close()
}
