package renderer

import (
	"image"
	"image/color"
	"math"
)

// Accumulator blends progressive samples into a converged image. Pixels are
// stored as packed RGBA float values.
type Accumulator struct {
	W, H int
	Pix  []float32
}

// Create a new accumulator for the given frame size.
func NewAccumulator(w, h int) *Accumulator {
	a := &Accumulator{}
	a.Reset(w, h)
	return a
}

// Resize the accumulator and clear its contents.
func (a *Accumulator) Reset(w, h int) {
	a.W, a.H = w, h
	if cap(a.Pix) >= w*h*4 {
		a.Pix = a.Pix[:w*h*4]
		for i := range a.Pix {
			a.Pix[i] = 0
		}
		return
	}
	a.Pix = make([]float32, w*h*4)
}

// Blend a sample into the image with weight 1/(sample+1). Sample 0 replaces
// the image contents.
func (a *Accumulator) Blend(frame []float32, sample uint32) {
	weight := 1 / float32(sample+1)
	for i := range a.Pix {
		if i >= len(frame) {
			break
		}
		a.Pix[i] += (frame[i] - a.Pix[i]) * weight
	}
}

// Get the converged image as 8-bit RGBA.
func (a *Accumulator) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.W, a.H))
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			offset := (y*a.W + x) * 4
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(a.Pix[offset]),
				G: toByte(a.Pix[offset+1]),
				B: toByte(a.Pix[offset+2]),
				A: toByte(a.Pix[offset+3]),
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
