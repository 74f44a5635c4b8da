// Package imaging reduces raw color frames to the single-channel intensity
// frames the detector scans.
package imaging

import (
	"fmt"
	"image"
	"math"
)

// BT.601 luma weights. The sum is exactly 1, so a gray pixel reduces to its
// own value.
const (
	lumaRed   = 0.299
	lumaGreen = 0.587
	lumaBlue  = 0.114
)

// IntensityFrame is a width x height grid of luminance samples, row-major.
// It is built fresh each detection cycle and never mutated afterwards.
type IntensityFrame struct {
	Width  int
	Height int
	Pixels []uint8
}

// NewIntensityFrame allocates a zeroed frame.
func NewIntensityFrame(width, height int) *IntensityFrame {
	return &IntensityFrame{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height),
	}
}

// At returns the luminance sample at (x, y). Bounds are the caller's contract.
func (f *IntensityFrame) At(x, y int) uint8 {
	return f.Pixels[y*f.Width+x]
}

// Set writes the luminance sample at (x, y).
func (f *IntensityFrame) Set(x, y int, v uint8) {
	f.Pixels[y*f.Width+x] = v
}

// In reports whether (x, y) lies inside the frame.
func (f *IntensityFrame) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// ValidateFrame checks the dimensions and buffer length of a raw RGBA frame
// before reduction. A failure aborts the cycle; nothing partial is emitted.
func ValidateFrame(width, height, bufLen int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("malformed frame: dimensions %dx%d must be positive", width, height)
	}
	if bufLen != width*height*4 {
		return fmt.Errorf("malformed frame: RGBA buffer has %d bytes, want %d for %dx%d", bufLen, width*height*4, width, height)
	}
	return nil
}

// Luma converts one RGB triple to its rounded luminance value.
func Luma(r, g, b uint8) uint8 {
	return uint8(math.Round(lumaRed*float64(r) + lumaGreen*float64(g) + lumaBlue*float64(b)))
}

// Reduce converts an RGBA image to an intensity frame. Pure; the alpha
// channel is ignored.
func Reduce(img *image.RGBA) *IntensityFrame {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := NewIntensityFrame(width, height)
	for y := 0; y < height; y++ {
		i := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < width; x++ {
			out.Pixels[y*width+x] = Luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			i += 4
		}
	}
	return out
}

// ReduceRaw validates and reduces a raw RGBA byte buffer as supplied by the
// capture collaborator.
func ReduceRaw(buf []uint8, width, height int) (*IntensityFrame, error) {
	if err := ValidateFrame(width, height, len(buf)); err != nil {
		return nil, err
	}
	out := NewIntensityFrame(width, height)
	for p := 0; p < width*height; p++ {
		i := p * 4
		out.Pixels[p] = Luma(buf[i], buf[i+1], buf[i+2])
	}
	return out, nil
}
