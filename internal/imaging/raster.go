// Package imaging provides the float raster buffers that bake results are
// written into, plus colorspace conversion and file encoding.
package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Colorspace names the encoding of a raster's RGB channels.
type Colorspace string

// Known colorspaces.
const (
	Linear   Colorspace = "Linear"
	SRGB     Colorspace = "sRGB"
	NonColor Colorspace = "Non-Color"
)

// ParseColorspace accepts the canonical names case-insensitively.
func ParseColorspace(s string) (Colorspace, error) {
	switch s {
	case "linear", "Linear", "LINEAR", "scene_linear":
		return Linear, nil
	case "srgb", "sRGB", "SRGB", "":
		return SRGB, nil
	case "non-color", "Non-Color", "NON_COLOR", "noncolor":
		return NonColor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColorspace, s)
}

// Channels is the channel count of every raster (RGBA).
const Channels = 4

// Raster is an RGBA float pixel buffer. Rows are stored bottom-up: row 0 is
// the v=0 edge of UV space. Byte rasters (Float == false) clamp and quantize
// every stored value to 8 bits.
type Raster struct {
	Width      int
	Height     int
	Float      bool
	Colorspace Colorspace
	Pix        []float32
}

// NewRaster allocates a zeroed (transparent black) raster.
func NewRaster(width, height int, float bool, cs Colorspace) *Raster {
	return &Raster{
		Width:      width,
		Height:     height,
		Float:      float,
		Colorspace: cs,
		Pix:        make([]float32, width*height*Channels),
	}
}

// PixelCount returns width * height.
func (r *Raster) PixelCount() int {
	return r.Width * r.Height
}

// Texel returns the RGBA value at linear texel index i.
func (r *Raster) Texel(i int) [4]float32 {
	o := i * Channels
	return [4]float32{r.Pix[o], r.Pix[o+1], r.Pix[o+2], r.Pix[o+3]}
}

// SetTexel stores c at linear texel index i.
func (r *Raster) SetTexel(i int, c [4]float32) {
	o := i * Channels
	for k := 0; k < Channels; k++ {
		v := c[k]
		if !r.Float {
			v = quantize(v)
		}
		r.Pix[o+k] = v
	}
}

// Fill sets every texel to c.
func (r *Raster) Fill(c [4]float32) {
	for i := 0; i < r.PixelCount(); i++ {
		r.SetTexel(i, c)
	}
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out := *r
	out.Pix = append([]float32(nil), r.Pix...)
	return &out
}

func quantize(v float32) float32 {
	return float32(to8(v)) / 255
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

// ToImage converts to a top-down Go image: NRGBA for byte rasters and
// NRGBA64 for float rasters.
func (r *Raster) ToImage() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Float {
		img := image.NewNRGBA64(rect)
		for y := 0; y < r.Height; y++ {
			srcY := r.Height - 1 - y // Flip Y
			for x := 0; x < r.Width; x++ {
				c := r.Texel(srcY*r.Width + x)
				img.SetNRGBA64(x, y, color.NRGBA64{R: to16(c[0]), G: to16(c[1]), B: to16(c[2]), A: to16(c[3])})
			}
		}
		return img
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < r.Height; y++ {
		srcY := r.Height - 1 - y
		for x := 0; x < r.Width; x++ {
			c := r.Texel(srcY*r.Width + x)
			img.SetNRGBA(x, y, color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])})
		}
	}
	return img
}

// FromImage converts a top-down Go image into a raster.
func FromImage(img image.Image, float bool, cs Colorspace) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy(), float, cs)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dstY := b.Max.Y - 1 - y
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			r.SetTexel(dstY*r.Width+(x-b.Min.X), [4]float32{
				float32(c.R) / 65535,
				float32(c.G) / 65535,
				float32(c.B) / 65535,
				float32(c.A) / 65535,
			})
		}
	}
	return r
}
