package imaging

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Colorspace errors.
var (
	ErrUnknownColorspace = errors.New("unknown colorspace")
	ErrChannelCount      = errors.New("unsupported channel count")
)

// Transformer converts buffers between colorspaces in place using the
// standard sRGB transfer curve. Alpha and single-channel data are left
// untouched.
type Transformer struct{}

// Transform converts interleaved pixels with the given channel count.
// Non-Color on either side is a no-op, as is from == to.
func (Transformer) Transform(buf []float32, channels int, from, to Colorspace) error {
	if from == to || from == NonColor || to == NonColor {
		return nil
	}
	if channels < 1 || channels > 4 {
		return fmt.Errorf("%w: %d", ErrChannelCount, channels)
	}
	if channels < 3 {
		return nil
	}

	var convert func(r, g, b float64) (float64, float64, float64)
	switch {
	case from == Linear && to == SRGB:
		convert = func(r, g, b float64) (float64, float64, float64) {
			c := colorful.LinearRgb(r, g, b)
			return c.R, c.G, c.B
		}
	case from == SRGB && to == Linear:
		convert = func(r, g, b float64) (float64, float64, float64) {
			return colorful.Color{R: r, G: g, B: b}.LinearRgb()
		}
	default:
		return fmt.Errorf("%w: %s -> %s", ErrUnknownColorspace, from, to)
	}

	for i := 0; i+channels <= len(buf); i += channels {
		r, g, b := convert(float64(buf[i]), float64(buf[i+1]), float64(buf[i+2]))
		buf[i], buf[i+1], buf[i+2] = float32(r), float32(g), float32(b)
	}
	return nil
}
