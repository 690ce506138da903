package bake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/imaging"
	"github.com/Faultbox/texbake/internal/logger"
)

// Writer commits a result buffer to its target surfaces.
type Writer struct {
	Request     Request
	Object      string // Baked object name, used for automatic naming
	Transformer ColorTransformer
	Encoder     Encoder
}

// clearColor is the value uncovered texels take when clearing.
func (w *Writer) clearColor() [4]float32 {
	if w.Request.tangentNormals() {
		return [4]float32{0.5, 0.5, 1, 1}
	}
	return [4]float32{}
}

// WriteAll writes every surface. Coverage comes from pixels; result holds
// Depth floats per texel. Failures are reported per surface and do not stop
// the remaining surfaces; cancellation does.
func (w *Writer) WriteAll(ctx context.Context, t *Targets, result []float32, pixels []TexelLocator, res *Result) error {
	depth := w.Request.Pass.Depth()
	var firstErr error

	for i := range t.Surfaces {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		s := &t.Surfaces[i]
		buf := result[s.Offset*depth : (s.Offset+s.PixelCount())*depth]
		cover := pixels[s.Offset : s.Offset+s.PixelCount()]

		if err := w.writeSurface(s, buf, cover, res); err != nil {
			logger.Named("writer").Warn("surface write failed", zap.Int("surface", i), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (w *Writer) writeSurface(s *Surface, buf []float32, cover []TexelLocator, res *Result) error {
	depth := w.Request.Pass.Depth()

	covered := make([]bool, len(cover))
	for i, l := range cover {
		covered[i] = l.Valid()
	}
	filled := Dilate(buf, depth, s.Width, s.Height, covered, w.Request.Margin)

	if w.Request.SaveMode == SaveInternal {
		return w.writeInternal(s, buf, filled, res)
	}
	return w.writeExternal(s, buf, filled, res)
}

// texels expands result depth into RGBA: scalars become grey, missing alpha
// is opaque.
func texels(buf []float32, depth int) []float32 {
	n := len(buf) / depth
	out := make([]float32, n*imaging.Channels)
	for i := 0; i < n; i++ {
		src := buf[i*depth : (i+1)*depth]
		dst := out[i*imaging.Channels : (i+1)*imaging.Channels]
		switch depth {
		case 1:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 1
		case 3:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 1
		default:
			copy(dst, src[:imaging.Channels])
		}
	}
	return out
}

// prepare converts the surface's result into RGBA in the target colorspace.
func (w *Writer) prepare(buf []float32, target imaging.Colorspace, float bool) ([]float32, error) {
	rgba := texels(buf, w.Request.Pass.Depth())
	if w.Request.Pass.NonColor() || float || w.Transformer == nil {
		return rgba, nil
	}
	if err := w.Transformer.Transform(rgba, imaging.Channels, imaging.Linear, target); err != nil {
		return nil, err
	}
	return rgba, nil
}

func (w *Writer) writeInternal(s *Surface, buf []float32, filled []bool, res *Result) error {
	r, err := s.Image.Acquire()
	if err != nil || r == nil {
		res.report(LevelError, "Problem saving the bake map internally, "+
			"make sure there is a Texture Image node in the current object material")
		if err == nil {
			return fmt.Errorf("%w: image %q has no buffer", ErrWrite, s.Image.Name())
		}
		return fmt.Errorf("%w: image %q: %v", ErrWrite, s.Image.Name(), err)
	}

	rgba, err := w.prepare(buf, r.Colorspace, r.Float)
	if err != nil {
		s.Image.Release(r, false)
		res.report(LevelError, "Problem writing baked map to image %q", s.Image.Name())
		return fmt.Errorf("%w: image %q: %v", ErrWrite, s.Image.Name(), err)
	}

	if r.PixelCount() != len(filled) {
		s.Image.Release(r, false)
		res.report(LevelError, "Image %q changed size during the bake", s.Image.Name())
		return fmt.Errorf("%w: image %q resized", ErrWrite, s.Image.Name())
	}

	clear := w.clearColor()
	for i := range filled {
		switch {
		case filled[i]:
			r.SetTexel(i, [4]float32(rgba[i*imaging.Channels:(i+1)*imaging.Channels]))
		case w.Request.Clear:
			r.SetTexel(i, clear)
		}
	}
	s.Image.Release(r, true)

	res.report(LevelInfo, "Baking map saved to internal image, save it externally or pack it")
	logger.Named("writer").Info("internal image updated", zap.String("image", s.Image.Name()))
	return nil
}

func (w *Writer) writeExternal(s *Surface, buf []float32, filled []bool, res *Result) error {
	float := w.Request.floatOutput()
	rgba, err := w.prepare(buf, s.Colorspace, float)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	r := imaging.NewRaster(s.Width, s.Height, float, s.Colorspace)
	if w.Request.Clear {
		r.Fill(w.clearColor())
	}
	for i := range filled {
		if filled[i] {
			r.SetTexel(i, [4]float32(rgba[i*imaging.Channels:(i+1)*imaging.Channels]))
		}
	}

	path := w.OutputPath(s)
	if err := w.Encoder.Encode(r, path, w.Request.Format); err != nil {
		res.report(LevelError, "Problem saving baked map in %q.", path)
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}

	res.Written = append(res.Written, path)
	res.report(LevelInfo, "Baking map written to %q.", path)
	logger.Named("writer").Info("map written", zap.String("path", path))
	return nil
}

// OutputPath builds the external file name: the base path, then "_"-joined
// suffixes for the object and pass (automatic naming) and the surface
// discriminator (split materials), then the format extension.
func (w *Writer) OutputPath(s *Surface) string {
	base := w.Request.FilePath
	if ext := filepath.Ext(base); ext != "" {
		if _, err := imaging.ParseFormat(ext); err == nil {
			base = strings.TrimSuffix(base, ext)
		}
	}

	var parts []string
	if w.Request.AutomaticName {
		parts = append(parts, w.Object, string(w.Request.Pass))
	}
	if w.Request.SplitMaterials {
		parts = append(parts, s.Name)
	}
	for _, p := range parts {
		if p != "" {
			base += "_" + p
		}
	}
	return base + w.Request.Format.Extension()
}
