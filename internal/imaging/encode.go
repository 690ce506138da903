package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	PNG  Format = "PNG"
	JPEG Format = "JPEG"
	BMP  Format = "BMP"
	TIFF Format = "TIFF"
	TGA  Format = "TARGA"
)

// ErrUnknownFormat is returned for unsupported file formats.
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimPrefix(s, ".")) {
	case "PNG":
		return PNG, nil
	case "JPEG", "JPG":
		return JPEG, nil
	case "BMP":
		return BMP, nil
	case "TIFF", "TIF":
		return TIFF, nil
	case "TARGA", "TGA":
		return TGA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tif"
	case TGA:
		return ".tga"
	default:
		return ".png"
	}
}

// SupportsHighDepth reports whether the format stores 16 bits per channel.
func (f Format) SupportsHighDepth() bool {
	return f == PNG || f == TIFF
}

// FileEncoder writes rasters to disk.
type FileEncoder struct {
	// JPEGQuality defaults to 90 when zero.
	JPEGQuality int
}

// Encode writes r to path in format f, creating parent directories.
// Float rasters are written at 16 bits where the format allows it.
func (e FileEncoder) Encode(r *Raster, path string, f Format) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := e.Write(file, r, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes r into w.
func (e FileEncoder) Write(w io.Writer, r *Raster, f Format) error {
	src := r
	if r.Float && !f.SupportsHighDepth() {
		src = r.Clone()
		src.Float = false
	}
	img := src.ToImage()

	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		q := e.JPEGQuality
		if q == 0 {
			q = 90
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case TGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}
	return nil
}

// Load decodes an image file into a raster, picking the decoder from the
// file extension.
func Load(path string, float bool, cs Colorspace) (*Raster, error) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var img image.Image
	switch f {
	case PNG:
		img, err = png.Decode(file)
	case JPEG:
		img, err = jpeg.Decode(file)
	case BMP:
		img, err = bmp.Decode(file)
	case TIFF:
		img, err = tiff.Decode(file)
	case TGA:
		img, err = tga.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(img, float, cs), nil
}
