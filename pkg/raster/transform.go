package raster

import (
	"bytes"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/contactsheet/pkg/grid"
)

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Probe reads the header of an encoded image.
func Probe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode decodes an encoded image and applies its EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// Rotate turns img clockwise by degrees, which must be a multiple of 90.
// Other values leave the image untouched.
func Rotate(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate270(img) // imaging rotates counter-clockwise
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// FitSize returns the drawn size of a srcW×srcH image contain-fitted into a
// cellW×cellH box and then multiplied by scale. Both sides are at least one
// pixel when the inputs are positive.
func FitSize(srcW, srcH, cellW, cellH int, scale float64) (w, h int) {
	if srcW <= 0 || srcH <= 0 || cellW <= 0 || cellH <= 0 || scale <= 0 {
		return 0, 0
	}
	f := math.Min(float64(cellW)/float64(srcW), float64(cellH)/float64(srcH)) * scale
	w = max(1, int(math.Round(float64(srcW)*f)))
	h = max(1, int(math.Round(float64(srcH)*f)))
	return w, h
}

// Origin returns the top-left corner that centers a w×h image on c.
func Origin(c grid.Cell, w, h int) image.Point {
	return image.Point{
		X: c.X + int(math.Floor(float64(c.Width-w)/2)),
		Y: c.Y + int(math.Floor(float64(c.Height-h)/2)),
	}
}

// fitted decodes, rotates and resamples one slot for cell c.
func fitted(data []byte, rotation int, scale float64, c grid.Cell, filter imaging.ResampleFilter) (image.Image, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	img = Rotate(img, rotation)
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), c.Width, c.Height, scale)
	if w == 0 || h == 0 {
		return nil, nil
	}
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	return imaging.Resize(img, w, h, filter), nil
}

// Thumbnail decodes data and shrinks it to fit within maxW×maxH, keeping the
// aspect ratio. It is used to check a source is renderable before adding it.
func Thumbnail(data []byte, maxW, maxH int) (image.Image, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, max(maxW, 1), max(maxH, 1), imaging.Box), nil
}
