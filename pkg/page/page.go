// Package page computes the pixel geometry of a printed contact sheet.
//
// A sheet is always one ISO A4 page rendered at a fixed print resolution of
// [DPI] dots per inch. [Compute] is the single place that turns an
// [Orientation] into pixel dimensions; the grid, the rasterizer, the document
// encoder and the interactive preview all derive their sizes from the [Spec]
// it returns, so landscape and portrait can never disagree between them.
//
//	spec, err := page.Compute(page.Portrait)
//	// spec.WidthPx == 2480, spec.HeightPx == 3508
package page

import (
	"image"
	"math"
	"strings"

	"github.com/matzehuels/contactsheet/pkg/errors"
)

// Physical constants for an ISO A4 page printed at 300 DPI.
const (
	DPI        = 300
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
	MMPerInch  = 25.4

	// PointsPerInch is the PDF user-space unit.
	PointsPerInch = 72.0
)

// Orientation is the physical orientation of the page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool {
	return o == Portrait || o == Landscape
}

// Toggle returns the other orientation. Unknown values toggle to Portrait.
func (o Orientation) Toggle() Orientation {
	if o == Portrait {
		return Landscape
	}
	return Portrait
}

func (o Orientation) String() string { return string(o) }

// ParseOrientation parses a user supplied orientation. Matching is case
// insensitive and accepts the single-letter forms "p" and "l".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait", "p":
		return Portrait, nil
	case "landscape", "l":
		return Landscape, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidOrientation,
			"invalid orientation: %q (must be 'portrait' or 'landscape')", s)
	}
}

// Spec is the target raster size of one page.
type Spec struct {
	Orientation Orientation
	WidthPx     int
	HeightPx    int
	DPI         int
}

// Compute returns the page spec for o. Both sides are rounded to the nearest
// pixel, and the landscape spec is the exact transpose of the portrait one.
func Compute(o Orientation) (Spec, error) {
	if !o.Valid() {
		return Spec{}, errors.New(errors.ErrCodeInvalidOrientation, "invalid orientation: %q", string(o))
	}
	short := mmToPx(A4WidthMM)
	long := mmToPx(A4HeightMM)
	if o == Landscape {
		short, long = long, short
	}
	return Spec{Orientation: o, WidthPx: short, HeightPx: long, DPI: DPI}, nil
}

// MustCompute is like Compute but panics on an invalid orientation.
func MustCompute(o Orientation) Spec {
	s, err := Compute(o)
	if err != nil {
		panic(err)
	}
	return s
}

func mmToPx(mm float64) int {
	return int(math.Round(mm / MMPerInch * DPI))
}

// AspectRatio returns width divided by height.
func (s Spec) AspectRatio() float64 {
	if s.HeightPx == 0 {
		return 0
	}
	return float64(s.WidthPx) / float64(s.HeightPx)
}

// Bounds returns the page rectangle anchored at the origin.
func (s Spec) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.WidthPx, s.HeightPx)
}

// WidthPt returns the page width in PDF points, interpreting the pixel width
// at s.DPI.
func (s Spec) WidthPt() float64 { return pxToPt(s.WidthPx, s.dpi()) }

// HeightPt returns the page height in PDF points.
func (s Spec) HeightPt() float64 { return pxToPt(s.HeightPx, s.dpi()) }

func (s Spec) dpi() int {
	if s.DPI <= 0 {
		return DPI
	}
	return s.DPI
}

func pxToPt(px, dpi int) float64 {
	return float64(px) * PointsPerInch / float64(dpi)
}

// PreviewSize scales the page to fit inside maxW×maxH while keeping the
// exact page aspect ratio. It is used for on-screen previews so that they
// share geometry with the exported document.
func (s Spec) PreviewSize(maxW, maxH int) (w, h int) {
	if maxW <= 0 || maxH <= 0 || s.WidthPx <= 0 || s.HeightPx <= 0 {
		return 0, 0
	}
	f := math.Min(float64(maxW)/float64(s.WidthPx), float64(maxH)/float64(s.HeightPx))
	w = max(1, int(math.Round(float64(s.WidthPx)*f)))
	h = max(1, int(math.Round(float64(s.HeightPx)*f)))
	return min(w, maxW), min(h, maxH)
}
