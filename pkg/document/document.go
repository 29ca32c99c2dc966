// Package document wraps a rendered page buffer into a single-page output
// file and persists it.
//
// # Formats
//
//   - pdf: one page whose MediaBox is exactly the page size in points. The
//     raster is embedded once as a JPEG at the configured quality (100 by
//     default) and placed at its native pixel size interpreted at the page
//     DPI, so the document is never auto-fitted by a viewer.
//   - png: the lossless raster with a pHYs chunk recording the DPI.
//   - jpeg: the raster at the configured quality with a JFIF density header.
//
// # Persistence
//
// [Save] writes the complete encoded bytes to a temporary file next to the
// destination and renames it into place, so a failed or cancelled export
// never leaves a partial artifact behind.
package document

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/page"
)

// Format is an output document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultBaseName is the file name, without extension, of an exported sheet.
const DefaultBaseName = "contact-sheet"

// DefaultJPEGQuality is used for PDF and JPEG output.
const DefaultJPEGQuality = 100

// Formats lists the supported formats in display order.
var Formats = []Format{FormatPDF, FormatPNG, FormatJPEG}

// ParseFormat resolves a format name; "jpg" is accepted for JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf", "":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: pdf, png, jpeg)", s)
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "application/pdf"
	}
}

// Document is a complete encoded single-page file held in memory.
type Document struct {
	Format Format
	Spec   page.Spec
	Data   []byte
}

// Filename returns the default artifact name, e.g. "contact-sheet.pdf".
func (d *Document) Filename() string {
	return DefaultBaseName + "." + d.Format.Ext()
}

// Size returns the encoded size in bytes.
func (d *Document) Size() int { return len(d.Data) }

// Option configures encoding.
type Option func(*encoder)

type encoder struct {
	format  Format
	quality int
	title   string
	created time.Time
}

// WithFormat selects the output format (default PDF).
func WithFormat(f Format) Option {
	return func(e *encoder) { e.format = f }
}

// WithJPEGQuality sets the JPEG quality, 1 to 100.
func WithJPEGQuality(q int) Option {
	return func(e *encoder) { e.quality = q }
}

// WithTitle sets the PDF document title.
func WithTitle(title string) Option {
	return func(e *encoder) { e.title = title }
}

// WithCreationDate sets the PDF creation date. The zero time omits it.
func WithCreationDate(t time.Time) Option {
	return func(e *encoder) { e.created = t }
}

// Encode wraps img into a single-page document of exactly spec's size.
// img must have the same dimensions as spec.
func Encode(img image.Image, spec page.Spec, opts ...Option) (*Document, error) {
	e := encoder{format: FormatPDF, quality: DefaultJPEGQuality, title: "Contact Sheet"}
	for _, opt := range opts {
		opt(&e)
	}

	if img == nil {
		return nil, errors.New(errors.ErrCodeEncodeFailure, "no raster to encode")
	}
	if e.quality < 1 || e.quality > 100 {
		return nil, errors.New(errors.ErrCodeEncodeFailure, "jpeg quality %d out of range [1, 100]", e.quality)
	}
	b := img.Bounds()
	if b.Dx() != spec.WidthPx || b.Dy() != spec.HeightPx {
		return nil, errors.New(errors.ErrCodeEncodeFailure,
			"raster is %dx%d, page is %dx%d", b.Dx(), b.Dy(), spec.WidthPx, spec.HeightPx)
	}

	var (
		data []byte
		err  error
	)
	switch e.format {
	case FormatPDF:
		data, err = encodePDF(img, spec, &e)
	case FormatPNG:
		data, err = encodePNG(img, spec.DPI)
	case FormatJPEG:
		data, err = encodeJPEG(img, e.quality, spec.DPI)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %q", string(e.format))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailure, err, "encode %s", e.format)
	}
	return &Document{Format: e.format, Spec: spec, Data: data}, nil
}

func (f Format) String() string { return string(f) }

// Describe returns a short human-readable summary such as
// "pdf 2480×3508 px (595.2×841.9 pt)".
func (d *Document) Describe() string {
	return fmt.Sprintf("%s %d×%d px (%.1f×%.1f pt)",
		d.Format, d.Spec.WidthPx, d.Spec.HeightPx, d.Spec.WidthPt(), d.Spec.HeightPt())
}
