package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/contactsheet/pkg/document"
	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/raster"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultFormat is the document format used when none is given.
	DefaultFormat = document.FormatPDF

	// DefaultBackground is the page and empty-cell color.
	DefaultBackground = "#ffffff"

	// DefaultFilter is the resample filter used for fitting images.
	DefaultFilter = raster.FilterLanczos

	// DefaultTitle is the PDF document title.
	DefaultTitle = "Contact Sheet"

	// None requests a zero margin or gutter, since zero selects the default.
	None = -1
)

// =============================================================================
// Options - Export Configuration
// =============================================================================

// Options configures one export. Zero values select the defaults above
// and the grid defaults (margin 89 px, gutter 44 px); use [None] for an
// explicit zero margin or gutter.
type Options struct {
	// Output is the destination file. Empty means contact-sheet.<ext> in the
	// working directory; an existing directory receives that file name.
	Output string

	// Format is pdf, png or jpeg. Empty infers it from Output's extension
	// and falls back to pdf.
	Format string

	Margin      int
	Gutter      int
	Background  string // #rrggbb or #rgb
	Filter      string // see raster.ParseFilter
	JPEGQuality int
	Concurrency int
	Title       string

	// OnEvent, when set, receives the Started, Succeeded and Failed events
	// of the job. It is called from the export goroutine.
	OnEvent func(Event)

	// resolved by ValidateAndSetDefaults; the exported fields keep what
	// the caller asked for so validation can run again after edits
	output     string
	format     document.Format
	margin     int
	gutter     int
	background color.NRGBA
	filter     imaging.ResampleFilter
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.Margin == 0 {
		o.Margin = grid.DefaultMargin
	}
	if o.Gutter == 0 {
		o.Gutter = grid.DefaultGutter
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Filter == "" {
		o.Filter = DefaultFilter
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = document.DefaultJPEGQuality
	}
	if o.Concurrency == 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
}

// ValidateAndSetDefaults applies defaults, validates every field and
// resolves the format and output path. It may be called again after
// changing fields; every call resolves from scratch.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()

	name := o.Format
	if name == "" {
		name = string(formatFromPath(o.Output))
	}
	f, err := document.ParseFormat(name)
	if err != nil {
		return err
	}
	o.format = f

	if o.Margin < None {
		return errors.New(errors.ErrCodeInvalidInput, "margin must be non-negative, got %d", o.Margin)
	}
	if o.Gutter < None {
		return errors.New(errors.ErrCodeInvalidInput, "gutter must be non-negative, got %d", o.Gutter)
	}
	o.margin, o.gutter = max(o.Margin, 0), max(o.Gutter, 0)
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "jpeg quality must be between 1 and 100, got %d", o.JPEGQuality)
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must be non-negative, got %d", o.Concurrency)
	}

	if o.background, err = ParseColor(o.Background); err != nil {
		return err
	}
	if o.filter, err = raster.ParseFilter(o.Filter); err != nil {
		return err
	}

	o.output = resolveOutput(o.Output, o.format)
	if err := errors.ValidateOutputPath(o.output); err != nil {
		return err
	}
	return nil
}

// ResolvedFormat returns the parsed format. Valid after ValidateAndSetDefaults.
func (o *Options) ResolvedFormat() document.Format { return o.format }

// ResolvedOutput returns the destination path. Valid after
// ValidateAndSetDefaults.
func (o *Options) ResolvedOutput() string { return o.output }

// ResolvedMargins returns the page margin and gutter in pixels, with
// [None] resolved to zero. Valid after ValidateAndSetDefaults.
func (o *Options) ResolvedMargins() (margin, gutter int) { return o.margin, o.gutter }

func formatFromPath(path string) document.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return document.FormatPNG
	case ".jpg", ".jpeg":
		return document.FormatJPEG
	default:
		return document.FormatPDF
	}
}

func resolveOutput(path string, f document.Format) string {
	name := document.DefaultBaseName + "." + f.Ext()
	if path == "" {
		return name
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, name)
	}
	return path
}

// ParseColor parses "#rrggbb" or "#rgb" (the "#" is optional) into an
// opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
	}
	if len(hex) != 6 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid color: %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color: %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
