package raster

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// Resample filter names accepted by [ParseFilter].
const (
	FilterLanczos    = "lanczos"
	FilterCatmullRom = "catmullrom"
	FilterLinear     = "linear"
	FilterBox        = "box"
	FilterNearest    = "nearest"
)

var filters = map[string]imaging.ResampleFilter{
	FilterLanczos:    imaging.Lanczos,
	FilterCatmullRom: imaging.CatmullRom,
	FilterLinear:     imaging.Linear,
	FilterBox:        imaging.Box,
	FilterNearest:    imaging.NearestNeighbor,
}

// ParseFilter resolves a resample filter by name. The empty string selects
// Lanczos.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, errors.New(errors.ErrCodeInvalidInput,
			"invalid filter: %q (must be one of: lanczos, catmullrom, linear, box, nearest)", name)
	}
	return f, nil
}

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	background  color.Color
	filter      imaging.ResampleFilter
	concurrency int
}

// WithBackground sets the page and empty-cell color (default white).
func WithBackground(c color.Color) Option {
	return func(r *renderer) {
		if c != nil {
			r.background = c
		}
	}
}

// WithFilter sets the resample filter used for fitting (default Lanczos).
func WithFilter(f imaging.ResampleFilter) Option {
	return func(r *renderer) { r.filter = f }
}

// WithConcurrency bounds how many slots are decoded at once
// (default GOMAXPROCS, capped at the grid size).
func WithConcurrency(n int) Option {
	return func(r *renderer) { r.concurrency = n }
}

// Render composites snap into a buffer of exactly l.Spec's size.
// Slot i is drawn into l.Cells[i]; the snapshot must not hold more slots
// than the grid has cells.
func Render(ctx context.Context, snap sheet.Snapshot, l grid.Layout, opts ...Option) (*image.RGBA, error) {
	r := renderer{
		background:  color.White,
		filter:      imaging.Lanczos,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&r)
	}
	r.concurrency = min(max(r.concurrency, 1), grid.Size)

	if snap.Len() > grid.Size {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"snapshot has %d slots, grid holds %d", snap.Len(), grid.Size)
	}
	if l.Spec.WidthPx <= 0 || l.Spec.HeightPx <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"invalid page size %dx%d", l.Spec.WidthPx, l.Spec.HeightPx)
	}

	tiles, err := r.prepare(ctx, snap, l)
	if err != nil {
		return nil, err
	}

	buf := image.NewRGBA(l.Spec.Bounds())
	dc := gg.NewContextForRGBA(buf)
	dc.SetColor(r.background)
	dc.Clear()

	for i, tile := range tiles {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCancelled, err, "render cancelled")
		}
		if tile == nil {
			continue
		}
		b := tile.Bounds()
		at := Origin(l.Cells[i], b.Dx(), b.Dy())
		dc.DrawImage(tile, at.X-b.Min.X, at.Y-b.Min.Y)
	}
	return buf, nil
}

// prepare decodes and fits every slot concurrently. The returned slice is
// indexed like snap.Slots; nil entries are skipped when drawing.
func (r *renderer) prepare(ctx context.Context, snap sheet.Snapshot, l grid.Layout) ([]image.Image, error) {
	tiles := make([]image.Image, snap.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, slot := range snap.Slots {
		i, slot := i, slot // per-iteration copies (go directive < 1.22)
		cell := l.Cells[i]
		if cell.Empty() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tile, err := fitted(slot.Source.Data, slot.Rotation, slot.Scale, cell, r.filter)
			if err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailure, err,
					"image %d (%s) could not be decoded", i, slot.Source.Name)
			}
			tiles[i] = tile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "render cancelled")
		}
		return nil, err
	}
	return tiles, nil
}
