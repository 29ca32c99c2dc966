package grid

import (
	"image"

	"github.com/matzehuels/contactsheet/pkg/page"
)

const (
	// Rows and Cols are fixed; the sheet is always 3×3.
	Rows = 3
	Cols = 3

	// Size is the number of cells in a grid.
	Size = Rows * Cols

	// DefaultMargin is the page margin in pixels at 300 DPI (about 7.5 mm).
	DefaultMargin = 89

	// DefaultGutter is the space between adjacent cells in pixels (about 3.7 mm).
	DefaultGutter = 44
)

// Cell is one rectangle of the grid in page pixel coordinates.
type Cell struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the cell as an image.Rectangle.
func (c Cell) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Center returns the cell center in page coordinates.
func (c Cell) Center() (x, y float64) {
	return float64(c.X) + float64(c.Width)/2, float64(c.Y) + float64(c.Height)/2
}

// Empty reports whether the cell has no area.
func (c Cell) Empty() bool {
	return c.Width <= 0 || c.Height <= 0
}

// Layout is the computed grid for one page.
type Layout struct {
	Spec   page.Spec  `json:"-"`
	Margin int        `json:"margin"`
	Gutter int        `json:"gutter"`
	Side   int        `json:"side"`
	Cells  [Size]Cell `json:"cells"`
}

// Cell returns cell i. It panics if i is outside [0, Size).
func (l Layout) Cell(i int) Cell {
	return l.Cells[i]
}

// Bounds returns the smallest rectangle containing all cells.
func (l Layout) Bounds() image.Rectangle {
	r := l.Cells[0].Rect()
	for _, c := range l.Cells[1:] {
		r = r.Union(c.Rect())
	}
	return r
}

// Option configures grid computation.
type Option func(*config)

type config struct {
	gutter int
}

// WithGutter sets the inter-cell gutter in pixels. Negative values are
// treated as zero.
func WithGutter(px int) Option {
	return func(c *config) { c.gutter = px }
}

// Compute lays out the nine cells for spec with the given margin.
// Negative margins and gutters are treated as zero; pages too small to hold
// any cell produce nine zero-sized cells at the center of the page.
func Compute(spec page.Spec, margin int, opts ...Option) Layout {
	cfg := config{gutter: DefaultGutter}
	for _, opt := range opts {
		opt(&cfg)
	}
	margin = max(margin, 0)
	gutter := max(cfg.gutter, 0)

	availW := max(spec.WidthPx-2*margin, 0)
	availH := max(spec.HeightPx-2*margin, 0)

	side := max(min(availW-(Cols-1)*gutter, availH-(Rows-1)*gutter)/Cols, 0)
	if side == 0 {
		gutter = 0
	}

	gridW := Cols*side + (Cols-1)*gutter
	gridH := Rows*side + (Rows-1)*gutter
	originX := margin + (availW-gridW)/2
	originY := margin + (availH-gridH)/2
	if availW == 0 {
		originX = spec.WidthPx / 2
	}
	if availH == 0 {
		originY = spec.HeightPx / 2
	}

	l := Layout{Spec: spec, Margin: margin, Gutter: gutter, Side: side}
	for i := range l.Cells {
		row, col := i/Cols, i%Cols
		l.Cells[i] = Cell{
			X:      originX + col*(side+gutter),
			Y:      originY + row*(side+gutter),
			Width:  side,
			Height: side,
		}
	}
	return l
}
