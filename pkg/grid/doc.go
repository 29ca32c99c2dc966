// Package grid computes the 3×3 cell layout of a contact sheet.
//
// # Geometry
//
// [Compute] inscribes nine congruent square cells into the page area left
// after removing a uniform margin on every side. Cells are separated by a
// uniform gutter:
//
//	side = floor(min(availW - 2·gutter, availH - 2·gutter) / 3)
//
// The resulting 3·side + 2·gutter block is centered inside the available
// region, so an A4 page in portrait leaves residual space above and below
// the grid and a landscape page leaves it left and right. All nine cells
// stay congruent even when that leaves residual margin.
//
// Cells are numbered row-major: index 0 is top-left, index 8 is
// bottom-right. The computation is pure integer arithmetic; identical inputs
// always produce identical rectangles.
//
//	spec := page.MustCompute(page.Portrait)
//	l := grid.Compute(spec, grid.DefaultMargin, grid.WithGutter(grid.DefaultGutter))
//	first := l.Cell(0)
package grid
