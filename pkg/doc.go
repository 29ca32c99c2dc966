// Package pkg provides the core libraries for composing contact sheets.
//
// # Overview
//
// A contact sheet is a single A4 page at 300 DPI holding up to nine images
// in a 3×3 grid. Each image keeps its aspect ratio, fits its cell, and may
// be rotated in quarter turns and scaled. The pkg directory is organized
// into three areas:
//
//  1. Model - [sheet] (ordered slots) and [page] (paper geometry)
//  2. Composition - [grid] (cell layout) and [raster] (pixel rendering)
//  3. Output - [document] (PDF, PNG, JPEG) and [export] (single-flight jobs)
//
// # Architecture
//
// The data flow of one export:
//
//	sheet.Sheet
//	     ↓ Snapshot
//	[page] Spec + [grid] Layout
//	     ↓
//	[raster] Render (decode, rotate, fit, paste)
//	     ↓
//	[document] Encode + Save
//	     ↓
//	contact-sheet.pdf
//
// # Quick Start
//
//	s := sheet.New()
//	srcs, _ := sheet.ReadSources([]string{"a.jpg", "b.png"})
//	_ = s.Add(srcs...)
//	_ = s.Rotate(0)
//
//	exp := export.NewExporter(log.Default())
//	res, err := exp.Export(ctx, s.Snapshot(), export.Options{Output: "out.pdf"})
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every package; [errors.GetCode] drives
// CLI messages and export failure events.
//
// [config] - TOML defaults for the CLI.
//
// [observability] - Hooks around export stages and image loading.
//
// [buildinfo] - Version metadata injected at build time.
//
// [sheet]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/sheet
// [page]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/page
// [grid]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/grid
// [raster]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/raster
// [document]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/document
// [export]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/export
// [errors]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/errors
// [errors.GetCode]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/errors#GetCode
// [config]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/contactsheet/pkg/buildinfo
package pkg
