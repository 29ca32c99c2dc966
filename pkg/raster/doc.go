// Package raster composites the images of a sheet snapshot into a single
// page-sized pixel buffer.
//
// # Pipeline
//
// For every occupied slot [Render] runs the same steps:
//
//  1. Decode the source bytes (JPEG, PNG, GIF, BMP, TIFF, WebP), honoring
//     the EXIF orientation tag.
//  2. Rotate clockwise by the slot rotation. For 90 and 270 degrees the
//     bounding box swaps width and height before fitting.
//  3. Contain-fit: scale uniformly so the rotated image fits the cell
//     without cropping, then multiply by the slot scale.
//  4. Draw the result centered on the cell center.
//
// Slots with a scale above 1 may extend past their cell into the gutter or
// a neighbor; the rasterizer does not clip them. Cells without a slot keep
// the background color.
//
// Decoding and resampling run concurrently (see [WithConcurrency]); drawing
// happens afterwards in slot order, so overlapping slots always stack the
// same way.
//
// # Errors
//
// A source that cannot be decoded fails the whole render with
// RENDER_FAILURE and no buffer is returned. A cancelled context fails with
// CANCELLED.
package raster
