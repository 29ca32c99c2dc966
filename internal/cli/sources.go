package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/observability"
	"github.com/matzehuels/contactsheet/pkg/raster"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// expandPaths resolves glob patterns in order; "**" matches across
// directories and {a,b} picks alternatives. Plain paths are kept as is so a
// missing file is reported by the reader with its own name.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad pattern %q", p)
		}
		if len(matches) == 0 {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no images match %q", p)
		}
		out = append(out, matches...)
	}
	return out, nil
}

// loadSources reads and probes every image. Nothing is returned unless all
// of them are readable images.
func loadSources(ctx context.Context, logger *log.Logger, paths []string) ([]sheet.Source, error) {
	paths, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(paths) > sheet.Capacity {
		return nil, errors.New(errors.ErrCodeCapacityExceeded,
			"select up to %d images at a time (got %d)", sheet.Capacity, len(paths))
	}

	hooks := observability.Source()
	out := make([]sheet.Source, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := sheet.ReadSource(p)
		hooks.OnSourceLoad(ctx, filepath.Base(p), src.Size(), err)
		if err != nil {
			return nil, err
		}
		info, err := raster.Probe(src.Data)
		if err != nil {
			hooks.OnSourceRejected(ctx, src.Name, err)
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s is not a supported image", p)
		}
		logger.Debug("loaded image",
			"name", src.Name,
			"format", info.Format,
			"size", fmt.Sprintf("%dx%d", info.Width, info.Height),
			"bytes", src.Size())
		out = append(out, src)
	}
	return out, nil
}

// scaleAdjust is one --scale flag value: slot index and delta.
type scaleAdjust struct {
	index int
	delta float64
}

// parseScaleFlag parses "INDEX=DELTA", e.g. "2=-0.25".
func parseScaleFlag(s string) (scaleAdjust, error) {
	idx, delta, ok := strings.Cut(s, "=")
	if !ok {
		return scaleAdjust{}, errors.New(errors.ErrCodeInvalidInput, "invalid --scale %q (want INDEX=DELTA)", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return scaleAdjust{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --scale index in %q", s)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(delta), 64)
	if err != nil {
		return scaleAdjust{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --scale delta in %q", s)
	}
	return scaleAdjust{index: i, delta: d}, nil
}

// applyTransforms rotates each listed slot by 90° per occurrence and then
// applies the scale adjustments in order.
func applyTransforms(s *sheet.Sheet, rotations []int, scales []string) error {
	for _, i := range rotations {
		if err := s.Rotate(i); err != nil {
			return err
		}
	}
	for _, raw := range scales {
		adj, err := parseScaleFlag(raw)
		if err != nil {
			return err
		}
		if err := s.AdjustScale(adj.index, adj.delta); err != nil {
			return err
		}
	}
	return nil
}
