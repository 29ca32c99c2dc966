package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/contactsheet/pkg/config"
	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/export"
	"github.com/matzehuels/contactsheet/pkg/page"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output      string
	format      string
	orientation string
	margin      int
	gutter      int
	background  string
	filter      string
	quality     int
	concurrency int
	rotate      []int    // slot indexes, one 90° turn per occurrence
	scale       []string // INDEX=DELTA
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [images...]",
		Short: "Compose up to nine images into a contact sheet",
		Long: `Compose up to nine images into a 3×3 contact sheet and write it as a
single A4 page at 300 DPI.

Images fill the grid left to right, top to bottom. Each is fitted inside its
cell without cropping. Use --rotate to turn an image clockwise by 90° (repeat
the flag to turn further) and --scale to grow or shrink it.`,
		Example: `  contactsheet export *.jpg
  contactsheet export a.jpg b.jpg c.png --orientation landscape -o sheet.pdf
  contactsheet export a.jpg b.jpg --rotate 1 --rotate 1 --scale 0=-0.2 -f png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyExportFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runExport(cmd, args, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or directory (default contact-sheet.<ext>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), png, jpeg")
	cmd.Flags().StringVar(&opts.orientation, "orientation", "", "page orientation: portrait (default), landscape")
	cmd.Flags().IntVar(&opts.margin, "margin", 0, "page margin in pixels (default 89)")
	cmd.Flags().IntVar(&opts.gutter, "gutter", 0, "space between cells in pixels (default 44)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color as #rrggbb (default #ffffff)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "resample filter: lanczos (default), catmullrom, linear, box, nearest")
	cmd.Flags().IntVar(&opts.quality, "quality", 0, "JPEG quality for pdf and jpeg output (default 100)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "images decoded in parallel (default all CPUs)")
	cmd.Flags().IntSliceVar(&opts.rotate, "rotate", nil, "rotate image INDEX clockwise by 90° (repeatable)")
	cmd.Flags().StringSliceVar(&opts.scale, "scale", nil, "adjust scale of image as INDEX=DELTA, e.g. 2=-0.25 (repeatable)")

	return cmd
}

// applyExportFlags overlays the flags the user set on top of cfg.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, opts exportOpts) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	} else if flags.Changed("output") {
		cfg.Format = "" // infer from the output extension
	}
	if flags.Changed("orientation") {
		cfg.Orientation = opts.orientation
	}
	if flags.Changed("margin") {
		cfg.Margin = opts.margin
	}
	if flags.Changed("gutter") {
		cfg.Gutter = opts.gutter
	}
	if flags.Changed("background") {
		cfg.Background = opts.background
	}
	if flags.Changed("filter") {
		cfg.Filter = opts.filter
	}
	if flags.Changed("quality") {
		cfg.JPEGQuality = opts.quality
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
}

func (c *CLI) runExport(cmd *cobra.Command, args []string, cfg config.Config, opts exportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	sources, err := loadSources(ctx, logger, args)
	if err != nil {
		return err
	}
	prog.done("loaded images", "count", len(sources))

	s, err := buildSheet(sources, cfg.ParsedOrientation(), opts)
	if err != nil {
		return err
	}

	expOpts := cfg.ExportOptions()
	if err := expOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if _, err := os.Stat(expOpts.ResolvedOutput()); err == nil {
		printWarning("overwriting %s", expOpts.ResolvedOutput())
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Composing %d images…", s.Len()))
	expOpts.OnEvent = func(ev export.Event) {
		if ev.Kind == export.EventStarted {
			spinner.SetMessage(fmt.Sprintf("Exporting %s…", ev.Path))
		}
	}
	spinner.Start()

	exp := export.NewExporter(logger)
	res, err := exp.Export(ctx, s.Snapshot(), expOpts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			printWarning("export cancelled, nothing was written")
			return err
		}
		spinner.StopWithError("Export failed: " + errors.UserMessage(err))
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Exported %d images", res.Stats.Slots))
	printFile(res.Path)
	printDetail("%s", joinDim(
		fmt.Sprintf("%s %d×%d", res.Spec.Orientation, res.Spec.WidthPx, res.Spec.HeightPx),
		string(res.Format),
		formatBytes(res.Bytes),
		res.Stats.Total.Round(time.Millisecond).String(),
	))
	return nil
}

// buildSheet adds sources to a new sheet and applies the transform flags.
func buildSheet(sources []sheet.Source, o page.Orientation, opts exportOpts) (*sheet.Sheet, error) {
	s := sheet.New()
	if err := s.SetOrientation(o); err != nil {
		return nil, err
	}
	if err := s.Add(sources...); err != nil {
		return nil, err
	}
	if err := applyTransforms(s, opts.rotate, opts.scale); err != nil {
		return nil, err
	}
	return s, nil
}
