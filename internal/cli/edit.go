package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/contactsheet/pkg/observability"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var orientation string

	cmd := &cobra.Command{
		Use:   "edit [images...]",
		Short: "Arrange a contact sheet interactively",
		Long: `Open an interactive 3×3 contact sheet in the terminal.

Move between cells with the arrow keys (or h/j/k/l) and:
  a      add images by path or glob pattern
  r      rotate the image clockwise by 90°
  + / -  grow or shrink the image
  x      remove the image (later images move up)
  o      toggle portrait / landscape
  e      export the sheet in the background
  q      quit (cancels a running export)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("orientation") {
				cfg.Orientation = orientation
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s := sheet.New()
			if err := s.SetOrientation(cfg.ParsedOrientation()); err != nil {
				return err
			}
			if len(args) > 0 {
				sources, err := loadSources(ctx, logger, args)
				if err != nil {
					return err
				}
				if err := s.Add(sources...); err != nil {
					return err
				}
			}

			// Log lines would tear the full-screen view; keep them quiet
			// unless debugging.
			sessionLogger := logger.WithPrefix("edit")
			if logger.GetLevel() > LogDebug {
				sessionLogger.SetOutput(io.Discard)
			}
			hooks := NewLogHooks(sessionLogger)
			observability.SetExportHooks(hooks)
			observability.SetSourceHooks(hooks)

			model := NewEditModel(ctx, sessionLogger, s, cfg.ExportOptions())
			final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditModel); ok && m.job != nil {
				select {
				case <-m.job.Done():
				default:
					printInfo("waiting for export to %s", m.job.Path)
					<-m.job.Done()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orientation, "orientation", "", "initial page orientation: portrait (default), landscape")
	return cmd
}
