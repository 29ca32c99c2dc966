package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/page"
)

// pageCommand creates the page command, a debug aid that prints the page
// and grid geometry used by exports.
func (c *CLI) pageCommand() *cobra.Command {
	var (
		orientation string
		margin      int
		gutter      int
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print page size and grid cell geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("orientation") {
				cfg.Orientation = orientation
			}
			if cmd.Flags().Changed("margin") {
				cfg.Margin = margin
			}
			if cmd.Flags().Changed("gutter") {
				cfg.Gutter = gutter
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			spec, err := page.Compute(cfg.ParsedOrientation())
			if err != nil {
				return err
			}
			printPage(spec, grid.Compute(spec, cfg.Margin, grid.WithGutter(cfg.Gutter)))
			return nil
		},
	}

	cmd.Flags().StringVar(&orientation, "orientation", "", "page orientation: portrait (default), landscape")
	cmd.Flags().IntVar(&margin, "margin", 0, "page margin in pixels (default 89)")
	cmd.Flags().IntVar(&gutter, "gutter", 0, "space between cells in pixels (default 44)")
	return cmd
}

func printPage(spec page.Spec, l grid.Layout) {
	fmt.Println(StyleTitle.Render("Page"))
	printKeyValue("orientation", spec.Orientation.String())
	printKeyValue("pixels", fmt.Sprintf("%d × %d @ %d DPI", spec.WidthPx, spec.HeightPx, spec.DPI))
	printKeyValue("points", fmt.Sprintf("%.2f × %.2f", spec.WidthPt(), spec.HeightPt()))
	printKeyValue("aspect", fmt.Sprintf("%.4f", spec.AspectRatio()))
	printKeyValue("margin", fmt.Sprintf("%d px", l.Margin))
	printKeyValue("gutter", fmt.Sprintf("%d px", l.Gutter))
	printKeyValue("cell", fmt.Sprintf("%d × %d px", l.Side, l.Side))
	if l.Side == 0 {
		printWarning("margin and gutter leave no room for images")
	}
	printNewline()
	fmt.Println(gridTable(l).Render())
}

// gridTable renders the cell rectangles, one row per cell.
func gridTable(l grid.Layout) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, grid.Size)
	for i, c := range l.Cells {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(i / grid.Cols),
			strconv.Itoa(i % grid.Cols),
			strconv.Itoa(c.X),
			strconv.Itoa(c.Y),
			strconv.Itoa(c.Width),
			strconv.Itoa(c.Height),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Row", "Col", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		})
}
