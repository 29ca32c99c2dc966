// Package cli implements the contactsheet command-line interface.
//
// The CLI arranges up to nine images on a 3×3 A4 contact sheet and exports
// it as a single-page PDF, PNG or JPEG at 300 DPI. It is built with cobra
// and logs through charmbracelet/log.
//
// # Commands
//
//   - export: Compose images given on the command line and write the sheet
//   - edit: Interactive terminal session to arrange, rotate and scale images
//   - page: Print page and grid geometry for an orientation
//   - config: Show, locate or initialize the config file
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/contactsheet/pkg/buildinfo"
	"github.com/matzehuels/contactsheet/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "contactsheet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config, empty for the XDG default
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Contactsheet lays out up to nine images on a printable A4 page",
		Long:         `Contactsheet arranges up to nine images in a 3×3 grid, applies per-image rotation and scale, and exports the sheet as a single A4 page at 300 DPI (PDF, PNG or JPEG).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/contactsheet/config.toml)")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.pageCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}
