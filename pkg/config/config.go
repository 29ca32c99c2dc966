// Package config loads contactsheet settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/contactsheet/config.toml (falling back
// to ~/.config/contactsheet/config.toml). Every key is optional; missing
// keys keep their defaults and a missing file is the same as an empty one.
// Command-line flags override the file.
//
//	orientation  = "portrait"   # or "landscape"
//	format       = "pdf"        # pdf, png or jpeg
//	output       = ""           # default contact-sheet.<ext>
//	margin       = 89           # page margin in pixels at 300 DPI
//	gutter       = 44           # space between cells in pixels
//	background   = "#ffffff"
//	filter       = "lanczos"    # lanczos, catmullrom, linear, box, nearest
//	jpeg_quality = 100
//	concurrency  = 0            # 0 uses all CPUs
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/contactsheet/pkg/document"
	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/export"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/page"
	"github.com/matzehuels/contactsheet/pkg/raster"
)

const (
	appName  = "contactsheet"
	fileName = "config.toml"
)

// Config holds user settings.
type Config struct {
	Orientation string `toml:"orientation"`
	Format      string `toml:"format"`
	Output      string `toml:"output"`
	Margin      int    `toml:"margin"`
	Gutter      int    `toml:"gutter"`
	Background  string `toml:"background"`
	Filter      string `toml:"filter"`
	JPEGQuality int    `toml:"jpeg_quality"`
	Concurrency int    `toml:"concurrency"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Orientation: string(page.Portrait),
		Format:      string(export.DefaultFormat),
		Margin:      grid.DefaultMargin,
		Gutter:      grid.DefaultGutter,
		Background:  export.DefaultBackground,
		Filter:      export.DefaultFilter,
		JPEGQuality: document.DefaultJPEGQuality,
	}
}

// DefaultPath returns the config file location using the XDG standard.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields Default(). Unknown keys are rejected.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := page.ParseOrientation(c.Orientation); err != nil {
		return invalid(err)
	}
	if _, err := document.ParseFormat(c.Format); err != nil {
		return invalid(err)
	}
	if c.Margin < 0 || c.Gutter < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin and gutter must be non-negative")
	}
	if _, err := export.ParseColor(c.Background); err != nil {
		return invalid(err)
	}
	if _, err := raster.ParseFilter(c.Filter); err != nil {
		return invalid(err)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be non-negative, got %d", c.Concurrency)
	}
	return nil
}

func invalid(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", errors.UserMessage(err))
}

// ParsedOrientation returns the orientation. Valid after Validate.
func (c Config) ParsedOrientation() page.Orientation {
	o, err := page.ParseOrientation(c.Orientation)
	if err != nil {
		return page.Portrait
	}
	return o
}

// ExportOptions maps the settings onto export options. A zero margin or
// gutter is passed through as an explicit zero.
func (c Config) ExportOptions() export.Options {
	return export.Options{
		Output:      c.Output,
		Format:      c.Format,
		Margin:      orNone(c.Margin),
		Gutter:      orNone(c.Gutter),
		Background:  c.Background,
		Filter:      c.Filter,
		JPEGQuality: c.JPEGQuality,
		Concurrency: c.Concurrency,
	}
}

func orNone(v int) int {
	if v == 0 {
		return export.None
	}
	return v
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func (c Config) Save(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidPath, "config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "create config directory")
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "write config %s", path)
	}
	return nil
}
