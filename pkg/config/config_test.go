package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/export"
	"github.com/matzehuels/contactsheet/pkg/page"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if want := "/tmp/custom-config/contactsheet/config.toml"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestDefaultPathHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", "contactsheet", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "orientation = \"landscape\"\nmargin = 0\nbackground = \"#000\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ParsedOrientation() != page.Landscape {
		t.Errorf("orientation = %q, want landscape", cfg.Orientation)
	}
	if cfg.Margin != 0 {
		t.Errorf("margin = %d, want 0", cfg.Margin)
	}
	if cfg.Gutter != Default().Gutter {
		t.Errorf("gutter = %d, want default %d", cfg.Gutter, Default().Gutter)
	}

	opts := cfg.ExportOptions()
	if opts.Margin != export.None {
		t.Errorf("ExportOptions().Margin = %d, want export.None", opts.Margin)
	}
	if opts.Gutter != Default().Gutter {
		t.Errorf("ExportOptions().Gutter = %d, want %d", opts.Gutter, Default().Gutter)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "orientation = "},
		{"unknown key", "colour = \"#fff\""},
		{"orientation", "orientation = \"sideways\""},
		{"format", "format = \"gif\""},
		{"margin", "margin = -3"},
		{"background", "background = \"white\""},
		{"filter", "filter = \"bicubic\""},
		{"quality", "jpeg_quality = 0"},
		{"concurrency", "concurrency = -1"},
		{"type", "margin = \"wide\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse(%q) error = %v, want %s", tt.data, err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Orientation = "landscape"
	cfg.Output = "sheets/out.png"

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "jpeg_quality = 100") {
		t.Errorf("Write() output missing jpeg_quality:\n%s", buf.String())
	}

	got, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := Default().Save(path, false); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := Default().Save(path, false); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Save() over existing error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
	if err := Default().Save(path, true); err != nil {
		t.Errorf("Save(overwrite) error: %v", err)
	}
}
