package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath validates the destination path of an exported document.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file, not a directory (no trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory")
	}

	base := filepath.Base(path)
	if base == "." || base == ".." {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}

	return nil
}

// ValidateSourceName validates the display name of an input image.
// Names are shown in the terminal, so control characters are rejected.
func ValidateSourceName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "image name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "image name contains invalid control characters")
		}
	}
	return nil
}
