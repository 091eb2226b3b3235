// Package validation checks user-supplied CLI and API arguments.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// Output formats.
const (
	FormatOFX = "ofx"
	FormatCSV = "csv"
)

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatOFX, FormatCSV:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'ofx', 'csv'", format)
	}
}

// IsValidInputFile checks that path names a readable, non-empty regular file.
func IsValidInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("input file must be specified")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file %s is empty", path)
	}
	return nil
}

// IsValidDirectory checks that path names an existing directory.
func IsValidDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("directory must be specified")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", path)
	}
	return nil
}
