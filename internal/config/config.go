// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation. Defaults match the legacy converter script for parity.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Default directory names, used when no positional args are given. They are
// resolved relative to the executable's directory, like the legacy script.
const (
	DefaultInputDirName  = "to-convert"
	DefaultOutputDirName = "converted"
)

// Quality and effort bounds for the WebP encoder.
const (
	DefaultQuality = 85
	DefaultEffort  = 4
	MaxQuality     = 100
	MaxEffort      = 6
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths (set from positional args, or exe-relative defaults).
	InputDir  string
	OutputDir string

	// Encoder settings.
	Quality int // WebP quality 0-100. Default: 85.
	Effort  int // Encoder effort 0-6. Default: 4.

	// Behavior flags.
	DryRun       bool
	SkipExisting bool // Default: false (existing outputs are overwritten).

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	CheckOnly   bool      // Run --check diagnostics and exit.
	AnalyzeOnly bool      // Print the image analysis table and exit.
}

// DefaultConfig returns a Config with all defaults matching the legacy
// converter script. Used as the base before [ParseFlags] applies CLI
// overrides.
func DefaultConfig() Config {
	return Config{
		Quality:      DefaultQuality,
		Effort:       DefaultEffort,
		DryRun:       false,
		SkipExisting: false,
		Verbose:      false,
		ColorMode:    ColorAuto,
		CheckOnly:    false,
		AnalyzeOnly:  false,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks encoder bounds and, when not in CheckOnly mode, that both
// directory paths are set (ParseFlags fills in the exe-relative defaults, so
// an empty path here means parsing was skipped or went wrong).
func (c *Config) Validate() error {
	if c.Quality < 0 || c.Quality > MaxQuality {
		return fmt.Errorf("quality must be 0-%d (got %d)", MaxQuality, c.Quality)
	}
	if c.Effort < 0 || c.Effort > MaxEffort {
		return fmt.Errorf("effort must be 0-%d (got %d)", MaxEffort, c.Effort)
	}
	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need both input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents the pipeline from
// discovering its own output files. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
