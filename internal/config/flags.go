package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into encoding, behavior, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults
// hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, bad positional args).
// version is shown in --version and help output.
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("webpmaster", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Override flags: we capture bools then apply to cfg after Parse, so that
	// defaults from DefaultConfig() hold unless the user passes the flag.
	var ov overrideFlags

	defineEncodingFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &ov)
	defineDisplayFlags(fs, cfg, &ov)
	defineUtilityFlags(fs, cfg, &ov)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyOverrideFlags(cfg, &ov)

	if ov.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if ov.showVersion {
		fmt.Fprintln(os.Stdout, "webpmaster v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// overrideFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. force -> SkipExisting=false) or
// trigger exit (showHelp, showVersion).
type overrideFlags struct {
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineEncodingFlags registers -q/--quality and --effort.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "WebP quality 0-100")
	fs.IntVar(&cfg.Quality, "q", cfg.Quality, "Same as --quality")
	fs.IntVar(&cfg.Effort, "effort", cfg.Effort, "Encoder effort 0-6 (higher = smaller, slower)")
}

// defineBehaviorFlags registers dry-run, skip-existing, force.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, ov *overrideFlags) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Discover and report only; do not convert")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", false, "Skip files whose output already exists")
	fs.BoolVar(&ov.force, "force", false, "Overwrite existing output files (default)")
	fs.BoolVar(&ov.force, "f", false, "Same as --force")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --analyze, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, ov *overrideFlags) {
	fs.BoolVar(&ov.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&ov.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run codec diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze", false, "Print image analysis table and exit")
	fs.BoolVar(&cfg.AnalyzeOnly, "a", false, "Same as --analyze")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, ov *overrideFlags) {
	fs.BoolVar(&ov.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&ov.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&ov.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&ov.showHelp, "h", false, "Same as --help")
}

// applyOverrideFlags copies override flag values into cfg.
func applyOverrideFlags(cfg *Config, ov *overrideFlags) {
	if ov.force {
		cfg.SkipExisting = false
	}
	if ov.noColor {
		cfg.ColorMode = ColorNever
	} else if ov.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir and OutputDir. Two positional args set
// both explicitly; zero args fall back to the fixed-name directories next to
// the executable, matching the legacy script.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	switch len(args) {
	case 0:
		base, err := executableDir()
		if err != nil {
			return fmt.Errorf("cannot resolve default directories: %w", err)
		}
		cfg.InputDir = filepath.Join(base, DefaultInputDirName)
		cfg.OutputDir = filepath.Join(base, DefaultOutputDirName)
		return nil
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
		return nil
	default:
		return fmt.Errorf("need either no positional args or exactly input_dir and output_dir")
	}
}

// executableDir returns the directory containing the running binary. Falls
// back to the working directory when the executable path cannot be resolved
// (e.g. some container setups).
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err == nil {
		return filepath.Dir(exe), nil
	}
	return os.Getwd()
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "WebPMaster v" + version + " - batch image to WebP converter"},
		{"", ""},
		{"  webpmaster [OPTIONS] [input_dir output_dir]", ""},
		{"", ""},
		{"With no positional args, '" + DefaultInputDirName + "' and '" + DefaultOutputDirName + "'", ""},
		{"next to the executable are used (and created if missing).", ""},
		{"", ""},
		{"Encoding", ""},
		{"  -q, --quality <0-100>", "WebP quality (default: 85)"},
		{"  --effort <0-6>", "Encoder effort (default: 4)"},
		{"", ""},
		{"Output & behavior", ""},
		{"  -f, --force", "Overwrite existing output files (default)"},
		{"  --skip-existing", "Skip files whose output already exists"},
		{"  -d, --dry-run", "Discover and report only; do not convert"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -a, --analyze", "Print image analysis table and exit"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "Codec diagnostics (decoders, WebP, HEIF)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
