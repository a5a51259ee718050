// Command webpmaster is the CLI entrypoint for the WebPMaster batch image
// converter.
//
// It parses flags, validates configuration and paths, and either runs codec
// diagnostics (--check), the analysis table (--analyze), or the conversion
// pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/webpmaster/internal/check"
	"github.com/backmassage/webpmaster/internal/config"
	"github.com/backmassage/webpmaster/internal/display"
	"github.com/backmassage/webpmaster/internal/logging"
	"github.com/backmassage/webpmaster/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "webpmaster: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "webpmaster: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webpmaster: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: logger available; all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(log)
		return 0
	}

	// Both directories are created up front (idempotent), matching the
	// legacy script: a fresh checkout gets its input folder ready to fill.
	if err := os.MkdirAll(cfg.InputDir, 0o755); err != nil {
		log.Error("Cannot create input directory: %s", cfg.InputDir)
		return 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}

	// Resolve and validate paths: output must not be inside input
	// (prevents the pipeline from discovering its own output files).
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Cannot resolve input path: %s", cfg.InputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}

	log.Info("=== WebPMaster v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	log.Info("")

	// Fail fast if the WebP encoder itself is broken; without it no file
	// could ever convert. Per-file codec errors stay per-file.
	if err := check.SelfTest(); err != nil {
		log.Error("%v", err)
		log.Error("The WebP codec is unusable; cannot start the batch")
		return 1
	}

	// Phase 3: signal handling. Cancel the context on SIGINT/SIGTERM so the
	// pipeline stops between files without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current file…")
		cancel()
	}()

	if cfg.AnalyzeOnly {
		pipeline.Analyze(ctx, &cfg, log)
		return 0
	}

	// Phase 4: Run the batch. Individual conversion failures are reported
	// in the summary but never change the exit status.
	pipeline.Run(ctx, &cfg, log)
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
