// Package pipeline orchestrates file discovery, sequential per-file
// conversion, and batch summary reporting.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/webpmaster/internal/codec"
	"github.com/backmassage/webpmaster/internal/config"
	"github.com/backmassage/webpmaster/internal/convert"
	"github.com/backmassage/webpmaster/internal/display"
	"github.com/backmassage/webpmaster/internal/logging"
	"github.com/backmassage/webpmaster/internal/naming"
)

// Run is the top-level batch entry point. It discovers files, converts each
// one sequentially, and returns aggregate stats. Per-file failures are
// logged and counted but never abort the batch; the caller must not turn
// them into a non-zero exit status.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, heifSkipped, err := Discover(cfg.InputDir)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}

	warnHEIF(log, heifSkipped)

	if len(files) == 0 {
		log.Warn("No images to convert in %s", cfg.InputDir)
		log.Warn("  Supported formats: %s", strings.Join(codec.Extensions(), ", "))
		return stats
	}

	stats.Total = len(files)
	resolver := naming.NewResolver()

	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		processFile(cfg, log, path, &stats, resolver)
	}

	logSummary(cfg, log, &stats)
	return stats
}

// warnHEIF emits the soft warning for HEIC/HEIF files present without the
// optional decoder compiled in. Not needed when the capability exists:
// Discover only reports skips in that case.
func warnHEIF(log *logging.Logger, skipped int) {
	if skipped == 0 {
		return
	}
	log.Warn("Found %d HEIC/HEIF file(s), but HEIF support is not compiled in", skipped)
	log.Warn("  Rebuild with: go build -tags heif ./...")
}

// processFile handles one image from stat through conversion and stats
// update. Every failure path logs the file name plus the underlying error
// and continues with the next file.
func processFile(
	cfg *config.Config,
	log *logging.Logger,
	path string,
	stats *RunStats,
	resolver *naming.Resolver,
) {
	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		fmt.Println()
		return
	}

	requested := naming.OutputPath(path, cfg.OutputDir)
	outputPath := resolver.Resolve(path, requested)
	if outputPath != requested {
		log.Warn("  Name collision, writing as: %s", filepath.Base(outputPath))
	}

	if cfg.SkipExisting {
		if _, err := os.Stat(outputPath); err == nil {
			log.Warn("Skip (exists): %s", filepath.Base(outputPath))
			stats.Skipped++
			fmt.Println()
			return
		}
	}

	if cfg.DryRun {
		log.Success("[DRY] Would convert -> %s", filepath.Base(outputPath))
		stats.Converted++
		fmt.Println()
		return
	}

	// Input bytes count for every attempted conversion, failed or not, so
	// the summary reflects what was actually processed.
	inSize := fi.Size()
	stats.TotalInputBytes += inSize

	opts := convert.Options{Quality: cfg.Quality, Effort: cfg.Effort}
	if err := convert.ToWebP(path, outputPath, opts); err != nil {
		log.Error("Conversion failed for %s: %v", basename, err)
		stats.Failed++
		fmt.Println()
		return
	}

	outSize := outputSize(log, outputPath)
	stats.TotalOutputBytes += outSize
	stats.Converted++

	log.Success("Converted: %s -> %s (-%.1f%%)",
		display.FormatMB(inSize),
		display.FormatMB(outSize),
		display.ReductionPercent(inSize, outSize))
	fmt.Println()
}

// outputSize stats a freshly written output file. The conversion already
// succeeded at this point, so a stat failure only degrades the report; it is
// logged at debug level and counted as zero bytes.
func outputSize(log *logging.Logger, path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		log.Debug("Cannot stat output %s: %v", filepath.Base(path), err)
		return 0
	}
	return fi.Size()
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d images", stats.Total)
	log.Info("Quality: %d, effort: %d (lossy WebP, alpha preserved when present)", cfg.Quality, cfg.Effort)

	if codec.HEIFEnabled() {
		log.Info("HEIF: decoder available")
	}
	if cfg.SkipExisting {
		log.Info("Existing outputs: skip")
	} else {
		log.Info("Existing outputs: overwrite")
	}
	if cfg.DryRun {
		log.Warn("DRY RUN - no files will be written")
	}
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d/%d converted, %d skipped, %d failed",
		stats.Converted, stats.Total, stats.Skipped, stats.Failed)

	if cfg.DryRun {
		log.Info("  Total space saved: n/a (dry run)")
		return
	}

	log.Info("  Total input:  %s", display.FormatMB(stats.TotalInputBytes))
	log.Info("  Total output: %s", display.FormatMB(stats.TotalOutputBytes))

	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("  Space saved: %s (%.1f%%)",
			display.FormatMB(saved),
			display.ReductionPercent(stats.TotalInputBytes, stats.TotalOutputBytes))
	} else {
		log.Warn("  Space saved: -%s (overall output is larger)",
			display.FormatMB(-saved))
	}
}
