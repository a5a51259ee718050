package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/webpmaster/internal/codec"
	"github.com/backmassage/webpmaster/internal/config"
	"github.com/backmassage/webpmaster/internal/display"
	"github.com/backmassage/webpmaster/internal/logging"
	"github.com/backmassage/webpmaster/internal/term"
)

// fileRow holds the per-file data for the analysis table.
type fileRow struct {
	Name       string
	Format     string
	Dimensions string
	Megapixels float64
	SizeBytes  int64
}

// Analyze discovers images, reads each one's header, and prints a tabular
// format/dimensions/size report with statistical file-size outlier
// highlighting. Nothing is converted.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger) {
	files, heifSkipped, err := Discover(cfg.InputDir)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return
	}
	warnHEIF(log, heifSkipped)
	if len(files) == 0 {
		log.Warn("No images found in %s", cfg.InputDir)
		return
	}

	log.Info("Analyzing %d images in %s …", len(files), cfg.InputDir)
	fmt.Println()

	var rows []fileRow
	var skipped int
	var sizeVals []float64

	for _, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			return
		}

		imgCfg, format, err := codec.DecodeConfigFile(path)
		if err != nil {
			skipped++
			log.Warn("Skip (unreadable): %s", filepath.Base(path))
			continue
		}

		row := fileRow{
			Name:       filepath.Base(path),
			Format:     format,
			Dimensions: fmt.Sprintf("%dx%d", imgCfg.Width, imgCfg.Height),
			Megapixels: float64(imgCfg.Width) * float64(imgCfg.Height) / 1e6,
		}
		if fi, err := os.Stat(path); err == nil {
			row.SizeBytes = fi.Size()
		}

		rows = append(rows, row)
		if row.SizeBytes > 0 {
			sizeVals = append(sizeVals, float64(row.SizeBytes))
		}
	}

	if len(rows) == 0 {
		log.Warn("No images could be read")
		return
	}

	sizeStats := computeStats(sizeVals)
	printAnalysisTable(rows, sizeStats)
	printAnalysisSummary(log, rows, sizeStats, skipped)
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(rows []fileRow, sizeStats iqrBounds) {
	nameW := len("File")
	fmtW := len("Format")
	dimW := len("Dimensions")
	mpW := len("MPix")
	szW := len("Size")

	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if len(r.Format) > fmtW {
			fmtW = len(r.Format)
		}
		if len(r.Dimensions) > dimW {
			dimW = len(r.Dimensions)
		}
		mpStr := fmt.Sprintf("%.1f", r.Megapixels)
		if len(mpStr) > mpW {
			mpW = len(mpStr)
		}
		szStr := display.FormatBytes(r.SizeBytes)
		if len(szStr) > szW {
			szW = len(szStr)
		}
	}

	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s",
		nameW, "File",
		fmtW, "Format",
		dimW, "Dimensions",
		mpW, "MPix",
		szW, "Size",
	)
	separator := "  " + strings.Repeat("─", len(header)-2)

	fmt.Println(header)
	fmt.Println(separator)

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}

		szPlain := display.FormatBytes(r.SizeBytes)
		class := sizeStats.classify(float64(r.SizeBytes))

		// Pad the plain text first, then wrap in ANSI color. This avoids
		// the alignment bug where %-*s counts escape bytes as visible width.
		szCell := colorPad(szPlain, szW, class)

		fmt.Printf("  %-*s  %-*s  %-*s  %*.1f  %s  %s\n",
			nameW, name,
			fmtW, r.Format,
			dimW, r.Dimensions,
			mpW, r.Megapixels,
			szCell,
			formatFlag(class),
		)
	}
	fmt.Println()
}

func printAnalysisSummary(log *logging.Logger, rows []fileRow, sizeStats iqrBounds, skipped int) {
	var outliers, extremes int
	for _, r := range rows {
		switch sizeStats.classify(float64(r.SizeBytes)) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Analyzed %d images", len(rows))
	if skipped > 0 {
		log.Warn("  %d unreadable file(s) skipped", skipped)
	}
	if sizeStats.valid {
		log.Info("  File size IQR: %s to %s (outlier < %s or > %s)",
			display.FormatBytes(int64(sizeStats.q1)),
			display.FormatBytes(int64(sizeStats.q3)),
			display.FormatBytes(int64(math.Max(sizeStats.outlierLo, 0))),
			display.FormatBytes(int64(sizeStats.outlierHi)))
	}
	if outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Red + "[!]" + term.NC
	case "outlier":
		return term.Orange + "[*]" + term.NC
	default:
		return ""
	}
}

// colorPad pads a plain string to width, then wraps in ANSI color. This
// ensures %-*s-style alignment works correctly regardless of escape sequences.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return term.Red + padded + term.NC
	case "outlier":
		return term.Orange + padded + term.NC
	default:
		return padded
	}
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
