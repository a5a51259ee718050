package display

import (
	"fmt"
)

const mib = 1024 * 1024

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatMB returns a size in binary megabytes with two decimals ("2.00 MB"),
// the unit the per-file and summary report lines are specified in.
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mib))
}

// ReductionPercent returns the size reduction from in to out as a percentage.
// A zero input size reports 0 rather than dividing by zero; negative values
// mean the output grew.
func ReductionPercent(in, out int64) float64 {
	if in <= 0 {
		return 0
	}
	return float64(in-out) / float64(in) * 100
}
