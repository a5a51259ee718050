package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/webpmaster/internal/codec"
)

// Discover lists inputDir (non-recursive), keeps regular files whose
// extension is currently decodable, and returns the paths sorted
// lexicographically for deterministic processing order. heifSkipped counts
// HEIC/HEIF files that were excluded because the optional decoder is not
// compiled in; the caller turns a non-zero count into a warning, not an
// error.
func Discover(inputDir string) (files []string, heifSkipped int, err error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, 0, err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case codec.SupportedExtension(ext):
			files = append(files, filepath.Join(inputDir, e.Name()))
		case codec.IsHEIFExtension(ext):
			heifSkipped++
		}
	}

	sort.Strings(files)
	return files, heifSkipped, nil
}
