package naming

import (
	"path/filepath"
	"strings"
)

// WebPExt is the extension given to every converted file.
const WebPExt = ".webp"

// OutputPath derives the output file path for an input image: the input's
// base name with its extension replaced by .webp, inside outputDir.
//
//	photos/IMG_0123.jpeg → <outputDir>/IMG_0123.webp
func OutputPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+WebPExt)
}
