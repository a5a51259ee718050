// Package codec owns the image decoder registry and per-file inspection.
//
// Decoders register themselves with the standard library image package via
// blank imports; decoding any supported format is then a single
// image.Decode call. HEIC/HEIF support is an optional capability compiled
// in behind the "heif" build tag (see heif_enabled.go).
package codec

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupported is wrapped around decode failures caused by unrecognized
// or corrupt image data.
var ErrUnsupported = errors.New("unsupported or corrupt image data")

// baselineExtensions are always decodable (lowercase, with leading dot).
var baselineExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".tif":  true,
}

// heifExtensions are decodable only when the HEIF capability is compiled in.
var heifExtensions = map[string]bool{
	".heic": true,
	".heif": true,
}

// SupportedExtension reports whether a file extension (any case, with dot)
// belongs to the currently decodable set.
func SupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if baselineExtensions[ext] {
		return true
	}
	return heifEnabled && heifExtensions[ext]
}

// IsHEIFExtension reports whether ext names a HEIF-family file, regardless
// of whether the capability is available.
func IsHEIFExtension(ext string) bool {
	return heifExtensions[strings.ToLower(ext)]
}

// HEIFEnabled reports whether the optional HEIF decoder was compiled in.
func HEIFEnabled() bool { return heifEnabled }

// Extensions returns the currently decodable extension list, sorted-ish for
// display (baseline first, then HEIF when enabled).
func Extensions() []string {
	exts := []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif"}
	if heifEnabled {
		exts = append(exts, ".heic", ".heif")
	}
	return exts
}

// DecodeFile opens and decodes one image file, returning the image and the
// registered format name ("jpeg", "png", …). The file handle is released
// before returning regardless of outcome.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, format, nil
}

// DecodeConfigFile reads only the header of an image file, returning its
// dimensions and format without decoding pixel data. Used by analyze mode.
func DecodeConfigFile(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return cfg, format, nil
}
