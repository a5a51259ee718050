// Package convert performs single-file image to WebP conversion. Execution
// is fully in-process: decode through the codec registry, apply the alpha
// policy, encode with the pure-Go WebP encoder.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/deepteams/webp"

	"github.com/backmassage/webpmaster/internal/codec"
)

// Options controls one conversion.
type Options struct {
	Quality int // WebP quality 0-100.
	Effort  int // Encoder method 0-6.
}

// ToWebP decodes inputPath and writes a lossy WebP encode to outputPath.
//
// Policy: an image carrying transparency is encoded as-is so the encoder
// preserves the alpha channel (lossy, not forced lossless); anything else is
// flattened to plain RGB first. The encode goes to an in-memory buffer, so a
// failed encode never leaves a truncated output file; a failed write removes
// the partial file. Errors are per-file: the caller logs and moves on.
func ToWebP(inputPath, outputPath string, opts Options) error {
	img, _, err := codec.DecodeFile(inputPath)
	if err != nil {
		return err
	}

	if !codec.HasAlpha(img) {
		img = flattenRGB(img)
	}

	// Start from the library defaults: several EncoderOptions fields use -1
	// sentinels (AlphaQuality, SNSStrength, FilterStrength, ...), so a
	// zero-valued struct would encode with maximally quantized raw alpha and
	// no filtering.
	enc := webp.DefaultOptions()
	enc.Quality = float32(opts.Quality)
	enc.Method = opts.Effort

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, enc); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// flattenRGB redraws img onto a plain RGBA canvas, discarding any unused
// alpha channel or palette indirection. YCbCr (JPEG) images pass through
// untouched: they are already a plain opaque color representation and the
// encoder consumes them natively.
func flattenRGB(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.RGBA:
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
