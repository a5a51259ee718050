// Package check provides codec diagnostics (--check mode) and the startup
// self-test that gates the whole run on a working WebP encoder.
package check

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/deepteams/webp"

	"github.com/backmassage/webpmaster/internal/codec"
)

// ErrEncoderUnavailable is returned by SelfTest when the WebP encoder cannot
// produce output. Without it no conversion can succeed, so this is fatal.
var ErrEncoderUnavailable = errors.New("WebP encoder self-test failed")

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// SelfTest encodes and re-decodes a tiny image entirely in memory. It runs
// once at startup; failure means the mandatory image-handling capability is
// unusable and the process must not start the batch.
func SelfTest() error {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 1, color.RGBA{B: 255, A: 255})

	opts := webp.DefaultOptions()
	opts.Quality = 85
	opts.Method = 0

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	if _, err := webp.Decode(bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("%w: round-trip decode: %v", ErrEncoderUnavailable, err)
	}
	return nil
}

// RunCheck runs the interactive --check flow: prints the decodable input
// formats, the WebP encoder self-test result, and the HEIF capability
// status. Informational only; it does not stop on failure.
func RunCheck(log Logger) {
	log.Info("=== Codec Check ===")

	checkDecoders(log)
	checkEncoder(log)
	checkHEIF(log)
}

func checkDecoders(log Logger) {
	log.Info("Input formats:")
	for _, ext := range codec.Extensions() {
		log.Info("  %s", ext)
	}
}

func checkEncoder(log Logger) {
	if err := SelfTest(); err != nil {
		log.Error("WebP encoder: %v", err)
		return
	}
	log.Success("WebP encoder: round-trip OK")
}

func checkHEIF(log Logger) {
	if codec.HEIFEnabled() {
		log.Success("HEIF decoder: available (.heic/.heif accepted)")
		return
	}
	log.Warn("HEIF decoder: not compiled in (.heic/.heif will be skipped)")
	log.Warn("  rebuild with: go build -tags heif ./...")
}
