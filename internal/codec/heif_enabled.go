//go:build heif

package codec

// The gen2brain/heic import registers the HEIC/HEIF decoder with the image
// package, the same way the baseline decoders in codec.go do. The
// capability flag is compile-time: a build without the tag has no HEIF
// decoder linked in at all.
import (
	_ "github.com/gen2brain/heic"
)

const heifEnabled = true
