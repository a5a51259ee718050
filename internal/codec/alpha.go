package codec

import (
	"image"
)

// HasAlpha reports whether img carries transparency that a WebP encode must
// preserve. The policy mirrors the legacy converter:
//
//   - truecolor images with an alpha channel count only when at least one
//     pixel is actually non-opaque;
//   - palette-indexed images count as soon as the palette contains a
//     transparent entry (transparency metadata, whether or not it is used);
//   - everything else (YCbCr from JPEG, Gray, CMYK, plain RGB) has no alpha.
func HasAlpha(img image.Image) bool {
	switch im := img.(type) {
	case *image.NRGBA:
		return !im.Opaque()
	case *image.RGBA:
		return !im.Opaque()
	case *image.NRGBA64:
		return !im.Opaque()
	case *image.RGBA64:
		return !im.Opaque()
	case *image.Paletted:
		for _, c := range im.Palette {
			if _, _, _, a := c.RGBA(); a < 0xffff {
				return true
			}
		}
		return false
	default:
		return false
	}
}
