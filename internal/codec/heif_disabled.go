//go:build !heif

package codec

// Built without the heif tag: HEIC/HEIF files are discovered but excluded,
// with a warning pointing at the rebuild instructions.
const heifEnabled = false
