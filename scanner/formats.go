// Package scanner implements stage S1 of the pipeline: it walks a dataset
// root, identifies image files, computes content hashes and pixel
// dimensions, resolves sidecar caption files, and emits an ordered record
// stream plus a summary index (spec.md §4.1).
package scanner

import (
	// Register additional image.DecodeConfig formats beyond the standard
	// library's jpeg/png/gif so metadata-only decoding covers the full
	// extension set named in spec.md §4.1.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// supportedExtensions is the case-insensitive set of image extensions the
// scanner will enumerate (spec.md §4.1).
var supportedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"bmp":  true,
	"gif":  true,
	"tif":  true,
	"tiff": true,
}
