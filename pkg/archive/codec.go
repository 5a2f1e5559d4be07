package archive

import (
	"archive/zip"
	"io"

	"github.com/klauspost/compress/flate"
)

// Swap the standard library's DEFLATE decompressor for klauspost's,
// which is faster and drop-in compatible with archive/zip's
// decompressor registry.
func init() {
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}
