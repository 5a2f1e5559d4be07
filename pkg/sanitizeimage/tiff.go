package sanitizeimage

import (
	"bytes"
	"fmt"

	"golang.org/x/image/tiff"
)

// sanitizeTIFF decodes and re-encodes src. tiff.Encode only ever emits
// the tags it needs to describe pixel data, so user IFD metadata (EXIF
// sub-IFDs, free-form string tags) is dropped by construction.
func sanitizeTIFF(src []byte) ([]byte, error) {
	img, err := tiff.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("sanitizeimage: decode tiff: %w", err)
	}

	var out bytes.Buffer
	opts := &tiff.Options{Compression: tiff.Deflate}
	if err := tiff.Encode(&out, img, opts); err != nil {
		return nil, fmt.Errorf("sanitizeimage: encode tiff: %w", err)
	}
	return out.Bytes(), nil
}
