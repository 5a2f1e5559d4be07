package sanitizeimage

import (
	"bytes"
	"fmt"
	"image/jpeg"
)

// jpegQuality is the fixed re-encode quality (Open Question decision,
// see DESIGN.md): high enough to keep fixture round-trips visually
// stable, low enough to actually re-encode rather than pass through.
const jpegQuality = 90

// sanitizeJPEG decodes and re-encodes src. image/jpeg's decoder drops
// unrecognized APPn segments and its encoder never re-emits EXIF/XMP/
// ICC-extra markers, so a decode->encode round trip already satisfies
// the marker allowlist.
func sanitizeJPEG(src []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("sanitizeimage: decode jpeg: %w", err)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("sanitizeimage: encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
