package sanitizeimage

import (
	"bytes"
	"fmt"
	"image/png"
)

// sanitizePNG decodes and re-encodes src. image/png's encoder only ever
// writes IHDR/PLTE/tRNS/IDAT/IEND, so a round trip already drops every
// ancillary chunk §4.2 names (tEXt, iTXt, zTXt, eXIf, tIME).
func sanitizePNG(src []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("sanitizeimage: decode png: %w", err)
	}

	var out bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("sanitizeimage: encode png: %w", err)
	}
	return out.Bytes(), nil
}
