// Package sanitizeimage re-encodes JPEG, PNG, WebP and TIFF images,
// dropping metadata markers/chunks while preserving pixel content.
package sanitizeimage

import (
	"fmt"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Sanitize re-encodes src according to its detected content type,
// returning the metadata-free bytes. ct must be one of the supported
// image types; callers dispatch on model.ContentType before calling.
func Sanitize(ct model.ContentType, src []byte) ([]byte, error) {
	switch ct {
	case model.TypeJPEG:
		return sanitizeJPEG(src)
	case model.TypePNG:
		return sanitizePNG(src)
	case model.TypeWebP:
		return sanitizeWebP(src)
	case model.TypeTIFF:
		return sanitizeTIFF(src)
	default:
		return nil, fmt.Errorf("sanitizeimage: unsupported content type %s", ct)
	}
}
