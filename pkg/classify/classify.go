// Package classify implements content-type detection by magic bytes,
// with extension reconciliation against the detected type.
package classify

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Result is the outcome of classifying one byte prefix.
type Result struct {
	Type    model.ContentType
	Warning *model.Warning
}

var extToType = map[string]model.ContentType{
	".jpg":  model.TypeJPEG,
	".jpeg": model.TypeJPEG,
	".png":  model.TypePNG,
	".webp": model.TypeWebP,
	".tif":  model.TypeTIFF,
	".tiff": model.TypeTIFF,
	".pdf":  model.TypePDF,
	".zip":  model.TypeZIP,
	".docx": model.TypeOOXML,
	".xlsx": model.TypeOOXML,
	".pptx": model.TypeOOXML,
	".docm": model.TypeOOXML,
	".xlsm": model.TypeOOXML,
	".pptm": model.TypeOOXML,
	".dotm": model.TypeOOXML,
	".xltm": model.TypeOOXML,
	".potm": model.TypeOOXML,
}

// Classify detects the content type of prefix and reconciles it
// against declaredExt, the lower-cased extension (with leading dot)
// the input was named with. It is a pure function: no filesystem
// access. A short prefix (16 bytes) resolves every magic signature
// except the ZIP/OOXML split, which needs the full buffer so the
// central directory can be inspected; callers that already hold the
// whole candidate in memory should just pass it all.
func Classify(prefix []byte, declaredExt string) Result {
	detected := sniff(prefix)
	declaredExt = strings.ToLower(declaredExt)
	declaredType, haveDeclared := extToType[declaredExt]

	if !haveDeclared {
		return Result{Type: detected}
	}
	if detected == declaredType {
		return Result{Type: detected}
	}

	if detected.Supported() || detected == model.TypeZIP || detected == model.TypeOOXML {
		return Result{
			Type: detected,
			Warning: &model.Warning{
				Code:    model.WarnContentTypeDetected,
				Message: "detected type " + string(detected) + " does not match extension " + declaredExt,
			},
		}
	}

	// Extension implies a supported format but the bytes don't back it
	// up: downgrade to unknown rather than trusting the name.
	return Result{
		Type: model.TypeUnknown,
		Warning: &model.Warning{
			Code:    model.WarnContentTypeMismatch,
			Message: "extension " + declaredExt + " implies " + string(declaredType) + " but magic bytes do not match",
		},
	}
}

// TypeForExtension maps a lower-cased, dot-prefixed extension to the
// content type it declares, for building an --allow-ext allowlist
// against detected (not declared) types.
func TypeForExtension(ext string) (model.ContentType, bool) {
	t, ok := extToType[strings.ToLower(ext)]
	return t, ok
}

// sniff inspects magic bytes and, for ZIP signatures, reclassifies
// OOXML packages by central-directory contents.
func sniff(prefix []byte) model.ContentType {
	switch {
	case hasPrefix(prefix, 0xFF, 0xD8, 0xFF):
		return model.TypeJPEG
	case hasPrefix(prefix, 0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A):
		return model.TypePNG
	case isWebP(prefix):
		return model.TypeWebP
	case hasPrefix(prefix, 'I', 'I', '*', 0x00), hasPrefix(prefix, 'M', 'M', 0x00, '*'):
		return model.TypeTIFF
	case bytes.HasPrefix(prefix, []byte("%PDF-")):
		return model.TypePDF
	case hasPrefix(prefix, 'P', 'K', 0x03, 0x04), hasPrefix(prefix, 'P', 'K', 0x05, 0x06):
		if looksLikeOOXML(prefix) {
			return model.TypeOOXML
		}
		return model.TypeZIP
	default:
		return model.TypeUnknown
	}
}

func hasPrefix(b []byte, want ...byte) bool {
	if len(b) < len(want) {
		return false
	}
	for i, w := range want {
		if b[i] != w {
			return false
		}
	}
	return true
}

func isWebP(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP"))
}

// looksLikeOOXML opens prefix as a ZIP central directory and checks for
// the `[Content_Types].xml` + `docProps/` signature §4.1 requires. The
// caller is expected to pass the full file bytes (or at least enough to
// reach the central directory) when this matters; when given only a
// short prefix, zip.NewReader fails and this conservatively reports
// false (plain ZIP).
func looksLikeOOXML(full []byte) bool {
	r, err := zip.NewReader(bytes.NewReader(full), int64(len(full)))
	if err != nil {
		return false
	}
	hasContentTypes := false
	hasDocProps := false
	for _, f := range r.File {
		switch {
		case f.Name == "[Content_Types].xml":
			hasContentTypes = true
		case strings.HasPrefix(f.Name, "docProps/"):
			hasDocProps = true
		}
	}
	return hasContentTypes && hasDocProps
}
