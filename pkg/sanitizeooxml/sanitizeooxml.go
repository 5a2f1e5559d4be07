// Package sanitizeooxml rewrites an OOXML package (docx/xlsx/pptx and
// their macro-enabled variants), dropping the docProps/* entries that
// carry author/company/thumbnail metadata while preserving every other
// member bit-for-bit. It also surfaces, without removing, the macro
// indicators §4.4 defines.
package sanitizeooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

// macroExtensions is the closed set of macro-enabled OOXML extensions.
var macroExtensions = map[string]bool{
	".docm": true, ".xlsm": true, ".pptm": true,
	".dotm": true, ".xltm": true, ".potm": true,
}

// Result is the outcome of sanitizing one OOXML package.
type Result struct {
	Output   []byte
	Warnings []model.Warning
}

// Sanitize drops the docProps entries §4.4 names and detects macro
// signals. declaredExt is the input's lower-cased extension (with
// leading dot), used for the `office_macro_enabled` check.
func Sanitize(src []byte, declaredExt string) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", model.WarnOfficeOOXMLScanFailed, err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	hasVBA := false
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/vbaProject.bin") || f.Name == "vbaProject.bin" {
			hasVBA = true
		}
		if dropEntry(f.Name) {
			continue
		}
		if err := copyEntry(zw, f); err != nil {
			return Result{}, fmt.Errorf("sanitizeooxml: copy %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("sanitizeooxml: finalize package: %w", err)
	}

	var warnings []model.Warning
	if macroExtensions[strings.ToLower(declaredExt)] {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnOfficeMacroEnabled,
			Message: "extension " + declaredExt + " is macro-enabled",
		})
	}
	if hasVBA {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnOfficeMacroIndicatorVBA,
			Message: "package contains a vbaProject.bin member",
		})
	}

	return Result{Output: out.Bytes(), Warnings: warnings}, nil
}

// dropEntry reports whether name is one of the docProps members §4.4
// requires omitted from the output package.
func dropEntry(name string) bool {
	switch name {
	case "docProps/core.xml", "docProps/app.xml", "docProps/custom.xml":
		return true
	}
	if strings.HasPrefix(name, "docProps/thumbnail.") {
		return true
	}
	return false
}

// copyEntry writes f's compressed content through unmodified, preserving
// the original compression method so untouched members stay bit-for-bit
// identical.
func copyEntry(zw *zip.Writer, f *zip.File) error {
	rc, err := f.OpenRaw()
	if err != nil {
		return err
	}

	hdr := f.FileHeader
	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, rc)
	return err
}
