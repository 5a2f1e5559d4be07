// Package sanitizepdf strips the /Info dictionary and any XMP metadata
// stream from a PDF, and scans (without modifying) for active-content
// indicators. It is a heuristic, byte-level scanner, not a full PDF
// parser — it trusts `github.com/ledongthuc/pdf` only for the
// structural validity pre-check and does everything else with regexes
// over the raw bytes, the same scope the grounding source documents.
package sanitizepdf

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/ledongthuc/pdf"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Result is the outcome of sanitizing one PDF.
type Result struct {
	Output   []byte
	Warnings []model.Warning
}

// infoFields are the standard /Info dictionary keys removed by name
// when no enclosing indirect object can be located.
var infoFields = []string{
	"Title", "Author", "Subject", "Keywords",
	"Creator", "Producer", "CreationDate", "ModDate", "Trapped",
}

var (
	infoRefRe  = regexp.MustCompile(`/Info\s+(\d+)\s+\d+\s+R`)
	xmpBeginRe = regexp.MustCompile(`(?s)<\?xpacket begin.*?<\?xpacket end[^>]*>`)
	xmpMetaRe  = regexp.MustCompile(`(?s)<x:xmpmeta.*?</x:xmpmeta>`)

	openActionRe   = regexp.MustCompile(`/OpenAction`)
	javaScriptRe   = regexp.MustCompile(`/(JS|JavaScript)\b`)
	additionalActRe = regexp.MustCompile(`/AA\b`)
	acroFormRe     = regexp.MustCompile(`/AcroForm`)
	embeddedFileRe = regexp.MustCompile(`/EmbeddedFiles`)
)

// Sanitize validates structural integrity, scans for risk signals, and
// strips the Info dictionary and XMP stream from src.
func Sanitize(src []byte) (Result, error) {
	if err := checkValid(src); err != nil {
		return Result{}, fmt.Errorf("sanitizepdf: %w", err)
	}

	warnings := scanRisks(src)
	stripped := stripInfoAndXMP(src)

	return Result{Output: stripped, Warnings: warnings}, nil
}

// checkValid opens src with ledongthuc/pdf.NewReader and reads its page
// count. A failure here means the document is corrupt enough that
// byte-level stripping cannot be trusted either.
func checkValid(src []byte) error {
	r, err := pdf.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return fmt.Errorf("%s: %w", model.WarnPDFScanFailed, err)
	}
	if r.NumPage() < 0 {
		return fmt.Errorf("%s: no pages", model.WarnPDFScanFailed)
	}
	return nil
}

// scanRisks walks the raw bytes for the five closed active-content
// indicator codes §4.3 defines. It is deliberately conservative: a
// token match is reported even if it turns out to sit inside a content
// stream rather than the object graph, because false positives here
// are strictly safer than false negatives in a security-adjacent scan.
func scanRisks(src []byte) []model.Warning {
	var warnings []model.Warning
	add := func(code, msg string) {
		warnings = append(warnings, model.Warning{Code: code, Message: msg})
	}

	if openActionRe.Match(src) {
		add(model.WarnPDFRiskOpenAction, "document catalog contains /OpenAction")
	}
	if javaScriptRe.Match(src) {
		add(model.WarnPDFRiskJavaScript, "document references /JS or /JavaScript")
	}
	if additionalActRe.Match(src) {
		add(model.WarnPDFRiskAction, "document contains an /AA additional-actions entry")
	}
	if acroFormRe.Match(src) {
		add(model.WarnPDFRiskForm, "document contains an /AcroForm")
	}
	if embeddedFileRe.Match(src) {
		add(model.WarnPDFRiskEmbeddedFile, "document contains an /EmbeddedFiles name tree")
	}
	return warnings
}

// stripInfoAndXMP removes the /Info dictionary's indirect object (or,
// failing to locate one, its individual fields by name) and any XMP
// metadata packet.
func stripInfoAndXMP(src []byte) []byte {
	out := stripInfoObject(src)
	out = xmpBeginRe.ReplaceAll(out, nil)
	out = xmpMetaRe.ReplaceAll(out, nil)
	return out
}

func stripInfoObject(src []byte) []byte {
	m := infoRefRe.FindSubmatch(src)
	if m == nil {
		return stripInfoFieldsByName(src)
	}

	objRe := regexp.MustCompile(`(?s)\b` + string(m[1]) + `\s+\d+\s+obj\s*<<(.*?)>>\s*endobj`)
	loc := objRe.FindSubmatchIndex(src)
	if loc == nil {
		return stripInfoFieldsByName(src)
	}

	var out bytes.Buffer
	out.Write(src[:loc[0]])
	out.WriteString(fmt.Sprintf("%s 0 obj << >> endobj", string(m[1])))
	out.Write(src[loc[1]:])
	return out.Bytes()
}

func stripInfoFieldsByName(src []byte) []byte {
	out := src
	for _, field := range infoFields {
		lit := regexp.MustCompile(`/` + field + `\s*\([^)]*\)\s*`)
		out = lit.ReplaceAll(out, nil)
		hex := regexp.MustCompile(`/` + field + `\s*<[^>]*>\s*`)
		out = hex.ReplaceAll(out, nil)
	}
	return out
}
