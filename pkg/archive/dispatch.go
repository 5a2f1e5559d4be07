package archive

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/praetorian-inc/sanitize/pkg/classify"
	"github.com/praetorian-inc/sanitize/pkg/model"
	"github.com/praetorian-inc/sanitize/pkg/sanitizeimage"
	"github.com/praetorian-inc/sanitize/pkg/sanitizeooxml"
	"github.com/praetorian-inc/sanitize/pkg/sanitizepdf"
)

type dispatchAction int

const (
	dispatchDrop dispatchAction = iota
	dispatchWrite
)

// dispatchMember runs one hardened member through C1's reclassification
// and the §4.5 member dispatch state machine: sanitize (C2/C3/C4),
// recurse into the nested-archive policy, or copy/skip as unsupported.
func dispatchMember(name string, data []byte, classified classify.Result, g Guardrails, depth int, budget *Budget) ([]byte, []model.Warning, dispatchAction) {
	var warnings []model.Warning
	if classified.Warning != nil {
		warnings = append(warnings, *classified.Warning)
	}

	switch classified.Type {
	case model.TypeJPEG, model.TypePNG, model.TypeWebP, model.TypeTIFF:
		out, err := sanitizeimage.Sanitize(classified.Type, data)
		if err != nil {
			warnings = append(warnings, model.Warning{Code: model.WarnZipUnsupportedSkipped, Message: err.Error()})
			return nil, warnings, dispatchDrop
		}
		return out, warnings, dispatchWrite

	case model.TypePDF:
		res, err := sanitizepdf.Sanitize(data)
		if err != nil {
			warnings = append(warnings, model.Warning{Code: model.WarnPDFScanFailed, Message: err.Error()})
			return nil, warnings, dispatchDrop
		}
		warnings = append(warnings, res.Warnings...)
		return res.Output, warnings, dispatchWrite

	case model.TypeOOXML:
		res, err := sanitizeooxml.Sanitize(data, strings.ToLower(filepath.Ext(name)))
		if err != nil {
			warnings = append(warnings, model.Warning{Code: model.WarnOfficeOOXMLScanFailed, Message: err.Error()})
			return nil, warnings, dispatchDrop
		}
		warnings = append(warnings, res.Warnings...)
		return res.Output, warnings, dispatchWrite

	case model.TypeZIP:
		return dispatchNested(name, data, g, depth, budget, warnings)

	default:
		if g.CopyUnsupported {
			return data, warnings, dispatchWrite
		}
		warnings = append(warnings, model.Warning{Code: model.WarnZipUnsupportedSkipped, Message: fmt.Sprintf("member %q is an unsupported type", name)})
		return nil, warnings, dispatchDrop
	}
}

// dispatchNested applies §4.5's nested-archive policy to a member that
// reclassified as a ZIP by content.
func dispatchNested(name string, data []byte, g Guardrails, depth int, budget *Budget, warnings []model.Warning) ([]byte, []model.Warning, dispatchAction) {
	switch g.Nested {
	case NestedCopy:
		warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveCopied, Message: fmt.Sprintf("nested archive %q copied without sanitizing", name)})
		return data, warnings, dispatchWrite

	case NestedSanitize:
		if depth+1 > g.NestedMaxDepth {
			warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveFailed, Message: fmt.Sprintf("nested archive %q exceeds max depth %d", name, g.NestedMaxDepth)})
			return nil, warnings, dispatchDrop
		}

		b := budget
		if b == nil {
			b = &Budget{}
			if g.NestedTimeBudget > 0 {
				b.Deadline = time.Now().Add(g.NestedTimeBudget)
			}
		}
		if b.timeExceeded() {
			warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveFailed, Message: fmt.Sprintf("nested archive %q exceeds time budget", name)})
			return nil, warnings, dispatchDrop
		}
		if g.NestedMaxTotalBytes > 0 && b.NestedBytesUsed+int64(len(data)) > g.NestedMaxTotalBytes {
			warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveFailed, Message: fmt.Sprintf("nested archive %q exceeds aggregate byte budget %d", name, g.NestedMaxTotalBytes)})
			return nil, warnings, dispatchDrop
		}
		b.NestedBytesUsed += int64(len(data))

		res, err := Sanitize(data, g, depth+1, b)
		if err != nil {
			warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveFailed, Message: err.Error()})
			return nil, warnings, dispatchDrop
		}
		warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveSanitized, Message: fmt.Sprintf("nested archive %q sanitized at depth %d", name, depth+1)})
		warnings = append(warnings, res.Warnings...)
		return res.Output, warnings, dispatchWrite

	default: // NestedSkip
		warnings = append(warnings, model.Warning{Code: model.WarnZipNestedArchiveSkipped, Message: fmt.Sprintf("nested archive %q skipped", name)})
		return nil, warnings, dispatchDrop
	}
}
