package sanitizer

import (
	"github.com/praetorian-inc/sanitize/pkg/archive"
	"github.com/praetorian-inc/sanitize/pkg/model"
	"github.com/praetorian-inc/sanitize/pkg/sanitizeimage"
	"github.com/praetorian-inc/sanitize/pkg/sanitizeooxml"
	"github.com/praetorian-inc/sanitize/pkg/sanitizepdf"
)

// dispatchTopLevel runs one already-classified top-level input through
// its C2/C3/C4/C5 sanitizer, mirroring the member dispatch §4.5 defines
// for archive members but rooted at depth 0 with no nested-archive
// budget in play yet.
func dispatchTopLevel(data []byte, item model.InputItem, opts Options) ([]byte, model.Action, []model.Warning, error) {
	switch item.Detected {
	case model.TypeJPEG, model.TypePNG, model.TypeWebP, model.TypeTIFF:
		out, err := sanitizeimage.Sanitize(item.Detected, data)
		if err != nil {
			return nil, model.ActionError, nil, err
		}
		return out, model.ActionImageSanitized, nil, nil

	case model.TypePDF:
		res, err := sanitizepdf.Sanitize(data)
		if err != nil {
			return nil, model.ActionError, []model.Warning{{Code: model.WarnPDFScanFailed, Message: err.Error()}}, err
		}
		return res.Output, model.ActionPDFSanitized, res.Warnings, nil

	case model.TypeOOXML:
		res, err := sanitizeooxml.Sanitize(data, item.DeclaredExt)
		if err != nil {
			return nil, model.ActionError, nil, err
		}
		return res.Output, model.ActionOfficeSanitized, res.Warnings, nil

	case model.TypeZIP:
		res, err := archive.Sanitize(data, opts.Guardrails, 0, nil)
		if err != nil {
			return nil, model.ActionError, nil, err
		}
		return res.Output, model.ActionZipSanitized, res.Warnings, nil

	default:
		if opts.Guardrails.CopyUnsupported {
			return data, model.ActionCopied, nil, nil
		}
		return nil, model.ActionSkipped, nil, nil
	}
}

// dryRunAction maps a would-have-happened action to its would_* form.
func dryRunAction(a model.Action) model.Action {
	switch a {
	case model.ActionImageSanitized:
		return model.ActionWouldImageSanitize
	case model.ActionPDFSanitized:
		return model.ActionWouldPDFSanitize
	case model.ActionZipSanitized:
		return model.ActionWouldZipSanitize
	case model.ActionOfficeSanitized:
		return model.ActionWouldOfficeSanitize
	case model.ActionCopied:
		return model.ActionWouldCopy
	default:
		return a
	}
}
