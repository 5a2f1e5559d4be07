// Package archive implements the ZIP traversal and safety engine: a
// streaming, byte-lexicographically ordered iterator over members,
// hardening checks evaluated purely from central-directory metadata,
// bomb guardrails, per-member sanitization dispatch (delegating to
// pkg/classify, pkg/sanitizeimage, pkg/sanitizepdf, pkg/sanitizeooxml),
// and a nested-archive policy bounded by depth and byte budgets.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/sanitize/pkg/classify"
	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Result is the outcome of sanitizing one archive (top-level or
// nested), aggregating every member's warnings into the single record
// §3 expects for the archive as a whole.
type Result struct {
	Output   []byte
	Warnings []model.Warning
}

// Sanitize walks src as a ZIP, applying hardening and guardrails to
// each member (processed in sorted order), dispatching survivors to
// the per-format sanitizers or the nested-archive policy, and
// assembling a new archive containing only the produced members. depth
// is 0 for a top-level archive and d for a member discovered at nested
// depth d. budget carries the aggregate nested-recursion byte/time
// ceilings and must be non-nil when depth > 0.
func Sanitize(src []byte, g Guardrails, depth int, budget *Budget) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return Result{}, fmt.Errorf("archive: open zip: %w", err)
	}

	members := sortedMembers(zr.File)

	var warnings []model.Warning
	add := func(code, msg string) {
		warnings = append(warnings, model.Warning{Code: code, Message: msg})
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	seenNames := make(map[string]bool)
	var totalBytes int64

	for i, f := range members {
		if i >= g.MaxMembers {
			add(model.WarnZipTooManyMembers, fmt.Sprintf("member %q exceeds max member count %d", f.Name, g.MaxMembers))
			continue
		}

		if isUnsafePath(f.Name) {
			add(model.WarnZipUnsafePath, fmt.Sprintf("member %q has an unsafe path", f.Name))
			continue
		}
		if isSymlink(f) {
			add(model.WarnZipSymlinkSkipped, fmt.Sprintf("member %q is a symlink", f.Name))
			continue
		}
		if isEncrypted(f) {
			add(model.WarnZipEncryptedSkipped, fmt.Sprintf("member %q is encrypted", f.Name))
			continue
		}
		if seenNames[f.Name] {
			add(model.WarnZipDuplicateSkipped, fmt.Sprintf("member %q is a duplicate entry name", f.Name))
			continue
		}
		seenNames[f.Name] = true

		if g.MaxCompressionRatio > 0 && compressionRatio(f) > g.MaxCompressionRatio {
			add(model.WarnZipRatioExceeded, fmt.Sprintf("member %q exceeds max compression ratio %.0f", f.Name, g.MaxCompressionRatio))
			continue
		}
		if g.MaxTotalBytes > 0 && totalBytes+int64(f.UncompressedSize64) > g.MaxTotalBytes {
			add(model.WarnZipTotalBytesExceeded, fmt.Sprintf("member %q would exceed aggregate byte budget %d", f.Name, g.MaxTotalBytes))
			continue
		}

		data, err := readMember(f, g.MaxMemberBytes)
		if err != nil {
			add(model.WarnZipMemberTooLarge, fmt.Sprintf("member %q exceeds max member bytes %d", f.Name, g.MaxMemberBytes))
			continue
		}
		totalBytes += int64(len(data))

		result := classify.Classify(data, strings.ToLower(filepath.Ext(f.Name)))

		outData, memberWarnings, action := dispatchMember(f.Name, data, result, g, depth, budget)
		warnings = append(warnings, memberWarnings...)

		switch action {
		case dispatchDrop:
			continue
		case dispatchWrite:
			if err := writeMember(zw, f.Name, outData); err != nil {
				return Result{}, fmt.Errorf("archive: write member %s: %w", f.Name, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("archive: finalize output zip: %w", err)
	}

	return Result{Output: out.Bytes(), Warnings: warnings}, nil
}

// readMember decompresses a single member through a hard-capped
// reader, so a header that lies about uncompressed size can never
// smuggle more bytes through than maxBytes allows.
func readMember(f *zip.File, maxBytes int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()

	return readBounded(rc, maxBytes)
}

func writeMember(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

