// Package model holds the cross-cutting data types shared by every
// sanitization engine: the content-type taxonomy, the report record
// shape, the warning-code set, and per-run counters.
package model

import "time"

// ContentType is the closed set of content kinds the classifier can
// produce.
type ContentType string

const (
	TypeJPEG    ContentType = "image/jpeg"
	TypePNG     ContentType = "image/png"
	TypeWebP    ContentType = "image/webp"
	TypeTIFF    ContentType = "image/tiff"
	TypePDF     ContentType = "application/pdf"
	TypeZIP     ContentType = "application/zip"
	TypeOOXML   ContentType = "application/ooxml"
	TypeUnknown ContentType = "unknown"
)

// Supported reports whether t is a format the sanitizer knows how to
// re-encode (as opposed to a container type like zip/ooxml or unknown).
func (t ContentType) Supported() bool {
	switch t {
	case TypeJPEG, TypePNG, TypeWebP, TypeTIFF, TypePDF:
		return true
	default:
		return false
	}
}

// Relationship describes where an InputItem sits in the traversal.
type Relationship int

const (
	RelTopLevel Relationship = iota
	RelArchiveMember
	RelNestedArchiveMember
)

// InputItem is a single unit of work: a file-system path or an
// archive-member path, immutable once constructed.
type InputItem struct {
	Path         string
	DeclaredExt  string
	Detected     ContentType
	Relationship Relationship
	Depth        int // >=1 for RelNestedArchiveMember
	// ClassifyWarning carries a content_type_detected/content_type_mismatch
	// warning discovered while classifying, if any; callers building a
	// record's warning list should prepend it.
	ClassifyWarning *Warning
}

// Warning is a stable, machine-matchable code plus an advisory message.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Action is the closed set of outcomes a Record can carry.
type Action string

const (
	ActionImageSanitized  Action = "image_sanitized"
	ActionPDFSanitized    Action = "pdf_sanitized"
	ActionZipSanitized    Action = "zip_sanitized"
	ActionOfficeSanitized Action = "office_sanitized"
	ActionCopied          Action = "copied"
	ActionSkipped         Action = "skipped"
	ActionExcluded        Action = "excluded"
	ActionBlocked         Action = "blocked"
	ActionError           Action = "error"
	ActionTruncated       Action = "truncated"

	ActionWouldImageSanitize  Action = "would_image_sanitize"
	ActionWouldPDFSanitize    Action = "would_pdf_sanitize"
	ActionWouldZipSanitize    Action = "would_zip_sanitize"
	ActionWouldOfficeSanitize Action = "would_office_sanitize"
	ActionWouldCopy           Action = "would_copy"
	ActionWouldSkip           Action = "would_skip"
	ActionWouldBlock          Action = "would_block"
)

// ReportVersion is the schema version stamped on every Record.
const ReportVersion = 1

// Record is one JSONL line of the audit report.
type Record struct {
	ReportVersion int       `json:"report_version"`
	InputPath     string    `json:"input_path"`
	OutputPath    *string   `json:"output_path"`
	Action        Action    `json:"action"`
	Warnings      []Warning `json:"warnings"`
	Error         *string   `json:"error"`
}

// NewRecord builds a Record with the report-version and warnings slice
// normalized to non-nil (so it marshals as `[]`, not `null`).
func NewRecord(inputPath string, outputPath *string, action Action, warnings []Warning, errMsg *string) Record {
	if warnings == nil {
		warnings = []Warning{}
	}
	return Record{
		ReportVersion: ReportVersion,
		InputPath:     inputPath,
		OutputPath:    outputPath,
		Action:        action,
		Warnings:      warnings,
		Error:         errMsg,
	}
}

// RunState accumulates per-invocation counters. Owned exclusively by
// the orchestrator; every mutation happens on its goroutine.
type RunState struct {
	FilesSeen      int64
	BytesSeen      int64
	CountsByAction map[Action]int64
	WarningsCount  int64
	ErrorsCount    int64
	StartedAt      time.Time
	EndedAt        time.Time
}

// NewRunState returns a zeroed RunState ready for accumulation.
func NewRunState() *RunState {
	return &RunState{CountsByAction: make(map[Action]int64)}
}

// Observe folds one Record's outcome into the run's counters.
func (rs *RunState) Observe(rec Record) {
	rs.CountsByAction[rec.Action]++
	rs.WarningsCount += int64(len(rec.Warnings))
	if rec.Action == ActionError {
		rs.ErrorsCount++
	}
}
