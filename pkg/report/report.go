// Package report writes the JSONL stream of per-input records (and
// an optional terminal summary record), flushing after every line so
// the report survives a crash partway through a run.
package report

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Summary is the terminal {"type":"summary",...} record appended when
// report_summary is enabled, per §6's wire format.
type Summary struct {
	Type          string                 `json:"type"`
	ReportVersion int                    `json:"report_version"`
	DryRun        bool                   `json:"dry_run"`
	ExitCode      int                    `json:"exit_code"`
	Files         int64                  `json:"files"`
	Warnings      int64                  `json:"warnings"`
	Errors        int64                  `json:"errors"`
	Counts        map[model.Action]int64 `json:"counts"`
	ToolVersion   string                 `json:"tool_version"`
	StartedAt     time.Time              `json:"started_at"`
	EndedAt       time.Time              `json:"ended_at"`
	DurationMS    int64                  `json:"duration_ms"`
	Input         string                 `json:"input"`
	Out           string                 `json:"out"`
	Report        string                 `json:"report"`
	Options       interface{}            `json:"options"`
}

// SummaryMeta carries the run-level fields NewSummary cannot derive
// from RunState alone.
type SummaryMeta struct {
	DryRun      bool
	ExitCode    int
	ToolVersion string
	Input       string
	Out         string
	Report      string
	Options     interface{}
}

// NewSummary builds a Summary from an accumulated RunState plus the
// run-level metadata the orchestrator alone knows.
func NewSummary(state *model.RunState, meta SummaryMeta) Summary {
	return Summary{
		Type:          "summary",
		ReportVersion: model.ReportVersion,
		DryRun:        meta.DryRun,
		ExitCode:      meta.ExitCode,
		Files:         state.FilesSeen,
		Warnings:      state.WarningsCount,
		Errors:        state.ErrorsCount,
		Counts:        state.CountsByAction,
		ToolVersion:   meta.ToolVersion,
		StartedAt:     state.StartedAt,
		EndedAt:       state.EndedAt,
		DurationMS:    state.EndedAt.Sub(state.StartedAt).Milliseconds(),
		Input:         meta.Input,
		Out:           meta.Out,
		Report:        meta.Report,
		Options:       meta.Options,
	}
}

// Writer appends JSONL records to a destination, flushing after every
// write. Open with "-" to write to stdout instead of a file.
type Writer struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// Open resolves path against stdout: "-" writes to stdout (a real
// filesystem entry named "-" is never consulted here, only treated as
// such by the caller's separate input-collection pass), anything else
// is created if needed and truncated, so each run starts a fresh report.
func Open(path string, stdout io.Writer) (*Writer, error) {
	if path == "-" {
		buf := bufio.NewWriter(stdout)
		return &Writer{buf: buf, enc: json.NewEncoder(buf)}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &Writer{buf: buf, enc: json.NewEncoder(buf), closer: f}, nil
}

// WriteRecord appends rec as one JSON line and flushes immediately.
func (w *Writer) WriteRecord(rec model.Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return err
	}
	return w.buf.Flush()
}

// WriteSummary appends the terminal summary record and flushes.
func (w *Writer) WriteSummary(s Summary) error {
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	return w.buf.Flush()
}

// Close flushes any remaining buffered data and closes the underlying
// file, if one was opened. A no-op for stdout-backed writers.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
