// Package sanitizer implements the run orchestrator (C9): it chooses
// the top-level dispatch for the input, drives the traversal and
// archive engines, applies the trust gate, writes outputs atomically,
// and reports the outcome as an ordered JSONL stream plus exit code.
package sanitizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/praetorian-inc/sanitize/pkg/atomicfile"
	"github.com/praetorian-inc/sanitize/pkg/classify"
	"github.com/praetorian-inc/sanitize/pkg/model"
	"github.com/praetorian-inc/sanitize/pkg/policy"
	"github.com/praetorian-inc/sanitize/pkg/report"
	"github.com/praetorian-inc/sanitize/pkg/traverse"
)

// runner holds the per-invocation state threaded through every item's
// processing: the options, and the flat-mode output namer.
type runner struct {
	opts  Options
	namer *namer
}

// Run executes one sanitize invocation end to end and returns the
// process exit code §6 specifies.
func Run(ctx context.Context, opts Options, stdout io.Writer) (int, error) {
	state := model.NewRunState()
	state.StartedAt = time.Now()

	allow := buildAllowTypes(opts.AllowExt)

	rw, err := report.Open(opts.Report, stdout)
	if err != nil {
		return 0, fmt.Errorf("sanitizer: open report: %w", err)
	}
	defer rw.Close()

	info, err := os.Stat(opts.Input)
	if err != nil {
		return 0, fmt.Errorf("sanitizer: stat input %s: %w", opts.Input, err)
	}

	r := &runner{opts: opts, namer: newNamer(opts.Out, opts.Flat)}

	var records []model.Record
	if info.IsDir() {
		res, err := traverse.Walk(ctx, traverse.Options{
			Root:       opts.Input,
			Excludes:   opts.Excludes,
			AllowTypes: allow,
			MaxFiles:   opts.MaxFiles,
			MaxBytes:   opts.MaxBytes,
		}, r.processItem)
		if err != nil {
			return 0, err
		}
		records = res.Records
	} else {
		rec, err := r.processSingleFile(allow)
		if err != nil {
			return 0, err
		}
		records = []model.Record{rec}
	}

	for _, rec := range records {
		state.Observe(rec)
		if err := rw.WriteRecord(rec); err != nil {
			return 0, fmt.Errorf("sanitizer: write report record: %w", err)
		}
	}

	state.EndedAt = time.Now()
	exitCode := computeExitCode(state, opts.FailOnWarnings)

	if opts.ReportSummary {
		meta := report.SummaryMeta{
			DryRun:      opts.DryRun,
			ExitCode:    exitCode,
			ToolVersion: opts.ToolVersion,
			Input:       opts.Input,
			Out:         opts.Out,
			Report:      opts.Report,
			Options:     opts,
		}
		if err := rw.WriteSummary(report.NewSummary(state, meta)); err != nil {
			return exitCode, fmt.Errorf("sanitizer: write summary: %w", err)
		}
	}

	return exitCode, nil
}

func (r *runner) processSingleFile(allow map[model.ContentType]bool) (model.Record, error) {
	data, err := os.ReadFile(r.opts.Input)
	if err != nil {
		return model.Record{}, fmt.Errorf("sanitizer: read input %s: %w", r.opts.Input, err)
	}

	item, skipped := traverse.ClassifyTopLevel(r.opts.Input, data, allow)
	if skipped != nil {
		return *skipped, nil
	}

	return r.process(item, data, filepath.Base(r.opts.Input)), nil
}

// processItem adapts process to traverse.ProcessFunc for directory
// runs, where the output-relative path is always the walked path.
func (r *runner) processItem(_ context.Context, item model.InputItem, data []byte) model.Record {
	return r.process(item, data, item.Path)
}

// process dispatches item's bytes to its sanitizer, resolves the
// output location, applies overwrite/dry-run rules, writes atomically,
// and runs the result through the trust gate.
func (r *runner) process(item model.InputItem, data []byte, outputRelPath string) model.Record {
	var warnings []model.Warning
	if item.ClassifyWarning != nil {
		warnings = append(warnings, *item.ClassifyWarning)
	}

	out, action, dispatchWarnings, err := dispatchTopLevel(data, item, r.opts)
	warnings = append(warnings, dispatchWarnings...)
	if err != nil {
		errMsg := err.Error()
		return model.NewRecord(item.Path, nil, model.ActionError, warnings, &errMsg)
	}

	if action == model.ActionSkipped {
		return model.NewRecord(item.Path, nil, model.ActionSkipped, warnings, nil)
	}

	// The trust gate runs before any filesystem write: a blocked
	// record must never reach disk.
	tentative := model.NewRecord(item.Path, nil, action, warnings, nil)
	if gated := policy.Gate(tentative, r.opts.RiskyPolicy, r.opts.DryRun); gated.Action == model.ActionBlocked || gated.Action == model.ActionWouldBlock {
		return gated
	}

	outPath := r.namer.path(outputRelPath)

	if !r.opts.Overwrite {
		if _, statErr := os.Stat(outPath); statErr == nil {
			warnings = append(warnings, model.Warning{Code: model.WarnOutputExists, Message: "output already exists: " + outPath})
			return model.NewRecord(item.Path, nil, model.ActionSkipped, warnings, nil)
		}
	}

	finalAction := action
	if r.opts.DryRun {
		finalAction = dryRunAction(action)
	} else if err := atomicfile.Write(outPath, out, 0o644); err != nil {
		errMsg := err.Error()
		return model.NewRecord(item.Path, nil, model.ActionError, warnings, &errMsg)
	}

	return model.NewRecord(item.Path, &outPath, finalAction, warnings, nil)
}

func buildAllowTypes(exts []string) map[model.ContentType]bool {
	if len(exts) == 0 {
		return nil
	}
	allow := make(map[model.ContentType]bool, len(exts))
	for _, ext := range exts {
		if t, ok := classify.TypeForExtension(ext); ok {
			allow[t] = true
		}
	}
	return allow
}

// computeExitCode implements §4.9/§6: 2 beats 3 beats 0.
func computeExitCode(state *model.RunState, failOnWarnings bool) int {
	if state.CountsByAction[model.ActionError] > 0 || state.CountsByAction[model.ActionBlocked] > 0 {
		return 2
	}
	if failOnWarnings && state.WarningsCount > 0 {
		return 3
	}
	return 0
}
