// Package traverse implements the deterministic directory walk:
// a sequential, byte-lexicographically sorted collection phase
// followed by a bounded-parallel process phase whose results are
// written back into sorted order before being reported, so any
// internal concurrency never leaks into the observable report order.
package traverse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/sanitize/pkg/classify"
	"github.com/praetorian-inc/sanitize/pkg/model"
)

// Options configures one traversal.
type Options struct {
	Root string
	// Excludes are gitignore-syntax glob patterns, matched relative to
	// Root; a matched directory is pruned, a matched file is excluded.
	Excludes []string
	// AllowTypes, when non-empty, restricts processing to files whose
	// detected content type is a member; everything else is skipped.
	AllowTypes map[model.ContentType]bool
	MaxFiles   int64 // 0 = unbounded
	MaxBytes   int64 // 0 = unbounded
	// Concurrency bounds the process-phase worker pool; <=1 runs
	// sequentially.
	Concurrency int
}

// ProcessFunc handles one classified input and returns the record to
// emit for it. Supplied by the run orchestrator (C9); traverse itself
// never sanitizes.
type ProcessFunc func(ctx context.Context, item model.InputItem, data []byte) model.Record

// Result is the ordered output of one traversal.
type Result struct {
	Records   []model.Record
	Truncated bool
}

type entry struct {
	relPath  string
	absPath  string
	excluded bool // matched an exclude pattern
	size     int64
}

// Walk collects every path under opts.Root in sorted order (pruning
// excluded directories, recording excluded files), then dispatches
// each surviving file to process — bounded-parallel when
// opts.Concurrency > 1 — writing results back into their sorted
// position so the returned order is always byte-lexicographic.
func Walk(ctx context.Context, opts Options, process ProcessFunc) (Result, error) {
	matcher := compileExcludes(opts.Excludes)

	entries, err := collect(opts.Root, matcher)
	if err != nil {
		return Result{}, fmt.Errorf("traverse: walk %s: %w", opts.Root, err)
	}

	records := make([]model.Record, len(entries))
	needsProcess := make([]bool, len(entries))

	var filesSeen, bytesSeen int64
	truncateAt := -1

	for i, e := range entries {
		if e.excluded {
			warnings := []model.Warning{{Code: model.WarnExcludedByPattern, Message: "matched an --exclude pattern"}}
			records[i] = model.NewRecord(e.relPath, nil, model.ActionExcluded, warnings, nil)
			continue
		}

		if opts.MaxFiles > 0 && filesSeen >= opts.MaxFiles {
			truncateAt = i
			break
		}
		if opts.MaxBytes > 0 && bytesSeen+e.size > opts.MaxBytes {
			truncateAt = i
			break
		}

		filesSeen++
		bytesSeen += e.size
		needsProcess[i] = true
	}

	if truncateAt >= 0 {
		entries = entries[:truncateAt]
		records = records[:truncateAt]
		needsProcess = needsProcess[:truncateAt]
	}

	if err := processAll(ctx, opts, entries, needsProcess, records, process); err != nil {
		return Result{}, err
	}

	if truncateAt >= 0 {
		msg := fmt.Sprintf("traversal ceiling reached after %d files / %d bytes", filesSeen, bytesSeen)
		warnings := []model.Warning{{Code: model.WarnTraversalCeiling, Message: msg}}
		records = append(records, model.NewRecord(opts.Root, nil, model.ActionTruncated, warnings, nil))
		return Result{Records: records, Truncated: true}, nil
	}

	return Result{Records: records}, nil
}

// processAll reads, classifies, and dispatches every entry flagged in
// needsProcess, bounded by opts.Concurrency, writing each outcome into
// records at its own sorted index.
func processAll(ctx context.Context, opts Options, entries []entry, needsProcess []bool, records []model.Record, process ProcessFunc) error {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, e := range entries {
		if !needsProcess[i] {
			continue
		}
		i, e := i, e
		g.Go(func() error {
			rec := processOne(gctx, opts, e, process)
			records[i] = rec
			return nil
		})
	}

	return g.Wait()
}

func processOne(ctx context.Context, opts Options, e entry, process ProcessFunc) model.Record {
	data, err := os.ReadFile(e.absPath)
	if err != nil {
		errMsg := err.Error()
		return model.NewRecord(e.relPath, nil, model.ActionError, nil, &errMsg)
	}

	item, skipped := ClassifyTopLevel(e.relPath, data, opts.AllowTypes)
	if skipped != nil {
		return *skipped
	}

	return process(ctx, item, data)
}

// ClassifyTopLevel classifies one top-level input (relPath is a
// display path, not necessarily filesystem-backed) and applies the
// allowlist. When the allowlist excludes the detected type, it
// returns the skipped record to emit and a zero InputItem; otherwise
// it returns the classified item and a nil record, signalling the
// caller should proceed to sanitize. Shared by the directory-walk
// process phase and the orchestrator's single-file dispatch so both
// apply §4.1/§4.6 identically.
func ClassifyTopLevel(relPath string, data []byte, allow map[model.ContentType]bool) (model.InputItem, *model.Record) {
	ext := strings.ToLower(filepath.Ext(relPath))
	classified := classify.Classify(data, ext)

	if len(allow) > 0 && !allow[classified.Type] {
		var warnings []model.Warning
		if classified.Warning != nil {
			warnings = append(warnings, *classified.Warning)
		}
		warnings = append(warnings, model.Warning{Code: model.WarnAllowlistSkipped, Message: "detected type " + string(classified.Type) + " is not in the allowlist"})
		rec := model.NewRecord(relPath, nil, model.ActionSkipped, warnings, nil)
		return model.InputItem{}, &rec
	}

	item := model.InputItem{
		Path:            relPath,
		DeclaredExt:     ext,
		Detected:        classified.Type,
		Relationship:    model.RelTopLevel,
		ClassifyWarning: classified.Warning,
	}
	return item, nil
}

func collect(root string, matcher *gitignore.GitIgnore) ([]entry, error) {
	var out []entry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		matched := matcher != nil && matcher.MatchesPath(rel)

		if info.IsDir() {
			if matched {
				out = append(out, entry{relPath: rel, excluded: true})
				return filepath.SkipDir
			}
			return nil
		}

		out = append(out, entry{relPath: rel, absPath: path, excluded: matched, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].relPath < out[j].relPath })
	return out, nil
}

func compileExcludes(patterns []string) *gitignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(patterns...)
}
