// Package policy implements the trust gate applied to a finished
// per-input record: under the block policy, any risky warning
// suppresses the write and downgrades the action to blocked.
package policy

import "github.com/praetorian-inc/sanitize/pkg/model"

// Mode selects how risky findings are handled.
type Mode string

const (
	ModeWarn  Mode = "warn"
	ModeBlock Mode = "block"
)

// Gate evaluates rec against mode and returns the record to actually
// emit. Under ModeWarn (the default) rec is returned unchanged. Under
// ModeBlock, if any of rec's warnings has a code in the closed risky
// set, the output path is cleared and the action becomes blocked (or
// would_block when dryRun is set), matching §4.7's dry-run analogue.
func Gate(rec model.Record, mode Mode, dryRun bool) model.Record {
	if mode != ModeBlock || !anyRisky(rec.Warnings) {
		return rec
	}

	rec.OutputPath = nil
	if dryRun {
		rec.Action = model.ActionWouldBlock
	} else {
		rec.Action = model.ActionBlocked
	}
	return rec
}

func anyRisky(warnings []model.Warning) bool {
	for _, w := range warnings {
		if model.IsRisky(w.Code) {
			return true
		}
	}
	return false
}
