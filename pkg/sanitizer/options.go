package sanitizer

import (
	"github.com/praetorian-inc/sanitize/pkg/archive"
	"github.com/praetorian-inc/sanitize/pkg/policy"
)

// Options is the full set of run-level choices §6 exposes, already
// parsed out of CLI flags by cmd/sanitize.
type Options struct {
	Input         string
	Out           string
	Report        string
	ReportSummary bool
	DryRun        bool
	Flat          bool
	Overwrite     bool
	Excludes      []string
	AllowExt      []string
	MaxFiles      int64
	MaxBytes      int64

	Guardrails     archive.Guardrails
	RiskyPolicy    policy.Mode
	FailOnWarnings bool
	Quiet          bool

	ToolVersion string
}

// DefaultOptions returns the documented §6 defaults: warn policy,
// archive guardrails from §4.5, and overwrite permitted (matching the
// original Python sanitizer's default of overwrite=True).
func DefaultOptions() Options {
	return Options{
		Guardrails:  archive.DefaultGuardrails(),
		RiskyPolicy: policy.ModeWarn,
		Overwrite:   true,
		ToolVersion: "dev",
	}
}
