package main

import (
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/sanitize/pkg/archive"
	"github.com/praetorian-inc/sanitize/pkg/policy"
	"github.com/praetorian-inc/sanitize/pkg/sanitizer"
)

var (
	flagInput         string
	flagOut           string
	flagReport        string
	flagReportSummary bool
	flagDryRun        bool
	flagFlat          bool
	flagOverwrite     bool
	flagCopyUnsup     bool
	flagExcludes      []string
	flagAllowExt      []string
	flagMaxFiles      int64
	flagMaxBytes      int64

	flagZipMaxMembers      int
	flagZipMaxMemberBytes  int64
	flagZipMaxTotalBytes   int64
	flagZipMaxRatio        float64
	flagNestedPolicy       string
	flagNestedMaxDepth     int
	flagNestedMaxTotal     int64
	flagRiskyPolicy        string
	flagFailOnWarnings     bool
	flagQuiet              bool
)

var rootCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Strip metadata from files and archives and flag risky content",
	Long: `sanitize walks a file, directory, or zip archive and rewrites each
member with its metadata removed: image metadata, the PDF document-info
dictionary and XMP packet, OOXML docProps entries, and unsafe archive
entries. PDF actions/JavaScript and OOXML macros are reported as
warnings, not removed; --risky-policy block suppresses such outputs.`,
	RunE: runSanitize,
}

func init() {
	rootCmd.Flags().StringVar(&flagInput, "input", "", "file, directory, or .zip archive to sanitize (required)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "output root (required unless --dry-run)")
	rootCmd.Flags().StringVar(&flagReport, "report", "-", "JSONL report sink path, or - for stdout")
	rootCmd.Flags().BoolVar(&flagReportSummary, "report-summary", false, "append a summary record to the report")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "do not write outputs; actions become would_*")
	rootCmd.Flags().BoolVar(&flagFlat, "flat", false, "flatten outputs into a single directory")
	rootCmd.Flags().BoolVar(&flagOverwrite, "overwrite", true, "permit overwriting existing outputs")
	rootCmd.Flags().BoolVar(&flagCopyUnsup, "copy-unsupported", false, "raw-copy unsupported content types instead of skipping")
	rootCmd.Flags().StringArrayVar(&flagExcludes, "exclude", nil, "glob pattern to prune during traversal (repeatable)")
	rootCmd.Flags().StringArrayVar(&flagAllowExt, "allow-ext", nil, "allowlist a detected content type by extension (repeatable)")
	rootCmd.Flags().Int64Var(&flagMaxFiles, "max-files", 0, "traversal ceiling on file count (0 = unlimited)")
	rootCmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "traversal ceiling on total bytes (0 = unlimited)")

	rootCmd.Flags().IntVar(&flagZipMaxMembers, "zip-max-members", 0, "archive ceiling on member count (0 = default)")
	rootCmd.Flags().Int64Var(&flagZipMaxMemberBytes, "zip-max-member-bytes", 0, "archive ceiling on one member's decompressed size (0 = default)")
	rootCmd.Flags().Int64Var(&flagZipMaxTotalBytes, "zip-max-total-bytes", 0, "archive ceiling on total decompressed size (0 = default)")
	rootCmd.Flags().Float64Var(&flagZipMaxRatio, "zip-max-compression-ratio", 0, "archive ceiling on decompressed/compressed ratio (0 = default)")
	rootCmd.Flags().StringVar(&flagNestedPolicy, "nested-archive-policy", "", "skip, copy, or sanitize archives found inside archives")
	rootCmd.Flags().IntVar(&flagNestedMaxDepth, "nested-archive-max-depth", 0, "recursion depth budget for nested archives (0 = default)")
	rootCmd.Flags().Int64Var(&flagNestedMaxTotal, "nested-archive-max-total-bytes", 0, "aggregate decompressed-byte budget across nested archives (0 = default)")

	rootCmd.Flags().StringVar(&flagRiskyPolicy, "risky-policy", "warn", "warn or block on risky findings")
	rootCmd.Flags().BoolVar(&flagFailOnWarnings, "fail-on-warnings", false, "exit 3 if any warning was emitted")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "suppress the human summary on stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildOptions turns the parsed flags into a sanitizer.Options, layering
// non-zero overrides on top of the documented §6 defaults.
func buildOptions() sanitizer.Options {
	opts := sanitizer.DefaultOptions()
	opts.Input = flagInput
	opts.Out = flagOut
	opts.Report = flagReport
	opts.ReportSummary = flagReportSummary
	opts.DryRun = flagDryRun
	opts.Flat = flagFlat
	opts.Overwrite = flagOverwrite
	opts.Excludes = flagExcludes
	opts.AllowExt = flagAllowExt
	opts.MaxFiles = flagMaxFiles
	opts.MaxBytes = flagMaxBytes
	opts.FailOnWarnings = flagFailOnWarnings
	opts.Quiet = flagQuiet
	opts.ToolVersion = version

	opts.Guardrails.CopyUnsupported = flagCopyUnsup
	if flagZipMaxMembers > 0 {
		opts.Guardrails.MaxMembers = flagZipMaxMembers
	}
	if flagZipMaxMemberBytes > 0 {
		opts.Guardrails.MaxMemberBytes = flagZipMaxMemberBytes
	}
	if flagZipMaxTotalBytes > 0 {
		opts.Guardrails.MaxTotalBytes = flagZipMaxTotalBytes
	}
	if flagZipMaxRatio > 0 {
		opts.Guardrails.MaxCompressionRatio = flagZipMaxRatio
	}
	if flagNestedPolicy != "" {
		opts.Guardrails.Nested = archive.NestedPolicy(flagNestedPolicy)
	}
	if flagNestedMaxDepth > 0 {
		opts.Guardrails.NestedMaxDepth = flagNestedMaxDepth
	}
	if flagNestedMaxTotal > 0 {
		opts.Guardrails.NestedMaxTotalBytes = flagNestedMaxTotal
	}
	if flagRiskyPolicy != "" {
		opts.RiskyPolicy = policy.Mode(flagRiskyPolicy)
	}

	return opts
}
