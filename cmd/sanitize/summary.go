package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/praetorian-inc/sanitize/pkg/sanitizer"
)

// colorEnabled mirrors the teacher's --color auto/always/never pattern,
// collapsed to the single "respect NO_COLOR and the output's TTY-ness"
// rule this CLI exposes no --color flag to override.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// printSummary writes one line describing the run's outcome to stderr,
// colored by severity: green for a clean run, yellow for strict-warning
// exits, red for error/blocked exits.
func printSummary(w io.Writer, opts sanitizer.Options, code int) {
	ok := color.New(color.FgHiGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgHiRed)
	heading := color.New(color.Bold)

	if !colorEnabled() {
		ok.DisableColor()
		warn.DisableColor()
		fail.DisableColor()
		heading.DisableColor()
	}

	mode := "sanitized"
	if opts.DryRun {
		mode = "dry-run"
	}

	switch code {
	case 0:
		fmt.Fprintf(w, "%s %s (exit 0)\n", ok.Sprint("ok:"), heading.Sprint(mode))
	case 2:
		fmt.Fprintf(w, "%s errors or blocked outputs encountered (exit 2)\n", fail.Sprint("failed:"))
	case 3:
		fmt.Fprintf(w, "%s warnings emitted under --fail-on-warnings (exit 3)\n", warn.Sprint("warn:"))
	default:
		fmt.Fprintf(w, "%s unexpected exit code %d\n", fail.Sprint("failed:"), code)
	}
}
