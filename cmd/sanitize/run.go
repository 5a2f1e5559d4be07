package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/sanitize/pkg/sanitizer"
)

func runSanitize(cmd *cobra.Command, args []string) error {
	if flagInput == "" {
		return fmt.Errorf("--input is required")
	}
	if flagOut == "" && !flagDryRun {
		return fmt.Errorf("--out is required unless --dry-run is set")
	}

	opts := buildOptions()

	code, err := sanitizer.Run(context.Background(), opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if !opts.Quiet {
		printSummary(cmd.ErrOrStderr(), opts, code)
	}

	if code != 0 {
		os.Exit(code)
	}
	return nil
}
