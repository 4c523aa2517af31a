package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"faultline/internal/prof"
)

var profSession *prof.Session

// setupProfiling starts the profiles requested by the persistent profiling flags.
func setupProfiling(cmd *cobra.Command) error {
	root := cmd.Root()

	var opts prof.Options
	var err error
	if opts.CPU, err = root.PersistentFlags().GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = root.PersistentFlags().GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = root.PersistentFlags().GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	profSession, err = prof.Start(opts)
	return err
}

// stopProfiling is called from PersistentPostRun and, on failure, from main.
func stopProfiling(cmd *cobra.Command) {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
	}
	profSession = nil
}
