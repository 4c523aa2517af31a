package main

import (
	"os"

	"github.com/spf13/cobra"

	"faultline/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "faultline",
	Short: "Locate the block behind a syntax error",
	Long: `faultline narrows a syntax error down to the smallest set of blocks that,
once removed, leave the rest of the file parsing`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := setupLogger(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withLogger(cmd.Context(), logger))
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return setupProfiling(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopProfiling(cmd)
		flushTracing()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(linesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(codesCmd)

	registerGlobalFlags(rootCmd)
}

// main sets the version and executes the root command.
// Any error, including "syntax errors found", exits with status 1.
func main() {
	// версия для автоматического флага --version
	rootCmd.Version = version.Current()

	if err := rootCmd.Execute(); err != nil {
		stopProfiling(rootCmd)
		flushTracing()
		os.Exit(1)
	}
}

func registerGlobalFlags(root *cobra.Command) {
	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = config or unlimited)")
	root.PersistentFlags().String("config", "", "path to faultline.toml (default: search upwards from the input)")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), default warn or $FAULTLINE_LOG_LEVEL")
	root.PersistentFlags().String("log-format", "text", "log format (text|json)")

	root.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "events kept in the trace ring buffer")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 = off)")

	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

