package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"faultline/internal/hook"
)

var loadCmd = &cobra.Command{
	Use:   "load [flags] <file.rb>...",
	Short: "Load files through the syntax-checking loader",
	Long: `Load every file with the configured oracle. A file that fails to parse is
diagnosed and its error is printed together with the invalid blocks`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().String("metrics-file", "", "write Prometheus metrics of the run to this textfile")
	registerAnalyzeFlags(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	loader := hook.Wrap(hook.OracleLoader(settings.analyze.Oracle), hook.Options{
		Analyze: settings.analyze,
		Metrics: settings.analyze.Metrics,
		Logger:  loggerFrom(cmd.Context()),
	})

	failed := 0
	for _, path := range args {
		err := loader.Load(cmd.Context(), path)
		if err == nil {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: loaded\n", path)
			}
			continue
		}
		failed++
		var se *hook.SyntaxError
		if errors.As(err, &se) {
			fmt.Fprintln(cmd.ErrOrStderr(), se.Error())
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
	}
	if err := settings.finish(); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if failed > 0 {
		cmd.SilenceErrors = true
		return errSyntaxFound
	}
	return nil
}
