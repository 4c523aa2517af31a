package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"faultline/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file.rb|directory>",
	Short: "Re-check files whenever they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml|short|sarif)")
	watchCmd.Flags().Int("context", 2, "lines of context around a block without enclosing lines")
	watchCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is checked")
	registerAnalyzeFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(args[0], watch.Options{
		Debounce: debounce,
		Analyze:  settings.analyze,
		Logger:   loggerFrom(ctx),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	return w.Run(ctx, func(u watch.Update) {
		fmt.Fprintf(errOut, "[%s] %s\n", time.Now().Format(time.TimeOnly), u.Path)
		results, err := single(ctx, u.Result, u.Err)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return
		}
		if err := renderResults(out, results, settings.render); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	})
}
