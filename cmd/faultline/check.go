package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"faultline/internal/driver"
	"faultline/internal/trace"
)

// errSyntaxFound makes the process exit with 1 after the report was printed.
var errSyntaxFound = errors.New("syntax errors found")

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.rb|directory|->",
	Short: "Find the blocks behind syntax errors",
	Long: `Find the smallest set of blocks that makes a file invalid. A directory is
searched for files matching --include (default **/*.rb); "-" reads stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml|short|sarif)")
	checkCmd.Flags().Int("context", 2, "lines of context around a block without enclosing lines")
	checkCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("no-notes", false, "omit the parser messages attached to each block")
	checkCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
	checkCmd.Flags().String("metrics-file", "", "write Prometheus metrics of the run to this textfile")
	registerAnalyzeFlags(checkCmd)
}

// runCheck analyzes stdin, a file or a directory, prints the report and
// fails when any file has syntax errors.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	target := args[0]
	settings, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	noNotes, err := cmd.Flags().GetBool("no-notes")
	if err != nil {
		return fmt.Errorf("failed to get no-notes flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	tui, err := useTUI(uiValue)
	if err != nil {
		return err
	}
	settings.render.notes = !noNotes
	settings.render.quiet = quiet
	settings.render.args = os.Args

	span := trace.Begin(settings.analyze.Tracer, trace.ScopeDriver, "check", 0)
	cmd.SetContext(trace.WithParent(cmd.Context(), span))
	results, err := analyzeTarget(cmd, target, settings, tui)
	span.WithExtra("files", strconv.Itoa(len(results))).End(target)
	if err != nil {
		return err
	}

	if err := renderResults(cmd.OutOrStdout(), results, settings.render); err != nil {
		return err
	}
	if settings.render.timings {
		printTimings(cmd.ErrOrStderr(), results, settings.render)
	}
	if err := settings.finish(); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	for _, r := range results {
		if !r.Valid() {
			cmd.SilenceErrors = true
			return errSyntaxFound
		}
	}
	return nil
}

func analyzeTarget(cmd *cobra.Command, target string, s *runSettings, tui bool) ([]*driver.Result, error) {
	ctx := cmd.Context()
	logger := loggerFrom(ctx)

	if target == "-" {
		src, err := readStdin(cmd)
		if err != nil {
			return nil, err
		}
		res, err := driver.AnalyzeSource(ctx, stdinName, string(src), s.analyze)
		return single(ctx, res, err)
	}

	st, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		res, err := driver.AnalyzeFile(ctx, target, s.analyze)
		return single(ctx, res, err)
	}

	if tui {
		m, err := driver.NewMatcher(s.analyze.Include, s.analyze.Exclude)
		if err != nil {
			return nil, err
		}
		files, err := driver.ListFiles(target, m)
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		results, err := analyzeDirWithUI(ctx, "checking "+target, target, files, s.analyze)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		return results, nil
	}

	results, err := driver.AnalyzeDir(ctx, target, s.analyze)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if len(results) == 0 {
		logger.Warn("no files matched", "dir", target, "include", s.analyze.Include)
	}
	return results, nil
}

// single keeps a timed-out result: it carries the timeout diagnostic. The
// trace of the command span in ctx is dumped for it.
func single(ctx context.Context, res *driver.Result, err error) ([]*driver.Result, error) {
	switch {
	case err == nil:
		return []*driver.Result{res}, nil
	case errors.Is(err, driver.ErrSearchTimeout) && res != nil:
		dumpTraceRing("search timeout", trace.ParentFrom(ctx))
		return []*driver.Result{res}, nil
	default:
		return nil, err
	}
}
