package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"faultline/internal/diagfmt"
	"faultline/internal/document"
	"faultline/internal/source"
)

const stdinName = "<stdin>"

var linesCmd = &cobra.Command{
	Use:   "lines [flags] <file.rb|->",
	Short: "Show how a file is split into logical lines",
	Long: `Print every logical line with its indentation, bracket balance and flags.
Lines joined by a continuation or hidden inside a heredoc are marked.`,
	Args: cobra.ExactArgs(1),
	RunE: runLines,
}

func init() {
	linesCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml)")
}

type linesWriter func(io.Writer, *document.Document) error

var linesWriters = map[string]linesWriter{
	"pretty": diagfmt.FormatLinesPretty,
	"json":   diagfmt.FormatLinesJSON,
	"yaml":   diagfmt.FormatLinesYAML,
}

func runLines(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	write, ok := linesWriters[format]
	if !ok {
		return fmt.Errorf("unknown format: %s", format)
	}

	fs := source.NewFileSet()
	id, err := loadInput(cmd, fs, args[0])
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), document.FromFile(fs.Get(id)))
}

// loadInput adds path to fs; "-" reads standard input.
func loadInput(cmd *cobra.Command, fs *source.FileSet, path string) (source.FileID, error) {
	if path != "-" {
		id, err := fs.Load(path)
		if err != nil {
			return 0, fmt.Errorf("failed to load file: %w", err)
		}
		return id, nil
	}
	src, err := readStdin(cmd)
	if err != nil {
		return 0, err
	}
	return fs.AddVirtual(stdinName, src), nil
}

func readStdin(cmd *cobra.Command) ([]byte, error) {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return src, nil
}
