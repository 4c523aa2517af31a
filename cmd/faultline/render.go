package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"faultline/internal/diagfmt"
	"faultline/internal/driver"
	"faultline/internal/version"
)

type renderOptions struct {
	format   string
	color    bool
	context  int
	pathMode diagfmt.PathMode
	notes    bool
	timings  bool
	quiet    bool
	args     []string
}

func displayPath(r *driver.Result, opts renderOptions) string {
	if r.File == nil {
		return r.Path
	}
	return r.File.FormatPath(string(opts.pathMode), r.FileSet.BaseDir())
}

// renderResults prints results in the requested format. A single result is
// printed on its own; several are grouped per file.
func renderResults(out io.Writer, results []*driver.Result, opts renderOptions) error {
	for _, r := range results {
		r.Bag.Sort()
	}
	switch opts.format {
	case "pretty", "":
		renderPretty(out, results, opts)
		return nil
	case "short":
		for _, r := range results {
			if err := diagfmt.Short(out, r.Bag, r.FileSet, opts.notes); err != nil {
				return err
			}
		}
		return nil
	case "json", "yaml":
		return renderStructured(out, results, opts)
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "faultline",
			ToolVersion:    version.Current(),
			InvocationArgs: opts.args,
		}
		for _, r := range results {
			if err := diagfmt.Sarif(out, r.Bag, r.FileSet, meta); err != nil {
				return fmt.Errorf("failed to format sarif: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
}

func prettyOpts(r *driver.Result, opts renderOptions) diagfmt.PrettyOpts {
	po := diagfmt.PrettyOpts{
		Color:     opts.color,
		Context:   opts.context,
		PathMode:  opts.pathMode,
		ShowNotes: opts.notes,
	}
	if r.Document != nil && r.File != nil {
		po.Sources = diagfmt.Sources{r.File.ID: r.Document}
	}
	return po
}

func renderPretty(out io.Writer, results []*driver.Result, opts renderOptions) {
	invalid := 0
	printed := 0
	for _, r := range results {
		if !r.Valid() {
			invalid++
		}
		if r.Bag.Len() == 0 {
			continue
		}
		if printed > 0 {
			fmt.Fprintln(out)
		}
		if len(results) > 1 {
			fmt.Fprintf(out, "== %s ==\n", displayPath(r, opts))
		}
		diagfmt.Pretty(out, r.Bag, r.FileSet, prettyOpts(r, opts))
		if n := r.Bag.Dropped(); n > 0 {
			fmt.Fprintf(out, "... %d more not shown (--max-diagnostics)\n", n)
		}
		printed++
	}
	if opts.quiet {
		return
	}
	switch {
	case len(results) > 1:
		if printed > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d files checked, %d with syntax errors\n", len(results), invalid)
	case len(results) == 1 && printed == 0:
		fmt.Fprintf(out, "%s: no syntax errors\n", displayPath(results[0], opts))
	}
}

func renderStructured(out io.Writer, results []*driver.Result, opts renderOptions) error {
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         opts.pathMode,
		IncludeNotes:     opts.notes,
		IncludeSource:    true,
	}
	if len(results) == 1 {
		r := results[0]
		if opts.format == "yaml" {
			return diagfmt.YAML(out, r.Bag, r.FileSet, jsonOpts)
		}
		return diagfmt.JSON(out, r.Bag, r.FileSet, jsonOpts)
	}

	output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
	for _, r := range results {
		output[displayPath(r, opts)] = diagfmt.BuildDiagnosticsOutput(r.Bag, r.FileSet, jsonOpts)
	}
	if opts.format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return enc.Close()
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode diagnostics output: %w", err)
	}
	return nil
}
