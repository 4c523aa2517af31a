package diagfmt

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"faultline/internal/diag"
	"faultline/internal/source"
)

// YAML writes the same structure as JSON in YAML form.
func YAML(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildDiagnosticsOutput(bag, fs, opts)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
