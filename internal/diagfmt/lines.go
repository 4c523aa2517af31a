package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"faultline/internal/document"
)

// LineOutput describes one document line as the search sees it.
type LineOutput struct {
	Line         int    `json:"line" yaml:"line"`
	Indent       int    `json:"indent" yaml:"indent"`
	Empty        bool   `json:"empty,omitempty" yaml:"empty,omitempty"`
	Comment      bool   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Continuation bool   `json:"continuation,omitempty" yaml:"continuation,omitempty"`
	Hidden       bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Curly        int    `json:"curly,omitempty" yaml:"curly,omitempty"`
	Square       int    `json:"square,omitempty" yaml:"square,omitempty"`
	Paren        int    `json:"paren,omitempty" yaml:"paren,omitempty"`
	Keyword      int    `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Leaning      string `json:"leaning" yaml:"leaning"`
	Tokens       int    `json:"tokens" yaml:"tokens"`
	Text         string `json:"text,omitempty" yaml:"text,omitempty"`
}

func lineOutput(l *document.Line) LineOutput {
	b := l.Balance()
	return LineOutput{
		Line:         l.Index + 1,
		Indent:       l.Indent(),
		Empty:        l.Empty(),
		Comment:      l.Comment(),
		Continuation: l.Continuation(),
		Hidden:       l.Hidden(),
		Curly:        b.Curly,
		Square:       b.Square,
		Paren:        b.Paren,
		Keyword:      b.Keyword,
		Leaning:      b.Leaning().String(),
		Tokens:       len(l.Tokens()),
		Text:         l.Text(),
	}
}

// FormatLinesPretty выводит строки документа с их флагами и балансом
func FormatLinesPretty(w io.Writer, doc *document.Document) error {
	for _, l := range doc.Lines() {
		o := lineOutput(l)
		var flags []string
		if o.Empty {
			flags = append(flags, "empty")
		}
		if o.Comment {
			flags = append(flags, "comment")
		}
		if o.Continuation {
			flags = append(flags, "cont")
		}
		if o.Hidden {
			flags = append(flags, "hidden")
		}

		if _, err := fmt.Fprintf(w, "%4d: indent=%-3d %-6s {%d [%d (%d kw%+d",
			o.Line, o.Indent, o.Leaning, o.Curly, o.Square, o.Paren, o.Keyword); err != nil {
			return err
		}
		if len(flags) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(flags, ", "))
		}
		if text := strings.TrimRight(o.Text, "\n"); text != "" {
			fmt.Fprintf(w, "  %q", text)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func linesOutput(doc *document.Document) []LineOutput {
	out := make([]LineOutput, 0, doc.Len())
	for _, l := range doc.Lines() {
		out = append(out, lineOutput(l))
	}
	return out
}

// FormatLinesJSON выводит строки документа в JSON формате
func FormatLinesJSON(w io.Writer, doc *document.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(linesOutput(doc))
}

func FormatLinesYAML(w io.Writer, doc *document.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(linesOutput(doc)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
