package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"faultline/internal/diag"
	"faultline/internal/source"
)

// Location is a span in machine form. Line and column fields are filled only
// when positions were requested.
type Location struct {
	File      string `json:"file" yaml:"file"`
	StartByte uint32 `json:"start_byte" yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

type NoteRecord struct {
	Message  string   `json:"message" yaml:"message"`
	Location Location `json:"location" yaml:"location"`
}

type Record struct {
	Severity string       `json:"severity" yaml:"severity"`
	Code     string       `json:"code" yaml:"code"`
	Message  string       `json:"message" yaml:"message"`
	Location Location     `json:"location" yaml:"location"`
	Source   []string     `json:"source,omitempty" yaml:"source,omitempty"`
	Notes    []NoteRecord `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DiagnosticsOutput is the document written by JSON and YAML.
// Dropped counts diagnostics the bag refused past its limit.
type DiagnosticsOutput struct {
	Diagnostics []Record `json:"diagnostics" yaml:"diagnostics"`
	Count       int      `json:"count" yaml:"count"`
	Dropped     int      `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

type locator struct {
	fs        *source.FileSet
	mode      PathMode
	positions bool
}

func (l locator) known(span source.Span) bool {
	return int(span.File) < l.fs.Len()
}

func (l locator) locate(span source.Span) Location {
	loc := Location{StartByte: span.Start, EndByte: span.End}
	if !l.known(span) {
		return loc
	}
	loc.File = formatPath(l.fs.Get(span.File), l.fs, l.mode)
	if l.positions {
		from, to := l.fs.Resolve(span)
		loc.StartLine, loc.StartCol = from.Line, from.Col
		loc.EndLine, loc.EndCol = to.Line, to.Col
	}
	return loc
}

// text splits the covered source into lines, dropping the final terminator.
func (l locator) text(span source.Span) []string {
	if !l.known(span) || span.Empty() {
		return nil
	}
	content := l.fs.Get(span.File).Content
	if int(span.End) > len(content) {
		return nil
	}
	body := strings.TrimSuffix(string(content[span.Start:span.End]), "\n")
	return strings.Split(body, "\n")
}

func (l locator) notes(d diag.Diagnostic) []NoteRecord {
	if len(d.Notes) == 0 {
		return nil
	}
	out := make([]NoteRecord, 0, len(d.Notes))
	for _, n := range d.Notes {
		out = append(out, NoteRecord{Message: n.Msg, Location: l.locate(n.Span)})
	}
	return out
}

// BuildDiagnosticsOutput converts bag into the serializable document.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	loc := locator{fs: fs, mode: opts.PathMode, positions: opts.IncludePositions}
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}

	out := DiagnosticsOutput{Diagnostics: make([]Record, 0, len(items)), Dropped: bag.Dropped()}
	for _, d := range items {
		rec := Record{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: loc.locate(d.Primary),
		}
		if opts.IncludeSource {
			rec.Source = loc.text(d.Primary)
		}
		// payload таймингов живёт в заметке
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			rec.Notes = loc.notes(d)
		}
		out.Diagnostics = append(out.Diagnostics, rec)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes bag as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
