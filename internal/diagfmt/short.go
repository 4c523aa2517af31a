package diagfmt

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"faultline/internal/diag"
	"faultline/internal/source"
)

type shortEntry struct {
	label string
	code  string
	path  string
	pos   source.LineCol
	msg   string
}

func (e shortEntry) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", e.label, e.code, e.path, e.pos.Line, e.pos.Col, e.msg)
}

// Short writes one line per diagnostic: "severity CODE path:line:col message".
// Notes follow as "note" lines when includeNotes is set. Paths are relative
// to the file set base so that the output is stable across machines.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	for _, line := range ShortLines(bag.Items(), fs, includeNotes) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShortLines renders diags sorted by path and position. Spans of files
// missing from fs are skipped.
func ShortLines(diags []diag.Diagnostic, fs *source.FileSet, includeNotes bool) []string {
	var entries []shortEntry
	add := func(label string, code diag.Code, sp source.Span, msg string) {
		if fs == nil || int(sp.File) >= fs.Len() {
			return
		}
		start, _ := fs.Resolve(sp)
		entries = append(entries, shortEntry{
			label: label,
			code:  code.ID(),
			path:  strings.TrimPrefix(formatPath(fs.Get(sp.File), fs, PathModeRelative), "./"),
			pos:   start,
			msg:   oneLine(msg),
		})
	}
	for _, d := range diags {
		add(d.Severity.Label(), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(entries, func(a, b shortEntry) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
		)
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// oneLine folds line breaks of any style into spaces.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
