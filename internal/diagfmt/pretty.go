package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"faultline/internal/diag"
	"faultline/internal/source"
)

const blockMarker = "❯"

type palette struct {
	err, warn, info, marker, lineNo, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		marker: color.New(color.FgRed, color.Bold),
		lineNo: color.New(color.Faint),
		note:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.marker, p.lineNo, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строки блока, помеченные ❯, вместе с охватывающими строками, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	if int(d.Primary.File) >= fs.Len() {
		fmt.Fprintf(w, "%s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		return
	}
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		formatPath(f, fs, opts.PathMode), start.Line, start.Col,
		pal.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)

	if !d.Primary.Empty() {
		first, last := int(start.Line)-1, int(end.Line)-1
		// span блока кончается на '\n': последняя строка не входит
		if end.Col == 1 && last > first {
			last--
		}
		printLines(w, f, d, first, last, opts, pal)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			msg := strings.TrimSpace(n.Msg)
			if int(n.Span.File) >= fs.Len() {
				fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), msg)
				continue
			}
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"),
				formatPath(fs.Get(n.Span.File), fs, opts.PathMode), ns.Line, ns.Col, msg)
		}
	}
}

// printLines prints the physical lines selected for the block first..last
// (0-based), numbering them 1-based and marking the block lines.
func printLines(w io.Writer, f *source.File, d diag.Diagnostic, first, last int, opts PrettyOpts, pal palette) {
	var picked []int
	if doc, ok := opts.Sources[d.Primary.File]; ok {
		for _, i := range CaptureContext(doc, first, last) {
			// продолжения склеенной строки печатаются отдельно
			n := strings.Count(strings.TrimSuffix(doc.Line(i).Text(), "\n"), "\n")
			for k := 0; k <= n; k++ {
				picked = append(picked, i+k)
			}
		}
	} else {
		for i := max(first-opts.Context, 0); i <= min(last+opts.Context, f.LineCount()-1); i++ {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		return
	}

	width := len(strconv.Itoa(picked[len(picked)-1] + 1))
	prev := -1
	for _, i := range picked {
		if i == prev {
			continue
		}
		prev = i
		lineNum, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			break
		}
		text := displayText(f.Line(lineNum), opts.Width)
		mark := " "
		if i >= first && i <= last {
			mark = pal.marker.Sprint(blockMarker)
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, pal.lineNo.Sprintf("%*d", width, i+1), text)
	}
}

// displayText normalizes text to NFC, expands tabs and truncates it to width
// display cells when width > 0.
func displayText(text string, width int) string {
	text = norm.NFC.String(strings.ReplaceAll(text, "\t", "    "))
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}
