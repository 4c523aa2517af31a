package document

import (
	"strings"

	"faultline/internal/lexer"
	"faultline/internal/source"
	"faultline/internal/token"
)

// Document is a source file split into lines with lexical facts attached.
type Document struct {
	file  *source.File
	lines []*Line
	lex   lexer.Result
}

// New builds a document from in-memory text. The text is kept byte for byte.
func New(src string) *Document {
	fs := source.NewFileSet()
	return FromFile(fs.Get(fs.AddVirtual("<memory>", []byte(src))))
}

// FromFile lexes file once and builds its lines.
func FromFile(file *source.File) *Document {
	doc := &Document{
		file: file,
		lex:  lexer.Lex(file, lexer.Options{}),
	}
	doc.split()
	doc.attachTokens()
	doc.classify()
	doc.join()
	return doc
}

// File returns the underlying source file.
func (d *Document) File() *source.File { return d.file }

// Lines returns every line in order. The slice must not be modified.
func (d *Document) Lines() []*Line { return d.lines }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns the line at index i.
func (d *Document) Line(i int) *Line { return d.lines[i] }

// Source returns the original text.
func (d *Document) Source() string { return string(d.file.Content) }

// LexErrors is the number of problems the lexer reported (unterminated literals...).
func (d *Document) LexErrors() int { return len(d.lex.Problems) }

// VisibleText concatenates the visible lines for which exclude returns false.
func (d *Document) VisibleText(exclude func(*Line) bool) string {
	var sb strings.Builder
	for _, l := range d.lines {
		if l.hidden || (exclude != nil && exclude(l)) {
			continue
		}
		sb.WriteString(l.text)
	}
	return sb.String()
}

// Reset makes every line visible again.
func (d *Document) Reset() {
	for _, l := range d.lines {
		l.hidden = false
	}
}

func (d *Document) split() {
	content := d.file.Content
	n := d.file.LineCount()
	d.lines = make([]*Line, 0, n)
	for i := range n {
		start, end := d.file.LineBounds(i)
		d.lines = append(d.lines, &Line{
			Index: i,
			text:  string(content[start:end]),
			span:  source.Span{File: d.file.ID, Start: start, End: end},
		})
	}
}

func (d *Document) attachTokens() {
	for _, tok := range d.lex.Tokens {
		if tok.Kind == token.EOF || tok.Line < 0 || tok.Line >= len(d.lines) {
			continue
		}
		l := d.lines[tok.Line]
		l.tokens = append(l.tokens, tok)
	}
}

func (d *Document) classify() {
	for i, l := range d.lines {
		var flags lexer.LineFlags
		if i < len(d.lex.Lines) {
			flags = d.lex.Lines[i]
		}
		l.comment = flags&(lexer.LineBlockComment|lexer.LineData) != 0 || commentOnly(l)
		l.empty = l.comment || blank(l.text)
		if !l.empty {
			l.indent = indentOf(l.text)
		}
		l.balance = BalanceOf(l.tokens)
	}
}

func commentOnly(l *Line) bool {
	if blank(l.text) {
		return false
	}
	for _, tok := range l.tokens {
		if tok.Kind != token.Comment && tok.Kind != token.Newline {
			return false
		}
	}
	return len(l.tokens) > 0
}

// join folds continuation lines into the line that starts them:
// lines swallowed by literals or heredocs, lines after a trailing `\`,
// and leading-dot method chains.
func (d *Document) join() {
	for i := 1; i < len(d.lines); i++ {
		if !d.joinsPrevious(i) {
			continue
		}
		head := i - 1
		for d.lines[head].continuation {
			head--
		}
		h, f := d.lines[head], d.lines[i]
		h.text += f.text
		h.tokens = append(h.tokens, f.tokens...)
		h.balance = h.balance.Add(f.balance)
		h.span = h.span.Cover(f.span)
		h.empty = h.empty && f.empty
		h.comment = h.comment && f.comment
		if !h.empty {
			h.indent = indentOf(h.text)
		}

		f.text = ""
		f.tokens = nil
		f.balance = Balance{}
		f.empty = true
		f.comment = false
		f.indent = 0
		f.continuation = true
	}
	// последователи получают пустой span в конце группы
	for i, l := range d.lines {
		if l.continuation {
			head := i - 1
			for d.lines[head].continuation {
				head--
			}
			end := d.lines[head].span.End
			l.span = source.Span{File: d.file.ID, Start: end, End: end}
		}
	}
}

func (d *Document) joinsPrevious(i int) bool {
	if i < len(d.lex.Lines) && d.lex.Lines[i].Joined() {
		return true
	}
	l, prev := d.lines[i], d.lines[i-1]
	if l.comment || prev.empty && !prev.continuation {
		return false
	}
	for _, tok := range l.tokens {
		if tok.Kind == token.Comment {
			continue
		}
		return tok.Kind == token.Dot
	}
	return false
}
