// Package explain turns the pair counts of a broken document into a short,
// human guess at what is missing. When every pair is matched it falls back to
// the messages of the parser behind the oracle.
package explain

import (
	"fmt"
	"strings"

	"faultline/internal/document"
	"faultline/internal/oracle"
)

// Category is the kind of problem a reason describes.
type Category uint8

const (
	CategoryUnknown Category = iota
	// CategoryMissingEnd: more block keywords than `end`.
	CategoryMissingEnd
	// CategoryMissingKeyword: more `end` than block keywords.
	CategoryMissingKeyword
	// CategoryMissingCloser: an opening bracket without its closer.
	CategoryMissingCloser
	// CategoryMissingOpener: a closing bracket without its opener.
	CategoryMissingOpener
)

func (c Category) String() string {
	switch c {
	case CategoryMissingEnd:
		return "missing-end"
	case CategoryMissingKeyword:
		return "missing-keyword"
	case CategoryMissingCloser:
		return "missing-closer"
	case CategoryMissingOpener:
		return "missing-opener"
	default:
		return "unknown"
	}
}

// Explanation is the classifier verdict. Missing, Categories and Reasons are
// parallel when the pair counts decide; parser messages carry CategoryUnknown.
type Explanation struct {
	Missing    []string
	Categories []Category
	Reasons    []string
}

// Primary is the category of the first reason, CategoryUnknown if there is none.
func (e Explanation) Primary() Category {
	if len(e.Categories) == 0 {
		return CategoryUnknown
	}
	return e.Categories[0]
}

// Unknown reports whether the pair counts could not name a cause.
func (e Explanation) Unknown() bool {
	return len(e.Missing) == 0
}

// String joins the reasons, one per line.
func (e Explanation) String() string {
	return strings.Join(e.Reasons, "\n")
}

type pair struct {
	open, close string
	count       func(document.Balance) int
}

var pairs = []pair{
	{"{", "}", func(b document.Balance) int { return b.Curly }},
	{"[", "]", func(b document.Balance) int { return b.Square }},
	{"(", ")", func(b document.Balance) int { return b.Paren }},
}

// Classify sums the pair counts of lines and names what each unmatched pair is
// missing. parserMessages are used only when every pair is matched.
func Classify(lines []*document.Line, parserMessages []string) Explanation {
	var total document.Balance
	for _, l := range lines {
		total = total.Add(l.Balance())
	}

	var e Explanation
	add := func(missing string, c Category, reason string) {
		e.Missing = append(e.Missing, missing)
		e.Categories = append(e.Categories, c)
		e.Reasons = append(e.Reasons, reason)
	}

	for _, p := range pairs {
		switch n := p.count(total); {
		case n > 0:
			add(p.close, CategoryMissingCloser, fmt.Sprintf("Unmatched `%s', missing `%s' ?", p.open, p.close))
		case n < 0:
			add(p.open, CategoryMissingOpener, fmt.Sprintf("Unmatched `%s', missing `%s' ?", p.close, p.open))
		}
	}
	switch {
	case total.Keyword > 0:
		add("end", CategoryMissingEnd, "Unmatched keyword, missing `end' ?")
	case total.Keyword < 0:
		add("keyword", CategoryMissingKeyword, "Unmatched `end', missing keyword (`do', `def`, `if`, etc.) ?")
	}

	if len(e.Missing) > 0 {
		return e
	}
	for _, msg := range parserMessages {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			continue
		}
		e.Categories = append(e.Categories, CategoryUnknown)
		e.Reasons = append(e.Reasons, msg)
	}
	return e
}

// Explain classifies doc. When the pair counts are balanced and o can explain
// itself, its messages for the whole document become the reasons.
func Explain(doc *document.Document, o oracle.Oracle) (Explanation, error) {
	e := Classify(doc.Lines(), nil)
	if !e.Unknown() {
		return e, nil
	}
	ex, ok := o.(oracle.Explainer)
	if !ok {
		return e, nil
	}
	rep, err := ex.Check(doc.Source())
	if err != nil {
		return e, fmt.Errorf("explain: %w", err)
	}
	return Classify(doc.Lines(), rep.Messages()), nil
}
