package diag

import "faultline/internal/source"

// Reporter receives diagnostics from the driver.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adds to Bag; a nil Bag swallows everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter forwards a diagnostic only the first time its code, severity,
// primary span and message are seen. Blocks with the same text found by
// different passes report once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]bool
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[dedupKey]bool{}}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey{code: d.Code, sev: d.Severity, span: d.Primary, msg: d.Message}
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	if r.next != nil {
		r.next.Report(d)
	}
}

// ReportBuilder collects notes for a diagnostic until Emit.
type ReportBuilder struct {
	to      Reporter
	d       Diagnostic
	emitted bool
}

func report(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevInfo, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what Emit would report.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
