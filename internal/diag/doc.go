// Package diag defines the diagnostic model shared by the analysis driver and
// the renderers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with a stable string form.
//   - Message: human oriented text; keep it short.
//   - Primary: the source.Span of the invalid block.
//   - Notes: secondary spans and messages, e.g. the parser's own complaints.
//
// Producers emit through a Reporter; BagReporter collects into a Bag with a
// limit, DedupReporter drops repeats. Formatting lives in internal/diagfmt.
//
// # Codes
//
// Codes are grouped by range: LEX1xxx for lexical problems, SYN2xxx for syntax
// errors, SRCH3xxx for the search itself, IO4xxx for file access and OBS6xxx
// for observability output.
package diag
