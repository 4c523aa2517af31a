package diag

import "strings"

// Severity orders diagnostics: an error fails the file, warnings and infos
// do not.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{"info", "warning", "error"}

// String is the upper-case form printed by the pretty renderer.
func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

// Label is the lower-case form of short and machine output.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "info"
}

// ParseSeverity accepts String and Label forms.
func ParseSeverity(s string) (Severity, bool) {
	for i, label := range severityLabels {
		if label == s || strings.ToUpper(label) == s {
			return Severity(i), true
		}
	}
	return SevInfo, false
}
