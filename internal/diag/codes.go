package diag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Code identifies a diagnostic kind. The thousands digit selects the
// category and with it the printed prefix: 2002 is SYN2002.
type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnterminatedString Code = 1001

	// Синтаксические
	SynInfo           Code = 2000
	SynInvalidBlock   Code = 2001
	SynMissingEnd     Code = 2002
	SynMissingKeyword Code = 2003
	SynMissingCloser  Code = 2004
	SynMissingOpener  Code = 2005

	// Поиск
	SrchInfo          Code = 3000
	SrchTimeout       Code = 3001
	SrchStall         Code = 3002
	SrchNotMinimal    Code = 3003
	SrchOracleFailure Code = 3004

	IOInfo          Code = 4000
	IOLoadFileError Code = 4001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

// categoryPrefix is indexed by Code/1000; empty entries are unused ranges.
var categoryPrefix = [...]string{1: "LEX", 2: "SYN", 3: "SRCH", 4: "IO", 6: "OBS"}

var titles = map[Code]string{
	LexInfo:               "Lexical information",
	LexUnterminatedString: "Unterminated literal",
	SynInfo:               "Syntax information",
	SynInvalidBlock:       "Syntax error",
	SynMissingEnd:         "Unmatched keyword, missing `end'",
	SynMissingKeyword:     "Unmatched `end', missing keyword",
	SynMissingCloser:      "Unmatched opening bracket",
	SynMissingOpener:      "Unmatched closing bracket",
	SrchInfo:              "Search information",
	SrchTimeout:           "Search timed out",
	SrchStall:             "Search stopped early",
	SrchNotMinimal:        "Reported blocks may not be minimal",
	SrchOracleFailure:     "Syntax oracle failed",
	IOInfo:                "I/O information",
	IOLoadFileError:       "I/O load file error",
	ObsInfo:               "Observability information",
	ObsTimings:            "Pipeline timings",
}

func (c Code) prefix() string {
	if i := int(c) / 1000; i < len(categoryPrefix) {
		return categoryPrefix[i]
	}
	return ""
}

// ID is the printed form, E0000 for codes outside every category.
func (c Code) ID() string {
	p := c.prefix()
	if p == "" {
		return "E0000"
	}
	return p + strconv.Itoa(int(c))
}

func (c Code) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "Unknown error"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts an ID such as "syn2002" or a bare number, case-insensitively.
// Only known codes parse.
func ParseCode(s string) (Code, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	digits := strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return UnknownCode, false
	}
	c := Code(n)
	if _, ok := titles[c]; !ok {
		return UnknownCode, false
	}
	if letters := s[:len(s)-len(digits)]; letters != "" && letters != c.prefix() {
		return UnknownCode, false
	}
	return c, true
}

// Codes lists every known code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(titles))
	for c := range titles {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
