// Package search narrows an invalid document down to the smallest set of
// line spans whose removal makes the rest parse.
//
// The search never looks at an AST. It grows blocks of lines along
// indentation and keyword/bracket balance, asks the oracle whether a block
// parses, hides lines proven valid, and stops as soon as the text left outside
// the candidate blocks is valid. The final step picks the smallest combination
// of invalid candidates that still explains every error.
//
// An Engine is single-threaded and owns every Block it creates; blocks are
// never shared between goroutines.
package search
