package diagfmt

import (
	"faultline/internal/document"
	"faultline/internal/source"
)

// PathMode selects how file paths are printed. The zero value is PathModeAuto.
type PathMode string

const (
	PathModeAuto     PathMode = "auto" // long absolute paths shrink to the base name
	PathModeAbsolute PathMode = "absolute"
	PathModeRelative PathMode = "relative" // against FileSet.BaseDir
	PathModeBasename PathMode = "basename"
)

// ParsePathMode accepts the --path-mode spellings; "" is auto.
func ParsePathMode(s string) (PathMode, bool) {
	switch m := PathMode(s); m {
	case "":
		return PathModeAuto, true
	case PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename:
		return m, true
	}
	return PathModeAuto, false
}

// Sources maps files to their documents; Pretty prints the enclosing lines
// of a block from them.
type Sources map[source.FileID]*document.Document

type PrettyOpts struct {
	Color    bool
	Context  int // строк вокруг блока, когда документа нет в Sources
	PathMode PathMode
	Width    int // 0 - без обрезки
	// ShowNotes prints the parser messages attached to a diagnostic.
	ShowNotes bool
	Sources   Sources
}

// JSONOpts configures the JSON and YAML output.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	Max              int // ограничивает вывод, не Bag
	IncludeNotes     bool
	// IncludeSource adds the text of the primary span, one entry per line.
	IncludeSource bool
}

type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if mode == "" {
		mode = PathModeAuto
	}
	base := ""
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return f.FormatPath(string(mode), base)
}
