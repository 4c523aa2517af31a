package source

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileFlags records how the content was read.
type FileFlags uint8

const (
	// FileVirtual marks content that did not come from disk: stdin, tests,
	// require hook callers.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileUTF16 marks content decoded from UTF-16 to UTF-8.
	FileUTF16
)

// File is one analyzed file. Content is UTF-8 with LF line endings unless
// the file is virtual.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Flags   FileFlags

	newlines []uint32 // offsets of every '\n'
}

func newFile(id FileID, path string, content []byte, flags FileFlags) *File {
	f := &File{ID: id, Path: path, Content: content, Flags: flags}
	for i, b := range content {
		if b == '\n' {
			f.newlines = append(f.newlines, uint32(i))
		}
	}
	return f
}

// LineCount counts lines; a last line without '\n' counts too.
func (f *File) LineCount() int {
	n := len(f.newlines)
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// LineBounds returns the byte range of the 0-based line i including its '\n'.
func (f *File) LineBounds(i int) (start, end uint32) {
	if i > 0 {
		start = f.newlines[i-1] + 1
	}
	end = uint32(len(f.Content))
	if i < len(f.newlines) {
		end = f.newlines[i] + 1
	}
	return start, end
}

// LineSpan returns the span of the 1-based line n without its '\n'.
func (f *File) LineSpan(n uint32) (Span, bool) {
	if n == 0 || int(n) > f.LineCount() {
		return Span{}, false
	}
	start, end := f.LineBounds(int(n - 1))
	if int(n-1) < len(f.newlines) {
		end--
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

// Line returns the text of the 1-based line n, "" when there is none.
func (f *File) Line(n uint32) string {
	sp, ok := f.LineSpan(n)
	if !ok {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// Position converts a byte offset to a line and column.
func (f *File) Position(off uint32) LineCol {
	// номер строки = число '\n' перед off
	line, _ := slices.BinarySearch(f.newlines, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.newlines[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - lineStart + 1}
}

// FormatPath renders Path for output. mode is one of absolute, relative,
// basename and auto; auto shortens long absolute paths to their base name.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}

// RelativePath returns path relative to base. Paths outside base come back
// absolute.
func RelativePath(path, base string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return path, err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return absPath, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absPath), nil
	}
	return filepath.ToSlash(rel), nil
}
