package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"golang.org/x/text/encoding/unicode"
)

// FileSet owns analyzed files and resolves spans. It is not safe for
// concurrent use; directory analysis gives every file its own set.
type FileSet struct {
	files   []*File
	baseDir string
}

func NewFileSet() *FileSet { return &FileSet{} }

// SetBaseDir sets the directory relative paths are printed against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir returns the base directory, the working directory when unset.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add stores content as is. Offsets are uint32, so files of 4 GiB and more
// are rejected with a panic; Load checks the size first.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s is too large: %w", path, err))
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, newFile(id, filepath.ToSlash(filepath.Clean(path)), content, flags))
	return id
}

// AddVirtual stores in-memory content byte for byte.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Load reads path, decodes UTF-16 and drops a UTF-8 byte order mark, turns
// CRLF into LF and adds the result.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if _, err := safecast.Conv[uint32](len(raw)); err != nil {
		return 0, fmt.Errorf("file is too large: %w", err)
	}
	content, flags, err := normalize(raw)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return fs.Add(path, content, flags), nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func normalize(raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	content := raw
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		content = raw[len(bomUTF8):]
		flags |= FileHadBOM
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		// ExpectBOM выбирает порядок байт и съедает BOM
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		utf8, err := dec.Bytes(raw)
		if err != nil {
			return nil, 0, err
		}
		content = utf8
		flags |= FileHadBOM | FileUTF16
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}

func (fs *FileSet) Get(id FileID) *File { return fs.files[id] }

func (fs *FileSet) Len() int { return len(fs.files) }

// Resolve converts both ends of span to line and column.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return f.Position(span.Start), f.Position(span.End)
}
