package lexer

import "faultline/internal/source"

// pos is a byte offset the lexer came from; spanFrom turns it into a span.
type pos uint32

// cursor walks the bytes of one file. Reads past the end give 0, which no
// scanner treats as part of a token.
type cursor struct {
	src  []byte
	file source.FileID
	off  uint32
}

// newCursor relies on source.FileSet refusing files of 4 GiB and more.
func newCursor(f *source.File) cursor {
	return cursor{src: f.Content, file: f.ID}
}

func (c *cursor) done() bool { return int(c.off) >= len(c.src) }

func (c *cursor) peek() byte { return c.at(0) }

// at returns the byte n positions ahead.
func (c *cursor) at(n uint32) byte {
	if i := int(c.off) + int(n); i < len(c.src) {
		return c.src[i]
	}
	return 0
}

// next consumes one byte and returns it.
func (c *cursor) next() byte {
	b := c.peek()
	if !c.done() {
		c.off++
	}
	return b
}

// skip consumes b if it is the next byte.
func (c *cursor) skip(b byte) bool {
	if c.done() || c.src[c.off] != b {
		return false
	}
	c.off++
	return true
}

func (c *cursor) startsWith(s string) bool {
	return int(c.off)+len(s) <= len(c.src) && string(c.src[c.off:int(c.off)+len(s)]) == s
}

// lineStart reports whether the cursor sits in column 0, where =begin and
// __END__ are recognized.
func (c *cursor) lineStart() bool {
	return c.off == 0 || c.src[c.off-1] == '\n'
}

// toEnd consumes the rest of the input.
func (c *cursor) toEnd() { c.off = uint32(len(c.src)) }

func (c *cursor) here() pos { return pos(c.off) }

func (c *cursor) spanFrom(p pos) source.Span {
	return source.Span{File: c.file, Start: uint32(p), End: c.off}
}
