package syntax

import (
	"io"
	"unicode/utf8"
)

// source is a character reader with position tracking.
// It reads the whole rule file into memory and hands out one rune at a time.
type source struct {
	buf []byte // source buffer

	index    uint32
	filename string
	line     uint32 // current line number (1-based)
	col      uint32 // current column number (1-based, byte offset)

	ch   rune // current character, -1 for EOF
	offs int  // byte offset just past ch

	errh func(line, col uint32, msg string)
}

// newSource creates a new source from an io.Reader.
// The errh function is called for each error; if nil, errors are silently ignored.
func newSource(index int, filename string, src io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{
		index:    uint32(index),
		filename: filename,
		line:     1,
		ch:       -1, // "before first char", so the first nextch lands on col 1
		errh:     errh,
	}

	var err error
	s.buf, err = io.ReadAll(src)
	if err != nil {
		s.error("error reading source file: " + err.Error())
		s.ch = -1
		return s
	}

	s.nextch()
	return s
}

// nextch reads the next character and updates the position.
// (line, col) always refers to s.ch after nextch returns.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}

	s.ch = r
	s.offs += width
}

// peek returns the byte following s.ch, or 0 at EOF.
func (s *source) peek() byte {
	if s.offs < len(s.buf) {
		return s.buf[s.offs]
	}
	return 0
}

// pos returns the position of the current character.
func (s *source) pos() Pos {
	return Pos{index: s.index, filename: s.filename, line: s.line, col: s.col}
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	s.errorAt(s.pos(), msg)
}

func (s *source) errorAt(pos Pos, msg string) {
	if s.errh != nil {
		s.errh(pos.line, pos.col, msg)
	}
}

// Character classification helpers

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isIntChar accepts every character the integer scanner consumes;
// digits invalid for the radix are diagnosed when the value is parsed.
func isIntChar(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f' || r == '_'
}

// lower returns the lowercase version of r if r is an ASCII letter.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// isSymStart reports whether r may begin a symbol.
func isSymStart(r rune) bool {
	switch r {
	case '-', '(', ')', ';':
		return false
	}
	return r >= 0 && !isDigit(r) && !isWhitespace(r)
}

// isSymChar reports whether r may continue a symbol.
func isSymChar(r rune) bool {
	switch r {
	case '(', ')', ';', '@':
		return false
	}
	return r >= 0 && !isWhitespace(r)
}
