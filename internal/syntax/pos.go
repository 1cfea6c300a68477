package syntax

import (
	"cmp"
	"fmt"
)

// Pos represents a position in a rule source file.
// The zero value is an invalid position.
type Pos struct {
	index    uint32 // order of the file among the program's inputs
	filename string // source file name
	line     uint32 // 1-based line number
	col      uint32 // 1-based column number (byte offset in line)
}

// NoPos is the invalid position, used for builtin definitions.
var NoPos Pos

// NewPos creates a new Pos with the given filename, line, and column.
// Line and column numbers are 1-based.
func NewPos(filename string, line, col uint32) Pos {
	return Pos{filename: filename, line: line, col: col}
}

// NewFilePos is NewPos for the index-th input file of a program.
func NewFilePos(index int, filename string, line, col uint32) Pos {
	return Pos{index: uint32(index), filename: filename, line: line, col: col}
}

// String returns a string representation of the position in the format
// "filename:line:col" or "line:col" if filename is empty.
func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.filename, p.line, p.col)
	}
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// IsValid reports whether the position is valid.
// A position is valid if line > 0.
func (p Pos) IsValid() bool {
	return p.line > 0
}

// Line returns the 1-based line number.
func (p Pos) Line() uint32 {
	return p.line
}

// Col returns the 1-based column number (byte offset in line).
func (p Pos) Col() uint32 {
	return p.col
}

// Filename returns the source file name.
func (p Pos) Filename() string {
	return p.filename
}

// Compare orders positions by input file order, then line, then column.
// Files with the same index are ordered by name. It returns -1, 0 or +1.
func (p Pos) Compare(q Pos) int {
	if c := cmp.Compare(p.index, q.index); c != 0 {
		return c
	}
	if c := cmp.Compare(p.filename, q.filename); c != 0 {
		return c
	}
	if c := cmp.Compare(p.line, q.line); c != 0 {
		return c
	}
	return cmp.Compare(p.col, q.col)
}

// Span is a half-open source range [From, To).
type Span struct {
	From Pos
	To   Pos
}

// SpanAt returns a one-character span starting at pos.
func SpanAt(pos Pos) Span {
	to := pos
	to.col++
	return Span{From: pos, To: to}
}

func (s Span) String() string {
	return s.From.String()
}
