package syntax

import (
	"io"
	"math/big"
	"strings"
)

// Scanner performs lexical analysis of rule source text.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token
	lit    string // symbol text, or the integer literal as written
	val    Int128 // integer value (only valid when tok == _Int)
	tokPos Pos    // token start position

	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return newScanner(0, filename, src, errh)
}

func newScanner(index int, filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSource(index, filename, src, errh)}
}

// Next advances to the next token.
func (s *Scanner) Next() {
	s.skipSpace()
	s.tokPos = s.pos()
	s.lit = ""

	switch {
	case s.ch < 0:
		s.tok = _EOF

	case s.ch == '(':
		s.nextch()
		s.tok = _Lparen
		s.lit = "("

	case s.ch == ')':
		s.nextch()
		s.tok = _Rparen
		s.lit = ")"

	case s.ch == '@':
		s.nextch()
		s.tok = _At
		s.lit = "@"

	case isSymStart(s.ch):
		s.scanSymbol()

	default:
		s.scanInt()
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's text.
func (s *Scanner) Literal() string {
	return s.lit
}

// Value returns the current integer literal's value.
func (s *Scanner) Value() Int128 {
	return s.val
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// skipSpace skips whitespace, line comments and nested block comments.
func (s *Scanner) skipSpace() {
	for {
		switch {
		case isWhitespace(s.ch):
			s.nextch()

		case s.ch == ';':
			for s.ch >= 0 && s.ch != '\n' && s.ch != '\r' {
				s.nextch()
			}

		case s.ch == '(' && s.peek() == ';':
			s.skipBlockComment()

		default:
			return
		}
	}
}

// skipBlockComment skips a "(; ... ;)" comment; they nest.
func (s *Scanner) skipBlockComment() {
	pos := s.pos()
	s.nextch()
	s.nextch()
	depth := 1
	for depth > 0 {
		switch {
		case s.ch < 0:
			s.errorAt(pos, "unterminated block comment")
			return
		case s.ch == '(' && s.peek() == ';':
			s.nextch()
			s.nextch()
			depth++
		case s.ch == ';' && s.peek() == ')':
			s.nextch()
			s.nextch()
			depth--
		default:
			s.nextch()
		}
	}
}

func (s *Scanner) scanSymbol() {
	s.litBuf.Reset()
	for isSymChar(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = _Symbol
}

// scanInt scans an integer literal. The magnitude is parsed as an
// unsigned 128-bit value and reinterpreted as signed, so the largest
// u128 literal reads back as -1.
func (s *Scanner) scanInt() {
	s.tok = _Int
	s.val = Int128{}
	s.litBuf.Reset()

	neg := false
	if s.ch == '-' {
		neg = true
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}

	radix := 10
	if s.ch == '0' {
		switch lower(rune(s.peek())) {
		case 'x':
			radix = 16
		case 'o':
			radix = 8
		case 'b':
			radix = 2
		}
		if radix != 10 {
			s.litBuf.WriteRune(s.ch)
			s.nextch()
			s.litBuf.WriteRune(s.ch)
			s.nextch()
		}
	}

	var digits strings.Builder
	for isIntChar(s.ch) {
		s.litBuf.WriteRune(s.ch)
		if s.ch != '_' {
			digits.WriteRune(s.ch)
		}
		s.nextch()
	}
	s.lit = s.litBuf.String()

	if digits.Len() == 0 {
		s.errorAt(s.tokPos, "invalid integer literal: no digits")
		return
	}
	u, ok := new(big.Int).SetString(digits.String(), radix)
	if !ok {
		s.errorAt(s.tokPos, "invalid digit in integer literal")
		return
	}
	if u.BitLen() > 128 {
		s.errorAt(s.tokPos, "integer literal too large")
		return
	}

	v := Int128FromBits(u)
	if neg {
		if v == (Int128{Hi: -1 << 63}) {
			s.errorAt(s.tokPos, "integer literal cannot fit in i128")
			return
		}
		v = v.Neg()
	}
	s.val = v
}
