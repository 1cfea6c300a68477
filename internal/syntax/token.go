// Package syntax implements the lexer, parser and abstract syntax tree
// of the rule language.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	_EOF    Token = iota // end of file
	_Lparen              // (
	_Rparen              // )
	_At                  // @
	_Int                 // integer literal: 42, -1, 0xff, 0b1010_1010
	_Symbol              // any other run of symbol characters

	tokenCount
)

var tokenNames = [...]string{
	_EOF:    "EOF",
	_Lparen: "(",
	_Rparen: ")",
	_At:     "@",
	_Int:    "INT",
	_Symbol: "SYMBOL",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// IsInt reports whether t is an integer literal.
func (t Token) IsInt() bool {
	return t == _Int
}
