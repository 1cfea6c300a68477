package syntax

import (
	"math"
	"strings"
	"testing"
)

type lexed struct {
	tok Token
	lit string
	val Int128
}

func lex(t *testing.T, src string) ([]lexed, []string) {
	t.Helper()
	var errs []string
	s := NewScanner("test.isle", strings.NewReader(src), func(line, col uint32, msg string) {
		errs = append(errs, msg)
	})
	var toks []lexed
	for {
		s.Next()
		if s.Token() == _EOF {
			break
		}
		toks = append(toks, lexed{s.Token(), s.Literal(), s.Value()})
	}
	return toks, errs
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		toks []Token
		lits []string
	}{
		{"basic", "(one two three 23 -568)",
			[]Token{_Lparen, _Symbol, _Symbol, _Symbol, _Int, _Int, _Rparen},
			[]string{"(", "one", "two", "three", "23", "-568", ")"}},
		{"ends_with_sym", "asdf", []Token{_Symbol}, []string{"asdf"}},
		{"ends_with_num", "23", []Token{_Int}, []string{"23"}},
		{"weird_syms", "(+ [] => !! _test!;comment\n)",
			[]Token{_Lparen, _Symbol, _Symbol, _Symbol, _Symbol, _Symbol, _Rparen},
			[]string{"(", "+", "[]", "=>", "!!", "_test!", ")"}},
		{"at", "x @ y", []Token{_Symbol, _At, _Symbol}, []string{"x", "@", "y"}},
		{"at_ends_symbol", "x@_", []Token{_Symbol, _At, _Symbol}, []string{"x", "@", "_"}},
		{"dotted", "Opt.Some $Zero", []Token{_Symbol, _Symbol}, []string{"Opt.Some", "$Zero"}},
		{"line_comment", "; all of this\na", []Token{_Symbol}, []string{"a"}},
		{"block_comment", "(; skip (; nested ;) still ;) (x)",
			[]Token{_Lparen, _Symbol, _Rparen}, []string{"(", "x", ")"}},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, errs := lex(t, tt.src)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(toks) != len(tt.toks) {
				t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(tt.toks))
			}
			for i, tok := range toks {
				if tok.tok != tt.toks[i] || tok.lit != tt.lits[i] {
					t.Errorf("token %d = %s %q, want %s %q", i, tok.tok, tok.lit, tt.toks[i], tt.lits[i])
				}
			}
		})
	}
}

func TestScanIntegers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Int128
	}{
		{"zero", "0", Int64(0)},
		{"one", "1", Int64(1)},
		{"minus_one", "-1", Int64(-1)},
		{"hex", "0xff_ff", Int64(0xffff)},
		{"hex_upper", "0XFF", Int64(255)},
		{"octal", "0o17", Int64(15)},
		{"binary", "0b1010_1010", Int64(0xaa)},
		{"negative_hex", "-0x10", Int64(-16)},
		{"u128_max_wraps", "340_282_366_920_938_463_463_374_607_431_768_211_455", Int64(-1)},
		{"i128_max", "170_141_183_460_469_231_731_687_303_715_884_105_727",
			Int128{Hi: math.MaxInt64, Lo: math.MaxUint64}},
		{"i128_min_bits", "0x8000_0000_0000_0000_0000_0000_0000_0000", Int128{Hi: math.MinInt64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, errs := lex(t, tt.src)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(toks) != 1 || toks[0].tok != _Int {
				t.Fatalf("got %v, want one INT", toks)
			}
			if toks[0].val != tt.want {
				t.Errorf("value = %s, want %s", toks[0].val, tt.want)
			}
		})
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"i128_min_literal", "-170_141_183_460_469_231_731_687_303_715_884_105_728", "cannot fit in i128"},
		{"too_large", "0x1_0000_0000_0000_0000_0000_0000_0000_0000", "too large"},
		{"bad_digit", "12ab", "invalid digit"},
		{"bad_binary_digit", "0b102", "invalid digit"},
		{"no_digits", "-", "no digits"},
		{"unterminated", "(; never closed", "unterminated block comment"},
		{"unterminated_nested", "(; (; ;)", "unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := lex(t, tt.src)
			if len(errs) == 0 {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(errs[0], tt.want) {
				t.Errorf("error = %q, want substring %q", errs[0], tt.want)
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	s := NewScanner("p.isle", strings.NewReader("(a\n  b) ; c\n  d"), nil)
	want := []string{"p.isle:1:1", "p.isle:1:2", "p.isle:2:3", "p.isle:2:4", "p.isle:3:3"}
	for i, w := range want {
		s.Next()
		if got := s.Pos().String(); got != w {
			t.Errorf("token %d at %s, want %s", i, got, w)
		}
	}
	s.Next()
	if s.Token() != _EOF {
		t.Errorf("trailing token %s, want EOF", s.Token())
	}
}
