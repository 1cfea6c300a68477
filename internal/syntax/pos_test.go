package syntax

import (
	"strings"
	"testing"
)

func TestPosString(t *testing.T) {
	tests := []struct {
		name    string
		pos     Pos
		wantStr string
	}{
		{"with filename", NewPos("lower.isle", 10, 5), "lower.isle:10:5"},
		{"without filename", NewPos("", 10, 5), "10:5"},
		{"invalid", NoPos, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.wantStr {
				t.Errorf("Pos.String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestPosCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Pos
		want int
	}{
		{"same", NewPos("a", 1, 1), NewPos("a", 1, 1), 0},
		{"column", NewPos("a", 1, 1), NewPos("a", 1, 2), -1},
		{"line beats column", NewPos("a", 2, 1), NewPos("a", 1, 9), 1},
		{"file beats line", NewPos("a", 9, 9), NewPos("b", 1, 1), -1},
		{"input order beats name", NewFilePos(0, "b", 9, 9), NewFilePos(1, "a", 1, 1), -1},
		{"input order after", NewFilePos(2, "a", 1, 1), NewFilePos(1, "b", 1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSpanAt(t *testing.T) {
	s := SpanAt(NewPos("f", 3, 7))
	if s.From != NewPos("f", 3, 7) || s.To != NewPos("f", 3, 8) {
		t.Errorf("SpanAt = %v..%v", s.From, s.To)
	}
	s = SpanAt(NewFilePos(1, "f", 3, 7))
	if s.To != NewFilePos(1, "f", 3, 8) {
		t.Errorf("SpanAt lost the file index: %v", s.To)
	}
}

func TestParseFileAtPositions(t *testing.T) {
	f, errs := ParseFileAt(1, "b.isle", strings.NewReader("(decl f (u32) u32)\n(rule"))
	if f.Pos().Compare(NewPos("a.isle", 1, 1)) <= 0 {
		t.Errorf("file position %v does not order after file 0", f.Pos())
	}
	if len(errs) == 0 {
		t.Fatal("no syntax error")
	}
	if errs[0].Pos.Compare(NewFilePos(1, "b.isle", 1, 1)) < 0 {
		t.Errorf("error position %v lost the file index", errs[0].Pos)
	}
}
