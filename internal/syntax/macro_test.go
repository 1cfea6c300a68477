package syntax

import (
	"strings"
	"testing"
)

func extractorDef(t *testing.T, src string) *Extractor {
	t.Helper()
	f := parse(t, src)
	return f.Defs[0].(*Extractor)
}

func TestMakeMacroTemplate(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(extractor (twice x) (and x x))", "(and <arg0> <arg0>)"},
		{"(extractor (pair a b) (Pair b a))", "(Pair <arg1> <arg0>)"},
		{"(extractor (wrap a) (W a @ _ free))", "(W <arg0> free)"},
		{"(extractor (deep a) (W y @ (V a)))", "(W y @ (V <arg0>))"},
		{"(extractor (konst) (K 1 $C))", "(K 1 $C)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := extractorDef(t, tt.src)
			got := String(MakeMacroTemplate(e.Template, e.Args))
			if got != tt.want {
				t.Errorf("template = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSubstMacroArgs(t *testing.T) {
	e := extractorDef(t, "(extractor (pair a b) (Pair b (and a _)))")
	tmpl := MakeMacroTemplate(e.Template, e.Args)

	r := parse(t, "(rule (f (pair 1 (g z))) 0)").Defs[0].(*Rule)
	args := r.Pattern.(*TermPattern).Args[0].(*TermPattern).Args

	got, ok := SubstMacroArgs(tmpl, args)
	if !ok {
		t.Fatal("substitution failed")
	}
	if s := String(got); s != "(Pair (g z) (and 1 _))" {
		t.Errorf("substituted = %s", s)
	}

	if _, ok := SubstMacroArgs(tmpl, args[:1]); ok {
		t.Error("substitution with a missing argument succeeded")
	}
}

func TestTermsVisitOrder(t *testing.T) {
	r := parse(t, "(rule (f (g a) (and (h) x @ (k))) (c (d) (let ((v u32 (e))) (g v))))").Defs[0].(*Rule)

	var pat []string
	PatternTerms(r.Pattern, func(_ Pos, sym *Ident) { pat = append(pat, sym.Name) })
	if got := strings.Join(pat, " "); got != "f g h k" {
		t.Errorf("pattern terms = %s, want f g h k", got)
	}

	var ex []string
	ExprTerms(r.Expr, func(_ Pos, sym *Ident) { ex = append(ex, sym.Name) })
	if got := strings.Join(ex, " "); got != "c d e g" {
		t.Errorf("expr terms = %s, want c d e g", got)
	}
}
