package types

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable listing of the user types and terms of a
// program to w.
func Fprint(w io.Writer, tyenv *TypeEnv, termenv *TermEnv) error {
	p := printer{w: w, tyenv: tyenv}
	for _, t := range tyenv.Types() {
		if t.Kind == Builtin {
			continue
		}
		p.printType(t)
	}
	for _, t := range termenv.Terms() {
		p.printf("%s\n", TermString(tyenv, t))
	}
	return p.err
}

// FprintRules writes every checked rule of termenv to w.
func FprintRules(w io.Writer, tyenv *TypeEnv, termenv *TermEnv) error {
	p := printer{w: w, tyenv: tyenv, termenv: termenv}
	for _, r := range termenv.Rules() {
		p.printRule(r)
	}
	return p.err
}

// TermString formats the signature of t, e.g. "decl partial f (u32) u32".
func TermString(tyenv *TypeEnv, t *Term) string {
	var b strings.Builder
	if t.IsEnumVariant() {
		b.WriteString("variant ")
	} else {
		b.WriteString("decl ")
		if t.Flags.Pure {
			b.WriteString("pure ")
		}
		if t.Flags.Multi {
			b.WriteString("multi ")
		}
		if t.Flags.Partial {
			b.WriteString("partial ")
		}
	}
	b.WriteString(tyenv.Name(t.Name))
	b.WriteString(" (")
	for i, a := range t.ArgTys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tyenv.TypeName(a))
	}
	b.WriteString(") ")
	b.WriteString(tyenv.TypeName(t.RetTy))
	if c := t.Constructor; c != nil {
		if c.Kind == ExternalConstructor {
			fmt.Fprintf(&b, " constructor=extern:%s", tyenv.Name(c.Func))
		} else {
			b.WriteString(" constructor=internal")
		}
	}
	if x := t.Extractor; x != nil {
		switch {
		case x.Kind == InternalExtractor:
			b.WriteString(" extractor=internal")
		case x.Infallible:
			fmt.Fprintf(&b, " extractor=extern-infallible:%s", tyenv.Name(x.Func))
		default:
			fmt.Fprintf(&b, " extractor=extern:%s", tyenv.Name(x.Func))
		}
	}
	return b.String()
}

type printer struct {
	w       io.Writer
	tyenv   *TypeEnv
	termenv *TermEnv
	err     error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) printType(t *Type) {
	name := p.tyenv.Name(t.Name)
	switch t.Kind {
	case Primitive:
		p.printf("type %s primitive\n", name)
	case Enum:
		var mods string
		if t.Extern {
			mods += " extern"
		}
		if t.NoDebug {
			mods += " nodebug"
		}
		p.printf("type %s%s enum\n", name, mods)
		for _, v := range t.Variants {
			p.printf("\t%s", p.tyenv.Name(v.Name))
			for _, f := range v.Fields {
				p.printf(" (%s %s)", p.tyenv.Name(f.Name), p.tyenv.TypeName(f.Type))
			}
			p.printf("\n")
		}
	}
}

func (p *printer) printRule(r *Rule) {
	root := p.termenv.Term(r.Root)
	p.printf("rule %d", r.ID)
	if r.HasName {
		p.printf(" %s", p.tyenv.Name(r.Name))
	}
	p.printf(" prio=%d at %s\n", r.Prio, r.Pos)
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(p.tyenv.Name(root.Name))
	for _, a := range r.Args {
		b.WriteByte(' ')
		p.pattern(&b, r, a)
	}
	b.WriteByte(')')
	p.printf("\t%s\n", b.String())
	for _, il := range r.IfLets {
		b.Reset()
		b.WriteString("(if-let ")
		p.pattern(&b, r, il.LHS)
		b.WriteByte(' ')
		p.expr(&b, r, il.RHS)
		b.WriteByte(')')
		p.printf("\t%s\n", b.String())
	}
	b.Reset()
	p.expr(&b, r, r.RHS)
	p.printf("\t=> %s\n", b.String())
}

func (p *printer) varName(r *Rule, id VarID) string {
	if int(id) < len(r.Vars) {
		return p.tyenv.Name(r.Vars[id].Name)
	}
	return fmt.Sprintf("v%d", id)
}

func (p *printer) pattern(b *strings.Builder, r *Rule, pat Pattern) {
	switch pat := pat.(type) {
	case *VarPat:
		fmt.Fprintf(b, "=%s", p.varName(r, pat.Var))
	case *BindPat:
		fmt.Fprintf(b, "%s @ ", p.varName(r, pat.Var))
		p.pattern(b, r, pat.Sub)
	case *BoolPat:
		fmt.Fprintf(b, "%t", pat.Value)
	case *IntPat:
		fmt.Fprintf(b, "%s:%s", pat.Value, p.tyenv.TypeName(pat.Ty))
	case *PrimPat:
		fmt.Fprintf(b, "$%s", p.tyenv.Name(pat.Value))
	case *WildcardPat:
		b.WriteString("_")
	case *TermPat:
		fmt.Fprintf(b, "(%s", p.tyenv.Name(p.termenv.Term(pat.Term).Name))
		for _, a := range pat.Args {
			b.WriteByte(' ')
			p.pattern(b, r, a)
		}
		b.WriteByte(')')
	case *AndPat:
		b.WriteString("(and")
		for _, a := range pat.Subpats {
			b.WriteByte(' ')
			p.pattern(b, r, a)
		}
		b.WriteByte(')')
	}
}

func (p *printer) expr(b *strings.Builder, r *Rule, e Expr) {
	switch e := e.(type) {
	case *VarExpr:
		b.WriteString(p.varName(r, e.Var))
	case *BoolExpr:
		fmt.Fprintf(b, "%t", e.Value)
	case *IntExpr:
		fmt.Fprintf(b, "%s:%s", e.Value, p.tyenv.TypeName(e.Ty))
	case *PrimExpr:
		fmt.Fprintf(b, "$%s", p.tyenv.Name(e.Value))
	case *TermExpr:
		fmt.Fprintf(b, "(%s", p.tyenv.Name(p.termenv.Term(e.Term).Name))
		for _, a := range e.Args {
			b.WriteByte(' ')
			p.expr(b, r, a)
		}
		b.WriteByte(')')
	case *LetExpr:
		b.WriteString("(let (")
		for i, lb := range e.Bindings {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "(%s %s ", p.varName(r, lb.Var), p.tyenv.TypeName(lb.Ty))
			p.expr(b, r, lb.Value)
			b.WriteByte(')')
		}
		b.WriteString(") ")
		p.expr(b, r, e.Body)
		b.WriteByte(')')
	}
}
