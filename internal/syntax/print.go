package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes node to w in canonical s-expression form. The output of
// printing a File parses back to an equivalent File.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

// String returns the canonical form of node.
func String(node Node) string {
	var sb strings.Builder
	Fprint(&sb, node)
	return sb.String()
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) newline() {
	fmt.Fprintf(p.w, "\n%s", strings.Repeat("  ", p.indent))
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *File:
		for i, d := range n.Defs {
			if i > 0 {
				p.printf("\n")
			}
			p.print(d)
			p.printf("\n")
		}

	case *Ident:
		p.printf("%s", n.Name)

	case *Pragma:
		p.printf("(pragma %s)", n.Name.Name)

	case *TypeDef:
		p.printf("(type %s", n.Name.Name)
		if n.Extern {
			p.printf(" extern")
		}
		if n.NoDebug {
			p.printf(" nodebug")
		}
		p.printf(" ")
		p.print(n.Value)
		p.printf(")")

	case *PrimitiveType:
		p.printf("(primitive %s)", n.Name.Name)

	case *EnumType:
		p.printf("(enum")
		p.indent++
		for _, v := range n.Variants {
			p.newline()
			p.print(v)
		}
		p.indent--
		p.printf(")")

	case *Variant:
		p.printf("(%s", n.Name.Name)
		for _, f := range n.Fields {
			p.printf(" (%s %s)", f.Name.Name, f.Type.Name)
		}
		p.printf(")")

	case *Decl:
		p.printf("(decl ")
		if n.Pure {
			p.printf("pure ")
		}
		if n.Multi {
			p.printf("multi ")
		}
		if n.Partial {
			p.printf("partial ")
		}
		p.printf("%s (%s) %s)", n.Term.Name, joinIdents(n.ArgTypes), n.RetType.Name)

	case *Rule:
		p.printf("(rule")
		if n.Name != nil {
			p.printf(" %s", n.Name.Name)
		}
		if n.HasPrio {
			p.printf(" %d", n.Prio)
		}
		p.printf(" ")
		p.print(n.Pattern)
		p.indent++
		for _, il := range n.IfLets {
			p.newline()
			p.print(il)
		}
		p.newline()
		p.print(n.Expr)
		p.indent--
		p.printf(")")

	case *IfLet:
		p.printf("(if-let ")
		p.print(n.Pattern)
		p.printf(" ")
		p.print(n.Expr)
		p.printf(")")

	case *Extractor:
		p.printf("(extractor (%s", n.Term.Name)
		for _, a := range n.Args {
			p.printf(" %s", a.Name)
		}
		p.printf(") ")
		p.print(n.Template)
		p.printf(")")

	case *ExternConstructor:
		p.printf("(extern constructor %s %s)", n.Term.Name, n.Func.Name)

	case *ExternExtractor:
		p.printf("(extern extractor ")
		if n.Infallible {
			p.printf("infallible ")
		}
		p.printf("%s %s)", n.Term.Name, n.Func.Name)

	case *ExternConst:
		p.printf("(extern const $%s %s)", n.Name.Name, n.Type.Name)

	case *Converter:
		p.printf("(convert %s %s %s)", n.Inner.Name, n.Outer.Name, n.Term.Name)

	// Patterns
	case *VarPattern:
		p.printf("%s", n.Var.Name)

	case *BindPattern:
		p.printf("%s @ ", n.Var.Name)
		p.print(n.Sub)

	case *BoolPattern:
		p.printf("%t", n.Value)

	case *IntPattern:
		p.printf("%s", formatInt(n.Value))

	case *ConstPattern:
		p.printf("$%s", n.Name.Name)

	case *WildcardPattern:
		p.printf("_")

	case *TermPattern:
		p.printf("(%s", n.Sym.Name)
		for _, a := range n.Args {
			p.printf(" ")
			p.print(a)
		}
		p.printf(")")

	case *AndPattern:
		p.printf("(and")
		for _, s := range n.Subpats {
			p.printf(" ")
			p.print(s)
		}
		p.printf(")")

	case *MacroArgPattern:
		p.printf("<arg%d>", n.Index)

	// Expressions
	case *TermExpr:
		p.printf("(%s", n.Sym.Name)
		for _, a := range n.Args {
			p.printf(" ")
			p.print(a)
		}
		p.printf(")")

	case *VarExpr:
		p.printf("%s", n.Name.Name)

	case *BoolExpr:
		p.printf("%t", n.Value)

	case *IntExpr:
		p.printf("%s", formatInt(n.Value))

	case *ConstExpr:
		p.printf("$%s", n.Name.Name)

	case *LetExpr:
		p.printf("(let (")
		for i, d := range n.Defs {
			if i > 0 {
				p.printf(" ")
			}
			p.print(d)
		}
		p.printf(") ")
		p.print(n.Body)
		p.printf(")")

	case *LetDef:
		p.printf("(%s %s ", n.Var.Name, n.Type.Name)
		p.print(n.Value)
		p.printf(")")

	default:
		p.printf("<%T>", n)
	}
}

func joinIdents(ids []*Ident) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}
	return strings.Join(names, " ")
}

// formatInt prints v so that the scanner reads back the same value.
// The minimum i128 has no negated spelling, so it is printed in hex.
func formatInt(v Int128) string {
	if v == (Int128{Hi: -1 << 63}) {
		return "0x80000000000000000000000000000000"
	}
	return v.String()
}
