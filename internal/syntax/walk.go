package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, d := range n.Defs {
			Walk(d, v)
		}

	case *Pragma:
		Walk(n.Name, v)

	case *TypeDef:
		Walk(n.Name, v)
		Walk(n.Value, v)

	case *PrimitiveType:
		Walk(n.Name, v)

	case *EnumType:
		for _, vr := range n.Variants {
			Walk(vr, v)
		}

	case *Variant:
		Walk(n.Name, v)
		for _, f := range n.Fields {
			Walk(f, v)
		}

	case *Field:
		Walk(n.Name, v)
		Walk(n.Type, v)

	case *Decl:
		Walk(n.Term, v)
		for _, a := range n.ArgTypes {
			Walk(a, v)
		}
		Walk(n.RetType, v)

	case *Rule:
		if n.Name != nil {
			Walk(n.Name, v)
		}
		Walk(n.Pattern, v)
		for _, il := range n.IfLets {
			Walk(il, v)
		}
		Walk(n.Expr, v)

	case *IfLet:
		Walk(n.Pattern, v)
		Walk(n.Expr, v)

	case *Extractor:
		Walk(n.Term, v)
		for _, a := range n.Args {
			Walk(a, v)
		}
		Walk(n.Template, v)

	case *ExternConstructor:
		Walk(n.Term, v)
		Walk(n.Func, v)

	case *ExternExtractor:
		Walk(n.Term, v)
		Walk(n.Func, v)

	case *ExternConst:
		Walk(n.Name, v)
		Walk(n.Type, v)

	case *Converter:
		Walk(n.Inner, v)
		Walk(n.Outer, v)
		Walk(n.Term, v)

	case *VarPattern:
		Walk(n.Var, v)

	case *BindPattern:
		Walk(n.Var, v)
		Walk(n.Sub, v)

	case *ConstPattern:
		Walk(n.Name, v)

	case *TermPattern:
		Walk(n.Sym, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *AndPattern:
		for _, s := range n.Subpats {
			Walk(s, v)
		}

	case *TermExpr:
		Walk(n.Sym, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *VarExpr:
		Walk(n.Name, v)

	case *ConstExpr:
		Walk(n.Name, v)

	case *LetExpr:
		for _, d := range n.Defs {
			Walk(d, v)
		}
		Walk(n.Body, v)

	case *LetDef:
		Walk(n.Var, v)
		Walk(n.Type, v)
		Walk(n.Value, v)

	case *Ident, *BoolPattern, *IntPattern, *WildcardPattern, *MacroArgPattern,
		*BoolExpr, *IntExpr:
		// leaves
	}
}

// Inspect traverses an AST in depth-first order, calling f for each node.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
