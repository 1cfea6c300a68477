package syntax

// NewTermPattern returns the pattern (sym args...) at pos.
func NewTermPattern(sym *Ident, args []Pattern, pos Pos) *TermPattern {
	p := &TermPattern{Sym: sym, Args: args}
	p.pos = pos
	return p
}

// NewTermExpr returns the expression (sym args...) at pos.
func NewTermExpr(sym *Ident, args []Expr, pos Pos) *TermExpr {
	e := &TermExpr{Sym: sym, Args: args}
	e.pos = pos
	return e
}

// RootTerm returns the term at the root of a rule's left-hand side,
// or nil if the pattern is not a term application.
func RootTerm(p Pattern) *Ident {
	if t, ok := p.(*TermPattern); ok {
		return t.Sym
	}
	return nil
}

// PatternTerms calls f for every term referenced by p, outermost first.
func PatternTerms(p Pattern, f func(pos Pos, sym *Ident)) {
	switch p := p.(type) {
	case *TermPattern:
		f(p.pos, p.Sym)
		for _, a := range p.Args {
			PatternTerms(a, f)
		}
	case *AndPattern:
		for _, s := range p.Subpats {
			PatternTerms(s, f)
		}
	case *BindPattern:
		PatternTerms(p.Sub, f)
	}
}

// ExprTerms calls f for every term referenced by e, outermost first.
func ExprTerms(e Expr, f func(pos Pos, sym *Ident)) {
	switch e := e.(type) {
	case *TermExpr:
		f(e.pos, e.Sym)
		for _, a := range e.Args {
			ExprTerms(a, f)
		}
	case *LetExpr:
		for _, d := range e.Defs {
			ExprTerms(d.Value, f)
		}
		ExprTerms(e.Body, f)
	}
}

// MakeMacroTemplate turns an extractor body into a template: every
// variable (or var @ _) naming one of params becomes a MacroArgPattern.
func MakeMacroTemplate(p Pattern, params []*Ident) Pattern {
	index := func(name string) int {
		for i, a := range params {
			if a.Name == name {
				return i
			}
		}
		return -1
	}
	macroArg := func(i int, pos Pos) Pattern {
		m := &MacroArgPattern{Index: i}
		m.pos = pos
		return m
	}

	switch p := p.(type) {
	case *BindPattern:
		if _, ok := p.Sub.(*WildcardPattern); ok {
			if i := index(p.Var.Name); i >= 0 {
				return macroArg(i, p.pos)
			}
			return p
		}
		b := &BindPattern{Var: p.Var, Sub: MakeMacroTemplate(p.Sub, params)}
		b.pos = p.pos
		return b
	case *VarPattern:
		if i := index(p.Var.Name); i >= 0 {
			return macroArg(i, p.pos)
		}
		return p
	case *AndPattern:
		a := &AndPattern{Subpats: make([]Pattern, len(p.Subpats))}
		a.pos = p.pos
		for i, s := range p.Subpats {
			a.Subpats[i] = MakeMacroTemplate(s, params)
		}
		return a
	case *TermPattern:
		args := make([]Pattern, len(p.Args))
		for i, s := range p.Args {
			args[i] = MakeMacroTemplate(s, params)
		}
		return NewTermPattern(p.Sym, args, p.pos)
	case *MacroArgPattern:
		panic("syntax: macro template built twice")
	}
	return p
}

// SubstMacroArgs instantiates a template with args. It reports false if
// the template refers to an argument that was not supplied.
func SubstMacroArgs(p Pattern, args []Pattern) (Pattern, bool) {
	switch p := p.(type) {
	case *BindPattern:
		sub, ok := SubstMacroArgs(p.Sub, args)
		if !ok {
			return nil, false
		}
		b := &BindPattern{Var: p.Var, Sub: sub}
		b.pos = p.pos
		return b, true
	case *AndPattern:
		a := &AndPattern{Subpats: make([]Pattern, len(p.Subpats))}
		a.pos = p.pos
		for i, s := range p.Subpats {
			sub, ok := SubstMacroArgs(s, args)
			if !ok {
				return nil, false
			}
			a.Subpats[i] = sub
		}
		return a, true
	case *TermPattern:
		sub := make([]Pattern, len(p.Args))
		for i, s := range p.Args {
			var ok bool
			if sub[i], ok = SubstMacroArgs(s, args); !ok {
				return nil, false
			}
		}
		return NewTermPattern(p.Sym, sub, p.pos), true
	case *MacroArgPattern:
		if p.Index < len(args) {
			return args[p.Index], true
		}
		return nil, false
	}
	return p, true
}
