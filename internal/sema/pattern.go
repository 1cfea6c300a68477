package sema

import (
	"fmt"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// translateArgs checks each argument pattern against the term's argument
// types. Result i always matches argument i: a failed argument, whose error
// is already recorded, keeps its slot as a wildcard.
func (c *Checker) translateArgs(args []syntax.Pattern, term *types.Term, b *bindings) []types.Pattern {
	out := make([]types.Pattern, 0, len(args))
	for i, a := range args {
		if i >= len(term.ArgTys) {
			break
		}
		p := c.translatePattern(a, term.ArgTys[i], b)
		if p == nil {
			p = &types.WildcardPat{Ty: term.ArgTys[i]}
		}
		out = append(out, p)
	}
	return out
}

// translatePattern checks pat against the type ty. It returns nil if the
// pattern cannot be translated at all; partial failures are reported and
// checking continues.
func (c *Checker) translatePattern(pat syntax.Pattern, ty types.TypeID, b *bindings) types.Pattern {
	switch p := pat.(type) {
	case *syntax.BoolPattern:
		if ty != types.Bool {
			c.errorf(p.Pos(), "boolean literal '%t' has type bool but we need %s in context", p.Value, c.typeName(ty))
			return nil
		}
		return &types.BoolPat{Ty: types.Bool, Value: p.Value}

	case *syntax.IntPattern:
		c.checkIntLiteral(p.Pos(), ty, p.Value)
		return &types.IntPat{Ty: ty, Value: p.Value}

	case *syntax.ConstPattern:
		val := c.tyenv.Intern(p.Name.Name)
		cty, ok := c.tyenv.ConstType(val)
		if !ok {
			c.errorf(p.Pos(), "unknown constant")
			return nil
		}
		if cty != ty {
			c.errorf(p.Pos(), "type mismatch for constant")
			return nil
		}
		return &types.PrimPat{Ty: cty, Value: val}

	case *syntax.WildcardPattern:
		return &types.WildcardPat{Ty: ty}

	case *syntax.AndPattern:
		var subs []types.Pattern
		for _, s := range p.Subpats {
			if sp := c.translatePattern(s, ty, b); sp != nil {
				subs = append(subs, sp)
			}
		}
		return &types.AndPat{Ty: ty, Subpats: subs}

	case *syntax.BindPattern:
		sub := c.translatePattern(p.Sub, ty, b)
		if sub == nil {
			return nil
		}
		name := c.tyenv.Intern(p.Var.Name)
		if b.lookup(name) != nil {
			c.errorf(p.Pos(), "re-bound variable name in LHS pattern: '%s'", p.Var.Name)
		}
		id := b.addVar(name, ty)
		return &types.BindPat{Ty: ty, Var: id, Sub: sub}

	case *syntax.VarPattern:
		// A bound name matches the existing value; a fresh one binds.
		name := c.tyenv.Intern(p.Var.Name)
		bv := b.lookup(name)
		if bv == nil {
			id := b.addVar(name, ty)
			return &types.BindPat{Ty: ty, Var: id, Sub: &types.WildcardPat{Ty: ty}}
		}
		if bv.Type != ty {
			c.errorf(p.Pos(), "mismatched types: pattern expects type '%s' but already-bound var '%s' has type '%s'",
				c.typeName(ty), p.Var.Name, c.typeName(bv.Type))
		}
		return &types.VarPat{Ty: bv.Type, Var: bv.ID}

	case *syntax.TermPattern:
		return c.translateTermPattern(p, ty, b)

	case *syntax.MacroArgPattern:
		panic("sema: macro argument outside of a template")
	}
	panic(fmt.Sprintf("sema: unexpected pattern %T", pat))
}

func (c *Checker) translateTermPattern(p *syntax.TermPattern, ty types.TypeID, b *bindings) types.Pattern {
	term, ok := c.lookupTerm(p.Sym)
	if !ok {
		c.errorf(p.Pos(), "unknown term in pattern: '%s'", p.Sym.Name)
		return nil
	}

	if term.RetTy != ty {
		if conv := c.convertPattern(p, term.RetTy, ty); conv != nil {
			return c.translatePattern(conv, ty, b)
		}
		c.errorf(p.Pos(), "mismatched types: pattern expects type '%s' but term has return type '%s'",
			c.typeName(ty), c.typeName(term.RetTy))
	}

	c.checkArgsCount(term, len(p.Args), p.Pos(), p.Sym)

	switch x := term.Extractor; {
	case term.IsEnumVariant():
	case x == nil:
		c.errorf(p.Pos(), "cannot use term '%s' that does not have a defined extractor in a left-hand side pattern", p.Sym.Name)
	case x.Kind == types.InternalExtractor && c.termenv.ExpandInternalExtractors:
		expanded, ok := syntax.SubstMacroArgs(x.Template, p.Args)
		if !ok {
			c.errorf(p.Pos(), "not enough arguments to expand extractor '%s'", p.Sym.Name)
			return nil
		}
		return c.translatePattern(expanded, ty, b)
	}

	args := c.translateArgs(p.Args, term, b)
	return &types.TermPat{Ty: term.RetTy, Term: term.ID, Args: args}
}

// convertPattern wraps pat in the converter from inner to outer, if one
// with an extractor exists.
func (c *Checker) convertPattern(pat *syntax.TermPattern, inner, outer types.TypeID) syntax.Pattern {
	id, ok := c.termenv.Converter(inner, outer)
	if !ok {
		return nil
	}
	conv := c.termenv.Term(id)
	if !conv.HasExtractor() {
		return nil
	}
	sym := syntax.NewIdent(c.tyenv.Name(conv.Name), pat.Pos())
	return syntax.NewTermPattern(sym, []syntax.Pattern{pat}, pat.Pos())
}

// checkIntLiteral reports an integer literal used where ty cannot hold it.
func (c *Checker) checkIntLiteral(pos syntax.Pos, ty types.TypeID, v syntax.Int128) {
	t := c.tyenv.Type(ty)
	switch {
	case t == nil:
	case t.IsInt():
		if !t.Int.Fits(v) {
			c.errorf(pos, "integer literal '%s' does not fit in type %s", v, c.typeName(ty))
		}
	case !t.IsPrim():
		c.errorf(pos, "expected non-integer type %s, but found integer literal '%s'", c.typeName(ty), v)
	}
}
