package sema

import (
	"fmt"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// translateExpr checks e. If hasTy is set the expression must produce ty,
// possibly through an implicit conversion. rootFlags are the flags of the
// context the expression is evaluated in.
func (c *Checker) translateExpr(e syntax.Expr, ty types.TypeID, hasTy bool, b *bindings, rootFlags types.TermFlags) types.Expr {
	switch e := e.(type) {
	case *syntax.TermExpr:
		return c.translateTermExpr(e, ty, hasTy, b, rootFlags)

	case *syntax.VarExpr:
		name := c.tyenv.Intern(e.Name.Name)
		bv := b.lookup(name)
		if bv == nil {
			c.errorf(e.Pos(), "unknown variable '%s'", e.Name.Name)
			return nil
		}
		if hasTy && bv.Type != ty {
			if conv := c.convertExpr(e, bv.Type, ty); conv != nil {
				return c.translateExpr(conv, ty, hasTy, b, rootFlags)
			}
			c.errorf(e.Pos(), "variable '%s' has type %s but we need %s in context",
				e.Name.Name, c.typeName(bv.Type), c.typeName(ty))
		}
		return &types.VarExpr{Ty: bv.Type, Var: bv.ID}

	case *syntax.BoolExpr:
		if hasTy && ty != types.Bool {
			c.errorf(e.Pos(), "boolean literal '%t' has type bool but we need %s in context", e.Value, c.typeName(ty))
		}
		return &types.BoolExpr{Ty: types.Bool, Value: e.Value}

	case *syntax.IntExpr:
		if !hasTy {
			c.errorf(e.Pos(), "integer literal in a context that needs an explicit type")
			return nil
		}
		c.checkIntLiteral(e.Pos(), ty, e.Value)
		return &types.IntExpr{Ty: ty, Value: e.Value}

	case *syntax.ConstExpr:
		val := c.tyenv.Intern(e.Name.Name)
		cty, ok := c.tyenv.ConstType(val)
		if !ok {
			c.errorf(e.Pos(), "unknown constant")
			return nil
		}
		if hasTy && cty != ty {
			c.errorf(e.Pos(), "constant '%s' has wrong type: expected %s, but is actually %s",
				e.Name.Name, c.typeName(ty), c.typeName(cty))
			return nil
		}
		return &types.PrimExpr{Ty: cty, Value: val}

	case *syntax.LetExpr:
		b.enterScope()
		var defs []types.LetBinding
		for _, d := range e.Defs {
			name := c.tyenv.Intern(d.Var.Name)
			vty, ok := c.tyenv.TypeByName(d.Type.Name)
			if !ok {
				c.errorf(d.Pos(), "unknown type %s for variable '%s'", d.Type.Name, d.Var.Name)
				continue
			}
			val := c.translateExpr(d.Value, vty, true, b, rootFlags)
			if val == nil {
				continue
			}
			id := b.addVar(name, vty)
			defs = append(defs, types.LetBinding{Var: id, Ty: vty, Value: val})
		}
		body := c.translateExpr(e.Body, ty, hasTy, b, rootFlags)
		b.exitScope()
		if body == nil {
			return nil
		}
		return &types.LetExpr{Ty: body.Type(), Bindings: defs, Body: body}
	}
	panic(fmt.Sprintf("sema: unexpected expression %T", e))
}

func (c *Checker) translateTermExpr(e *syntax.TermExpr, ty types.TypeID, hasTy bool, b *bindings, rootFlags types.TermFlags) types.Expr {
	name := c.tyenv.Intern(e.Sym.Name)
	tid, ok := c.termenv.Lookup(name)
	if !ok {
		if b.lookup(name) != nil {
			c.errorf(e.Pos(), "unknown term in expression: '%s'. Variable binding under this name exists; try removing the parens?", e.Sym.Name)
		} else {
			c.errorf(e.Pos(), "unknown term in expression: '%s'", e.Sym.Name)
		}
		return nil
	}
	term := c.termenv.Term(tid)

	retTy := term.RetTy
	if hasTy && retTy != ty {
		if conv := c.convertExpr(e, retTy, ty); conv != nil {
			return c.translateExpr(conv, ty, hasTy, b, rootFlags)
		}
		c.errorf(e.Pos(), "mismatched types: expression expects type '%s' but term has return type '%s'",
			c.typeName(ty), c.typeName(retTy))
	}

	if !term.IsEnumVariant() {
		flags := term.Flags
		if rootFlags.Pure && !flags.Pure {
			c.errorf(e.Pos(), "used non-pure constructor '%s' in pure expression context", e.Sym.Name)
		}
		if !rootFlags.Multi && flags.Multi {
			c.errorf(e.Pos(), "used multi-constructor '%s' but this rule is not in a multi-term", e.Sym.Name)
		}
		if !rootFlags.Partial && flags.Partial {
			hint := " or make this rule's term partial too"
			if rootFlags.Multi {
				hint = ""
			}
			c.errorf(e.Pos(), "rule can't use partial constructor '%s' on RHS; try moving it to if-let%s", e.Sym.Name, hint)
		}
	}

	c.checkArgsCount(term, len(e.Args), e.Pos(), e.Sym)

	var args []types.Expr
	for i, a := range e.Args {
		if i >= len(term.ArgTys) {
			break
		}
		if x := c.translateExpr(a, term.ArgTys[i], true, b, rootFlags); x != nil {
			args = append(args, x)
		}
	}
	return &types.TermExpr{Ty: retTy, Term: tid, Args: args}
}

// convertExpr wraps e in the converter from inner to outer, if one with a
// constructor exists.
func (c *Checker) convertExpr(e syntax.Expr, inner, outer types.TypeID) syntax.Expr {
	id, ok := c.termenv.Converter(inner, outer)
	if !ok {
		return nil
	}
	conv := c.termenv.Term(id)
	if !conv.HasConstructor() {
		return nil
	}
	sym := syntax.NewIdent(c.tyenv.Name(conv.Name), e.Pos())
	return syntax.NewTermExpr(sym, []syntax.Expr{e}, e.Pos())
}
