package sema

import (
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// collectRules type-checks every rule. A rule that produced any error is
// left out of the term environment.
func (c *Checker) collectRules(defs []syntax.Def) {
	for _, d := range defs {
		rule, ok := d.(*syntax.Rule)
		if !ok {
			continue
		}
		if r := c.checkRule(rule); r != nil {
			c.termenv.AddRule(r)
		}
	}
}

func (c *Checker) checkRule(rule *syntax.Rule) *types.Rule {
	errors := c.errors
	pos := rule.Pos()

	root, ok := rule.Pattern.(*syntax.TermPattern)
	if !ok {
		c.errorf(pos, "rule does not have a term at the root of its left-hand side")
		return nil
	}
	term, ok := c.lookupTerm(root.Sym)
	if !ok {
		c.errorf(pos, "cannot define a rule for an unknown term")
		return nil
	}
	if term.IsEnumVariant() {
		c.errorf(pos, "cannot define a rule on a left-hand-side that is an enum variant")
		return nil
	}
	flags := term.Flags

	var b bindings
	b.enterScope()

	c.checkArgsCount(term, len(root.Args), root.Pos(), root.Sym)
	args := c.translateArgs(root.Args, term, &b)

	var iflets []types.IfLet
	for _, il := range rule.IfLets {
		if tl, ok := c.translateIfLet(il, &b, flags); ok {
			iflets = append(iflets, tl)
		}
	}
	rhs := c.translateExpr(rule.Expr, term.RetTy, true, &b, flags)

	b.exitScope()

	if rule.HasPrio && flags.Multi {
		c.errorf(pos, "cannot set rule priorities in multi-terms")
	}
	if rhs == nil || c.errors != errors {
		return nil
	}

	r := &types.Rule{
		Root:   term.ID,
		Args:   args,
		IfLets: iflets,
		RHS:    rhs,
		Vars:   b.seen,
		Prio:   rule.Prio,
		Pos:    pos,
	}
	if rule.Name != nil {
		r.Name = c.tyenv.Intern(rule.Name.Name)
		r.HasName = true
	}
	return r
}

func (c *Checker) checkArgsCount(term *types.Term, n int, pos syntax.Pos, sym *syntax.Ident) {
	if len(term.ArgTys) != n {
		c.errorf(pos, "incorrect argument count for term '%s': got %d, expected %d", sym.Name, n, len(term.ArgTys))
	}
}

// translateIfLet checks the expression first: if-lets belong to matching,
// so their calls must be pure and may fail.
func (c *Checker) translateIfLet(il *syntax.IfLet, b *bindings, rootFlags types.TermFlags) (types.IfLet, bool) {
	rhs := c.translateExpr(il.Expr, 0, false, b, rootFlags.OnLHS())
	if rhs == nil {
		return types.IfLet{}, false
	}
	lhs := c.translatePattern(il.Pattern, rhs.Type(), b)
	if lhs == nil {
		return types.IfLet{}, false
	}
	return types.IfLet{LHS: lhs, RHS: rhs}, true
}
