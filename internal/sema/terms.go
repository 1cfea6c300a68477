package sema

import (
	"sort"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// collectTermSigs registers one term per decl.
func (c *Checker) collectTermSigs(defs []syntax.Def) {
	for _, d := range defs {
		decl, ok := d.(*syntax.Decl)
		if !ok {
			continue
		}
		name := c.tyenv.Intern(decl.Term.Name)
		if prev, ok := c.termenv.Lookup(name); ok {
			c.errorf(decl.Pos(), "duplicate decl for '%s'", decl.Term.Name)
			c.errorf(c.termenv.Term(prev).Pos, "duplicate decl for '%s'", decl.Term.Name)
			continue
		}
		if decl.Multi && decl.Partial {
			c.errorf(decl.Pos(), "term '%s' can't be both multi and partial", decl.Term.Name)
		}
		if len(decl.ArgTypes) > maxArity {
			c.errorf(decl.Pos(), "term '%s' has %d arguments; at most %d are supported", decl.Term.Name, len(decl.ArgTypes), maxArity)
			continue
		}

		argTys := make([]types.TypeID, 0, len(decl.ArgTypes))
		ok = true
		for _, a := range decl.ArgTypes {
			ty, found := c.tyenv.TypeByName(a.Name)
			if !found {
				c.errorf(a.Pos(), "unknown arg type: '%s'", a.Name)
				ok = false
				continue
			}
			argTys = append(argTys, ty)
		}
		if !ok {
			continue
		}
		retTy, found := c.tyenv.TypeByName(decl.RetType.Name)
		if !found {
			c.errorf(decl.RetType.Pos(), "unknown return type: '%s'", decl.RetType.Name)
			continue
		}

		c.termenv.AddTerm(&types.Term{
			Name:   name,
			Pos:    decl.Pos(),
			ArgTys: argTys,
			RetTy:  retTy,
			Kind:   types.DeclTerm,
			Flags:  types.TermFlags{Pure: decl.Pure, Multi: decl.Multi, Partial: decl.Partial},
		})
	}
}

// collectEnumVariantTerms adds a term "Type.Variant" for every variant.
func (c *Checker) collectEnumVariantTerms() {
outer:
	for _, t := range c.tyenv.Types() {
		if !t.IsEnum() {
			continue
		}
		for _, v := range t.Variants {
			if _, ok := c.termenv.Lookup(v.FullName); ok {
				c.errorf(t.Pos, "duplicate enum variant constructor: '%s'", c.tyenv.Name(v.FullName))
				continue outer
			}
			argTys := make([]types.TypeID, len(v.Fields))
			for i, f := range v.Fields {
				argTys[i] = f.Type
			}
			c.termenv.AddTerm(&types.Term{
				Name:    v.FullName,
				Pos:     t.Pos,
				ArgTys:  argTys,
				RetTy:   t.ID,
				Kind:    types.EnumVariantTerm,
				Variant: v.ID,
			})
		}
	}
}

// collectConstructors marks the root term of every rule as having an
// internal constructor.
func (c *Checker) collectConstructors(defs []syntax.Def) {
	for _, d := range defs {
		rule, ok := d.(*syntax.Rule)
		if !ok {
			continue
		}
		sym := syntax.RootTerm(rule.Pattern)
		if sym == nil {
			c.errorf(rule.Pos(), "rule does not have a term at the LHS root")
			continue
		}
		term, ok := c.lookupTerm(sym)
		if !ok {
			c.errorf(rule.Pos(), "rule LHS root term is not defined")
			continue
		}
		if term.IsEnumVariant() {
			c.errorf(rule.Pos(), "rule LHS root term is incorrect kind; cannot be enum variant")
			continue
		}
		switch {
		case term.Constructor == nil:
			term.Constructor = &types.Constructor{Kind: types.InternalConstructor, Pos: rule.Pos()}
		case term.Constructor.Kind == types.ExternalConstructor:
			c.errorf(rule.Pos(), "rule LHS root term is incorrect kind; cannot be external constructor")
		}
	}
}

// collectExtractorTemplates installs internal extractors and rejects
// recursive extractor definitions.
func (c *Checker) collectExtractorTemplates(defs []syntax.Def) {
	callGraph := make(map[types.TermID]*set.Set[types.TermID])
	for _, d := range defs {
		ext, ok := d.(*syntax.Extractor)
		if !ok {
			continue
		}
		term, ok := c.lookupTerm(ext.Term)
		if !ok {
			c.errorf(ext.Pos(), "extractor macro body definition on a non-existent term")
			continue
		}
		if len(ext.Args) != len(term.ArgTys) {
			c.errorf(ext.Pos(), "extractor '%s' has %d parameters but its term takes %d arguments",
				ext.Term.Name, len(ext.Args), len(term.ArgTys))
			continue
		}

		template := syntax.MakeMacroTemplate(ext.Template, ext.Args)
		callees := set.New[types.TermID](4)
		syntax.PatternTerms(template, func(pos syntax.Pos, sym *syntax.Ident) {
			if callee, ok := c.lookupTerm(sym); ok {
				callees.Insert(callee.ID)
			} else {
				c.errorf(pos, "`%s` extractor definition references unknown term `%s`", ext.Term.Name, sym.Name)
			}
		})
		callGraph[term.ID] = callees

		if term.IsEnumVariant() {
			c.errorf(ext.Pos(), "extractor macro body defined on term of incorrect kind; cannot be an enum variant")
			continue
		}
		if prev := term.Extractor; prev != nil {
			c.errorf(ext.Pos(), "duplicate extractor definition")
			c.errorf(prev.Pos, "extractor was already defined here")
			continue
		}
		if term.Flags.Multi {
			c.errorf(ext.Pos(), "a term declared with `multi` cannot have an internal extractor")
			continue
		}
		term.Extractor = &types.Extractor{Kind: types.InternalExtractor, Template: template, Pos: template.Pos()}
	}

	roots := make([]types.TermID, 0, len(callGraph))
	for id := range callGraph {
		roots = append(roots, id)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	type frame struct {
		caller types.TermID
		path   []types.TermID
		seen   *set.Set[types.TermID]
	}
	for _, root := range roots {
		stack := []frame{{root, []types.TermID{root}, set.New[types.TermID](4)}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.seen.Insert(f.caller) {
				callees, ok := callGraph[f.caller]
				if !ok {
					continue
				}
				next := callees.Slice()
				sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
				for _, callee := range next {
					path := append(append([]types.TermID(nil), f.path...), callee)
					stack = append(stack, frame{callee, path, f.seen.Copy()})
				}
				continue
			}

			names := make([]string, len(f.path))
			for i, id := range f.path {
				names[i] = c.tyenv.Name(c.termenv.Term(id).Name)
			}
			pos := c.termenv.Term(root).Pos
			if x := c.termenv.Term(f.caller).Extractor; x != nil {
				pos = x.Pos
			}
			c.errorf(pos, "`%s` extractor definition is recursive: %s",
				c.tyenv.Name(c.termenv.Term(root).Name), strings.Join(names, " -> "))
			break
		}
	}
}

// collectConverters registers implicit conversions.
func (c *Checker) collectConverters(defs []syntax.Def) {
	for _, d := range defs {
		conv, ok := d.(*syntax.Converter)
		if !ok {
			continue
		}
		inner, ok := c.tyenv.TypeByName(conv.Inner.Name)
		if !ok {
			c.errorf(conv.Inner.Pos(), "unknown inner type for converter")
			continue
		}
		outer, ok := c.tyenv.TypeByName(conv.Outer.Name)
		if !ok {
			c.errorf(conv.Outer.Pos(), "unknown outer type for converter")
			continue
		}
		term, ok := c.lookupTerm(conv.Term)
		if !ok {
			c.errorf(conv.Term.Pos(), "unknown term for converter")
			continue
		}
		if !c.termenv.SetConverter(inner, outer, term.ID) {
			c.errorf(conv.Pos(), "converter already exists for this type pair: %s, %s", conv.Inner.Name, conv.Outer.Name)
		}
	}
}

// collectExterns attaches external constructors and extractors.
func (c *Checker) collectExterns(defs []syntax.Def) {
	for _, d := range defs {
		switch d := d.(type) {
		case *syntax.ExternConstructor:
			fn := c.tyenv.Intern(d.Func.Name)
			term, ok := c.lookupTerm(d.Term)
			if !ok {
				c.errorf(d.Pos(), "constructor declared on undefined term '%s'", d.Term.Name)
				continue
			}
			switch {
			case term.IsEnumVariant():
				c.errorf(d.Pos(), "external constructor cannot be defined on enum variant: %s", d.Term.Name)
			case term.Constructor == nil:
				term.Constructor = &types.Constructor{Kind: types.ExternalConstructor, Func: fn, Pos: d.Pos()}
			case term.Constructor.Kind == types.InternalConstructor:
				c.errorf(d.Pos(), "external constructor declared on term that already has rules: %s", d.Term.Name)
			default:
				c.errorf(d.Pos(), "duplicate external constructor definition")
			}

		case *syntax.ExternExtractor:
			fn := c.tyenv.Intern(d.Func.Name)
			term, ok := c.lookupTerm(d.Term)
			if !ok {
				c.errorf(d.Pos(), "extractor declared on undefined term '%s'", d.Term.Name)
				continue
			}
			switch {
			case term.IsEnumVariant():
				c.errorf(d.Pos(), "cannot define external extractor on enum variant: %s", d.Term.Name)
			case term.Extractor == nil:
				term.Extractor = &types.Extractor{Kind: types.ExternalExtractor, Func: fn, Infallible: d.Infallible, Pos: d.Pos()}
			case term.Extractor.Kind == types.ExternalExtractor:
				c.errorf(d.Pos(), "duplicate external extractor definition")
			default:
				c.errorf(d.Pos(), "cannot define external extractor for term that already has an internal extractor")
			}
		}
	}
}

// checkUndefinedDecls requires every decl to have at least one role.
func (c *Checker) checkUndefinedDecls(defs []syntax.Def) {
	for _, d := range defs {
		decl, ok := d.(*syntax.Decl)
		if !ok {
			continue
		}
		term, ok := c.lookupTerm(decl.Term)
		if !ok {
			continue
		}
		if !term.HasConstructor() && !term.HasExtractor() {
			c.errorf(decl.Pos(), "no rules, extractor, or external definition for declaration '%s'", decl.Term.Name)
		}
	}
}

// checkExprTermsHaveConstructors requires every term called from a rule
// expression to have a constructor.
func (c *Checker) checkExprTermsHaveConstructors(defs []syntax.Def) {
	check := func(pos syntax.Pos, sym *syntax.Ident) {
		term, ok := c.lookupTerm(sym)
		if !ok {
			// already reported
			return
		}
		if !term.HasConstructor() {
			c.errorf(pos, "term `%s` cannot be used in an expression because it does not have a constructor", sym.Name)
		}
	}
	for _, d := range defs {
		rule, ok := d.(*syntax.Rule)
		if !ok {
			continue
		}
		for _, il := range rule.IfLets {
			syntax.ExprTerms(il.Expr, check)
		}
		syntax.ExprTerms(rule.Expr, check)
	}
}
