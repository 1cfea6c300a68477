package sema

import (
	"fmt"
	"math"

	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// maxArity bounds term arguments and variant fields. Rule sets index
// them, and count variant fields, in a single byte.
const maxArity = math.MaxUint8

// Checker builds the type and term tables of one program.
type Checker struct {
	conf    *Config
	tyenv   *types.TypeEnv
	termenv *types.TermEnv

	// Error tracking
	diags  diag.List
	errors int         // error count
	first  *diag.Error // first error
}

// checkTypes registers every type, resolves type bodies and then the
// types of external constants.
func (c *Checker) checkTypes(defs []syntax.Def) {
	// Phase 1: register names so bodies may refer to later types.
	type entry struct {
		id types.TypeID
		td *syntax.TypeDef
	}
	var registered []entry
	declPos := make(map[types.TypeID]syntax.Pos)
	for _, d := range defs {
		td, ok := d.(*syntax.TypeDef)
		if !ok {
			continue
		}
		name := c.tyenv.Intern(td.Name.Name)
		if existing, ok := c.tyenv.Lookup(name); ok {
			c.errorf(td.Pos(), "type with name '%s' defined more than once", td.Name.Name)
			if types.IsBuiltin(existing) {
				c.errorf(td.Pos(), "type with name '%s' is a built-in type", td.Name.Name)
			} else {
				c.errorf(declPos[existing], "type with name '%s' already defined here", td.Name.Name)
			}
			continue
		}
		id := c.tyenv.Reserve(name, td.Pos())
		declPos[id] = td.Pos()
		registered = append(registered, entry{id, td})
	}

	// Phase 2: resolve bodies. A failing type stays invalid.
	for _, e := range registered {
		if t := c.typeFromDef(e.id, e.td); t != nil {
			c.tyenv.Define(t)
		}
	}

	// Phase 3: external constants.
	for _, d := range defs {
		ec, ok := d.(*syntax.ExternConst)
		if !ok {
			continue
		}
		ty, ok := c.tyenv.TypeByName(ec.Type.Name)
		if !ok {
			c.errorf(ec.Pos(), "unknown type for constant")
			continue
		}
		c.tyenv.DefineConst(c.tyenv.Intern(ec.Name.Name), ty)
	}
}

func (c *Checker) typeFromDef(id types.TypeID, td *syntax.TypeDef) *types.Type {
	name := c.tyenv.Intern(td.Name.Name)
	switch v := td.Value.(type) {
	case *syntax.PrimitiveType:
		if td.NoDebug {
			c.errorf(td.Pos(), "primitive types cannot be marked `nodebug`")
			return nil
		}
		if td.Extern {
			c.errorf(td.Pos(), "primitive types cannot be marked `extern`")
			return nil
		}
		c.tyenv.Intern(v.Name.Name)
		return &types.Type{ID: id, Kind: types.Primitive, Name: name, Pos: td.Pos()}

	case *syntax.EnumType:
		if td.Extern && td.NoDebug {
			c.errorf(td.Pos(), "external types cannot be marked `nodebug`")
			return nil
		}
		t := &types.Type{ID: id, Kind: types.Enum, Name: name, Pos: td.Pos(), Extern: td.Extern, NoDebug: td.NoDebug}
		for _, sv := range v.Variants {
			vname := c.tyenv.Intern(sv.Name.Name)
			for _, prev := range t.Variants {
				if prev.Name == vname {
					c.errorf(sv.Pos(), "duplicate variant name in type: '%s'", sv.Name.Name)
					return nil
				}
			}
			if len(sv.Fields) > maxArity {
				c.errorf(sv.Pos(), "variant '%s' has %d fields; at most %d are supported", sv.Name.Name, len(sv.Fields), maxArity)
				return nil
			}
			variant := &types.Variant{
				Name:     vname,
				FullName: c.tyenv.Intern(fmt.Sprintf("%s.%s", td.Name.Name, sv.Name.Name)),
				ID:       types.VariantID(len(t.Variants)),
			}
			for _, sf := range sv.Fields {
				fname := c.tyenv.Intern(sf.Name.Name)
				for _, prev := range variant.Fields {
					if prev.Name == fname {
						c.errorf(sf.Pos(), "duplicate field name '%s' in variant '%s' of type", sf.Name.Name, sv.Name.Name)
						return nil
					}
				}
				fty, ok := c.tyenv.TypeByName(sf.Type.Name)
				if !ok {
					c.errorf(sf.Type.Pos(), "unknown type '%s' for field '%s' in variant '%s'", sf.Type.Name, sf.Name.Name, sv.Name.Name)
					return nil
				}
				variant.Fields = append(variant.Fields, &types.Field{Name: fname, ID: types.FieldID(len(variant.Fields)), Type: fty})
			}
			t.Variants = append(t.Variants, variant)
		}
		return t
	}
	panic(fmt.Sprintf("sema: unexpected type value %T", td.Value))
}

// checkTerms runs the term table passes in order. Each group of passes
// must finish without errors before the next group consumes its results.
func (c *Checker) checkTerms(defs []syntax.Def) {
	c.collectTermSigs(defs)
	c.collectEnumVariantTerms()
	if c.errors > 0 {
		return
	}

	c.collectConstructors(defs)
	c.collectExtractorTemplates(defs)
	if c.errors > 0 {
		return
	}

	c.collectConverters(defs)
	if c.errors > 0 {
		return
	}

	c.collectExterns(defs)
	if c.errors > 0 {
		return
	}

	c.collectRules(defs)
	c.checkUndefinedDecls(defs)
	c.checkExprTermsHaveConstructors(defs)
}

// lookupTerm resolves a term name without interning it.
func (c *Checker) lookupTerm(id *syntax.Ident) (*types.Term, bool) {
	tid, ok := c.termenv.TermByName(c.tyenv, id.Name)
	if !ok {
		return nil, false
	}
	return c.termenv.Term(tid), true
}

func (c *Checker) typeName(id types.TypeID) string {
	return c.tyenv.TypeName(id)
}
