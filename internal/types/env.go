package types

import "github.com/you-not-fish/islec/internal/syntax"

// TypeEnv holds the symbols, types and external constants of a program.
type TypeEnv struct {
	Syms SymbolTable

	types      []*Type
	typeMap    map[Sym]TypeID
	constTypes map[Sym]TypeID
}

// NewTypeEnv returns an environment holding the builtin types.
func NewTypeEnv() *TypeEnv {
	env := &TypeEnv{
		typeMap:    make(map[Sym]TypeID),
		constTypes: make(map[Sym]TypeID),
	}
	for id := TypeID(0); int(id) < NumBuiltins; id++ {
		name := env.Syms.Intern(builtins[id].name)
		t := &Type{ID: id, Kind: Builtin, Name: name}
		if id != Bool {
			info := builtins[id].info
			t.Int = &info
		}
		env.types = append(env.types, t)
		env.typeMap[name] = id
	}
	return env
}

// Intern interns name in the environment's symbol table.
func (e *TypeEnv) Intern(name string) Sym { return e.Syms.Intern(name) }

// Name returns the string of s.
func (e *TypeEnv) Name(s Sym) string { return e.Syms.Name(s) }

// Reserve allocates the next id for a user type named name.
// The slot is invalid until Define fills it.
func (e *TypeEnv) Reserve(name Sym, pos syntax.Pos) TypeID {
	id := TypeID(len(e.types))
	e.types = append(e.types, &Type{ID: id, Kind: Invalid, Name: name, Pos: pos})
	e.typeMap[name] = id
	return id
}

// Define stores t in its reserved slot.
func (e *TypeEnv) Define(t *Type) { e.types[t.ID] = t }

// DefineConst records the type of an external constant.
func (e *TypeEnv) DefineConst(name Sym, ty TypeID) { e.constTypes[name] = ty }

// Lookup returns the id of the type named s.
func (e *TypeEnv) Lookup(s Sym) (TypeID, bool) {
	id, ok := e.typeMap[s]
	return id, ok
}

// TypeByName returns the id of the type called name.
func (e *TypeEnv) TypeByName(name string) (TypeID, bool) {
	s, ok := e.Syms.Lookup(name)
	if !ok {
		return 0, false
	}
	return e.Lookup(s)
}

// Type returns the type with the given id, or nil if its definition failed.
func (e *TypeEnv) Type(id TypeID) *Type {
	if int(id) >= len(e.types) {
		return nil
	}
	t := e.types[id]
	if t.Kind == Invalid {
		return nil
	}
	return t
}

// Types returns every successfully defined type in id order.
func (e *TypeEnv) Types() []*Type {
	out := make([]*Type, 0, len(e.types))
	for _, t := range e.types {
		if t.Kind != Invalid {
			out = append(out, t)
		}
	}
	return out
}

// NumTypes returns the number of allocated type ids, invalid ones included.
func (e *TypeEnv) NumTypes() int { return len(e.types) }

// TypeName returns the name of type id.
func (e *TypeEnv) TypeName(id TypeID) string {
	if int(id) >= len(e.types) {
		return "<invalid type>"
	}
	return e.Syms.Name(e.types[id].Name)
}

// ConstType returns the type of the external constant s.
func (e *TypeEnv) ConstType(s Sym) (TypeID, bool) {
	ty, ok := e.constTypes[s]
	return ty, ok
}

type convKey struct {
	inner, outer TypeID
}

// TermEnv holds the terms and checked rules of a program.
type TermEnv struct {
	terms      []*Term
	termMap    map[Sym]TermID
	rules      []*Rule
	converters map[convKey]TermID

	// ExpandInternalExtractors controls whether internal extractor calls
	// in patterns are inlined during checking.
	ExpandInternalExtractors bool
}

// NewTermEnv returns an empty term environment.
func NewTermEnv() *TermEnv {
	return &TermEnv{
		termMap:                  make(map[Sym]TermID),
		converters:               make(map[convKey]TermID),
		ExpandInternalExtractors: true,
	}
}

// AddTerm assigns t the next id and records it.
func (e *TermEnv) AddTerm(t *Term) TermID {
	t.ID = TermID(len(e.terms))
	e.terms = append(e.terms, t)
	e.termMap[t.Name] = t.ID
	return t.ID
}

// Term returns the term with the given id.
func (e *TermEnv) Term(id TermID) *Term { return e.terms[id] }

// Terms returns all terms in id order.
func (e *TermEnv) Terms() []*Term { return e.terms }

// Lookup returns the id of the term named s.
func (e *TermEnv) Lookup(s Sym) (TermID, bool) {
	id, ok := e.termMap[s]
	return id, ok
}

// TermByName returns the term called name.
func (e *TermEnv) TermByName(tyenv *TypeEnv, name string) (TermID, bool) {
	s, ok := tyenv.Syms.Lookup(name)
	if !ok {
		return 0, false
	}
	return e.Lookup(s)
}

// AddRule assigns r the next id and records it.
func (e *TermEnv) AddRule(r *Rule) RuleID {
	r.ID = RuleID(len(e.rules))
	e.rules = append(e.rules, r)
	return r.ID
}

// Rules returns all checked rules in id order.
func (e *TermEnv) Rules() []*Rule { return e.rules }

// Rule returns the rule with the given id.
func (e *TermEnv) Rule(id RuleID) *Rule { return e.rules[id] }

// SetConverter registers term as the converter from inner to outer.
// It reports false if a converter for the pair already exists.
func (e *TermEnv) SetConverter(inner, outer TypeID, term TermID) bool {
	k := convKey{inner, outer}
	if _, ok := e.converters[k]; ok {
		return false
	}
	e.converters[k] = term
	return true
}

// Converter returns the term converting inner to outer.
func (e *TermEnv) Converter(inner, outer TypeID) (TermID, bool) {
	id, ok := e.converters[convKey{inner, outer}]
	return id, ok
}
