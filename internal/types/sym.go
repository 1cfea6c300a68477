// Package types declares the data structures of the checked rule program:
// interned symbols, types, terms, typed rules and the visitor contract
// consumed by the rule-set builder.
package types

// Sym is an interned identifier.
type Sym uint32

// SymbolTable interns identifier strings. The zero value is ready to use.
type SymbolTable struct {
	names []string
	index map[string]Sym
}

// Intern returns the symbol for name, adding it if needed.
func (t *SymbolTable) Intern(name string) Sym {
	if s, ok := t.index[name]; ok {
		return s
	}
	if t.index == nil {
		t.index = make(map[string]Sym)
	}
	s := Sym(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = s
	return s
}

// Lookup returns the symbol for name without interning it.
func (t *SymbolTable) Lookup(name string) (Sym, bool) {
	s, ok := t.index[name]
	return s, ok
}

// Name returns the string for s.
func (t *SymbolTable) Name(s Sym) string {
	if int(s) >= len(t.names) {
		return "<invalid sym>"
	}
	return t.names[s]
}

// Len returns the number of interned symbols.
func (t *SymbolTable) Len() int { return len(t.names) }
