package types

import "github.com/you-not-fish/islec/internal/syntax"

// TermID identifies a term.
type TermID uint32

// TermFlags are the declaration modifiers of a term.
type TermFlags struct {
	Pure    bool
	Multi   bool
	Partial bool
}

// OnLHS returns the flags allowed for expressions evaluated while matching:
// pure and possibly failing, keeping multi from f.
func (f TermFlags) OnLHS() TermFlags {
	return TermFlags{Pure: true, Multi: f.Multi, Partial: true}
}

// TermKind distinguishes enum variant constructors from declared terms.
type TermKind uint8

const (
	EnumVariantTerm TermKind = iota
	DeclTerm
)

// ConstructorKind tells how a declared term is built in expressions.
type ConstructorKind uint8

const (
	InternalConstructor ConstructorKind = iota + 1
	ExternalConstructor
)

// Constructor is the expression-side role of a term.
type Constructor struct {
	Kind ConstructorKind
	Func Sym // external only
	Pos  syntax.Pos
}

// ExtractorKind tells how a declared term is matched in patterns.
type ExtractorKind uint8

const (
	InternalExtractor ExtractorKind = iota + 1
	ExternalExtractor
)

// Extractor is the pattern-side role of a term.
type Extractor struct {
	Kind ExtractorKind
	Pos  syntax.Pos

	// Internal: a macro template whose parameters are MacroArg patterns.
	Template syntax.Pattern

	// External.
	Func       Sym
	Infallible bool
}

// Term is a named operation usable in patterns (as an extractor), in
// expressions (as a constructor), or both.
type Term struct {
	ID      TermID
	Name    Sym
	Pos     syntax.Pos
	ArgTys  []TypeID
	RetTy   TypeID
	Kind    TermKind
	Variant VariantID // EnumVariantTerm only

	// DeclTerm only.
	Flags       TermFlags
	Constructor *Constructor
	Extractor   *Extractor
}

// IsEnumVariant reports whether t constructs an enum variant.
func (t *Term) IsEnumVariant() bool { return t.Kind == EnumVariantTerm }

// HasConstructor reports whether t may appear in an expression.
func (t *Term) HasConstructor() bool {
	return t.Kind == EnumVariantTerm || t.Constructor != nil
}

// HasExtractor reports whether t may appear in a pattern.
func (t *Term) HasExtractor() bool {
	return t.Kind == EnumVariantTerm || t.Extractor != nil
}

// HasExternalConstructor reports whether t is built by an external function.
func (t *Term) HasExternalConstructor() bool {
	return t.Constructor != nil && t.Constructor.Kind == ExternalConstructor
}

// HasInternalConstructor reports whether t is built by its own rules.
func (t *Term) HasInternalConstructor() bool {
	return t.Constructor != nil && t.Constructor.Kind == InternalConstructor
}

// HasExternalExtractor reports whether t is matched by an external function.
func (t *Term) HasExternalExtractor() bool {
	return t.Extractor != nil && t.Extractor.Kind == ExternalExtractor
}

// IsMulti reports whether t may produce several results.
func (t *Term) IsMulti() bool { return t.Flags.Multi }

// IsPartial reports whether t may fail.
func (t *Term) IsPartial() bool { return t.Flags.Partial }

// ReturnKind is the calling convention of a term's result.
type ReturnKind uint8

const (
	// Plain returns the value.
	Plain ReturnKind = iota
	// Option returns a value that may be absent.
	Option
	// Iterator returns zero or more values.
	Iterator
)

var returnKindNames = [...]string{
	Plain:    "plain",
	Option:   "option",
	Iterator: "iterator",
}

func (k ReturnKind) String() string {
	if int(k) < len(returnKindNames) {
		return returnKindNames[k]
	}
	return "?"
}

// ExternalSig is the host-language signature an emitter needs to call
// one role of a term.
type ExternalSig struct {
	FuncName string
	FullName string
	ParamTys []TypeID
	RetTys   []TypeID
	RetKind  ReturnKind
}

// ExtractorSig returns the signature of t's external extractor.
// Extractors take the matched value and return the term's arguments.
func (t *Term) ExtractorSig(syms *SymbolTable) (ExternalSig, bool) {
	if !t.HasExternalExtractor() {
		return ExternalSig{}, false
	}
	ret := Option
	switch {
	case t.Flags.Multi:
		ret = Iterator
	case t.Extractor.Infallible:
		ret = Plain
	}
	name := syms.Name(t.Extractor.Func)
	return ExternalSig{
		FuncName: name,
		FullName: "C::" + name,
		ParamTys: []TypeID{t.RetTy},
		RetTys:   append([]TypeID(nil), t.ArgTys...),
		RetKind:  ret,
	}, true
}

// ConstructorSig returns the signature of t's constructor. Internal
// constructors are named after the term.
func (t *Term) ConstructorSig(syms *SymbolTable) (ExternalSig, bool) {
	if t.Constructor == nil {
		return ExternalSig{}, false
	}
	ret := Plain
	switch {
	case t.Flags.Multi:
		ret = Iterator
	case t.Flags.Partial:
		ret = Option
	}
	var name, full string
	if t.Constructor.Kind == ExternalConstructor {
		name = syms.Name(t.Constructor.Func)
		full = "C::" + name
	} else {
		name = "constructor_" + syms.Name(t.Name)
		full = name
	}
	return ExternalSig{
		FuncName: name,
		FullName: full,
		ParamTys: append([]TypeID(nil), t.ArgTys...),
		RetTys:   []TypeID{t.RetTy},
		RetKind:  ret,
	}, true
}
