// Package trie builds, for every term that has rules, a RuleSet: the rules
// of that term rewritten over one shared, hash-consed graph of bindings,
// each rule carrying its own constraints on those bindings.
package trie

import (
	"encoding/binary"
	"fmt"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// BindingID names a Binding within one RuleSet. A binding only refers to
// bindings with smaller ids.
type BindingID uint32

func (id BindingID) String() string {
	return fmt.Sprintf("b%d", id)
}

// TupleIndex selects an argument, a variant field or a tuple element.
type TupleIndex uint8

// BindingKind identifies the computation a Binding performs.
type BindingKind uint8

const (
	ConstBool    BindingKind = iota // Bool; Ty
	ConstInt                        // Int; Ty
	ConstPrim                       // Prim
	Argument                        // Index
	Extractor                       // Term; Sources[0] is the parameter
	Constructor                     // Term, Instance; Sources are the parameters
	Iterator                        // Sources[0] produces a sequence
	MakeVariant                     // Ty, Variant; Sources are the fields
	MatchVariant                    // Variant, Index; field of Sources[0]
	MakeSome                        // Sources[0] wrapped as present
	MatchSome                       // contents of Sources[0]
	MatchTuple                      // Index; element of Sources[0]
)

var bindingKindNames = [...]string{
	ConstBool:    "const_bool",
	ConstInt:     "const_int",
	ConstPrim:    "const_prim",
	Argument:     "arg",
	Extractor:    "extract",
	Constructor:  "construct",
	Iterator:     "iter",
	MakeVariant:  "make_variant",
	MatchVariant: "match_variant",
	MakeSome:     "make_some",
	MatchSome:    "match_some",
	MatchTuple:   "match_tuple",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return fmt.Sprintf("binding(%d)", int(k))
}

// Binding is one node of the graph. Fields a kind does not use are zero,
// so two bindings computing the same thing compare equal.
type Binding struct {
	Kind     BindingKind
	Ty       types.TypeID
	Bool     bool
	Int      syntax.Int128
	Prim     types.Sym
	Index    TupleIndex
	Term     types.TermID
	Variant  types.VariantID
	Instance uint32 // nonzero for impure constructor calls
	Sources  []BindingID
}

// bindingKey is the comparable form of a Binding.
type bindingKey struct {
	kind     BindingKind
	ty       types.TypeID
	b        bool
	i        syntax.Int128
	prim     types.Sym
	index    TupleIndex
	term     types.TermID
	variant  types.VariantID
	instance uint32
	sources  string
}

func (b *Binding) key() bindingKey {
	var buf []byte
	for _, s := range b.Sources {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(s))
	}
	return bindingKey{
		kind:     b.Kind,
		ty:       b.Ty,
		b:        b.Bool,
		i:        b.Int,
		prim:     b.Prim,
		index:    b.Index,
		term:     b.Term,
		variant:  b.Variant,
		instance: b.Instance,
		sources:  string(buf),
	}
}

// Inlinable reports whether b is cheap enough to recompute at every use,
// so it never needs a let-binding of its own.
func (b *Binding) Inlinable() bool {
	switch b.Kind {
	case ConstInt, ConstPrim, Argument, MatchTuple:
		return true
	case MakeVariant:
		return len(b.Sources) == 0
	}
	return false
}

func argument(i int) Binding {
	return Binding{Kind: Argument, Index: TupleIndex(i)}
}

func wrap(kind BindingKind, source BindingID) Binding {
	return Binding{Kind: kind, Sources: []BindingID{source}}
}

func field(kind BindingKind, source BindingID, v types.VariantID, i int) Binding {
	return Binding{Kind: kind, Variant: v, Index: TupleIndex(i), Sources: []BindingID{source}}
}
