package trie

import (
	"cmp"
	"fmt"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// ConstraintKind orders constraint kinds; match arms follow this order.
type ConstraintKind uint8

const (
	VariantConstraint ConstraintKind = iota
	BoolConstraint
	IntConstraint
	PrimConstraint
	SomeConstraint
)

// Constraint is a test a rule requires of one binding.
type Constraint struct {
	Kind    ConstraintKind
	Ty      types.TypeID    // Variant, Bool, Int
	Variant types.VariantID // Variant
	Fields  TupleIndex      // Variant: number of fields exposed
	Bool    bool
	Int     syntax.Int128
	Prim    types.Sym
}

// Compare orders constraints by kind, then by their fields.
func (c Constraint) Compare(d Constraint) int {
	if c.Kind != d.Kind {
		return cmp.Compare(c.Kind, d.Kind)
	}
	switch c.Kind {
	case VariantConstraint:
		if c.Ty != d.Ty {
			return cmp.Compare(c.Ty, d.Ty)
		}
		if c.Variant != d.Variant {
			return cmp.Compare(c.Variant, d.Variant)
		}
		return cmp.Compare(c.Fields, d.Fields)
	case BoolConstraint:
		if c.Bool != d.Bool {
			if c.Bool {
				return 1
			}
			return -1
		}
		return cmp.Compare(c.Ty, d.Ty)
	case IntConstraint:
		if n := c.Int.Compare(d.Int); n != 0 {
			return n
		}
		return cmp.Compare(c.Ty, d.Ty)
	case PrimConstraint:
		return cmp.Compare(c.Prim, d.Prim)
	}
	return 0
}

// BindingsFor returns the bindings a successful test of c on source
// exposes: one per variant field, or the contents of an optional value.
func (c Constraint) BindingsFor(source BindingID) []Binding {
	switch c.Kind {
	case SomeConstraint:
		return []Binding{wrap(MatchSome, source)}
	case VariantConstraint:
		out := make([]Binding, c.Fields)
		for i := range out {
			out[i] = field(MatchVariant, source, c.Variant, i)
		}
		return out
	}
	return nil
}

func (c Constraint) String() string {
	switch c.Kind {
	case VariantConstraint:
		return fmt.Sprintf("Variant { ty: %d, variant: %d, fields: %d }", c.Ty, c.Variant, c.Fields)
	case BoolConstraint:
		return fmt.Sprintf("ConstBool { value: %t, ty: %d }", c.Bool, c.Ty)
	case IntConstraint:
		return fmt.Sprintf("ConstInt { value: %s, ty: %d }", c.Int, c.Ty)
	case PrimConstraint:
		return fmt.Sprintf("ConstPrim { value: %d }", c.Prim)
	case SomeConstraint:
		return "Some"
	}
	return fmt.Sprintf("constraint(%d)", int(c.Kind))
}
