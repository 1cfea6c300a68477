package types

import "github.com/you-not-fish/islec/internal/syntax"

// TypeKind classifies a Type.
type TypeKind uint8

const (
	// Invalid marks a type slot whose definition failed to check.
	Invalid TypeKind = iota
	Builtin
	Primitive
	Enum
)

var typeKindNames = [...]string{
	Invalid:   "invalid",
	Builtin:   "builtin",
	Primitive: "primitive",
	Enum:      "enum",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "?"
}

// VariantID is the index of a variant within its enum.
type VariantID uint32

// FieldID is the index of a field within its variant.
type FieldID uint32

// Type is a builtin, an opaque primitive or an enum.
type Type struct {
	ID   TypeID
	Kind TypeKind
	Name Sym
	Pos  syntax.Pos

	// Int is set for builtin integer types.
	Int *IntInfo

	// Enum only.
	Extern   bool
	NoDebug  bool
	Variants []*Variant
}

// IsInt reports whether t is a builtin integer type.
func (t *Type) IsInt() bool { return t.Kind == Builtin && t.Int != nil }

// IsPrim reports whether t is a user primitive type.
func (t *Type) IsPrim() bool { return t.Kind == Primitive }

// IsEnum reports whether t is an enum.
func (t *Type) IsEnum() bool { return t.Kind == Enum }

// Variant is one arm of an enum.
type Variant struct {
	Name     Sym // the variant's own name
	FullName Sym // "Type.Variant"
	ID       VariantID
	Fields   []*Field
}

// Field is a named, typed member of a variant.
type Field struct {
	Name Sym
	ID   FieldID
	Type TypeID
}
