package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 3 main classes of nodes: top-level definitions, patterns
// (left-hand sides) and expressions (right-hand sides). All nodes implement
// the Node interface.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of the first character belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Def is the interface for all top-level definitions.
type Def interface {
	Node
	aDef()
}

// Pattern is the interface for all left-hand side nodes.
type Pattern interface {
	Node
	aPattern()
}

// Expr is the interface for all right-hand side nodes.
type Expr interface {
	Node
	aExpr()
}

// TypeValue is the body of a type definition.
type TypeValue interface {
	Node
	aTypeValue()
}

// ----------------------------------------------------------------------------
// Base node types

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

type def struct{ node }

func (*def) aDef() {}

type pattern struct{ node }

func (*pattern) aPattern() {}

type expr struct{ node }

func (*expr) aExpr() {}

type typeValue struct{ node }

func (*typeValue) aTypeValue() {}

// Ident is a symbol occurrence.
type Ident struct {
	node
	Name string
}

// NewIdent returns an identifier at pos.
func NewIdent(name string, pos Pos) *Ident {
	return &Ident{node: node{pos: pos}, Name: name}
}

// File is the list of definitions of one source file.
type File struct {
	node
	Name string
	Defs []Def
}

// ----------------------------------------------------------------------------
// Definitions

// Pragma represents (pragma Name). Pragmas are accepted and ignored.
type Pragma struct {
	def
	Name *Ident
}

// TypeDef represents (type Name [extern] [nodebug] Value).
type TypeDef struct {
	def
	Name    *Ident
	Extern  bool
	NoDebug bool
	Value   TypeValue
}

// PrimitiveType represents (primitive Name).
type PrimitiveType struct {
	typeValue
	Name *Ident
}

// EnumType represents (enum Variant...).
type EnumType struct {
	typeValue
	Variants []*Variant
}

// Variant is one enum alternative: Name or (Name (field Type)...).
type Variant struct {
	node
	Name   *Ident
	Fields []*Field
}

// Field is a named, typed variant field.
type Field struct {
	node
	Name *Ident
	Type *Ident
}

// Decl represents (decl [pure] [multi] [partial] Term (Arg...) Ret).
type Decl struct {
	def
	Term     *Ident
	ArgTypes []*Ident
	RetType  *Ident
	Pure     bool
	Multi    bool
	Partial  bool
}

// Rule represents (rule [Name] [Prio] Pattern IfLet... Expr).
type Rule struct {
	def
	Name    *Ident // nil if unnamed
	Prio    int64
	HasPrio bool
	Pattern Pattern
	IfLets  []*IfLet
	Expr    Expr
}

// IfLet represents (if-let Pattern Expr); (if Expr) is parsed with a
// wildcard pattern.
type IfLet struct {
	node
	Pattern Pattern
	Expr    Expr
}

// Extractor represents (extractor (Term Arg...) Template).
type Extractor struct {
	def
	Term     *Ident
	Args     []*Ident
	Template Pattern
}

// ExternConstructor represents (extern constructor Term Func).
type ExternConstructor struct {
	def
	Term *Ident
	Func *Ident
}

// ExternExtractor represents (extern extractor [infallible] Term Func).
type ExternExtractor struct {
	def
	Term       *Ident
	Func       *Ident
	Infallible bool
}

// ExternConst represents (extern const $Name Type).
type ExternConst struct {
	def
	Name *Ident // without the leading '$'
	Type *Ident
}

// Converter represents (convert Inner Outer Term).
type Converter struct {
	def
	Inner *Ident
	Outer *Ident
	Term  *Ident
}

// ----------------------------------------------------------------------------
// Patterns

// VarPattern matches anything and binds it, or tests equality with an
// already-bound variable of the same name.
type VarPattern struct {
	pattern
	Var *Ident
}

// BindPattern represents Var @ Sub.
type BindPattern struct {
	pattern
	Var *Ident
	Sub Pattern
}

// BoolPattern matches a boolean constant.
type BoolPattern struct {
	pattern
	Value bool
}

// IntPattern matches an integer constant.
type IntPattern struct {
	pattern
	Value Int128
}

// ConstPattern matches an external constant: $Name.
type ConstPattern struct {
	pattern
	Name *Ident // without the leading '$'
}

// WildcardPattern represents _.
type WildcardPattern struct {
	pattern
}

// TermPattern represents (Term Arg...).
type TermPattern struct {
	pattern
	Sym  *Ident
	Args []Pattern
}

// AndPattern represents (and Sub...).
type AndPattern struct {
	pattern
	Subpats []Pattern
}

// MacroArgPattern is a placeholder for an extractor macro parameter.
// It only appears in templates built by MakeMacroTemplate.
type MacroArgPattern struct {
	pattern
	Index int
}

// ----------------------------------------------------------------------------
// Expressions

// TermExpr represents (Term Arg...).
type TermExpr struct {
	expr
	Sym  *Ident
	Args []Expr
}

// VarExpr references a bound variable.
type VarExpr struct {
	expr
	Name *Ident
}

// BoolExpr is a boolean constant.
type BoolExpr struct {
	expr
	Value bool
}

// IntExpr is an integer constant.
type IntExpr struct {
	expr
	Value Int128
}

// ConstExpr is an external constant: $Name.
type ConstExpr struct {
	expr
	Name *Ident
}

// LetExpr represents (let ((Var Type Value)...) Body).
type LetExpr struct {
	expr
	Defs []*LetDef
	Body Expr
}

// LetDef is one let binding.
type LetDef struct {
	node
	Var   *Ident
	Type  *Ident
	Value Expr
}
