package types

import "github.com/you-not-fish/islec/internal/syntax"

// RuleID identifies a checked rule.
type RuleID uint32

// VarID identifies a variable bound within one rule.
type VarID uint32

// BoundVar is a variable bound by a rule's patterns or let expressions.
type BoundVar struct {
	ID   VarID
	Name Sym
	Type TypeID
}

// Rule is a checked rewrite rule for the term Root.
type Rule struct {
	ID      RuleID
	Root    TermID
	Args    []Pattern
	IfLets  []IfLet
	RHS     Expr
	Vars    []BoundVar
	Prio    int64
	Pos     syntax.Pos
	Name    Sym
	HasName bool
}

// IfLet is an additional match of Pattern against the value of Expr.
type IfLet struct {
	LHS Pattern
	RHS Expr
}

// Pattern is a typed pattern. All patterns implement the Pattern interface.
type Pattern interface {
	Type() TypeID
	aPattern()
}

type (
	// VarPat matches a value equal to an already bound variable.
	VarPat struct {
		Ty  TypeID
		Var VarID
	}

	// BindPat binds Var to the value and matches Sub against it.
	BindPat struct {
		Ty  TypeID
		Var VarID
		Sub Pattern
	}

	BoolPat struct {
		Ty    TypeID
		Value bool
	}

	IntPat struct {
		Ty    TypeID
		Value syntax.Int128
	}

	// PrimPat matches an external constant.
	PrimPat struct {
		Ty    TypeID
		Value Sym
	}

	// TermPat destructures the value with Term's extractor or variant.
	TermPat struct {
		Ty   TypeID
		Term TermID
		Args []Pattern
	}

	WildcardPat struct {
		Ty TypeID
	}

	AndPat struct {
		Ty      TypeID
		Subpats []Pattern
	}
)

func (p *VarPat) Type() TypeID      { return p.Ty }
func (p *BindPat) Type() TypeID     { return p.Ty }
func (p *BoolPat) Type() TypeID     { return p.Ty }
func (p *IntPat) Type() TypeID      { return p.Ty }
func (p *PrimPat) Type() TypeID     { return p.Ty }
func (p *TermPat) Type() TypeID     { return p.Ty }
func (p *WildcardPat) Type() TypeID { return p.Ty }
func (p *AndPat) Type() TypeID      { return p.Ty }

func (*VarPat) aPattern()      {}
func (*BindPat) aPattern()     {}
func (*BoolPat) aPattern()     {}
func (*IntPat) aPattern()      {}
func (*PrimPat) aPattern()     {}
func (*TermPat) aPattern()     {}
func (*WildcardPat) aPattern() {}
func (*AndPat) aPattern()      {}

// Expr is a typed expression. All expressions implement the Expr interface.
type Expr interface {
	Type() TypeID
	aExpr()
}

type (
	// TermExpr calls Term's constructor or builds its variant.
	TermExpr struct {
		Ty   TypeID
		Term TermID
		Args []Expr
	}

	VarExpr struct {
		Ty  TypeID
		Var VarID
	}

	BoolExpr struct {
		Ty    TypeID
		Value bool
	}

	IntExpr struct {
		Ty    TypeID
		Value syntax.Int128
	}

	PrimExpr struct {
		Ty    TypeID
		Value Sym
	}

	// LetExpr evaluates Bindings in order and then Body.
	LetExpr struct {
		Ty       TypeID
		Bindings []LetBinding
		Body     Expr
	}
)

// LetBinding is one (var type value) entry of a let.
type LetBinding struct {
	Var   VarID
	Ty    TypeID
	Value Expr
}

func (e *TermExpr) Type() TypeID { return e.Ty }
func (e *VarExpr) Type() TypeID  { return e.Ty }
func (e *BoolExpr) Type() TypeID { return e.Ty }
func (e *IntExpr) Type() TypeID  { return e.Ty }
func (e *PrimExpr) Type() TypeID { return e.Ty }
func (e *LetExpr) Type() TypeID  { return e.Ty }

func (*TermExpr) aExpr() {}
func (*VarExpr) aExpr()  {}
func (*BoolExpr) aExpr() {}
func (*IntExpr) aExpr()  {}
func (*PrimExpr) aExpr() {}
func (*LetExpr) aExpr()  {}
