package types

import (
	"fmt"

	"github.com/you-not-fish/islec/internal/syntax"
)

// PatternVisitor receives the matching operations of a pattern. ID is the
// visitor's handle for a value.
type PatternVisitor[ID any] interface {
	// AddMatchEqual requires values a and b to be equal.
	AddMatchEqual(a, b ID, ty TypeID)
	AddMatchBool(input ID, ty TypeID, v bool)
	AddMatchInt(input ID, ty TypeID, v syntax.Int128)
	AddMatchPrim(input ID, ty TypeID, v Sym)
	// AddMatchVariant requires input to be variant v and returns its fields.
	AddMatchVariant(input ID, inputTy TypeID, argTys []TypeID, v VariantID) []ID
	// AddExtract runs term's extractor on input and returns its outputs.
	AddExtract(input ID, inputTy TypeID, outputTys []TypeID, term TermID, infallible, multi bool) []ID
}

// ExprVisitor receives the value-building operations of an expression.
type ExprVisitor[ID any] interface {
	AddConstBool(ty TypeID, v bool) ID
	AddConstInt(ty TypeID, v syntax.Int128) ID
	AddConstPrim(ty TypeID, v Sym) ID
	AddCreateVariant(inputs []ID, ty TypeID, v VariantID) ID
	AddConstruct(inputs []ID, ty TypeID, term TermID, pure, infallible, multi bool) ID
}

// RuleVisitor receives a whole rule.
type RuleVisitor[ID any] interface {
	PatternVisitor[ID]
	ExprVisitor[ID]
	// AddArg returns the value of the root term's index-th argument.
	AddArg(index int, ty TypeID) ID
	// ExprAsPattern turns the result of an if-let expression into a
	// value that patterns can match.
	ExprAsPattern(e ID) ID
}

// VisitRule feeds r to v: each argument pattern left to right, then each
// if-let (expression first), then the right-hand side, whose value it
// returns.
func VisitRule[ID any](r *Rule, v RuleVisitor[ID], env *TermEnv) ID {
	vars := make(map[VarID]ID)
	root := env.Term(r.Root)
	for i, sub := range r.Args {
		val := v.AddArg(i, root.ArgTys[i])
		VisitPattern[ID](sub, v, val, env, vars)
	}
	for _, il := range r.IfLets {
		e := VisitExpr[ID](il.RHS, v, env, vars)
		val := v.ExprAsPattern(e)
		VisitPattern[ID](il.LHS, v, val, env, vars)
	}
	return VisitExpr[ID](r.RHS, v, env, vars)
}

// VisitPattern feeds the match of p against input to v, recording variable
// bindings in vars.
func VisitPattern[ID any](p Pattern, v PatternVisitor[ID], input ID, env *TermEnv, vars map[VarID]ID) {
	switch p := p.(type) {
	case *BindPat:
		if _, ok := vars[p.Var]; ok {
			panic(fmt.Sprintf("variable %d bound twice", p.Var))
		}
		vars[p.Var] = input
		VisitPattern(p.Sub, v, input, env, vars)
	case *VarPat:
		if val, ok := vars[p.Var]; ok {
			v.AddMatchEqual(input, val, p.Ty)
		}
	case *BoolPat:
		v.AddMatchBool(input, p.Ty, p.Value)
	case *IntPat:
		v.AddMatchInt(input, p.Ty, p.Value)
	case *PrimPat:
		v.AddMatchPrim(input, p.Ty, p.Value)
	case *TermPat:
		t := env.Term(p.Term)
		var vals []ID
		switch {
		case t.IsEnumVariant():
			vals = v.AddMatchVariant(input, p.Ty, t.ArgTys, t.Variant)
		case t.Extractor == nil:
			panic("pattern uses a term without extractor")
		case t.Extractor.Kind == InternalExtractor:
			panic("internal extractor was not expanded")
		default:
			outTys := make([]TypeID, len(p.Args))
			for i, a := range p.Args {
				outTys[i] = a.Type()
			}
			multi := t.Flags.Multi
			vals = v.AddExtract(input, t.RetTy, outTys, p.Term, t.Extractor.Infallible && !multi, multi)
		}
		for i, a := range p.Args {
			VisitPattern(a, v, vals[i], env, vars)
		}
	case *AndPat:
		for _, sub := range p.Subpats {
			VisitPattern(sub, v, input, env, vars)
		}
	case *WildcardPat:
	default:
		panic(fmt.Sprintf("unexpected pattern %T", p))
	}
}

// VisitExpr feeds the evaluation of e to v and returns its value.
func VisitExpr[ID any](e Expr, v ExprVisitor[ID], env *TermEnv, vars map[VarID]ID) ID {
	switch e := e.(type) {
	case *BoolExpr:
		return v.AddConstBool(e.Ty, e.Value)
	case *IntExpr:
		return v.AddConstInt(e.Ty, e.Value)
	case *PrimExpr:
		return v.AddConstPrim(e.Ty, e.Value)
	case *LetExpr:
		scope := make(map[VarID]ID, len(vars)+len(e.Bindings))
		for k, val := range vars {
			scope[k] = val
		}
		for _, b := range e.Bindings {
			scope[b.Var] = VisitExpr(b.Value, v, env, scope)
		}
		return VisitExpr(e.Body, v, env, scope)
	case *VarExpr:
		val, ok := vars[e.Var]
		if !ok {
			panic(fmt.Sprintf("unbound variable %d", e.Var))
		}
		return val
	case *TermExpr:
		t := env.Term(e.Term)
		args := make([]ID, len(e.Args))
		for i, a := range e.Args {
			args[i] = VisitExpr(a, v, env, vars)
		}
		switch {
		case t.IsEnumVariant():
			return v.AddCreateVariant(args, e.Ty, t.Variant)
		case t.Constructor != nil:
			return v.AddConstruct(args, e.Ty, e.Term, t.Flags.Pure, !t.Flags.Partial, t.Flags.Multi)
		default:
			panic("expression uses a term without constructor")
		}
	default:
		panic(fmt.Sprintf("unexpected expression %T", e))
	}
}
