package syntax

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToMap(node))
}

// ToMap converts an AST into nested maps and slices suitable for generic
// encoders (JSON, YAML).
func ToMap(node Node) interface{} {
	if node == nil {
		return nil
	}

	obj := func(kind string, pos Pos) map[string]interface{} {
		return map[string]interface{}{"type": kind, "pos": pos.String()}
	}

	switch n := node.(type) {
	case *File:
		m := obj("File", n.pos)
		m["name"] = n.Name
		m["defs"] = mapSlice(n.Defs, func(d Def) interface{} { return ToMap(d) })
		return m

	case *Ident:
		return n.Name

	case *Pragma:
		m := obj("Pragma", n.pos)
		m["name"] = n.Name.Name
		return m

	case *TypeDef:
		m := obj("TypeDef", n.pos)
		m["name"] = n.Name.Name
		m["extern"] = n.Extern
		m["nodebug"] = n.NoDebug
		m["value"] = ToMap(n.Value)
		return m

	case *PrimitiveType:
		m := obj("Primitive", n.pos)
		m["name"] = n.Name.Name
		return m

	case *EnumType:
		m := obj("Enum", n.pos)
		m["variants"] = mapSlice(n.Variants, func(v *Variant) interface{} { return ToMap(v) })
		return m

	case *Variant:
		m := obj("Variant", n.pos)
		m["name"] = n.Name.Name
		m["fields"] = mapSlice(n.Fields, func(f *Field) interface{} {
			return map[string]interface{}{"name": f.Name.Name, "ty": f.Type.Name}
		})
		return m

	case *Decl:
		m := obj("Decl", n.pos)
		m["term"] = n.Term.Name
		m["args"] = mapSlice(n.ArgTypes, func(id *Ident) interface{} { return id.Name })
		m["ret"] = n.RetType.Name
		m["pure"] = n.Pure
		m["multi"] = n.Multi
		m["partial"] = n.Partial
		return m

	case *Rule:
		m := obj("Rule", n.pos)
		if n.Name != nil {
			m["name"] = n.Name.Name
		}
		if n.HasPrio {
			m["prio"] = n.Prio
		}
		m["pattern"] = ToMap(n.Pattern)
		m["iflets"] = mapSlice(n.IfLets, func(il *IfLet) interface{} { return ToMap(il) })
		m["expr"] = ToMap(n.Expr)
		return m

	case *IfLet:
		m := obj("IfLet", n.pos)
		m["pattern"] = ToMap(n.Pattern)
		m["expr"] = ToMap(n.Expr)
		return m

	case *Extractor:
		m := obj("Extractor", n.pos)
		m["term"] = n.Term.Name
		m["args"] = mapSlice(n.Args, func(id *Ident) interface{} { return id.Name })
		m["template"] = ToMap(n.Template)
		return m

	case *ExternConstructor:
		m := obj("ExternConstructor", n.pos)
		m["term"] = n.Term.Name
		m["func"] = n.Func.Name
		return m

	case *ExternExtractor:
		m := obj("ExternExtractor", n.pos)
		m["term"] = n.Term.Name
		m["func"] = n.Func.Name
		m["infallible"] = n.Infallible
		return m

	case *ExternConst:
		m := obj("ExternConst", n.pos)
		m["name"] = n.Name.Name
		m["ty"] = n.Type.Name
		return m

	case *Converter:
		m := obj("Converter", n.pos)
		m["inner"] = n.Inner.Name
		m["outer"] = n.Outer.Name
		m["term"] = n.Term.Name
		return m

	case *VarPattern:
		m := obj("Var", n.pos)
		m["var"] = n.Var.Name
		return m

	case *BindPattern:
		m := obj("Bind", n.pos)
		m["var"] = n.Var.Name
		m["subpat"] = ToMap(n.Sub)
		return m

	case *BoolPattern:
		m := obj("ConstBool", n.pos)
		m["value"] = n.Value
		return m

	case *IntPattern:
		m := obj("ConstInt", n.pos)
		m["value"] = n.Value.String()
		return m

	case *ConstPattern:
		m := obj("ConstPrim", n.pos)
		m["name"] = n.Name.Name
		return m

	case *WildcardPattern:
		return obj("Wildcard", n.pos)

	case *TermPattern:
		m := obj("Term", n.pos)
		m["sym"] = n.Sym.Name
		m["args"] = mapSlice(n.Args, func(a Pattern) interface{} { return ToMap(a) })
		return m

	case *AndPattern:
		m := obj("And", n.pos)
		m["subpats"] = mapSlice(n.Subpats, func(a Pattern) interface{} { return ToMap(a) })
		return m

	case *MacroArgPattern:
		m := obj("MacroArg", n.pos)
		m["index"] = n.Index
		return m

	case *TermExpr:
		m := obj("Term", n.pos)
		m["sym"] = n.Sym.Name
		m["args"] = mapSlice(n.Args, func(a Expr) interface{} { return ToMap(a) })
		return m

	case *VarExpr:
		m := obj("Var", n.pos)
		m["name"] = n.Name.Name
		return m

	case *BoolExpr:
		m := obj("ConstBool", n.pos)
		m["value"] = n.Value
		return m

	case *IntExpr:
		m := obj("ConstInt", n.pos)
		m["value"] = n.Value.String()
		return m

	case *ConstExpr:
		m := obj("ConstPrim", n.pos)
		m["name"] = n.Name.Name
		return m

	case *LetExpr:
		m := obj("Let", n.pos)
		m["defs"] = mapSlice(n.Defs, func(d *LetDef) interface{} {
			return map[string]interface{}{
				"var":   d.Var.Name,
				"ty":    d.Type.Name,
				"value": ToMap(d.Value),
			}
		})
		m["body"] = ToMap(n.Body)
		return m
	}

	return map[string]interface{}{"type": "Unknown"}
}

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
