package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/you-not-fish/islec/internal/syntax"
)

func TestBuiltinTypes(t *testing.T) {
	env := NewTypeEnv()
	tests := []struct {
		id     TypeID
		name   string
		isInt  bool
		signed bool
		bits   uint
	}{
		{Bool, "bool", false, false, 0},
		{U8, "u8", true, false, 8},
		{U16, "u16", true, false, 16},
		{U32, "u32", true, false, 32},
		{U64, "u64", true, false, 64},
		{U128, "u128", true, false, 128},
		{Usize, "usize", true, false, 64},
		{I8, "i8", true, true, 8},
		{I16, "i16", true, true, 16},
		{I32, "i32", true, true, 32},
		{I64, "i64", true, true, 64},
		{I128, "i128", true, true, 128},
		{Isize, "isize", true, true, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := env.Type(tt.id)
			if typ == nil {
				t.Fatalf("Type(%d) is nil", tt.id)
			}
			if got := env.TypeName(tt.id); got != tt.name {
				t.Errorf("TypeName() = %q, want %q", got, tt.name)
			}
			if typ.IsInt() != tt.isInt {
				t.Errorf("IsInt() = %v, want %v", typ.IsInt(), tt.isInt)
			}
			if tt.isInt && (typ.Int.Signed != tt.signed || typ.Int.Bits != tt.bits) {
				t.Errorf("Int = %+v, want signed=%v bits=%d", *typ.Int, tt.signed, tt.bits)
			}
			id, ok := env.TypeByName(tt.name)
			if !ok || id != tt.id {
				t.Errorf("TypeByName(%q) = %d, %v", tt.name, id, ok)
			}
		})
	}
	if env.NumTypes() != NumBuiltins {
		t.Errorf("NumTypes() = %d, want %d", env.NumTypes(), NumBuiltins)
	}
}

func TestIntFits(t *testing.T) {
	min128 := syntax.Int128{Hi: -1 << 63}
	tests := []struct {
		ty   TypeID
		v    syntax.Int128
		want bool
	}{
		{U8, syntax.Int64(0), true},
		{U8, syntax.Int64(255), true},
		{U8, syntax.Int64(256), false},
		{U8, syntax.Int64(-1), false},
		{I8, syntax.Int64(-128), true},
		{I8, syntax.Int64(127), true},
		{I8, syntax.Int64(128), false},
		{I8, syntax.Int64(-129), false},
		{U32, syntax.Int64(1 << 32), false},
		{U64, syntax.Int64(-1), false},
		{Usize, syntax.Int128{Lo: ^uint64(0)}, true},
		{Isize, syntax.Int128{Lo: ^uint64(0)}, false},
		{I128, min128, true},
		{U128, syntax.Int64(-1), true},
	}
	env := NewTypeEnv()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", BuiltinName(tt.ty), tt.v), func(t *testing.T) {
			if got := env.Type(tt.ty).Int.Fits(tt.v); got != tt.want {
				t.Errorf("Fits(%s) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestSymbolTable(t *testing.T) {
	var tab SymbolTable
	a := tab.Intern("a")
	b := tab.Intern("b")
	if a == b {
		t.Fatalf("distinct names interned to the same symbol")
	}
	if again := tab.Intern("a"); again != a {
		t.Errorf("Intern(a) = %d, want %d", again, a)
	}
	if _, ok := tab.Lookup("c"); ok {
		t.Errorf("Lookup(c) found an uninterned name")
	}
	if tab.Name(b) != "b" {
		t.Errorf("Name(b) = %q", tab.Name(b))
	}
	if tab.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tab.Len())
	}
}

func TestTypeEnvReserve(t *testing.T) {
	env := NewTypeEnv()
	a := env.Reserve(env.Intern("A"), syntax.NoPos)
	b := env.Reserve(env.Intern("B"), syntax.NoPos)
	if a != TypeID(NumBuiltins) || b != a+1 {
		t.Fatalf("Reserve ids = %d, %d", a, b)
	}
	env.Define(&Type{ID: a, Kind: Primitive, Name: env.Intern("A")})

	if env.Type(a) == nil {
		t.Errorf("defined type A is nil")
	}
	if env.Type(b) != nil {
		t.Errorf("undefined type B should be poisoned")
	}
	var names []string
	for _, typ := range env.Types() {
		names = append(names, env.Name(typ.Name))
	}
	want := []string{"bool", "u8", "u16", "u32", "u64", "u128", "usize", "i8", "i16", "i32", "i64", "i128", "isize", "A"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Types() mismatch (-want +got):\n%s", diff)
	}
}

func TestConverters(t *testing.T) {
	env := NewTermEnv()
	if !env.SetConverter(U8, U32, 3) {
		t.Fatal("first SetConverter failed")
	}
	if env.SetConverter(U8, U32, 4) {
		t.Error("duplicate SetConverter succeeded")
	}
	if id, ok := env.Converter(U8, U32); !ok || id != 3 {
		t.Errorf("Converter(u8, u32) = %d, %v", id, ok)
	}
	if _, ok := env.Converter(U32, U8); ok {
		t.Error("converters are directional")
	}
}

func TestExternalSig(t *testing.T) {
	env := NewTypeEnv()
	fn := env.Intern("ext_f")
	name := env.Intern("f")

	tests := []struct {
		name  string
		term  *Term
		ctor  bool
		want  ExternalSig
		found bool
	}{
		{
			name: "partial constructor",
			term: &Term{Name: name, ArgTys: []TypeID{U8}, RetTy: U32, Kind: DeclTerm,
				Flags: TermFlags{Partial: true}, Constructor: &Constructor{Kind: ExternalConstructor, Func: fn}},
			ctor:  true,
			want:  ExternalSig{FuncName: "ext_f", FullName: "C::ext_f", ParamTys: []TypeID{U8}, RetTys: []TypeID{U32}, RetKind: Option},
			found: true,
		},
		{
			name: "internal constructor",
			term: &Term{Name: name, ArgTys: []TypeID{U8}, RetTy: U32, Kind: DeclTerm,
				Constructor: &Constructor{Kind: InternalConstructor}},
			ctor:  true,
			want:  ExternalSig{FuncName: "constructor_f", FullName: "constructor_f", ParamTys: []TypeID{U8}, RetTys: []TypeID{U32}, RetKind: Plain},
			found: true,
		},
		{
			name: "multi extractor",
			term: &Term{Name: name, ArgTys: []TypeID{U8, U16}, RetTy: U32, Kind: DeclTerm,
				Flags: TermFlags{Multi: true}, Extractor: &Extractor{Kind: ExternalExtractor, Func: fn, Infallible: true}},
			want:  ExternalSig{FuncName: "ext_f", FullName: "C::ext_f", ParamTys: []TypeID{U32}, RetTys: []TypeID{U8, U16}, RetKind: Iterator},
			found: true,
		},
		{
			name: "infallible extractor",
			term: &Term{Name: name, ArgTys: []TypeID{U8}, RetTy: U32, Kind: DeclTerm,
				Extractor: &Extractor{Kind: ExternalExtractor, Func: fn, Infallible: true}},
			want:  ExternalSig{FuncName: "ext_f", FullName: "C::ext_f", ParamTys: []TypeID{U32}, RetTys: []TypeID{U8}, RetKind: Plain},
			found: true,
		},
		{
			name: "no extractor",
			term: &Term{Name: name, RetTy: U32, Kind: DeclTerm},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ExternalSig
			var ok bool
			if tt.ctor {
				got, ok = tt.term.ConstructorSig(&env.Syms)
			} else {
				got, ok = tt.term.ExtractorSig(&env.Syms)
			}
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sig mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// recorder logs every visitor call and hands out sequential ids.
type recorder struct {
	next int
	log  []string
}

func (r *recorder) id() int {
	r.next++
	return r.next - 1
}

func (r *recorder) AddMatchEqual(a, b int, ty TypeID) {
	r.log = append(r.log, fmt.Sprintf("eq %d %d", a, b))
}
func (r *recorder) AddMatchBool(in int, ty TypeID, v bool) {
	r.log = append(r.log, fmt.Sprintf("bool %d %v", in, v))
}
func (r *recorder) AddMatchInt(in int, ty TypeID, v syntax.Int128) {
	r.log = append(r.log, fmt.Sprintf("int %d %s", in, v))
}
func (r *recorder) AddMatchPrim(in int, ty TypeID, v Sym) {
	r.log = append(r.log, fmt.Sprintf("prim %d", in))
}
func (r *recorder) AddMatchVariant(in int, inTy TypeID, argTys []TypeID, v VariantID) []int {
	r.log = append(r.log, fmt.Sprintf("variant %d %d", in, v))
	out := make([]int, len(argTys))
	for i := range out {
		out[i] = r.id()
	}
	return out
}
func (r *recorder) AddExtract(in int, inTy TypeID, outTys []TypeID, term TermID, infallible, multi bool) []int {
	r.log = append(r.log, fmt.Sprintf("extract %d term%d infallible=%v", in, term, infallible))
	out := make([]int, len(outTys))
	for i := range out {
		out[i] = r.id()
	}
	return out
}
func (r *recorder) AddConstBool(ty TypeID, v bool) int { return r.id() }
func (r *recorder) AddConstInt(ty TypeID, v syntax.Int128) int {
	id := r.id()
	r.log = append(r.log, fmt.Sprintf("const %s = %d", v, id))
	return id
}
func (r *recorder) AddConstPrim(ty TypeID, v Sym) int { return r.id() }
func (r *recorder) AddCreateVariant(in []int, ty TypeID, v VariantID) int {
	id := r.id()
	r.log = append(r.log, fmt.Sprintf("make %v = %d", in, id))
	return id
}
func (r *recorder) AddConstruct(in []int, ty TypeID, term TermID, pure, infallible, multi bool) int {
	id := r.id()
	r.log = append(r.log, fmt.Sprintf("construct term%d %v = %d", term, in, id))
	return id
}
func (r *recorder) AddArg(i int, ty TypeID) int {
	id := r.id()
	r.log = append(r.log, fmt.Sprintf("arg %d = %d", i, id))
	return id
}
func (r *recorder) ExprAsPattern(e int) int {
	r.log = append(r.log, fmt.Sprintf("aspat %d", e))
	return e
}

func TestVisitRuleOrder(t *testing.T) {
	tyenv := NewTypeEnv()
	env := NewTermEnv()
	f := env.AddTerm(&Term{Name: tyenv.Intern("f"), ArgTys: []TypeID{U32, U32}, RetTy: U32, Kind: DeclTerm,
		Constructor: &Constructor{Kind: InternalConstructor}})
	g := env.AddTerm(&Term{Name: tyenv.Intern("g"), ArgTys: []TypeID{U32}, RetTy: U32, Kind: DeclTerm,
		Flags: TermFlags{Partial: true}, Constructor: &Constructor{Kind: ExternalConstructor},
		Extractor: &Extractor{Kind: ExternalExtractor}})

	// (rule (f (g x) x) (if-let 7 (g x)) (g x))
	r := &Rule{
		Root: f,
		Args: []Pattern{
			&TermPat{Ty: U32, Term: g, Args: []Pattern{&BindPat{Ty: U32, Var: 0, Sub: &WildcardPat{Ty: U32}}}},
			&VarPat{Ty: U32, Var: 0},
		},
		IfLets: []IfLet{{
			LHS: &IntPat{Ty: U32, Value: syntax.Int64(7)},
			RHS: &TermExpr{Ty: U32, Term: g, Args: []Expr{&VarExpr{Ty: U32, Var: 0}}},
		}},
		RHS: &LetExpr{Ty: U32, Bindings: []LetBinding{{Var: 1, Ty: U32, Value: &IntExpr{Ty: U32, Value: syntax.Int64(5)}}},
			Body: &TermExpr{Ty: U32, Term: g, Args: []Expr{&VarExpr{Ty: U32, Var: 1}}}},
	}
	rec := &recorder{}
	res := VisitRule[int](r, rec, env)

	want := []string{
		"arg 0 = 0",
		"extract 0 term1 infallible=false",
		"arg 1 = 2",
		"eq 2 1",
		"construct term1 [1] = 3",
		"aspat 3",
		"int 3 7",
		"const 5 = 4",
		"construct term1 [4] = 5",
	}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	if res != 5 {
		t.Errorf("result = %d, want 5", res)
	}
}

func TestFprint(t *testing.T) {
	tyenv := NewTypeEnv()
	env := NewTermEnv()
	a := tyenv.Reserve(tyenv.Intern("A"), syntax.NoPos)
	tyenv.Define(&Type{ID: a, Kind: Enum, Name: tyenv.Intern("A"), Extern: true, Variants: []*Variant{
		{Name: tyenv.Intern("B"), FullName: tyenv.Intern("A.B"), Fields: []*Field{{Name: tyenv.Intern("x"), Type: U32}}},
		{Name: tyenv.Intern("C"), FullName: tyenv.Intern("A.C"), ID: 1},
	}})
	env.AddTerm(&Term{Name: tyenv.Intern("f"), ArgTys: []TypeID{U32}, RetTy: a, Kind: DeclTerm,
		Flags: TermFlags{Pure: true}, Constructor: &Constructor{Kind: InternalConstructor}})

	var b strings.Builder
	if err := Fprint(&b, tyenv, env); err != nil {
		t.Fatal(err)
	}
	want := "type A extern enum\n\tB (x u32)\n\tC\ndecl pure f (u32) A constructor=internal\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("Fprint mismatch (-want +got):\n%s", diff)
	}
}
