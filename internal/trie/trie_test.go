package trie

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/sema"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

type program struct {
	info *sema.Info
	sets []*RuleSet
}

// build checks src and builds its rule sets, failing on type errors.
func build(t *testing.T, src string) (*program, diag.List) {
	t.Helper()
	f, perrs := syntax.ParseFile("test.isle", strings.NewReader(src))
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs[0])
	}
	info, diags := sema.Check([]*syntax.File{f}, nil)
	if len(diags) > 0 {
		t.Fatalf("type errors: %v", diags.Err())
	}
	sets, diags := Build(info.TermEnv)
	return &program{info: info, sets: sets}, diags
}

func (p *program) set(t *testing.T, term string) *RuleSet {
	t.Helper()
	id, ok := p.info.TermEnv.TermByName(p.info.TypeEnv, term)
	if !ok {
		t.Fatalf("no term %q", term)
	}
	for _, rs := range p.sets {
		if rs.Term == id {
			return rs
		}
	}
	t.Fatalf("no rule set for %q", term)
	return nil
}

func (p *program) bindings(rs *RuleSet) []string {
	var out []string
	for i := range rs.Bindings {
		out = append(out, FormatBinding(p.info.TypeEnv, p.info.TermEnv, rs, BindingID(i)))
	}
	return out
}

func intConstraint(v int64, ty types.TypeID) Constraint {
	return Constraint{Kind: IntConstraint, Int: syntax.Int64(v), Ty: ty}
}

func TestDedupIdempotent(t *testing.T) {
	rs := newBuilder(types.NewTermEnv(), 0).rs
	a := rs.dedup(argument(0))
	c := rs.dedup(Binding{Kind: Constructor, Term: 3, Sources: []BindingID{a}})
	n := len(rs.Bindings)

	if got := rs.dedup(argument(0)); got != a {
		t.Errorf("argument re-added as %s, want %s", got, a)
	}
	if got := rs.dedup(Binding{Kind: Constructor, Term: 3, Sources: []BindingID{a}}); got != c {
		t.Errorf("constructor re-added as %s, want %s", got, c)
	}
	if len(rs.Bindings) != n {
		t.Errorf("table grew from %d to %d", n, len(rs.Bindings))
	}
	if got := rs.dedup(Binding{Kind: Constructor, Term: 3, Instance: 1, Sources: []BindingID{a}}); got == c {
		t.Errorf("impure instance merged with pure call")
	}
	if id, ok := rs.Find(argument(0)); !ok || id != a {
		t.Errorf("Find(arg 0) = %s, %v", id, ok)
	}
}

func TestSharedArgumentMatch(t *testing.T) {
	p, diags := build(t, `
(decl g (u32 u32) u32)
(rule (g 1 2) 10)
(rule (g 1 3) 20)
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	rs := p.set(t, "g")
	want := []string{
		"b0 = arg 0",
		"b1 = arg 1",
		"b2 = const_int <u32> [10]",
		"b3 = const_int <u32> [20]",
	}
	if diff := cmp.Diff(want, p.bindings(rs)); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	for i, r := range rs.Rules {
		c, ok := r.Constraint(0)
		if !ok || c != intConstraint(1, types.U32) {
			t.Errorf("rule %d: b0 constraint = %v, %v", i, c, ok)
		}
	}
	c0, _ := rs.Rules[0].Constraint(1)
	c1, _ := rs.Rules[1].Constraint(1)
	if c0 == c1 {
		t.Errorf("second argument constraints should differ: %v", c0)
	}
}

func TestExtractorArgumentsStayAligned(t *testing.T) {
	p, diags := build(t, `
(decl foo (u32) u32)
(extractor (foo a) a)
(decl f (u32 u32) u32)
(rule (f (foo 3) 5) 7)
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	rs := p.set(t, "f")
	for i, want := range []int64{3, 5} {
		id, ok := rs.Find(argument(i))
		if !ok {
			t.Fatalf("no binding for arg %d", i)
		}
		if c, ok := rs.Rules[0].Constraint(id); !ok || c != intConstraint(want, types.U32) {
			t.Errorf("arg %d constraint = %v, %v; want %d", i, c, ok, want)
		}
	}

	// A template parameter the decl does not have must not shift the
	// remaining arguments.
	f, perrs := syntax.ParseFile("test.isle", strings.NewReader(`
(decl foo (u32) u32)
(extractor (foo a b) (and a b))
(decl f (u32 u32) u32)
(rule (f (foo 1) 5) 7)
`))
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs[0])
	}
	if _, diags := sema.Check([]*syntax.File{f}, nil); len(diags) == 0 {
		t.Error("mismatched extractor arity was accepted")
	}
}

func TestImpureInstances(t *testing.T) {
	p, diags := build(t, `
(decl ic (u32) u32)
(extern constructor ic ic)
(decl pure pc (u32) u32)
(extern constructor pc pc)
(decl pair (u32 u32) u32)
(extern constructor pair pair)
(decl f (u32) u32)
(rule (f x) (pair (ic x) (ic x)))
(decl g (u32) u32)
(rule (g x) (pair (pc x) (pc x)))
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}

	f := p.set(t, "f")
	want := []string{
		"b0 = arg 0",
		"b1 = construct {ic} #1 b0",
		"b2 = construct {ic} #2 b0",
		"b3 = construct {pair} #3 b1 b2",
	}
	if diff := cmp.Diff(want, p.bindings(f)); diff != "" {
		t.Errorf("impure bindings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]BindingID{1, 2, 3}, f.Rules[0].Impure); diff != "" {
		t.Errorf("impure list mismatch (-want +got):\n%s", diff)
	}

	g := p.set(t, "g")
	want = []string{
		"b0 = arg 0",
		"b1 = construct {pc} b0",
		"b2 = construct {pair} #1 b1 b1",
	}
	if diff := cmp.Diff(want, p.bindings(g)); diff != "" {
		t.Errorf("pure bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestUnreachable(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "conflicting literals",
			src: `
(decl f (u32) u32)
(rule (f (and 1 2)) 0)
(rule (f x) x)
`,
			want: "rule requires binding to match both ConstInt { value: 1, ty: 3 } and ConstInt { value: 2, ty: 3 }",
		},
		{
			name: "through equality",
			src: `
(decl f (u32 u32) u32)
(rule (f (and x 1) (and x 2)) 0)
(rule (f x y) x)
`,
			want: "rule requires binding to match both ConstInt { value: 1, ty: 3 } and ConstInt { value: 2, ty: 3 }",
		},
		{
			name: "through variant fields",
			src: `
(type Op (enum (Add (a u32) (b u32))))
(decl f (Op Op) u32)
(rule (f (and x (Op.Add 1 _)) (and x (Op.Add 2 _))) 0)
(rule (f x y) 1)
`,
			want: "rule requires binding to match both ConstInt { value: 1, ty: 3 } and ConstInt { value: 2, ty: 3 }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, diags := build(t, tt.src)
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags.Err())
			}
			d := diags[0]
			if d.Kind != diag.Unreachable {
				t.Errorf("kind = %v, want %v", d.Kind, diag.Unreachable)
			}
			if d.Msg != tt.want {
				t.Errorf("message = %q\nwant %q", d.Msg, tt.want)
			}
			rs := p.set(t, "f")
			if len(rs.Rules) != 1 || rs.Rules[0].ID != 1 {
				t.Errorf("surviving rules = %d, want only rule 1", len(rs.Rules))
			}
		})
	}
}

func TestEqualityPropagation(t *testing.T) {
	p, diags := build(t, `
(type Op (enum (Add (a u32) (b u32))))
(decl f (Op Op) u32)
(rule (f (and x (Op.Add 1 _)) (and x (Op.Add _ 2))) 0)
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	r := p.set(t, "f").Rules[0]

	// b0 = arg 0, b1/b2 its fields, b3 = arg 1, b4/b5 its fields
	wantInts := map[BindingID]int64{1: 1, 2: 2, 4: 1, 5: 2}
	for id, v := range wantInts {
		c, ok := r.Constraint(id)
		if !ok || c != intConstraint(v, types.U32) {
			t.Errorf("%s constraint = %v, %v; want %d", id, c, ok, v)
		}
	}
	for _, id := range []BindingID{0, 3} {
		if c, ok := r.Constraint(id); !ok || c.Kind != VariantConstraint {
			t.Errorf("%s constraint = %v, %v; want variant", id, c, ok)
		}
	}
	if !r.Equals.IsEmpty() {
		t.Errorf("constrained classes left in Equals: %d members", r.Equals.Len())
	}
	if got := r.TotalConstraints(); got != 6 {
		t.Errorf("TotalConstraints = %d, want 6", got)
	}
}

func TestPartialAndMulti(t *testing.T) {
	p, diags := build(t, `
(decl partial p (u32) u32)
(rule (p x) x)
(decl multi m (u32) u32)
(extern extractor m m)
(decl multi f (u32) u32)
(rule (f (m y)) y)
(decl partial e (u32) u32)
(extern extractor e e)
(decl g (u32) u32)
(rule (g (e y)) y)
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}

	rs := p.set(t, "p")
	want := []string{"b0 = arg 0", "b1 = make_some b0"}
	if diff := cmp.Diff(want, p.bindings(rs)); diff != "" {
		t.Errorf("partial bindings mismatch (-want +got):\n%s", diff)
	}
	if rs.Rules[0].Result != 1 {
		t.Errorf("partial result = %s, want b1", rs.Rules[0].Result)
	}

	rs = p.set(t, "f")
	want = []string{"b0 = arg 0", "b1 = extract {m} b0", "b2 = iter b1"}
	if diff := cmp.Diff(want, p.bindings(rs)); diff != "" {
		t.Errorf("multi bindings mismatch (-want +got):\n%s", diff)
	}
	if r := rs.Rules[0]; !r.Iterators.Contains(1) || r.Iterators.Size() != 1 || r.Result != 2 {
		t.Errorf("multi rule = iterators %v result %s", r.Iterators.Slice(), r.Result)
	}

	rs = p.set(t, "g")
	want = []string{"b0 = arg 0", "b1 = extract {e} b0", "b2 = match_some b1"}
	if diff := cmp.Diff(want, p.bindings(rs)); diff != "" {
		t.Errorf("fallible bindings mismatch (-want +got):\n%s", diff)
	}
	if c, ok := rs.Rules[0].Constraint(1); !ok || c.Kind != SomeConstraint {
		t.Errorf("b1 constraint = %v, %v; want Some", c, ok)
	}
}

func TestIfLetRequiresSome(t *testing.T) {
	p, diags := build(t, `
(decl pure partial q (u32) u32)
(extern constructor q q)
(decl f (u32) u32)
(rule (f x) (if-let y (q x)) y)
`)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	rs := p.set(t, "f")
	want := []string{"b0 = arg 0", "b1 = construct {q} b0", "b2 = match_some b1"}
	if diff := cmp.Diff(want, p.bindings(rs)); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	r := rs.Rules[0]
	if c, ok := r.Constraint(1); !ok || c.Kind != SomeConstraint {
		t.Errorf("b1 constraint = %v, %v; want Some", c, ok)
	}
	if r.Result != 2 {
		t.Errorf("result = %s, want b2", r.Result)
	}
}

func TestMayOverlap(t *testing.T) {
	p, _ := build(t, `
(decl f (u32 u32) u32)
(rule (f 1 2) 0)
(rule (f 1 3) 0)
(rule (f 1 _) 0)
(rule (f x x) 0)
`)
	rules := p.set(t, "f").Rules
	tests := []struct {
		a, b            int
		overlap, subset bool
	}{
		{0, 1, false, false},
		{0, 2, true, true},
		{1, 2, true, true},
		{2, 0, true, true},
		{0, 3, true, false},
	}
	for _, tt := range tests {
		overlap, subset := rules[tt.a].MayOverlap(rules[tt.b])
		if overlap != tt.overlap || subset != tt.subset {
			t.Errorf("rules %d, %d: overlap=%v subset=%v, want %v %v",
				tt.a, tt.b, overlap, subset, tt.overlap, tt.subset)
		}
	}
}

func TestBuildOrder(t *testing.T) {
	p, _ := build(t, `
(decl b (u32) u32)
(decl a (u32) u32)
(rule (a x) x)
(rule (b x) x)
(rule (a 1) 2)
`)
	if len(p.sets) != 2 {
		t.Fatalf("%d rule sets, want 2", len(p.sets))
	}
	if p.sets[0].Term >= p.sets[1].Term {
		t.Errorf("rule sets not ordered by term: %d, %d", p.sets[0].Term, p.sets[1].Term)
	}
	if n := len(p.set(t, "a").Rules); n != 2 {
		t.Errorf("a has %d rules, want 2", n)
	}
}

func TestFprint(t *testing.T) {
	p, _ := build(t, `
(decl f (u32 u32) u32)
(rule (f x x) 7)
`)
	var sb strings.Builder
	if err := Fprint(&sb, p.info.TypeEnv, p.info.TermEnv, p.set(t, "f")); err != nil {
		t.Fatal(err)
	}
	want := `ruleset f:
  b0 = arg 0
  b1 = arg 1
  b2 = const_int <u32> [7]
  rule 0 at test.isle:3:1 prio 0:
    equal b0 b1
    return b2
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Fprint mismatch (-want +got):\n%s", diff)
	}
}
