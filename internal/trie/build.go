package trie

import (
	"sort"

	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// Build groups the rules of env by root term and builds one RuleSet per
// term, ordered by term id. A rule whose constraints contradict each other
// is reported as unreachable and left out of its set.
func Build(env *types.TermEnv) ([]*RuleSet, diag.List) {
	var diags diag.List
	builders := make(map[types.TermID]*builder)
	for _, r := range env.Rules() {
		b, ok := builders[r.Root]
		if !ok {
			b = newBuilder(env, r.Root)
			builders[r.Root] = b
		}
		b.addRule(r, &diags)
	}

	sets := make([]*RuleSet, 0, len(builders))
	for _, b := range builders {
		sets = append(sets, b.rs)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Term < sets[j].Term })
	return sets, diags
}

type conflict struct {
	pos  syntax.Pos
	a, b Constraint
}

// builder translates rules of one term into its RuleSet. It implements
// types.RuleVisitor over binding ids.
type builder struct {
	env *types.TermEnv
	rs  *RuleSet

	// per rule
	cur         *Rule
	instance    uint32
	unreachable []conflict
}

var _ types.RuleVisitor[BindingID] = (*builder)(nil)

func newBuilder(env *types.TermEnv, term types.TermID) *builder {
	return &builder{
		env: env,
		rs:  &RuleSet{Term: term, index: make(map[bindingKey]BindingID)},
	}
}

func (b *builder) addRule(r *types.Rule, diags *diag.List) {
	b.instance = 0
	b.cur = newRule(r)
	result := types.VisitRule[BindingID](r, b, b.env)
	if b.env.Term(r.Root).IsPartial() {
		result = b.rs.dedup(wrap(MakeSome, result))
	}
	b.cur.Result = result

	b.normalize()

	if len(b.unreachable) == 0 {
		b.rs.Rules = append(b.rs.Rules, b.cur)
	}
	for _, c := range b.unreachable {
		diags.Addf(diag.Unreachable, c.pos, "rule requires binding to match both %v and %v", c.a, c.b)
	}
	b.unreachable = b.unreachable[:0]
	b.cur = nil
}

// normalize moves every constraint on a member of an equality class onto
// all members, merging the exposed fields pairwise. Classes that end up
// constrained are removed from Equals since the constraints now decide
// them.
func (b *builder) normalize() {
	r := b.cur
	type pending struct {
		id BindingID
		c  Constraint
	}
	var todo []pending
	for _, id := range r.Constrained() {
		if root, ok := r.Equals.Find(id); ok {
			todo = append(todo, pending{root, r.constraints[id]})
		}
	}
	push := func(id BindingID) {
		if c, ok := r.constraints[id]; ok {
			todo = append(todo, pending{id, c})
		}
	}

	for len(todo) > 0 {
		p := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		class := r.Equals.RemoveSetOf(p.id)
		if len(class) == 0 {
			continue
		}
		base := b.setConstraint(class[0], p.c)
		for _, x := range base {
			push(x)
		}
		for _, other := range class[1:] {
			fields := b.setConstraint(other, p.c)
			for i, x := range base {
				y := fields[i]
				push(y)
				if x != y {
					r.Equals.Merge(x, y)
				}
			}
		}
	}
}

// setConstraint records c on input for the current rule and returns the
// bindings the constraint exposes.
func (b *builder) setConstraint(input BindingID, c Constraint) []BindingID {
	if prev, ok := b.cur.setConstraint(input, c); !ok {
		b.unreachable = append(b.unreachable, conflict{pos: b.cur.Pos, a: prev, b: c})
	}
	fields := c.BindingsFor(input)
	ids := make([]BindingID, len(fields))
	for i, f := range fields {
		ids[i] = b.rs.dedup(f)
	}
	return ids
}

func (b *builder) AddArg(index int, ty types.TypeID) BindingID {
	return b.rs.dedup(argument(index))
}

// ExprAsPattern requires every optional value the expression unwraps to
// be present: in an if-let a missing value means the rule does not match.
func (b *builder) ExprAsPattern(e BindingID) BindingID {
	todo := []BindingID{e}
	for len(todo) > 0 {
		id := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		bnd := b.rs.Binding(id)
		todo = append(todo, bnd.Sources...)
		if bnd.Kind == MatchSome {
			b.setConstraint(bnd.Sources[0], Constraint{Kind: SomeConstraint})
		}
	}
	return e
}

func (b *builder) AddMatchEqual(x, y BindingID, ty types.TypeID) {
	if x != y {
		b.cur.Equals.Merge(x, y)
	}
}

func (b *builder) AddMatchBool(input BindingID, ty types.TypeID, v bool) {
	b.setConstraint(input, Constraint{Kind: BoolConstraint, Bool: v, Ty: ty})
}

func (b *builder) AddMatchInt(input BindingID, ty types.TypeID, v syntax.Int128) {
	b.setConstraint(input, Constraint{Kind: IntConstraint, Int: v, Ty: ty})
}

func (b *builder) AddMatchPrim(input BindingID, ty types.TypeID, v types.Sym) {
	b.setConstraint(input, Constraint{Kind: PrimConstraint, Prim: v})
}

func (b *builder) AddMatchVariant(input BindingID, inputTy types.TypeID, argTys []types.TypeID, v types.VariantID) []BindingID {
	return b.setConstraint(input, Constraint{
		Kind:    VariantConstraint,
		Ty:      inputTy,
		Variant: v,
		Fields:  TupleIndex(len(argTys)),
	})
}

func (b *builder) AddExtract(input BindingID, inputTy types.TypeID, outputTys []types.TypeID, term types.TermID, infallible, multi bool) []BindingID {
	source := b.rs.dedup(Binding{Kind: Extractor, Term: term, Sources: []BindingID{input}})
	switch {
	case multi:
		b.cur.Iterators.Insert(source)
		source = b.rs.dedup(wrap(Iterator, source))
	case !infallible:
		source = b.setConstraint(source, Constraint{Kind: SomeConstraint})[0]
	}

	switch len(outputTys) {
	case 0:
		return nil
	case 1:
		return []BindingID{source}
	}
	out := make([]BindingID, len(outputTys))
	for i := range out {
		out[i] = b.rs.dedup(field(MatchTuple, source, 0, i))
	}
	return out
}

func (b *builder) AddConstBool(ty types.TypeID, v bool) BindingID {
	return b.rs.dedup(Binding{Kind: ConstBool, Bool: v, Ty: ty})
}

func (b *builder) AddConstInt(ty types.TypeID, v syntax.Int128) BindingID {
	return b.rs.dedup(Binding{Kind: ConstInt, Int: v, Ty: ty})
}

func (b *builder) AddConstPrim(ty types.TypeID, v types.Sym) BindingID {
	return b.rs.dedup(Binding{Kind: ConstPrim, Prim: v})
}

func (b *builder) AddCreateVariant(inputs []BindingID, ty types.TypeID, v types.VariantID) BindingID {
	return b.rs.dedup(Binding{Kind: MakeVariant, Ty: ty, Variant: v, Sources: inputs})
}

// AddConstruct numbers impure calls so that two of them are never merged,
// even with identical arguments.
func (b *builder) AddConstruct(inputs []BindingID, ty types.TypeID, term types.TermID, pure, infallible, multi bool) BindingID {
	var instance uint32
	if !pure {
		b.instance++
		instance = b.instance
	}
	source := b.rs.dedup(Binding{Kind: Constructor, Term: term, Instance: instance, Sources: inputs})

	switch {
	case multi:
		b.cur.Iterators.Insert(source)
		source = b.rs.dedup(wrap(Iterator, source))
	case !infallible:
		source = b.rs.dedup(wrap(MatchSome, source))
	}

	if !pure {
		b.cur.Impure = append(b.cur.Impure, source)
	}
	return source
}
