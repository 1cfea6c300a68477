package trie

import (
	"slices"

	set "github.com/hashicorp/go-set/v3"

	"github.com/you-not-fish/islec/internal/disjoint"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// Rule is one rule of a RuleSet, expressed as requirements on the set's
// bindings.
type Rule struct {
	ID   types.RuleID
	Pos  syntax.Pos
	Prio int64

	// Equals groups bindings that must hold equal values. After the
	// rule is built it only contains classes without constraints.
	Equals disjoint.Sets[BindingID]

	// Iterators are the bindings whose sequences the rule iterates over.
	Iterators *set.Set[BindingID]

	// Impure lists the side-effecting calls the rule must perform, in
	// evaluation order.
	Impure []BindingID

	Result BindingID

	constraints map[BindingID]Constraint
}

func newRule(r *types.Rule) *Rule {
	return &Rule{
		ID:          r.ID,
		Pos:         r.Pos,
		Prio:        r.Prio,
		Iterators:   set.New[BindingID](0),
		constraints: make(map[BindingID]Constraint),
	}
}

// Constraint returns the constraint r places on b, if any.
func (r *Rule) Constraint(b BindingID) (Constraint, bool) {
	c, ok := r.constraints[b]
	return c, ok
}

// Constrained returns the bindings r constrains, in increasing order.
func (r *Rule) Constrained() []BindingID {
	ids := make([]BindingID, 0, len(r.constraints))
	for id := range r.constraints {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TotalConstraints counts r's constraints plus its equality members.
func (r *Rule) TotalConstraints() int {
	return len(r.constraints) + r.Equals.Len()
}

// MayOverlap reports whether some input could satisfy both r and o. The
// answer is no only when they test a shared binding differently. subset is
// set when the rule with fewer constraints has every one of them in the
// other rule and neither rule tests equalities.
func (r *Rule) MayOverlap(o *Rule) (overlap, subset bool) {
	small, big := r, o
	if len(r.constraints) > len(o.constraints) {
		small, big = o, r
	}
	subset = small.Equals.IsEmpty() && big.Equals.IsEmpty()
	for b, c := range small.constraints {
		d, ok := big.constraints[b]
		if !ok {
			subset = false
			continue
		}
		if c != d {
			return false, false
		}
	}
	return true, subset
}

// setConstraint records c on b, returning the constraint already there if
// it differs.
func (r *Rule) setConstraint(b BindingID, c Constraint) (Constraint, bool) {
	if prev, ok := r.constraints[b]; ok {
		return prev, prev == c
	}
	r.constraints[b] = c
	return c, true
}

// RuleSet holds the rules of one term over a shared binding table.
type RuleSet struct {
	Term     types.TermID
	Rules    []*Rule
	Bindings []Binding

	index map[bindingKey]BindingID
}

// Find returns the id of b if the set contains it.
func (rs *RuleSet) Find(b Binding) (BindingID, bool) {
	id, ok := rs.index[b.key()]
	return id, ok
}

// Binding returns the binding with id.
func (rs *RuleSet) Binding(id BindingID) *Binding {
	return &rs.Bindings[id]
}

// dedup returns the id of b, adding it if it is new.
func (rs *RuleSet) dedup(b Binding) BindingID {
	k := b.key()
	if id, ok := rs.index[k]; ok {
		return id
	}
	id := BindingID(len(rs.Bindings))
	rs.Bindings = append(rs.Bindings, b)
	rs.index[k] = id
	return id
}
