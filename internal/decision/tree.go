// Package decision turns the rule set of a term into a decision tree: a
// nest of matches, equality tests and loops whose leaves return the result
// of exactly one rule.
package decision

import (
	"math"

	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/trie"
)

// NoBinding marks a field of a match arm that no rule uses.
const NoBinding = trie.BindingID(math.MaxUint32)

// Block is a sequence of steps tried in order. A step whose control flow
// does not return falls through to the next one.
type Block struct {
	Steps []EvalStep
}

// EvalStep computes BindOrder, in order, then runs Check.
type EvalStep struct {
	BindOrder []trie.BindingID
	Check     ControlFlow
}

// ControlFlow is one of *Match, *Equal, *Loop or *Return.
type ControlFlow interface {
	aControlFlow()
}

// Match branches on the constraint Source satisfies.
type Match struct {
	Source trie.BindingID
	Arms   []MatchArm
}

// MatchArm runs Body when Source satisfies Constraint. Bindings are the
// values the constraint exposes, NoBinding where unused.
type MatchArm struct {
	Constraint trie.Constraint
	Bindings   []trie.BindingID
	Body       Block
}

// Equal runs Body when A and B hold equal values.
type Equal struct {
	A, B trie.BindingID
	Body Block
}

// Loop runs Body once for every value the iterator Result produces.
type Loop struct {
	Result trie.BindingID
	Body   Block
}

// Return ends matching with the result of the rule at index Rule of the
// rule set.
type Return struct {
	Pos    syntax.Pos
	Rule   int
	Result trie.BindingID
}

func (*Match) aControlFlow()  {}
func (*Equal) aControlFlow()  {}
func (*Loop) aControlFlow()   {}
func (*Return) aControlFlow() {}

// Walk calls fn for every step of b, depth first, in order.
func Walk(b *Block, fn func(step *EvalStep)) {
	for i := range b.Steps {
		s := &b.Steps[i]
		fn(s)
		switch c := s.Check.(type) {
		case *Match:
			for j := range c.Arms {
				Walk(&c.Arms[j].Body, fn)
			}
		case *Equal:
			Walk(&c.Body, fn)
		case *Loop:
			Walk(&c.Body, fn)
		}
	}
}
