package decision

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/you-not-fish/islec/internal/trie"
)

// Verify checks the structural integrity of the tree b built for rs. It
// returns an aggregate of all violations found, or nil if valid.
func Verify(rs *trie.RuleSet, b *Block) error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	n := trie.BindingID(len(rs.Bindings))
	check := func(what string, id trie.BindingID) {
		if id >= n {
			add("%s refers to %s, but the rule set has %d bindings", what, id, n)
		}
	}

	returns := make([]int, len(rs.Rules))
	Walk(b, func(s *EvalStep) {
		for _, id := range s.BindOrder {
			check("bind order", id)
		}
		switch c := s.Check.(type) {
		case *Match:
			check("match", c.Source)
			if len(c.Arms) == 0 {
				add("match on %s has no arms", c.Source)
			}
			for _, arm := range c.Arms {
				for _, id := range arm.Bindings {
					if id != NoBinding {
						check("match arm", id)
					}
				}
			}
		case *Equal:
			check("equal", c.A)
			check("equal", c.B)
			if c.A == c.B {
				add("equal test compares %s with itself", c.A)
			}
		case *Loop:
			check("loop", c.Result)
		case *Return:
			check("return", c.Result)
			if c.Rule < 0 || c.Rule >= len(rs.Rules) {
				add("return of unknown rule index %d", c.Rule)
				return
			}
			returns[c.Rule]++
			if r := rs.Rules[c.Rule]; r.Result != c.Result {
				add("return of rule %d yields %s, want %s", r.ID, c.Result, r.Result)
			}
		case nil:
			add("step without control flow")
		}
	})

	for i, count := range returns {
		if count != 1 {
			add("rule %d has %d returns, want 1", rs.Rules[i].ID, count)
		}
	}
	return utilerrors.NewAggregate(errs)
}
