// Package overlap finds rules of one term that can match the same input:
// rules of equal priority that overlap, and higher-priority rules that
// hide more specific rules of lower priority.
package overlap

import (
	"slices"

	set "github.com/hashicorp/go-set/v3"

	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/trie"
	"github.com/you-not-fish/islec/internal/types"
)

// OverlapMsg is the message of every Overlap diagnostic.
const OverlapMsg = "rules are overlapping"

// Check compares every pair of rules within each rule set and returns the
// Overlap and Shadowed findings, ordered by position. Sets of multi terms
// are skipped: all their matching rules run.
func Check(env *types.TermEnv, sets []*trie.RuleSet) diag.List {
	g := newGraph()
	for _, rs := range sets {
		if env.Term(rs.Term).IsMulti() {
			continue
		}
		for i, a := range rs.Rules {
			for _, b := range rs.Rules[i+1:] {
				g.checkPair(a, b)
			}
		}
	}
	return g.report()
}

type graph struct {
	nodes    map[syntax.Pos]*set.Set[syntax.Pos]
	shadowed map[syntax.Pos][]syntax.Pos
}

func newGraph() *graph {
	return &graph{
		nodes:    make(map[syntax.Pos]*set.Set[syntax.Pos]),
		shadowed: make(map[syntax.Pos][]syntax.Pos),
	}
}

func (g *graph) edge(from, to syntax.Pos) {
	s, ok := g.nodes[from]
	if !ok {
		s = set.New[syntax.Pos](4)
		g.nodes[from] = s
	}
	s.Insert(to)
}

func (g *graph) checkPair(a, b *trie.Rule) {
	overlap, subset := a.MayOverlap(b)
	if !overlap {
		return
	}
	if a.Prio == b.Prio {
		g.edge(a.Pos, b.Pos)
		g.edge(b.Pos, a.Pos)
		return
	}
	if !subset {
		return
	}
	lo, hi := a, b
	if a.Prio > b.Prio {
		lo, hi = b, a
	}
	if hi.TotalConstraints() <= lo.TotalConstraints() {
		g.shadowed[hi.Pos] = append(g.shadowed[hi.Pos], lo.Pos)
	}
}

// report turns the graph into diagnostics. The rule with the most
// overlaps is reported first, together with all its neighbours, and then
// removed from the graph, until no edges are left.
func (g *graph) report() diag.List {
	var out diag.List
	for len(g.nodes) > 0 {
		var pos syntax.Pos
		best := -1
		for p, edges := range g.nodes {
			n := edges.Size()
			if n > best || (n == best && p.Compare(pos) > 0) {
				pos, best = p, n
			}
		}

		node := g.nodes[pos]
		delete(g.nodes, pos)
		others := node.Slice()
		slices.SortFunc(others, syntax.Pos.Compare)
		for _, other := range others {
			back, ok := g.nodes[other]
			if !ok {
				continue
			}
			back.Remove(pos)
			if back.Empty() {
				delete(g.nodes, other)
			}
		}

		e := &diag.Error{Kind: diag.Overlap, Msg: OverlapMsg, Spans: []syntax.Span{syntax.SpanAt(pos)}}
		for _, other := range others {
			e.Spans = append(e.Spans, syntax.SpanAt(other))
		}
		out.Add(e)
	}

	masks := make([]syntax.Pos, 0, len(g.shadowed))
	for mask := range g.shadowed {
		masks = append(masks, mask)
	}
	slices.SortFunc(masks, syntax.Pos.Compare)
	for _, mask := range masks {
		e := &diag.Error{Kind: diag.Shadowed, Msg: diag.ShadowedMsg, Spans: []syntax.Span{syntax.SpanAt(mask)}}
		for _, p := range g.shadowed[mask] {
			e.Spans = append(e.Spans, syntax.SpanAt(p))
		}
		out.Add(e)
	}

	out.Sort()
	return out
}
