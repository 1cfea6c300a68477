package decision

import (
	"cmp"
	"slices"
	"sort"

	"github.com/you-not-fish/islec/internal/disjoint"
	"github.com/you-not-fish/islec/internal/trie"
)

// Build synthesizes the decision tree of rs. Tests are chosen greedily:
// at each step the test that settles the most rules wins, without ever
// deciding a rule before a rule of higher priority.
func Build(rs *trie.RuleSet) *Block {
	order := make([]int, len(rs.Rules))
	for i := range order {
		order[i] = i
	}
	d := newDecomposition(rs)
	b := d.sort(order)
	return &b
}

// state is how far a binding has progressed within a scope.
type state uint8

const (
	unavailable state = iota
	available         // all sources are available
	emitted           // computed in the current bind order
	matched           // already branched on
)

type flowKind uint8

const (
	matchFlow flowKind = iota
	equalFlow
	loopFlow
)

// flow is a control flow the tree could take next.
type flow struct {
	kind flowKind
	a, b trie.BindingID
}

func (f flow) compare(g flow) int {
	if f.kind != g.kind {
		return cmp.Compare(f.kind, g.kind)
	}
	if f.a != g.a {
		return cmp.Compare(f.a, g.a)
	}
	return cmp.Compare(f.b, g.b)
}

type partitionResult struct {
	anyMatched bool
	valid      int
}

// partition moves the rules of order that f decides to the front and
// returns how many of them may be decided now.
func (f flow) partition(rs *trie.RuleSet, order []int) partitionResult {
	n := partitionInPlace(order, func(idx int) bool {
		r := rs.Rules[idx]
		switch f.kind {
		case matchFlow:
			_, ok := r.Constraint(f.a)
			return ok
		case equalFlow:
			return r.Equals.InSameSet(f.a, f.b)
		default:
			return r.Iterators.Contains(f.a)
		}
	})
	return partitionResult{anyMatched: n > 0, valid: respectPriority(rs, order, n)}
}

type score struct {
	count int
	state state
}

func (s score) compare(t score) int {
	if s.count != t.count {
		return cmp.Compare(s.count, t.count)
	}
	return cmp.Compare(s.state, t.state)
}

// update rescores s and reports whether the candidate is still worth
// keeping.
func (s *score) update(st state, partition func() partitionResult) bool {
	if st == matched {
		return false
	}
	s.state = st
	p := partition()
	s.count = p.valid
	return p.anyMatched
}

// candidate orders by score; among equal scores the smaller flow wins.
type candidate struct {
	score score
	flow  flow
}

func (c candidate) compare(d candidate) int {
	if n := c.score.compare(d.score); n != 0 {
		return n
	}
	return d.flow.compare(c.flow)
}

// equalCandidate orders by score; among equal scores the smaller source
// wins.
type equalCandidate struct {
	score  score
	source trie.BindingID
}

func (c equalCandidate) compare(d equalCandidate) int {
	if n := c.score.compare(d.score); n != 0 {
		return n
	}
	return cmp.Compare(d.source, c.source)
}

type scope struct {
	ready           []state
	candidates      []candidate
	equalCandidates []equalCandidate
	equal           disjoint.Sets[trie.BindingID]
}

func (s *scope) clone() scope {
	return scope{
		ready:           slices.Clone(s.ready),
		candidates:      slices.Clone(s.candidates),
		equalCandidates: slices.Clone(s.equalCandidates),
		equal:           s.equal.Clone(),
	}
}

type decomposition struct {
	rs        *trie.RuleSet
	scope     scope
	bindOrder []trie.BindingID
	block     Block
}

func newDecomposition(rs *trie.RuleSet) *decomposition {
	d := &decomposition{rs: rs}
	d.scope.ready = make([]state, len(rs.Bindings))
	d.addBindings()
	return d
}

func (d *decomposition) newBlock() *decomposition {
	return &decomposition{rs: d.rs, scope: d.scope.clone()}
}

// addBindings marks available every binding whose sources are. Bindings
// that only exist once a match succeeds are left to the match.
func (d *decomposition) addBindings() {
	for i := range d.rs.Bindings {
		b := &d.rs.Bindings[i]
		switch b.Kind {
		case trie.Iterator, trie.MatchVariant, trie.MatchSome:
			continue
		}
		id := trie.BindingID(i)
		if d.scope.ready[id] >= available {
			continue
		}
		ok := true
		for _, s := range b.Sources {
			if d.scope.ready[s] < available {
				ok = false
				break
			}
		}
		if ok {
			d.setReady(id, available)
		}
	}
}

func (d *decomposition) setReady(id trie.BindingID, st state) {
	if d.scope.ready[id] == unavailable {
		d.scope.candidates = append(d.scope.candidates,
			candidate{flow: flow{kind: matchFlow, a: id}},
			candidate{flow: flow{kind: loopFlow, a: id}})
		d.scope.equalCandidates = append(d.scope.equalCandidates, equalCandidate{source: id})
	}
	d.scope.ready[id] = st
}

func (d *decomposition) takeBindOrder() []trie.BindingID {
	bo := d.bindOrder
	d.bindOrder = nil
	return bo
}

// sort decides the rules of order, consuming it from the front.
func (d *decomposition) sort(order []int) Block {
	for {
		best, ok := d.bestControlFlow(order)
		if !ok {
			break
		}
		n := best.partition(d.rs, order).valid
		this := order[:n]
		order = order[n:]

		check := d.makeControlFlow(best, this)
		d.block.Steps = append(d.block.Steps, EvalStep{BindOrder: d.takeBindOrder(), Check: check})
	}

	// Whatever is left needs no further tests.
	sort.Slice(order, func(i, j int) bool {
		pi, pj := d.rs.Rules[order[i]].Prio, d.rs.Rules[order[j]].Prio
		if pi != pj {
			return pi > pj
		}
		return order[i] < order[j]
	})
	for _, idx := range order {
		r := d.rs.Rules[idx]
		for _, id := range r.Impure {
			d.useExpr(id)
		}
		d.useExpr(r.Result)
		d.block.Steps = append(d.block.Steps, EvalStep{
			BindOrder: d.takeBindOrder(),
			Check:     &Return{Pos: r.Pos, Rule: idx, Result: r.Result},
		})
	}
	return d.block
}

// useExpr schedules id and its sources for evaluation.
func (d *decomposition) useExpr(id trie.BindingID) {
	if d.scope.ready[id] >= emitted {
		return
	}
	d.setReady(id, emitted)
	b := d.rs.Binding(id)
	for _, s := range b.Sources {
		d.useExpr(s)
	}
	if !b.Inlinable() {
		d.bindOrder = append(d.bindOrder, id)
	}
}

func (d *decomposition) makeControlFlow(best flow, order []int) ControlFlow {
	switch best.kind {
	case matchFlow:
		source := best.a
		d.useExpr(source)
		d.addBindings()

		constraint := func(idx int) trie.Constraint {
			c, _ := d.rs.Rules[idx].Constraint(source)
			return c
		}
		sort.SliceStable(order, func(i, j int) bool {
			return constraint(order[i]).Compare(constraint(order[j])) < 0
		})

		m := &Match{Source: source}
		for len(order) > 0 {
			c := constraint(order[0])
			n := 1
			for n < len(order) && constraint(order[n]) == c {
				n++
			}
			group := order[:n]
			order = order[n:]

			child := d.newBlock()
			child.setReady(source, matched)
			fields := c.BindingsFor(source)
			bindings := make([]trie.BindingID, len(fields))
			changed := false
			for i, f := range fields {
				id, ok := d.rs.Find(f)
				if !ok {
					bindings[i] = NoBinding
					continue
				}
				bindings[i] = id
				child.setReady(id, emitted)
				changed = true
			}
			if changed {
				child.addBindings()
			}
			m.Arms = append(m.Arms, MatchArm{Constraint: c, Bindings: bindings, Body: child.sort(group)})
		}
		return m

	case equalFlow:
		d.useExpr(best.a)
		d.useExpr(best.b)
		d.addBindings()

		child := d.newBlock()
		child.scope.equal.Merge(best.a, best.b)
		return &Equal{A: best.a, B: best.b, Body: child.sort(order)}

	default:
		source := best.a
		result, ok := d.rs.Find(trie.Binding{Kind: trie.Iterator, Sources: []trie.BindingID{source}})
		if !ok {
			panic("decision: loop over a binding without iterator")
		}
		base := d.scope.ready[source]
		d.useExpr(source)
		d.scope.ready[source] = base
		d.addBindings()

		child := d.newBlock()
		child.setReady(source, matched)
		child.setReady(result, emitted)
		child.addBindings()
		return &Loop{Result: result, Body: child.sort(order)}
	}
}

// bestControlFlow rescores every candidate against order and returns the
// best one, if any settles at least one rule.
func (d *decomposition) bestControlFlow(order []int) (flow, bool) {
	if len(order) == 0 {
		d.scope.candidates = d.scope.candidates[:0]
		return flow{}, false
	}

	kept := d.scope.candidates[:0]
	for _, c := range d.scope.candidates {
		f := c.flow
		if c.score.update(d.scope.ready[f.a], func() partitionResult { return f.partition(d.rs, order) }) {
			kept = append(kept, c)
		}
	}
	d.scope.candidates = kept

	var best candidate
	hasBest := false
	for _, c := range d.scope.candidates {
		if !hasBest || c.compare(best) >= 0 {
			best, hasBest = c, true
		}
	}

	keptEq := d.scope.equalCandidates[:0]
	for _, c := range d.scope.equalCandidates {
		source := c.source
		if c.score.update(d.scope.ready[source], func() partitionResult {
			n := partitionInPlace(order, func(idx int) bool {
				_, ok := d.rs.Rules[idx].Equals.Find(source)
				return ok
			})
			return partitionResult{anyMatched: n > 0, valid: respectPriority(d.rs, order, n)}
		}) {
			keptEq = append(keptEq, c)
		}
	}
	d.scope.equalCandidates = keptEq

	eq := d.scope.equalCandidates
	sort.Slice(eq, func(i, j int) bool { return eq[i].compare(eq[j]) > 0 })
	for i, x := range eq {
		if hasBest && x.score.compare(best.score) < 0 {
			break
		}
		for _, y := range eq[i+1:] {
			if hasBest && y.score.compare(best.score) < 0 {
				break
			}
			if d.scope.equal.InSameSet(x.source, y.source) {
				continue
			}
			f := flow{kind: equalFlow, a: min(x.source, y.source), b: max(x.source, y.source)}
			pair := candidate{
				flow: f,
				score: score{
					count: f.partition(d.rs, order).valid,
					state: min(x.score.state, y.score.state),
				},
			}
			if !hasBest || best.compare(pair) < 0 {
				best, hasBest = pair, true
			}
		}
	}

	if !hasBest || best.score.count == 0 {
		return flow{}, false
	}
	return best.flow, true
}

// respectPriority narrows the n rules at the front of order to those that
// may be decided before every rule left behind, and returns how many
// remain at the front.
func respectPriority(rs *trie.RuleSet, order []int, n int) int {
	selected, deferred := order[:n], order[n:]
	if len(deferred) == 0 {
		return n
	}
	maxDeferred := rs.Rules[deferred[0]].Prio
	for _, idx := range deferred[1:] {
		maxDeferred = max(maxDeferred, rs.Rules[idx].Prio)
	}
	return partitionInPlace(selected, func(idx int) bool {
		return rs.Rules[idx].Prio >= maxDeferred
	})
}

// partitionInPlace moves the elements satisfying pred to the front of xs
// and returns their count. It swaps the first failing element with the
// last passing one, so the result is deterministic for a given input.
func partitionInPlace(xs []int, pred func(int) bool) int {
	n := 0
	i, j := 0, len(xs)
	for i < j {
		if pred(xs[i]) {
			n++
			i++
			continue
		}
		for {
			j--
			if j <= i {
				break
			}
			if pred(xs[j]) {
				xs[i], xs[j] = xs[j], xs[i]
				n++
				break
			}
		}
		i++
	}
	return n
}
