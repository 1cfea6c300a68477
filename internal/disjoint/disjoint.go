// Package disjoint implements a union-find structure over ordered keys.
package disjoint

import (
	"cmp"
	"slices"
)

type entry[T any] struct {
	parent T
	rank   uint8
}

// Sets is a collection of disjoint sets. Keys not yet merged with
// anything are not members of any set. The zero value is ready to use.
type Sets[T cmp.Ordered] struct {
	parent map[T]entry[T]
}

// Clone returns an independent copy of s.
func (s *Sets[T]) Clone() Sets[T] {
	c := Sets[T]{}
	if len(s.parent) > 0 {
		c.parent = make(map[T]entry[T], len(s.parent))
		for k, v := range s.parent {
			c.parent[k] = v
		}
	}
	return c
}

// Find returns the representative of x's set, or false if x is not in
// any set. It halves paths as it goes.
func (s *Sets[T]) Find(x T) (T, bool) {
	e, ok := s.parent[x]
	if !ok {
		return x, false
	}
	for e.parent != x {
		next := s.parent[e.parent]
		// point x at its grandparent
		s.parent[x] = entry[T]{parent: next.parent, rank: e.rank}
		x = e.parent
		e = next
	}
	return x, true
}

// Merge unions the sets containing x and y, adding either as a singleton
// first if needed. x and y must differ.
func (s *Sets[T]) Merge(x, y T) {
	if x == y {
		panic("disjoint: merging a key with itself")
	}
	if s.parent == nil {
		s.parent = make(map[T]entry[T])
	}
	rx := s.root(x)
	ry := s.root(y)
	if rx == ry {
		return
	}
	ex, ey := s.parent[rx], s.parent[ry]
	switch {
	case ex.rank < ey.rank:
		s.parent[rx] = entry[T]{parent: ry, rank: ex.rank}
	case ex.rank > ey.rank:
		s.parent[ry] = entry[T]{parent: rx, rank: ey.rank}
	default:
		s.parent[ry] = entry[T]{parent: rx, rank: ey.rank}
		s.parent[rx] = entry[T]{parent: rx, rank: ex.rank + 1}
	}
}

// root finds x's representative, inserting x as a singleton if absent.
func (s *Sets[T]) root(x T) T {
	if r, ok := s.Find(x); ok {
		return r
	}
	s.parent[x] = entry[T]{parent: x}
	return x
}

// InSameSet reports whether x and y are members of the same set.
func (s *Sets[T]) InSameSet(x, y T) bool {
	rx, okx := s.Find(x)
	ry, oky := s.Find(y)
	return okx && oky && rx == ry
}

// RemoveSetOf removes every member of x's set from s and returns them in
// ascending order. It returns nil if x is not in any set.
func (s *Sets[T]) RemoveSetOf(x T) []T {
	root, ok := s.Find(x)
	if !ok {
		return nil
	}
	var set []T
	for k := range s.parent {
		if r, _ := s.Find(k); r == root {
			set = append(set, k)
		}
	}
	for _, k := range set {
		delete(s.parent, k)
	}
	slices.Sort(set)
	return set
}

// Len returns the number of keys in all sets.
func (s *Sets[T]) Len() int {
	return len(s.parent)
}

// IsEmpty reports whether no key has been merged.
func (s *Sets[T]) IsEmpty() bool {
	return len(s.parent) == 0
}
