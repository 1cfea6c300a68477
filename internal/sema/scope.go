package sema

import "github.com/you-not-fish/islec/internal/types"

// bindings tracks the variables of one rule. Every let opens a new scope;
// a name resolves to its most recent binding in a scope that is still open.
type bindings struct {
	seen      []types.BoundVar
	scopes    []int // scope of each entry in seen
	nextScope int
	inScope   []int
}

func (b *bindings) enterScope() {
	b.inScope = append(b.inScope, b.nextScope)
	b.nextScope++
}

func (b *bindings) exitScope() {
	b.inScope = b.inScope[:len(b.inScope)-1]
}

// addVar binds name in the innermost open scope.
func (b *bindings) addVar(name types.Sym, ty types.TypeID) types.VarID {
	if len(b.inScope) == 0 {
		panic("sema: addVar outside of any scope")
	}
	id := types.VarID(len(b.seen))
	b.seen = append(b.seen, types.BoundVar{ID: id, Name: name, Type: ty})
	b.scopes = append(b.scopes, b.inScope[len(b.inScope)-1])
	return id
}

// lookup returns the visible binding of name, or nil.
func (b *bindings) lookup(name types.Sym) *types.BoundVar {
	for i := len(b.seen) - 1; i >= 0; i-- {
		if b.seen[i].Name == name && b.open(b.scopes[i]) {
			return &b.seen[i]
		}
	}
	return nil
}

func (b *bindings) open(scope int) bool {
	for _, s := range b.inScope {
		if s == scope {
			return true
		}
	}
	return false
}
