package types

import (
	"math/big"

	"github.com/you-not-fish/islec/internal/syntax"
)

// TypeID identifies a type. Builtin types occupy the first ids.
type TypeID uint32

// Builtin type ids.
const (
	Bool TypeID = iota
	U8
	U16
	U32
	U64
	U128
	Usize
	I8
	I16
	I32
	I64
	I128
	Isize

	NumBuiltins = int(Isize) + 1
)

// IntInfo describes a builtin integer type.
type IntInfo struct {
	Signed bool
	Bits   uint
}

// builtins is indexed by TypeID. Bool has no integer info.
var builtins = [NumBuiltins]struct {
	name string
	info IntInfo
}{
	Bool:  {"bool", IntInfo{}},
	U8:    {"u8", IntInfo{false, 8}},
	U16:   {"u16", IntInfo{false, 16}},
	U32:   {"u32", IntInfo{false, 32}},
	U64:   {"u64", IntInfo{false, 64}},
	U128:  {"u128", IntInfo{false, 128}},
	Usize: {"usize", IntInfo{false, 64}},
	I8:    {"i8", IntInfo{true, 8}},
	I16:   {"i16", IntInfo{true, 16}},
	I32:   {"i32", IntInfo{true, 32}},
	I64:   {"i64", IntInfo{true, 64}},
	I128:  {"i128", IntInfo{true, 128}},
	Isize: {"isize", IntInfo{true, 64}},
}

// BuiltinName returns the name of a builtin type id.
func BuiltinName(id TypeID) string {
	if int(id) >= NumBuiltins {
		return ""
	}
	return builtins[id].name
}

// IsBuiltin reports whether id is a builtin type.
func IsBuiltin(id TypeID) bool { return int(id) < NumBuiltins }

// Fits reports whether v lies in the range of an integer type with this info.
func (i IntInfo) Fits(v syntax.Int128) bool {
	if i.Bits >= 128 {
		// Every literal is a 128-bit pattern.
		return true
	}
	x := v.Big()
	var lo, hi *big.Int
	if i.Signed {
		lo = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), i.Bits-1))
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), i.Bits-1), big.NewInt(1))
	} else {
		lo = new(big.Int)
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), i.Bits), big.NewInt(1))
	}
	return x.Cmp(lo) >= 0 && x.Cmp(hi) <= 0
}
