package syntax

import (
	"cmp"
	"math/big"
)

// Int128 is a two's complement 128-bit integer, the value of an integer
// literal. It is comparable so it can key hash-consing tables.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Int64 returns v sign-extended to 128 bits.
func Int64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// Int128FromBits reinterprets the low 128 bits of the non-negative u.
func Int128FromBits(u *big.Int) Int128 {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(u, mask).Uint64()
	hi := new(big.Int).Rsh(u, 64)
	hi.And(hi, mask)
	return Int128{Hi: int64(hi.Uint64()), Lo: lo}
}

// Neg returns -x, wrapping on the minimum value.
func (x Int128) Neg() Int128 {
	lo := ^x.Lo + 1
	hi := ^x.Hi
	if lo == 0 {
		hi++
	}
	return Int128{Hi: hi, Lo: lo}
}

// Sign returns -1, 0 or +1.
func (x Int128) Sign() int {
	switch {
	case x.Hi < 0:
		return -1
	case x.Hi == 0 && x.Lo == 0:
		return 0
	}
	return 1
}

// Compare compares x and y as signed values.
func (x Int128) Compare(y Int128) int {
	if x.Hi != y.Hi {
		return cmp.Compare(x.Hi, y.Hi)
	}
	return cmp.Compare(x.Lo, y.Lo)
}

// Big returns the signed value of x.
func (x Int128) Big() *big.Int {
	b := big.NewInt(x.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(x.Lo))
}

// Unsigned returns the value of x read as an unsigned 128-bit integer.
func (x Int128) Unsigned() *big.Int {
	b := new(big.Int).SetUint64(uint64(x.Hi))
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(x.Lo))
}

func (x Int128) String() string {
	return x.Big().String()
}
