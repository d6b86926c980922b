// Package helpers provides common utility functions used across the codebase.
package helpers

import "math/big"

// U128Size is the wire width in bytes of an unsigned 128-bit integer field.
const U128Size = 16

// maxU128 is (2^128)-1, the largest value representable in a U128 field.
var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// BytesToU128 decodes a little-endian 16-byte field into a big.Int.
// Panics if b is shorter than U128Size; callers validate record length first.
func BytesToU128(b []byte) *big.Int {
	be := make([]byte, U128Size)
	for i := 0; i < U128Size; i++ {
		be[U128Size-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}

// U128ToBytes encodes n as a little-endian 16-byte field.
// n must be in [0, 2^128) — callers are expected to keep amounts in range
// via AddU128/SubU128 rather than constructing out-of-range values directly.
func U128ToBytes(n *big.Int) [U128Size]byte {
	be := n.Bytes()
	var out [U128Size]byte
	for i := 0; i < len(be) && i < U128Size; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// AddU128 returns a+b and whether the sum overflows 2^128-1.
func AddU128(a, b *big.Int) (sum *big.Int, overflow bool) {
	sum = new(big.Int).Add(a, b)
	return sum, sum.Cmp(maxU128) > 0
}

// SubU128 returns a-b and whether b exceeds a (underflow).
func SubU128(a, b *big.Int) (diff *big.Int, underflow bool) {
	diff = new(big.Int).Sub(a, b)
	return diff, diff.Sign() < 0
}

// IsZeroU128 reports whether n is zero.
func IsZeroU128(n *big.Int) bool {
	return n.Sign() == 0
}

// MinU128 returns the smaller of a and b.
func MinU128(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
