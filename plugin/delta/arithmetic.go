// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import (
	"fmt"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer represented as two 64-bit limbs.
// Go has no native 128-bit integer type; arithmetic on Uint128 never wraps
// and never panics, the same way erigon-lib's SafeAdd/SafeMul report
// overflow at 64 bits via math/bits carry-out instead of wrapping.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// ZeroU128 is the zero value of Uint128, provided for readability at call sites.
var ZeroU128 = Uint128{}

// U128FromUint64 builds a Uint128 from a plain uint64.
func U128FromUint64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// IsZero reports whether x is zero.
func (x Uint128) IsZero() bool {
	return x.Hi == 0 && x.Lo == 0
}

// Cmp returns -1, 0 or +1 as x is less than, equal to, or greater than y.
func (x Uint128) Cmp(y Uint128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	default:
		return 0
	}
}

// Add returns x+y and whether the addition overflowed 128 bits.
func (x Uint128) Add(y Uint128) (Uint128, bool) {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hi, carry := bits.Add64(x.Hi, y.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}, carry != 0
}

// Sub returns x-y and whether the subtraction underflowed (x < y).
func (x Uint128) Sub(y Uint128) (Uint128, bool) {
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hi, borrow := bits.Sub64(x.Hi, y.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}, borrow != 0
}

// Max returns the larger of x and y.
func (x Uint128) Max(y Uint128) Uint128 {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

func (x Uint128) String() string {
	if x.Hi == 0 {
		return fmt.Sprintf("%d", x.Lo)
	}
	// Long division by 10, one decimal digit at a time, keeping the
	// remainder across both limbs. Rare path: only hit once a value
	// exceeds 2^64, which a bounded counter will almost never reach.
	var digits []byte
	hi, lo := x.Hi, x.Lo
	for hi != 0 || lo != 0 {
		rem := hi % 10
		hi /= 10
		lo, rem = bits.Div64(rem, lo, 10)
		digits = append(digits, byte('0'+rem))
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// addition returns a+b if the result is <= limit, otherwise an *OverflowError.
// Mirrors the original Rust `addition(a, b, limit)`.
func addition(a, b, limit Uint128) (Uint128, error) {
	sum, overflowed := a.Add(b)
	if overflowed || sum.Cmp(limit) > 0 {
		overflowErrors.Inc()
		return Uint128{}, &OverflowError{Attempted: sum, Overflowed: overflowed, Limit: limit}
	}
	return sum, nil
}

// subtraction returns a-b if b <= a, otherwise an *UnderflowError.
// Mirrors the original Rust `subtraction(a, b)`.
func subtraction(a, b Uint128) (Uint128, error) {
	diff, underflowed := a.Sub(b)
	if underflowed {
		underflowErrors.Inc()
		return Uint128{}, &UnderflowError{Minuend: a, Subtrahend: b}
	}
	return diff, nil
}
