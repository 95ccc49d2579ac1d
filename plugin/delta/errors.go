// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import "fmt"

// OverflowError is returned when a would-be magnitude exceeds an
// aggregator's limit — raised by Add, by Sub in the NegativeDelta
// branch, and by history validation during materialization.
type OverflowError struct {
	Attempted  Uint128
	Overflowed bool
	Limit      Uint128
}

func (e *OverflowError) Error() string {
	if e.Overflowed {
		return fmt.Sprintf("aggregator: addition overflowed 128 bits (limit %s)", e.Limit)
	}
	return fmt.Sprintf("aggregator: %s exceeds limit %s", e.Attempted, e.Limit)
}

// UnderflowError is returned when a would-be magnitude would drop
// below zero — raised by Sub in the Data branch, by history
// validation, and by the pre-guard in Sub from PositiveDelta.
type UnderflowError struct {
	Minuend    Uint128
	Subtrahend Uint128
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("aggregator: %s is less than %s", e.Minuend, e.Subtrahend)
}

// ResolutionFailedError wraps a failure of the Resolver to produce a
// base value during materialization. It is kept distinct from
// OverflowError/UnderflowError because callers treat it differently:
// a resolution failure implies a data-dependency retry, an arithmetic
// error implies transaction abort.
type ResolutionFailedError struct {
	ID    ID
	Cause error
}

func (e *ResolutionFailedError) Error() string {
	return fmt.Sprintf("aggregator: could not resolve value of %s: %s", e.ID, e.Cause)
}

func (e *ResolutionFailedError) Unwrap() error {
	return e.Cause
}
