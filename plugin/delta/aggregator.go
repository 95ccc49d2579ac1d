// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
)

// Aggregator is a bounded, non-negative counter on which a transaction
// accumulates a delta against an unknown base value held in durable
// storage. Its value is meaningful only together with its state: in
// Data it is the absolute value, in PositiveDelta/NegativeDelta it is
// the magnitude of a pending +/- change.
type Aggregator struct {
	value   Uint128
	state   State
	limit   Uint128
	history *History // non-nil iff state != Data
}

// newDataAggregator returns a fresh aggregator whose value is already
// known.
func newDataAggregator(value, limit Uint128) *Aggregator {
	return &Aggregator{value: value, state: Data, limit: limit}
}

// newDeltaAggregator returns a fresh aggregator in PositiveDelta(0)
// with empty history, the state a lazily-touched aggregator starts in.
func newDeltaAggregator(limit Uint128) *Aggregator {
	return &Aggregator{state: PositiveDelta, limit: limit, history: newHistory()}
}

// Value returns the aggregator's current raw value. Its meaning
// depends on State.
func (a *Aggregator) Value() Uint128 { return a.value }

// State returns the aggregator's current state.
func (a *Aggregator) State() State { return a.state }

// Limit returns the aggregator's inclusive upper bound.
func (a *Aggregator) Limit() Uint128 { return a.limit }

// History returns the aggregator's excursion envelope, or nil if the
// aggregator is in the Data state.
func (a *Aggregator) History() *History { return a.history }

// record captures the side effects of the last mutation into history.
// Called only after a successful add/sub in a delta state; the Data
// branch is unreachable because history is only tracked on delta
// aggregators (invariant 3, spec.md §3).
func (a *Aggregator) record() {
	if a.history == nil {
		return
	}
	switch a.state {
	case PositiveDelta:
		a.history.recordPositive(a.value)
	case NegativeDelta:
		a.history.recordNegative(a.value)
	case Data:
		panic("delta: history is not tracked when aggregator knows its value")
	}
}

// Add implements the logic for adding delta to an aggregator's value.
func (a *Aggregator) Add(delta Uint128) error {
	switch a.state {
	case Data:
		// Aggregator knows the value: add directly and keep the state.
		v, err := addition(a.value, delta, a.limit)
		if err != nil {
			return err
		}
		a.value = v
		return nil
	case PositiveDelta:
		// Positive delta: add directly, but record the new state.
		v, err := addition(a.value, delta, a.limit)
		if err != nil {
			return err
		}
		a.value = v
	case NegativeDelta:
		// Aggregator has -X and wants +Y. Two cases:
		//   1. X <= Y: result is +(Y-X)
		//   2. X >  Y: result is -(X-Y)
		if a.value.Cmp(delta) <= 0 {
			v, err := subtraction(delta, a.value)
			if err != nil {
				return err
			}
			a.value = v
			a.state = PositiveDelta
		} else {
			v, err := subtraction(a.value, delta)
			if err != nil {
				return err
			}
			a.value = v
		}
	}

	a.record()
	log.Debug("aggregator add", "delta", delta, "state", a.state, "value", a.value)
	return nil
}

// Sub implements the logic for subtracting delta from an aggregator's value.
func (a *Aggregator) Sub(delta Uint128) error {
	switch a.state {
	case Data:
		// Aggregator knows the value: subtract, checking we don't drop
		// below zero. No history to record.
		v, err := subtraction(a.value, delta)
		if err != nil {
			return err
		}
		a.value = v
		return nil
	case PositiveDelta:
		// Aggregator has +X and wants -Y. Two cases:
		//   1. X >= Y: result is +(X-Y)
		//   2. X <  Y: result is -(Y-X), but only if the negative
		//      excursion is even feasible against the limit.
		if a.value.Cmp(delta) >= 0 {
			v, err := subtraction(a.value, delta)
			if err != nil {
				return err
			}
			a.value = v
		} else {
			// Check we can subtract at all: we don't want to allow
			// -10000 when the limit is 10.
			if _, err := subtraction(a.limit, delta); err != nil {
				return err
			}
			v, err := subtraction(delta, a.value)
			if err != nil {
				return err
			}
			a.value = v
			a.state = NegativeDelta
		}
	case NegativeDelta:
		// Operating on unsigned magnitudes: subtracting from a negative
		// delta means adding to its magnitude, bounded by limit.
		v, err := addition(a.value, delta, a.limit)
		if err != nil {
			return err
		}
		a.value = v
	}

	a.record()
	log.Debug("aggregator sub", "delta", delta, "state", a.state, "value", a.value)
	return nil
}

// ReadAndMaterialize resolves the aggregator's absolute value against
// resolver, validating that no intermediate excursion recorded in
// history would have violated [0, limit] for the resolved base. On
// success the aggregator transitions to Data and its history is
// dropped; calling ReadAndMaterialize again then returns the same
// value without touching the resolver.
func (a *Aggregator) ReadAndMaterialize(resolver Resolver, id ID) (Uint128, error) {
	if a.state == Data {
		return a.value, nil
	}

	base, err := resolver.Resolve(id)
	if err != nil {
		resolutionFailures.Inc()
		return Uint128{}, &ResolutionFailedError{ID: id, Cause: err}
	}

	if _, err := addition(base, a.history.MaxPositive, a.limit); err != nil {
		return Uint128{}, err
	}
	if _, err := subtraction(base, a.history.MinNegative); err != nil {
		return Uint128{}, err
	}

	var value Uint128
	switch a.state {
	case PositiveDelta:
		value, err = addition(base, a.value, a.limit)
	case NegativeDelta:
		value, err = subtraction(base, a.value)
	default:
		panic("delta: history is not tracked when aggregator knows its value")
	}
	if err != nil {
		return Uint128{}, err
	}

	a.value = value
	a.state = Data
	a.history = nil

	aggregatorsMaterialized.Inc()
	log.Debug("aggregator materialized", "id", id, "base", base, "value", value)
	return value, nil
}

// checkInvariants asserts the at-rest invariants that can be read off
// a single snapshot: value <= limit, history present iff state != Data,
// and both history extrema <= limit. It does not check that a Data
// aggregator never returns to a delta state, since that is a property
// of transitions, not of one snapshot. It is a debug-build style
// assertion, exercised only from tests after every mutation, not on
// any production call path.
func (a *Aggregator) checkInvariants() error {
	if a.value.Cmp(a.limit) > 0 {
		return fmt.Errorf("invariant violated: value %s exceeds limit %s in state %s", a.value, a.limit, a.state)
	}
	hasHistory := a.history != nil
	wantHistory := a.state != Data
	if hasHistory != wantHistory {
		return fmt.Errorf("invariant violated: history presence %v does not match state %s", hasHistory, a.state)
	}
	if hasHistory {
		if a.history.MaxPositive.Cmp(a.limit) > 0 {
			return fmt.Errorf("invariant violated: history.max_positive %s exceeds limit %s", a.history.MaxPositive, a.limit)
		}
		if a.history.MinNegative.Cmp(a.limit) > 0 {
			return fmt.Errorf("invariant violated: history.min_negative %s exceeds limit %s", a.history.MinNegative, a.limit)
		}
	}
	return nil
}

// Extracted is the result of consuming an Aggregator into its parts,
// for persistence or reporting by the caller.
type Extracted struct {
	Value   Uint128
	State   State
	Limit   Uint128
	History *History
}

// Into consumes the aggregator, returning its four components.
func (a *Aggregator) Into() Extracted {
	return Extracted{Value: a.value, State: a.state, Limit: a.limit, History: a.history}
}
