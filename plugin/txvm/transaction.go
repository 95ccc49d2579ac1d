// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txvm hosts the lifecycle of a single simulated transaction:
// it owns a delta.Registry for the transaction's duration and either
// commits the registry's effects or discards them outright, the same
// shape plugin/evm's Block.Accept/Block.Reject gives a block's chain
// state.
package txvm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/DioneProtocol/aggsim/plugin/delta"
	"github.com/DioneProtocol/aggsim/storage"
)

// Config controls per-transaction feature activation, the domain's
// analogue of the teacher's per-height chain rules.
type Config struct {
	// DeltaEnabled selects whether GetAggregator may return a lazy
	// delta instance, or must eagerly materialize every touch.
	DeltaEnabled bool
}

// Outcome is the result of a committed transaction: the registry's
// three collections, surfaced for the caller to persist or report.
type Outcome struct {
	ID        [32]byte
	New       []delta.ID
	Destroyed []delta.ID
	Live      map[delta.ID]*delta.Aggregator
}

// Transaction owns one delta.Registry across its lifetime and the
// resolver its aggregators materialize against.
type Transaction struct {
	id       [32]byte
	cfg      Config
	resolver storage.Resolver
	registry *delta.Registry

	committed bool
	aborted   bool
}

// New opens a transaction rooted at id. resolver is consulted whenever
// an aggregator touched by this transaction must be materialized.
func New(id [32]byte, resolver storage.Resolver, cfg Config) *Transaction {
	log.Debug("opening transaction", "id", fmt.Sprintf("%x", id), "deltaEnabled", cfg.DeltaEnabled)
	return &Transaction{
		id:       id,
		cfg:      cfg,
		resolver: resolver,
		registry: delta.NewRegistry(0),
	}
}

// GetAggregator returns the transaction-local aggregator for id,
// creating a lazy instance on first touch.
func (t *Transaction) GetAggregator(id delta.ID, limit delta.Uint128) (*delta.Aggregator, error) {
	return t.registry.GetAggregator(id, limit, t.resolver, t.cfg.DeltaEnabled)
}

// CreateAggregator installs a fresh Data(0) aggregator for id, as a
// newly created account would.
func (t *Transaction) CreateAggregator(id delta.ID, limit delta.Uint128) {
	t.registry.CreateNewAggregator(id, limit)
}

// RemoveAggregator deletes id from the working set.
func (t *Transaction) RemoveAggregator(id delta.ID) {
	t.registry.RemoveAggregator(id)
}

// NumAggregators reports the size of the transaction's working set.
func (t *Transaction) NumAggregators() delta.Uint128 {
	return t.registry.NumAggregators()
}

// Commit finalizes the transaction, surfacing the registry's created,
// destroyed, and live collections as an Outcome. Commit does not
// perform any durable write itself — materializing and persisting
// values is left to the caller, the same way Block.Accept hands
// already-verified state to the chain's commit batch rather than
// deriving it there.
func (t *Transaction) Commit() (Outcome, error) {
	if t.aborted {
		return Outcome{}, fmt.Errorf("txvm: cannot commit transaction %x, already aborted", t.id)
	}
	if t.committed {
		return Outcome{}, fmt.Errorf("txvm: transaction %x already committed", t.id)
	}
	t.committed = true

	created, destroyed, live := t.registry.Into()
	log.Debug("committing transaction", "id", fmt.Sprintf("%x", t.id),
		"created", len(created), "destroyed", len(destroyed), "live", len(live))
	return Outcome{ID: t.id, New: created, Destroyed: destroyed, Live: live}, nil
}

// Abort discards the transaction's registry. No storage effect
// results, matching spec.md §5: "a transaction abort simply discards
// its registry."
func (t *Transaction) Abort() {
	t.aborted = true
	log.Debug("aborting transaction", "id", fmt.Sprintf("%x", t.id))
}
