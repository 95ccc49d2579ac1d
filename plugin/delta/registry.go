// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import (
	"sort"
	"sync/atomic"

	"github.com/google/btree"
)

// btreeDegree controls the branching factor of the ordered id sets
// below. The working sets here are transaction-local and small, so
// the exact degree has little effect; 32 matches common defaults used
// for in-memory btree.BTreeG instances of this size.
const btreeDegree = 32

func idLess(a, b ID) bool { return a.Compare(b) < 0 }

// Registry stores all information about the aggregators used by a
// single transaction: which were created, which were destroyed, and
// the live working set, plus the monotonic counter used to mint fresh
// ephemeral ids. A Registry is transaction-local: it is never mutated
// by more than one execution context at a time, except for GenerateID,
// which must remain safe under parallel callers.
type Registry struct {
	newAggregators       *btree.BTreeG[ID]
	destroyedAggregators *btree.BTreeG[ID]
	aggregators          map[ID]*Aggregator
	idCounter            atomic.Uint64
}

// NewRegistry returns an empty registry whose ephemeral id generator
// starts counting up from seed.
func NewRegistry(seed uint64) *Registry {
	r := &Registry{
		newAggregators:       btree.NewG(btreeDegree, idLess),
		destroyedAggregators: btree.NewG(btreeDegree, idLess),
		aggregators:          make(map[ID]*Aggregator),
	}
	r.idCounter.Store(seed)
	return r
}

// GetAggregator returns a mutable aggregator for id and limit. If the
// transaction has not yet touched id, a fresh PositiveDelta(0)
// instance is inserted with a new empty History; an existing entry's
// limit is not updated by a later call with a different limit. If
// deltaEnabled is false, the returned instance is eagerly materialized
// before being handed back, so the caller observes it already in the
// Data state.
func (r *Registry) GetAggregator(id ID, limit Uint128, resolver Resolver, deltaEnabled bool) (*Aggregator, error) {
	agg, ok := r.aggregators[id]
	if !ok {
		agg = newDeltaAggregator(limit)
		r.aggregators[id] = agg
		liveAggregators.Set(float64(len(r.aggregators)))
	}

	if !deltaEnabled {
		if _, err := agg.ReadAndMaterialize(resolver, id); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// CreateNewAggregator inserts a fresh Data(0) aggregator for id,
// overwriting any existing entry — creation always wins over a prior
// lazy touch — and records id as created in this transaction.
func (r *Registry) CreateNewAggregator(id ID, limit Uint128) {
	r.aggregators[id] = newDataAggregator(Uint128{}, limit)
	r.newAggregators.ReplaceOrInsert(id)
	liveAggregators.Set(float64(len(r.aggregators)))
	aggregatorsCreated.Inc()
}

// RemoveAggregator removes id from the working set. If id was created
// within this transaction, it is also removed from newAggregators,
// net-zero within the transaction; otherwise it is recorded in
// destroyedAggregators for the caller to delete from storage.
func (r *Registry) RemoveAggregator(id ID) {
	delete(r.aggregators, id)
	liveAggregators.Set(float64(len(r.aggregators)))

	if _, ok := r.newAggregators.Delete(id); ok {
		return
	}
	r.destroyedAggregators.ReplaceOrInsert(id)
	aggregatorsDestroyed.Inc()
}

// GenerateID atomically increments the id counter and returns the
// value produced by that increment — a single fetch-and-add, safe
// under parallel callers. This fixes the increment-then-separate-load
// race in the source this registry is modeled on (spec.md §5, §9).
func (r *Registry) GenerateID() uint64 {
	return r.idCounter.Add(1)
}

// NumAggregators returns the current size of the working set.
func (r *Registry) NumAggregators() Uint128 {
	return U128FromUint64(uint64(len(r.aggregators)))
}

// Into consumes the registry, returning its three collections: ids
// created and still live, ids destroyed, and the final id->aggregator
// working set. new/destroyed are returned in ascending ID order,
// reproducing the deterministic iteration order of the original
// BTreeSet this registry is modeled on.
func (r *Registry) Into() (created, destroyed []ID, live map[ID]*Aggregator) {
	created = sortedIDs(r.newAggregators)
	destroyed = sortedIDs(r.destroyedAggregators)
	live = r.aggregators
	return created, destroyed, live
}

func sortedIDs(set *btree.BTreeG[ID]) []ID {
	ids := make([]ID, 0, set.Len())
	set.Ascend(func(id ID) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// LiveIDs returns the working set's ids sorted by Compare, useful for
// deterministic reporting without consuming the registry.
func (r *Registry) LiveIDs() []ID {
	ids := make([]ID, 0, len(r.aggregators))
	for id := range r.aggregators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}
