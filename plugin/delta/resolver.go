// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

// Resolver is consulted only during materialization, and only for
// delta-state aggregators. It must return the current durable value
// of the aggregator named by id; a missing or unreachable backing
// store is surfaced as an error, not a panic. Implementations are
// assumed safe for concurrent, read-only use across executors — see
// the storage package for concrete adapters.
type Resolver interface {
	Resolve(id ID) (Uint128, error)
}
