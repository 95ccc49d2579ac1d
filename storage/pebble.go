// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/log"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

// PebbleResolver is a durable delta.Resolver backed by a pebble
// key/value store. It only ever resolves already-materialized,
// already-decoded base values; it does not implement any aggregator
// persistence encoding beyond the fixed 16-byte Uint128 layout shared
// with MemoryResolver.
type PebbleResolver struct {
	db *pebble.DB
}

// OpenPebbleResolver opens (or creates) a pebble database at dir.
func OpenPebbleResolver(dir string) (*PebbleResolver, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("storage: opening pebble db at %s: %w", dir, err)
	}
	return &PebbleResolver{db: db}, nil
}

// Close releases the underlying pebble database.
func (p *PebbleResolver) Close() error {
	return p.db.Close()
}

// Put persists value as the durable base for id. Only Legacy ids have
// a storage key; Ephemeral ids panic, since they are by definition
// never durably backed.
func (p *PebbleResolver) Put(id delta.ID, value delta.Uint128) error {
	key, ok := id.StorageKey()
	if !ok {
		panic("storage: ephemeral ids have no durable storage key")
	}
	if err := p.db.Set(key, encodeUint128(value), pebble.Sync); err != nil {
		return fmt.Errorf("storage: writing %s: %w", id, err)
	}
	return nil
}

// Resolve implements delta.Resolver.
func (p *PebbleResolver) Resolve(id delta.ID) (delta.Uint128, error) {
	key, ok := id.StorageKey()
	if !ok {
		return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, errNotFound)
	}

	raw, closer, err := p.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, errNotFound)
		}
		return delta.Uint128{}, fmt.Errorf("storage: reading %s: %w", id, err)
	}
	defer closer.Close()

	value, err := decodeUint128(raw)
	if err != nil {
		log.Warn("storage: corrupt durable value", "id", id, "err", err)
		return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, err)
	}
	return value, nil
}
