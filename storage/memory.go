// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage adapts durable and in-memory key/value backends to
// delta.Resolver, the single abstract "give me the base value of this
// aggregator" call the delta package depends on.
package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/log"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

// MemoryResolver is an in-process delta.Resolver backed by a fastcache
// byte cache, the way go-ethereum-family nodes cache decoded state
// without the overhead of a GC-visible map. It is the resolver used by
// tests and by the scenario CLI's --store=memory mode.
//
// MemoryResolver additionally tracks a negative cache of ids already
// known to be missing, so repeated lookups of a never-seen id don't
// walk the byte cache a second time.
type MemoryResolver struct {
	mu     sync.Mutex
	cache  *fastcache.Cache
	misses mapset.Set[delta.ID]
}

// NewMemoryResolver returns an empty resolver with a cache sized for
// maxBytes of encoded values.
func NewMemoryResolver(maxBytes int) *MemoryResolver {
	return &MemoryResolver{
		cache:  fastcache.New(maxBytes),
		misses: mapset.NewSet[delta.ID](),
	}
}

// Put records value as the base for id, for use by tests seeding
// fixture state and by the CLI when applying a scenario's seeds.
func (m *MemoryResolver) Put(id delta.ID, value delta.Uint128) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Set(resolverCacheKey(id), encodeUint128(value))
	m.misses.Remove(id)
}

// Resolve implements delta.Resolver.
func (m *MemoryResolver) Resolve(id delta.ID) (delta.Uint128, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.misses.Contains(id) {
		return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, errNotFound)
	}

	raw, ok := m.cache.HasGet(nil, resolverCacheKey(id))
	if !ok {
		m.misses.Add(id)
		return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, errNotFound)
	}

	value, err := decodeUint128(raw)
	if err != nil {
		log.Warn("storage: corrupt cached value", "id", id, "err", err)
		return delta.Uint128{}, fmt.Errorf("storage: %s: %w", id, err)
	}
	return value, nil
}

func resolverCacheKey(id delta.ID) []byte {
	if key, ok := id.StorageKey(); ok {
		return key
	}
	n, _ := id.Ephemeral()
	return encodeUint128(n)
}

// encodeUint128 writes v as 16 bytes, big-endian, high limb first —
// the same fixed-width encoding PebbleResolver persists to disk, kept
// consistent so a value can move between the two backends unchanged.
func encodeUint128(v delta.Uint128) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], v.Hi)
	binary.BigEndian.PutUint64(buf[8:16], v.Lo)
	return buf
}

func decodeUint128(buf []byte) (delta.Uint128, error) {
	if len(buf) != 16 {
		return delta.Uint128{}, fmt.Errorf("storage: expected 16-byte encoded value, got %d", len(buf))
	}
	return delta.Uint128{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}, nil
}
