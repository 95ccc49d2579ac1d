// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import (
	"bytes"
	"fmt"
)

// idKind discriminates the two shapes an ID can take. Legacy sorts
// before Ephemeral, matching the original Rust enum's declaration
// order (derive(PartialOrd, Ord) orders by variant position first).
type idKind uint8

const (
	kindLegacy idKind = iota
	kindEphemeral
)

// TableHandle is an opaque 16-byte handle shared across all aggregator
// instances created by the same factory; used for fine-grained storage
// access, the same role the teacher's table-extension handle plays for
// Move table items.
type TableHandle [16]byte

// AggregatorKey is the opaque 32-byte per-instance key associated with
// a Legacy aggregator, generated upstream (identifier hashing is out
// of scope here, see spec.md §1) from the creating transaction's hash.
type AggregatorKey [32]byte

// ID uniquely identifies an aggregator instance. It is one of two
// shapes: Legacy (a durable table-item address) or Ephemeral (an
// in-block-only 128-bit integer). ID values are cheap to copy and
// totally ordered via Compare.
type ID struct {
	kind      idKind
	handle    TableHandle
	key       AggregatorKey
	ephemeral Uint128
}

// LegacyID builds an ID naming a durable table item.
func LegacyID(handle TableHandle, key AggregatorKey) ID {
	return ID{kind: kindLegacy, handle: handle, key: key}
}

// EphemeralID builds an ID with no durable storage key, valid only
// within the current block.
func EphemeralID(n Uint128) ID {
	return ID{kind: kindEphemeral, ephemeral: n}
}

// IsEphemeral reports whether id has no durable storage key.
func (id ID) IsEphemeral() bool {
	return id.kind == kindEphemeral
}

// Legacy reports whether id names a durable table item, and if so
// returns its handle and key.
func (id ID) Legacy() (handle TableHandle, key AggregatorKey, ok bool) {
	if id.kind != kindLegacy {
		return TableHandle{}, AggregatorKey{}, false
	}
	return id.handle, id.key, true
}

// Ephemeral reports whether id is an in-block identifier, and if so
// returns its numeric value.
func (id ID) Ephemeral() (Uint128, bool) {
	if id.kind != kindEphemeral {
		return Uint128{}, false
	}
	return id.ephemeral, true
}

// StorageKey projects a Legacy ID to a storage key built from the
// handle bytes followed by the 32-byte key bytes. The concrete byte
// layout beyond this concatenation (e.g. any further encoding) is
// delegated to the storage layer, per spec.md §6. Ephemeral IDs have
// no storage key.
func (id ID) StorageKey() ([]byte, bool) {
	if id.kind != kindLegacy {
		return nil, false
	}
	key := make([]byte, 0, len(id.handle)+len(id.key))
	key = append(key, id.handle[:]...)
	key = append(key, id.key[:]...)
	return key, true
}

// Compare orders IDs by discriminant first (Legacy < Ephemeral), then
// lexicographically over fields, matching the original Rust's derived
// Ord on the enum.
func (id ID) Compare(other ID) int {
	if id.kind != other.kind {
		if id.kind < other.kind {
			return -1
		}
		return 1
	}
	switch id.kind {
	case kindLegacy:
		if c := bytes.Compare(id.handle[:], other.handle[:]); c != 0 {
			return c
		}
		return bytes.Compare(id.key[:], other.key[:])
	default:
		return id.ephemeral.Cmp(other.ephemeral)
	}
}

func (id ID) String() string {
	if id.kind == kindLegacy {
		return fmt.Sprintf("legacy(%x,%x)", id.handle, id.key)
	}
	return fmt.Sprintf("ephemeral(%s)", id.ephemeral)
}
