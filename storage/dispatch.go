// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/DioneProtocol/aggsim/plugin/delta"
)

// Dispatch composes a durable and a memory resolver behind one
// delta.Resolver, routing by id shape: Legacy ids (durable table
// items) go to the durable resolver, Ephemeral ids (in-block only, by
// construction never previously persisted) go to the memory resolver.
// This mirrors the teacher's sync handler facade, which holds one
// specialized handler per request kind and dispatches each incoming
// request to the matching handler.
type Dispatch struct {
	durable Resolver
	memory  Resolver
}

// NewDispatch builds a Dispatch over the given backends. Either may be
// nil if the caller never expects to resolve that id shape; a nil
// backend reports errNotFound for every id routed to it.
func NewDispatch(durable, memory Resolver) *Dispatch {
	return &Dispatch{durable: durable, memory: memory}
}

// Resolve implements delta.Resolver.
func (d *Dispatch) Resolve(id delta.ID) (delta.Uint128, error) {
	if id.IsEphemeral() {
		if d.memory == nil {
			return delta.Uint128{}, errNotFound
		}
		return d.memory.Resolve(id)
	}
	if d.durable == nil {
		return delta.Uint128{}, errNotFound
	}
	return d.durable.Resolve(id)
}
