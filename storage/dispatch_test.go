// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

func TestDispatchRoutesByIDShape(t *testing.T) {
	memory := NewMemoryResolver(1 << 20)
	legacyID := delta.LegacyID(delta.TableHandle{1}, delta.AggregatorKey{2})
	ephemeralID := delta.EphemeralID(delta.U128FromUint64(1))

	durable := &stubResolver{values: map[delta.ID]delta.Uint128{legacyID: delta.U128FromUint64(77)}}
	memory.Put(ephemeralID, delta.U128FromUint64(99))

	dispatch := NewDispatch(durable, memory)

	v, err := dispatch.Resolve(legacyID)
	require.NoError(t, err)
	require.Equal(t, delta.U128FromUint64(77), v)

	v, err = dispatch.Resolve(ephemeralID)
	require.NoError(t, err)
	require.Equal(t, delta.U128FromUint64(99), v)
}

func TestDispatchNilBackendReportsNotFound(t *testing.T) {
	dispatch := NewDispatch(nil, nil)

	_, err := dispatch.Resolve(delta.EphemeralID(delta.U128FromUint64(1)))
	require.Error(t, err)

	_, err = dispatch.Resolve(delta.LegacyID(delta.TableHandle{1}, delta.AggregatorKey{1}))
	require.Error(t, err)
}

type stubResolver struct {
	values map[delta.ID]delta.Uint128
}

func (s *stubResolver) Resolve(id delta.ID) (delta.Uint128, error) {
	if v, ok := s.values[id]; ok {
		return v, nil
	}
	return delta.Uint128{}, errNotFound
}
