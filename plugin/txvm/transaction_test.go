// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

type stubResolver struct {
	values map[uint64]delta.Uint128
}

func (s *stubResolver) Resolve(id delta.ID) (delta.Uint128, error) {
	n, _ := id.Ephemeral()
	if v, ok := s.values[n.Lo]; ok {
		return v, nil
	}
	return delta.Uint128{}, errNotResolved
}

type notResolvedErr struct{}

func (notResolvedErr) Error() string { return "no value for id" }

var errNotResolved = notResolvedErr{}

func TestTransactionCommitSurfacesOutcome(t *testing.T) {
	resolver := &stubResolver{values: map[uint64]delta.Uint128{1: delta.U128FromUint64(10)}}
	tx := New([32]byte{1}, resolver, Config{DeltaEnabled: true})

	created := delta.EphemeralID(delta.U128FromUint64(1))
	tx.CreateAggregator(created, delta.U128FromUint64(100))

	touched := delta.EphemeralID(delta.U128FromUint64(2))
	agg, err := tx.GetAggregator(touched, delta.U128FromUint64(100))
	require.NoError(t, err)
	require.NoError(t, agg.Add(delta.U128FromUint64(5)))

	outcome, err := tx.Commit()
	require.NoError(t, err)
	require.Equal(t, []delta.ID{created}, outcome.New)
	require.Empty(t, outcome.Destroyed)
	require.Len(t, outcome.Live, 2)
}

func TestTransactionCommitAfterCommitFails(t *testing.T) {
	tx := New([32]byte{2}, &stubResolver{}, Config{})
	_, err := tx.Commit()
	require.NoError(t, err)

	_, err = tx.Commit()
	require.Error(t, err)
}

func TestTransactionCommitAfterAbortFails(t *testing.T) {
	tx := New([32]byte{3}, &stubResolver{}, Config{})
	tx.Abort()

	_, err := tx.Commit()
	require.Error(t, err)
}

func TestTransactionEagerMaterializationOnTouch(t *testing.T) {
	resolver := &stubResolver{values: map[uint64]delta.Uint128{9: delta.U128FromUint64(42)}}
	tx := New([32]byte{4}, resolver, Config{DeltaEnabled: false})

	agg, err := tx.GetAggregator(delta.EphemeralID(delta.U128FromUint64(9)), delta.U128FromUint64(100))
	require.NoError(t, err)
	require.Equal(t, delta.Data, agg.State())
	require.Equal(t, delta.U128FromUint64(42), agg.Value())
}

func TestTransactionNumAggregators(t *testing.T) {
	tx := New([32]byte{5}, &stubResolver{}, Config{DeltaEnabled: true})
	require.Equal(t, delta.U128FromUint64(0), tx.NumAggregators())

	tx.CreateAggregator(delta.EphemeralID(delta.U128FromUint64(1)), delta.U128FromUint64(10))
	require.Equal(t, delta.U128FromUint64(1), tx.NumAggregators())

	tx.RemoveAggregator(delta.EphemeralID(delta.U128FromUint64(1)))
	require.Equal(t, delta.U128FromUint64(0), tx.NumAggregators())
}
