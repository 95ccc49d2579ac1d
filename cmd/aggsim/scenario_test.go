// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testScenarioYAML = `
delta_enabled: true
seeds:
  - aggregator: 1
    base: 150
steps:
  - kind: create
    aggregator: 2
    limit: 100
  - kind: add
    aggregator: 1
    limit: 500
    amount: 50
  - kind: materialize
    aggregator: 1
    limit: 500
`

func TestLoadScenarioParsesYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "scenario.yaml", []byte(testScenarioYAML), 0o644))

	s, err := loadScenario(fs, "scenario.yaml")
	require.NoError(t, err)

	require.True(t, s.DeltaEnabled)
	require.Equal(t, []seed{{Aggregator: 1, Base: 150}}, s.Seeds)
	require.Equal(t, []step{
		{Kind: "create", Aggregator: 2, Limit: 100},
		{Kind: "add", Aggregator: 1, Limit: 500, Amount: 50},
		{Kind: "materialize", Aggregator: 1, Limit: 500},
	}, s.Steps)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := loadScenario(fs, "missing.yaml")
	require.Error(t, err)
}

// A scenario that only creates/removes/add-subs aggregators never needs a
// durable base, so seeds is legitimately absent — loadScenario must not
// panic on the missing key.
const testScenarioNoSeedsYAML = `
delta_enabled: false
steps:
  - kind: create
    aggregator: 1
    limit: 100
  - kind: add
    aggregator: 1
    limit: 100
    amount: 10
  - kind: remove
    aggregator: 1
`

func TestLoadScenarioWithoutSeeds(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "scenario.yaml", []byte(testScenarioNoSeedsYAML), 0o644))

	s, err := loadScenario(fs, "scenario.yaml")
	require.NoError(t, err)

	require.False(t, s.DeltaEnabled)
	require.Empty(t, s.Seeds)
	require.Equal(t, []step{
		{Kind: "create", Aggregator: 1, Limit: 100},
		{Kind: "add", Aggregator: 1, Limit: 100, Amount: 10},
		{Kind: "remove", Aggregator: 1},
	}, s.Steps)
}
