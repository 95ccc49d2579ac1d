// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

// scenario is the parsed form of a scenario file: a set of seeded
// durable base values, followed by a sequence of aggregator
// operations to replay inside one transaction.
type scenario struct {
	DeltaEnabled bool
	Seeds        []seed
	Steps        []step
}

type seed struct {
	Aggregator uint64
	Base       uint64
}

// step is one operation against an ephemeral aggregator identified by
// its integer id.
type step struct {
	Kind       string // "create", "add", "sub", "remove", "materialize"
	Aggregator uint64
	Limit      uint64
	Amount     uint64
}

// loadScenario reads a YAML scenario file from fs at path using viper,
// the way the teacher's own config loading composes viper with an
// injectable afero filesystem so tests never touch the real disk.
func loadScenario(fs afero.Fs, path string) (*scenario, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("aggsim: reading scenario %s: %w", path, err)
	}

	s := &scenario{
		DeltaEnabled: v.GetBool("delta_enabled"),
	}

	rawSeeds, _ := v.Get("seeds").([]interface{})
	for i, raw := range rawSeeds {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("aggsim: seeds[%d]: expected a mapping", i)
		}
		aggID, err := cast.ToUint64E(m["aggregator"])
		if err != nil {
			return nil, fmt.Errorf("aggsim: seeds[%d].aggregator: %w", i, err)
		}
		base, err := cast.ToUint64E(m["base"])
		if err != nil {
			return nil, fmt.Errorf("aggsim: seeds[%d].base: %w", i, err)
		}
		s.Seeds = append(s.Seeds, seed{Aggregator: aggID, Base: base})
	}

	rawSteps, _ := v.Get("steps").([]interface{})
	for i, raw := range rawSteps {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("aggsim: steps[%d]: expected a mapping", i)
		}
		kind, err := cast.ToStringE(m["kind"])
		if err != nil {
			return nil, fmt.Errorf("aggsim: steps[%d].kind: %w", i, err)
		}
		aggID, err := cast.ToUint64E(m["aggregator"])
		if err != nil {
			return nil, fmt.Errorf("aggsim: steps[%d].aggregator: %w", i, err)
		}
		st := step{Kind: kind, Aggregator: aggID}
		if v, ok := m["limit"]; ok {
			if st.Limit, err = cast.ToUint64E(v); err != nil {
				return nil, fmt.Errorf("aggsim: steps[%d].limit: %w", i, err)
			}
		}
		if v, ok := m["amount"]; ok {
			if st.Amount, err = cast.ToUint64E(v); err != nil {
				return nil, fmt.Errorf("aggsim: steps[%d].amount: %w", i, err)
			}
		}
		s.Steps = append(s.Steps, st)
	}

	return s, nil
}

func ephemeral(n uint64) delta.ID {
	return delta.EphemeralID(delta.U128FromUint64(n))
}
