// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"

	"github.com/DioneProtocol/aggsim/plugin/delta"
)

// Resolver is delta.Resolver, re-exported under the storage package so
// callers assembling a txvm.Transaction can spell the dependency as
// storage.Resolver without importing delta directly for that purpose.
type Resolver = delta.Resolver

// errNotFound is returned, wrapped with the offending id, whenever a
// resolver backend has no recorded base value.
var errNotFound = errors.New("no base value recorded")
