// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/fjl/memsize"
	"github.com/olekukonko/tablewriter"

	"github.com/DioneProtocol/aggsim/plugin/delta"
	"github.com/DioneProtocol/aggsim/plugin/txvm"
)

// printReport renders a committed transaction's outcome as a table:
// one row per live aggregator, plus a summary of ids created and
// destroyed this transaction.
func printReport(w io.Writer, outcome txvm.Outcome) {
	fmt.Fprintf(w, "transaction %x\n", outcome.ID)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"aggregator", "state", "value", "max_positive", "min_negative"})

	ids := make([]delta.ID, 0, len(outcome.Live))
	for id := range outcome.Live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })

	for _, id := range ids {
		agg := outcome.Live[id]
		row := []string{id.String(), agg.State().String(), agg.Value().String(), "-", "-"}
		if h := agg.History(); h != nil {
			row[3] = h.MaxPositive.String()
			row[4] = h.MinNegative.String()
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "created (%d): %v\n", len(outcome.New), outcome.New)
	fmt.Fprintf(w, "destroyed (%d): %v\n", len(outcome.Destroyed), outcome.Destroyed)
}

// dumpAggregator pretty-prints a single aggregator's internal fields
// for --verbose debugging, never on any hot path.
func dumpAggregator(w io.Writer, id delta.ID, agg *delta.Aggregator) {
	spew.Fdump(w, struct {
		ID      delta.ID
		Extract delta.Extracted
	}{ID: id, Extract: agg.Into()})
}

// reportMemStats writes the in-memory size of the live registry, the
// way geth-family nodes report memory use of their state caches via
// fjl/memsize.
func reportMemStats(w io.Writer, outcome txvm.Outcome) {
	report := memsize.Scan(outcome.Live)
	io.WriteString(w, report.Report())
}
