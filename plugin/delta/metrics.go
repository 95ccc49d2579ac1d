// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delta

import "github.com/prometheus/client_golang/prometheus"

var (
	aggregatorsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_aggregators_created_total",
		Help: "Total aggregators created via CreateNewAggregator across all transactions",
	})
	aggregatorsDestroyed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_aggregators_destroyed_total",
		Help: "Total aggregators removed via RemoveAggregator that were not also created in the same transaction",
	})
	aggregatorsMaterialized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_aggregators_materialized_total",
		Help: "Total successful ReadAndMaterialize calls",
	})
	overflowErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_overflow_errors_total",
		Help: "Total OverflowError results across Add, Sub and materialization",
	})
	underflowErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_underflow_errors_total",
		Help: "Total UnderflowError results across Add, Sub and materialization",
	})
	resolutionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delta_resolution_failures_total",
		Help: "Total resolver failures encountered during materialization",
	})
	liveAggregators = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "delta_live_aggregators",
		Help: "Number of aggregators in the working set of the most recently observed registry",
	})
)

func init() {
	prometheus.MustRegister(
		aggregatorsCreated,
		aggregatorsDestroyed,
		aggregatorsMaterialized,
		overflowErrors,
		underflowErrors,
		resolutionFailures,
		liveAggregators,
	)
}
