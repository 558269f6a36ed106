// Package metrics
package metrics

const AggregatorNamespace = "aggregator"
