package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "http_request_latency_seconds",
			Namespace: AggregatorNamespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of http operations in seconds.",
		},
		[]string{"verb"},
	)

	UploadsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "uploads_accepted_total",
		Namespace: AggregatorNamespace,
		Help:      "The total number of accepted file uploads.",
	})

	UploadsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "uploads_rejected_total",
		Namespace: AggregatorNamespace,
		Help:      "The total number of rejected file uploads.",
	})
)
