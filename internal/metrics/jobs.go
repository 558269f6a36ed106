package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "jobs_completed_total",
			Namespace: AggregatorNamespace,
			Help:      "The total number of processing jobs by terminal status.",
		},
		[]string{"status"},
	)

	JobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:      "job_duration_seconds",
		Namespace: AggregatorNamespace,
		Buckets:   prometheus.DefBuckets,
		Help:      "The wall time of the processing step per job in seconds.",
	})

	RowsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "rows_accepted_total",
		Namespace: AggregatorNamespace,
		Help:      "The total number of CSV rows accepted into aggregation.",
	})

	RowsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "rows_rejected_total",
		Namespace: AggregatorNamespace,
		Help:      "The total number of CSV rows rejected by validation.",
	})

	JobsStuckProcessing = promauto.NewGauge(prometheus.GaugeOpts{
		Name:      "jobs_stuck_processing",
		Namespace: AggregatorNamespace,
		Help:      "Records observed in the processing state past the supervisor threshold.",
	})
)
