package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métriques Prometheus exposées sur /metrics
var (
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragreport",
		Name:      "reports_total",
		Help:      "Number of RAG reports served, by kind and cache outcome.",
	}, []string{"kind", "cache"})

	ReportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ragreport",
		Name:      "report_duration_seconds",
		Help:      "Time spent computing a RAG report on cache miss.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	RejectedSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ragreport",
		Name:      "rejected_samples_total",
		Help:      "Attach-rate samples excluded for data integrity reasons.",
	})

	ExcludedStoresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ragreport",
		Name:      "excluded_stores_total",
		Help:      "Stores excluded from rollups for lack of data.",
	})

	IngestedSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ragreport",
		Name:      "ingested_samples_total",
		Help:      "Attach-rate samples written by the ingestion service.",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ragreport",
		Name:      "cache_invalidations_total",
		Help:      "Cached report entries removed after new samples landed.",
	})
)
