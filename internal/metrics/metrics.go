package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratehub_cache_hits_total",
			Help: "Total number of response cache hits per endpoint",
		},
		[]string{"endpoint"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratehub_cache_misses_total",
			Help: "Total number of response cache misses per endpoint",
		},
		[]string{"endpoint"},
	)

	QuotaUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratehub_quota_used",
			Help: "Provider calls charged against the current monthly quota window",
		},
	)

	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratehub_provider_calls_total",
			Help: "Total number of live provider legs per endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	EstimationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratehub_estimations_total",
			Help: "Total number of estimation fallback legs per outcome",
		},
		[]string{"outcome"},
	)

	ResolutionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratehub_resolution_duration_seconds",
			Help:    "End to end quote resolution duration per provenance",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provenance"},
	)

	RecoverableErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratehub_recoverable_errors_total",
			Help: "Recoverable resolution errors swallowed before fallback, per kind",
		},
		[]string{"kind"},
	)
)
