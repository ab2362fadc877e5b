// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InterceptedCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_intercepted_calls_total",
			Help: "Total number of observed calls matching a target pattern",
		},
		[]string{"target", "primitive"},
	)

	CredentialUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_credential_updates_total",
			Help: "Total number of times a newer bearer credential was captured",
		},
	)

	PrimaryRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_primary_records_total",
			Help: "Primary responses by processing result",
		},
		[]string{"result"},
	)

	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_lookups_total",
			Help: "Secondary lookups by outcome",
		},
		[]string{"outcome"},
	)

	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_lookup_duration_seconds",
			Help:    "Duration of secondary lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	LookupsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_lookups_active",
			Help: "Number of secondary lookups in flight (0 or 1)",
		},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Delivery attempts by outcome",
		},
		[]string{"outcome"},
	)
)
