package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MojangLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mojang_lookups_total",
			Help: "Total number of Mojang profile lookups by result",
		},
		[]string{"result"},
	)

	MojangLookupDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mojang_lookup_duration_seconds",
			Help:    "Duration of Mojang profile lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
