package marketplace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDurationSeconds tracks marketplace API call latency by endpoint.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skinflip_marketplace_request_duration_seconds",
			Help:    "Duration of marketplace API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// RequestErrorsTotal tracks failed marketplace API calls by endpoint.
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_marketplace_request_errors_total",
			Help: "Total number of failed marketplace API requests",
		},
		[]string{"endpoint"},
	)

	// MalformedListingsTotal tracks wire records dropped during parsing.
	MalformedListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_marketplace_malformed_records_total",
		Help: "Total number of malformed marketplace records skipped",
	})
)
