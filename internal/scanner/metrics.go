package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal tracks completed market scans.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_scanner_scans_total",
		Help: "Total number of market scans performed",
	})

	// ScanDurationSeconds tracks scan latency.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skinflip_scanner_scan_duration_seconds",
		Help:    "Duration of a single market scan",
		Buckets: prometheus.DefBuckets,
	})

	// OpportunitiesFoundTotal tracks opportunities emitted by scans.
	OpportunitiesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_scanner_opportunities_found_total",
		Help: "Total number of arbitrage opportunities found",
	})

	// OpportunitiesRejectedTotal tracks candidate pairs rejected by reason.
	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_scanner_opportunities_rejected_total",
			Help: "Total number of candidate pairs rejected during scanning",
		},
		[]string{"reason"},
	)

	// ListingsDroppedTotal tracks listings dropped before pairing.
	ListingsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_scanner_listings_dropped_total",
			Help: "Total number of listings dropped before pairing",
		},
		[]string{"reason"},
	)

	// ScanCacheHitsTotal tracks scans served from cache.
	ScanCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_scanner_cache_hits_total",
		Help: "Total number of scans served from the scan cache",
	})

	// ScanCacheMissesTotal tracks scans that had to query the marketplace.
	ScanCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_scanner_cache_misses_total",
		Help: "Total number of scans that missed the scan cache",
	})
)
