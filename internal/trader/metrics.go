package trader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesTotal tracks confirmed purchases.
	PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_trader_purchases_total",
		Help: "Total number of confirmed purchases",
	})

	// ListingsTotal tracks confirmed sell listings.
	ListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_trader_listings_total",
		Help: "Total number of confirmed sell listings",
	})

	// SpentUSD accumulates confirmed purchase spend.
	SpentUSD = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_trader_spent_usd_total",
		Help: "Cumulative purchase spend in USD",
	})

	// SkipsTotal tracks skipped candidates by reason.
	SkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_trader_skips_total",
			Help: "Total number of skipped trade candidates",
		},
		[]string{"reason"},
	)

	// ConsecutiveErrors exposes the current consecutive-error count.
	ConsecutiveErrors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skinflip_trader_consecutive_errors",
		Help: "Current consecutive trading error count",
	})

	// PausesTotal tracks backoff pauses by kind.
	PausesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_trader_pauses_total",
			Help: "Total number of backoff pauses triggered",
		},
		[]string{"kind"},
	)

	// DailyTradedUSD exposes the value traded in the current 24h window.
	DailyTradedUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skinflip_trader_daily_traded_usd",
		Help: "Value traded in the current 24h window in USD",
	})
)
