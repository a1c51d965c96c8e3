package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesSavedTotal tracks durable purchase records written.
	TradesSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_storage_trades_saved_total",
		Help: "Total number of purchases durably recorded",
	})

	// StatusTransitionsTotal tracks trade status transitions by target status.
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_storage_status_transitions_total",
			Help: "Total number of trade status transitions",
		},
		[]string{"status"},
	)

	// RealizedProfitUSD accumulates realized profit across sold trades.
	// Gauge, not counter: a stop-loss sale books a negative delta.
	RealizedProfitUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skinflip_storage_realized_profit_usd",
		Help: "Cumulative realized profit across sold trades in USD",
	})

	// TradesCleanedTotal tracks terminal rows removed by retention cleanup.
	TradesCleanedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skinflip_storage_trades_cleaned_total",
		Help: "Total number of trades removed by retention cleanup",
	})

	// RecoveryActionsTotal tracks reconciliation outcomes by action.
	RecoveryActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinflip_storage_recovery_actions_total",
			Help: "Total number of recovery actions taken at startup",
		},
		[]string{"action"},
	)
)
