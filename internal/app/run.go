package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonk9218/skinflip/internal/scanner"
	"github.com/antonk9218/skinflip/internal/trader"
	"go.uber.org/zap"
)

// Run starts the engine and blocks until shutdown. Startup order matters:
// recovery reconciles durable trade state against live inventory before any
// new trading begins.
func (a *App) Run() error {
	a.logger.Info("engine-starting",
		zap.String("mode", a.cfg.EngineMode),
		zap.Strings("games", a.cfg.Games),
		zap.String("risk-tier", a.cfg.RiskTier),
		zap.Duration("scan-interval", a.cfg.ScanInterval))

	a.wg.Add(1)
	go a.runHTTPServer()

	a.probe.SetState("recovering")
	a.runRecovery()

	a.probe.SetReady(true)
	a.probe.SetState("scanning")

	a.wg.Add(1)
	go a.engineLoop()

	a.wg.Add(1)
	go a.cleanupLoop()

	a.logger.Info("engine-ready", zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// runRecovery reconciles pending trades once at startup and re-lists what
// recovery says still needs a sell offer. A recovery failure is logged, not
// fatal: the engine can still trade, and the next restart retries.
func (a *App) runRecovery() {
	report, err := a.reconciler.Recover(a.ctx)
	if err != nil {
		a.logger.Error("recovery-failed", zap.Error(err))
		return
	}

	if report.NeedsListing > 0 {
		a.trader.RelistRecovered(a.ctx, report.Items)
	}
}

// engineLoop runs one scan (and, in trade mode, one trading session) per
// cycle. A single cycle failing never kills the loop.
func (a *App) engineLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.ScanInterval)
	defer ticker.Stop()

	// First cycle immediately; subsequent ones on the ticker.
	a.runCycle()

	for {
		select {
		case <-a.ctx.Done():
			a.logger.Info("engine-loop-stopping")
			return
		case <-ticker.C:
			a.runCycle()
		}
	}
}

func (a *App) runCycle() {
	var opportunities []*scanner.Opportunity

	for _, game := range a.cfg.Games {
		if a.ctx.Err() != nil {
			return
		}

		opps, err := a.scanner.Scan(a.ctx, scanner.ScanParams{
			Game:          game,
			Mode:          a.cfg.EngineMode,
			PriceFrom:     a.cfg.ScanPriceFrom,
			PriceTo:       a.cfg.ScanPriceTo,
			MinProfitPct:  a.cfg.MinProfitPercent,
			ListingsLimit: a.cfg.ScanListingsLimit,
		})
		if err != nil {
			a.logger.Error("scan-cycle-failed",
				zap.String("game", game),
				zap.Error(err))
			continue
		}
		opportunities = append(opportunities, opps...)
	}

	if a.cfg.EngineMode != "trade" || len(opportunities) == 0 {
		return
	}

	a.probe.SetState("trading")
	defer a.probe.SetState("scanning")

	balanceCents, err := a.client.Balance(a.ctx)
	if err != nil {
		a.logger.Error("balance-fetch-failed", zap.Error(err))
		a.backoff.RecordFailure()
		return
	}

	risk := trader.ResolveRiskConfig(
		trader.RiskTier(a.cfg.RiskTier),
		a.cfg.MaxTradeValue,
		a.cfg.MaxTrades,
		a.cfg.MinProfitPercent,
		float64(balanceCents)/100,
	)

	result, err := a.trader.RunSession(a.ctx, opportunities, risk)
	if err != nil {
		a.logger.Error("trade-session-failed", zap.Error(err))
		return
	}

	if result.Purchases > 0 {
		a.logger.Info("trade-cycle-summary",
			zap.Int("purchases", result.Purchases),
			zap.Int("sales", result.Sales),
			zap.Float64("spent", result.Spent),
			zap.Float64("daily-traded", a.backoff.DailySpent()))
	}
}

// cleanupLoop periodically deletes terminal trades past the retention
// horizon.
func (a *App) cleanupLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.logger.Info("cleanup-loop-stopping")
			return
		case <-ticker.C:
			_, err := a.store.Cleanup(a.ctx, a.cfg.RetentionDays)
			if err != nil {
				a.logger.Error("cleanup-failed", zap.Error(err))
			}
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
