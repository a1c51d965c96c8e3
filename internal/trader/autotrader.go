package trader

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/notify"
	"github.com/antonk9218/skinflip/internal/pricing"
	"github.com/antonk9218/skinflip/internal/scanner"
	"github.com/antonk9218/skinflip/internal/storage"
	"go.uber.org/zap"
)

// DefaultStaleQuotePercent is how far a live price may rise above the scanned
// price before the candidate is considered stale and skipped.
const DefaultStaleQuotePercent = 5.0

// DefaultPacingDelay separates consecutive trade executions.
const DefaultPacingDelay = time.Second

// Trader drives risk-bounded buy-then-sell cycles over ranked opportunities.
// Trades within a session execute strictly sequentially; two sessions never
// run concurrently against the same account.
type Trader struct {
	client   marketplace.Client
	store    storage.Store
	backoff  *ErrorBackoffController
	notifier notify.Notifier
	config   Config
	logger   *zap.Logger

	// active guards against concurrent sessions. Starting a session while
	// one runs is a no-op, not an error.
	active atomic.Bool
}

// Config holds trader configuration.
type Config struct {
	Marketplace       string
	StaleQuotePercent float64
	PacingDelay       time.Duration
	MinMarginPercent  float64
	FeePercent        float64
	Notifier          notify.Notifier
	Logger            *zap.Logger
}

// New creates an auto trader.
func New(cfg Config, client marketplace.Client, store storage.Store, backoff *ErrorBackoffController) *Trader {
	if cfg.StaleQuotePercent <= 0 {
		cfg.StaleQuotePercent = DefaultStaleQuotePercent
	}
	if cfg.PacingDelay <= 0 {
		cfg.PacingDelay = DefaultPacingDelay
	}

	return &Trader{
		client:   client,
		store:    store,
		backoff:  backoff,
		notifier: cfg.Notifier,
		config:   cfg,
		logger:   cfg.Logger,
	}
}

// RunSession executes opportunities under the given risk envelope and returns
// the session's accumulated result. Candidates are processed in descending
// net-profit order; the loop stops when the trade count or the balance is
// exhausted, and observes ctx at the top of every cycle.
func (t *Trader) RunSession(ctx context.Context, opportunities []*scanner.Opportunity, risk RiskConfig) (*TradeResult, error) {
	result := &TradeResult{}

	if !t.active.CompareAndSwap(false, true) {
		t.logger.Info("session-already-active")
		return result, nil
	}
	defer t.active.Store(false)

	if t.backoff.IsPaused() {
		t.logger.Info("session-skipped-backoff-pause",
			zap.Duration("remaining", t.backoff.PauseRemaining()))
		return result, nil
	}

	sorted := make([]*scanner.Opportunity, len(opportunities))
	copy(sorted, opportunities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NetProfit > sorted[j].NetProfit
	})

	t.logger.Info("session-starting",
		zap.String("tier", string(risk.Tier)),
		zap.Int("candidates", len(sorted)),
		zap.Int("max-trades", risk.MaxTrades),
		zap.Float64("max-trade-value", risk.MaxTradeValue),
		zap.Float64("balance", risk.Balance))

	remaining := risk.Balance

	for _, opp := range sorted {
		if ctx.Err() != nil {
			t.logger.Info("session-cancelled")
			break
		}
		if result.Purchases >= risk.MaxTrades {
			t.logger.Info("session-trade-limit-reached", zap.Int("trades", result.Purchases))
			break
		}
		if remaining <= 0 {
			t.logger.Info("session-balance-exhausted")
			break
		}
		if t.backoff.IsPaused() {
			t.logger.Warn("session-stopped-backoff-pause")
			break
		}

		if skip := t.checkLimits(opp, risk, remaining); skip != "" {
			result.Skipped++
			SkipsTotal.WithLabelValues(skip).Inc()
			t.logger.Debug("candidate-skipped",
				zap.String("title", opp.Title),
				zap.String("reason", skip),
				zap.Float64("buy-price", opp.BuyPrice))
			continue
		}

		spent, ok := t.executeTrade(ctx, opp, risk, remaining, result)
		if ok {
			remaining -= spent
		}

		// Pacing between trades; the marketplace throttles aggressively.
		select {
		case <-ctx.Done():
		case <-time.After(t.config.PacingDelay):
		}
	}

	t.logger.Info("session-complete",
		zap.Int("purchases", result.Purchases),
		zap.Int("sales", result.Sales),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
		zap.Float64("spent", result.Spent),
		zap.Float64("expected-profit", result.ExpectedProfit))

	return result, nil
}

// checkLimits returns a skip reason, or "" when the candidate passes the risk
// envelope.
func (t *Trader) checkLimits(opp *scanner.Opportunity, risk RiskConfig, remaining float64) string {
	if opp.BuyPrice > risk.MaxTradeValue {
		return "price_over_tier_cap"
	}
	if opp.ProfitPercent < risk.MinProfitPercent {
		return "profit_below_minimum"
	}
	if opp.BuyPrice > remaining {
		return "insufficient_balance"
	}
	return ""
}

// executeTrade runs one buy -> record -> list cycle. Returns the amount spent
// and whether a purchase happened.
func (t *Trader) executeTrade(ctx context.Context, opp *scanner.Opportunity, risk RiskConfig, remaining float64, result *TradeResult) (float64, bool) {
	// Re-fetch the live price: the scan snapshot may be minutes old.
	livePrice, err := t.livePrice(ctx, opp)
	if err != nil {
		result.Errors++
		t.backoff.RecordFailure()
		SkipsTotal.WithLabelValues("live_price_unavailable").Inc()
		t.logger.Warn("live-price-check-failed",
			zap.String("title", opp.Title),
			zap.Error(err))
		return 0, false
	}

	if livePrice > opp.BuyPrice*(1+t.config.StaleQuotePercent/100) {
		result.Skipped++
		SkipsTotal.WithLabelValues("stale_quote").Inc()
		t.logger.Info("candidate-skipped-stale-quote",
			zap.String("title", opp.Title),
			zap.Float64("scanned-price", opp.BuyPrice),
			zap.Float64("live-price", livePrice))
		return 0, false
	}

	// The purchase executes at the live price, not the scanned one, and the
	// staleness bound tolerates a small rise. Limits bind on what is actually
	// paid, so the envelope must hold for the live price too.
	if livePrice > risk.MaxTradeValue || livePrice > remaining {
		result.Skipped++
		SkipsTotal.WithLabelValues("live_price_over_limit").Inc()
		t.logger.Info("candidate-skipped-live-price-over-limit",
			zap.String("title", opp.Title),
			zap.Float64("live-price", livePrice),
			zap.Float64("max-trade-value", risk.MaxTradeValue),
			zap.Float64("remaining-balance", remaining))
		return 0, false
	}

	buyRes, err := t.client.Buy(ctx, opp.BuyItemID, pricing.DollarsToCents(livePrice))
	if err != nil {
		result.Errors++
		t.backoff.RecordFailure()
		t.logger.Error("purchase-failed",
			zap.String("title", opp.Title),
			zap.Error(err))
		return 0, false
	}
	if !buyRes.Success {
		result.Errors++
		t.backoff.RecordFailure()
		t.logger.Warn("purchase-rejected",
			zap.String("title", opp.Title),
			zap.String("reason", buyRes.ErrMessage))
		return 0, false
	}

	paid := pricing.CentsToDollars(buyRes.PaidPrice)
	if paid <= 0 {
		paid = livePrice
	}

	t.backoff.RecordSuccess()
	t.backoff.AddDailySpend(paid)
	result.Purchases++
	result.Spent += paid
	PurchasesTotal.Inc()
	SpentUSD.Add(paid)

	t.logger.Info("item-purchased",
		zap.String("title", opp.Title),
		zap.String("asset-id", buyRes.NewItemID),
		zap.Float64("paid", paid))

	// Durably record the purchase before any sell attempt. A crash between
	// here and the listing must never lose the fact that money was spent.
	trade, err := t.store.SavePurchase(ctx, storage.PurchaseParams{
		AssetID:          buyRes.NewItemID,
		ItemID:           opp.BuyItemID,
		Title:            opp.Title,
		Game:             opp.Game,
		BuyPrice:         paid,
		TargetSellPrice:  paid + opp.NetProfit,
		MinMarginPercent: t.config.MinMarginPercent,
		FeePercent:       t.config.FeePercent,
	})
	if err != nil {
		// Fatal to this trade's progression: without a durable record we must
		// not list the item. The asset stays in inventory but has no row for
		// reconciliation to walk, so the operator has to resolve it by hand.
		result.Errors++
		t.logger.Error("purchase-record-failed",
			zap.String("asset-id", buyRes.NewItemID),
			zap.Error(err))
		t.notifyUnrecordedPurchase(ctx, buyRes.NewItemID, opp.Title, paid)
		return paid, true
	}

	t.listForSale(ctx, trade, opp, result)

	return paid, true
}

// listForSale submits the sell offer for a freshly recorded purchase. One
// failed listing is logged and left for recovery; it is never retried here.
func (t *Trader) listForSale(ctx context.Context, trade *storage.PendingTrade, opp *scanner.Opportunity, result *TradeResult) {
	sellPrice := trade.BuyPrice + opp.NetProfit
	if trade.TargetSellPrice != nil {
		sellPrice = *trade.TargetSellPrice
	}
	if sellPrice < trade.MinSellPrice {
		sellPrice = trade.MinSellPrice
	}

	sellRes, err := t.client.ListForSale(ctx, trade.AssetID, pricing.DollarsToCents(sellPrice))
	if err != nil {
		result.Errors++
		t.backoff.RecordFailure()
		t.logger.Error("listing-failed",
			zap.String("asset-id", trade.AssetID),
			zap.Error(err))
		return
	}
	if !sellRes.Success {
		result.Errors++
		t.logger.Warn("listing-rejected",
			zap.String("asset-id", trade.AssetID),
			zap.String("reason", sellRes.ErrMessage))
		return
	}

	err = t.store.UpdateStatus(ctx, trade.AssetID, storage.StatusListed, storage.StatusUpdate{
		OfferID:      &sellRes.OfferID,
		CurrentPrice: &sellPrice,
	})
	if err != nil {
		// The offer is live; the row stays bought and recovery will
		// reconcile it on the next start.
		t.logger.Error("listing-record-failed",
			zap.String("asset-id", trade.AssetID),
			zap.Error(err))
		return
	}

	result.Sales++
	result.ExpectedProfit += sellPrice - trade.BuyPrice
	ListingsTotal.Inc()

	t.logger.Info("item-listed",
		zap.String("asset-id", trade.AssetID),
		zap.String("offer-id", sellRes.OfferID),
		zap.Float64("sell-price", sellPrice))
}

// notifyUnrecordedPurchase flags a purchase that never reached the store.
// Recovery cannot see it, so it needs a manual listing.
func (t *Trader) notifyUnrecordedPurchase(ctx context.Context, assetID, title string, paid float64) {
	if t.notifier == nil {
		return
	}

	text := fmt.Sprintf(
		"Unrecorded purchase: %s (asset %s) bought for $%.2f but the trade record failed; list it manually.",
		title, assetID, paid)

	err := t.notifier.Send(ctx, text)
	if err != nil {
		t.logger.Warn("unrecorded-purchase-notification-failed", zap.Error(err))
	}
}

// RelistRecovered re-attempts the sell step for trades recovery classified as
// needing a listing, with the min sell price as the floor.
func (t *Trader) RelistRecovered(ctx context.Context, items []storage.RecoveryItem) {
	for _, item := range items {
		if item.Action != storage.ActionNeedsListing {
			continue
		}
		trade := item.Trade

		sellPrice := trade.MinSellPrice
		if trade.TargetSellPrice != nil && *trade.TargetSellPrice > sellPrice {
			sellPrice = *trade.TargetSellPrice
		}

		sellRes, err := t.client.ListForSale(ctx, trade.AssetID, pricing.DollarsToCents(sellPrice))
		if err != nil || !sellRes.Success {
			t.logger.Warn("recovered-listing-failed",
				zap.String("asset-id", trade.AssetID),
				zap.Error(err))
			continue
		}

		err = t.store.UpdateStatus(ctx, trade.AssetID, storage.StatusListed, storage.StatusUpdate{
			OfferID:      &sellRes.OfferID,
			CurrentPrice: &sellPrice,
		})
		if err != nil {
			t.logger.Error("recovered-listing-record-failed",
				zap.String("asset-id", trade.AssetID),
				zap.Error(err))
			continue
		}

		ListingsTotal.Inc()
		t.logger.Info("recovered-item-listed",
			zap.String("asset-id", trade.AssetID),
			zap.Float64("sell-price", sellPrice))
	}
}

// livePrice returns the current lowest listing price for the opportunity's
// item, preferring the exact listing when it is still on the market.
func (t *Trader) livePrice(ctx context.Context, opp *scanner.Opportunity) (float64, error) {
	listings, err := t.client.ListItems(ctx, marketplace.ListQuery{
		Game:  opp.Game,
		Title: opp.Title,
		Limit: 20,
	})
	if err != nil {
		return 0, fmt.Errorf("fetch live price: %w", err)
	}

	lowest := 0.0
	for _, l := range listings {
		price := pricing.CentsToDollars(l.Price)
		if price <= 0 {
			continue
		}
		if l.ItemID == opp.BuyItemID {
			return price, nil
		}
		if lowest == 0 || price < lowest {
			lowest = price
		}
	}

	if lowest == 0 {
		return 0, fmt.Errorf("item %q no longer listed", opp.Title)
	}
	return lowest, nil
}
