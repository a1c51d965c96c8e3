package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"go.uber.org/zap"
)

// InventorySource provides the live inventory snapshot recovery reconciles
// against. Satisfied by marketplace.Client.
type InventorySource interface {
	Inventory(ctx context.Context) ([]marketplace.InventoryItem, error)
}

// Notifier receives the human-readable recovery summary. A notification
// failure never fails recovery.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// RecoveryAction is what the engine must do for one reconciled trade.
type RecoveryAction string

// Recovery actions.
const (
	// ActionNeedsListing: asset is still in inventory with status bought; the
	// sell step must be re-attempted with min_sell_price as the floor.
	ActionNeedsListing RecoveryAction = "needs_listing"
	// ActionNeedsPriceCheck: asset is in inventory and already listed; the
	// offer price should be re-verified.
	ActionNeedsPriceCheck RecoveryAction = "needs_price_check"
	// ActionSoldOffline: asset is gone from inventory without a recorded
	// sale; concluded to have sold while the process was down.
	ActionSoldOffline RecoveryAction = "sold_offline"
)

// RecoveryItem pairs a pending trade with the action recovery decided on.
type RecoveryItem struct {
	Trade  *PendingTrade
	Action RecoveryAction
}

// RecoveryReport summarizes one reconciliation pass.
type RecoveryReport struct {
	Items           []RecoveryItem
	NeedsListing    int
	NeedsPriceCheck int
	SoldOffline     int
}

// Reconciler resolves drift between durable trade records and the
// marketplace's live inventory after downtime.
type Reconciler struct {
	store     Store
	inventory InventorySource
	notifier  Notifier
	logger    *zap.Logger
}

// NewReconciler creates a recovery reconciler.
func NewReconciler(store Store, inventory InventorySource, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		inventory: inventory,
		notifier:  notifier,
		logger:    logger,
	}
}

// Recover runs once at process start. It loads all non-terminal trades,
// fetches the live inventory, and classifies each trade:
//
//   - present in inventory, status bought: needs listing
//   - present in inventory, status listed/adjusting: needs a price check
//   - absent from inventory while bought or listed: sold while offline,
//     transitioned to sold
//
// Absence from inventory for a trade never marked sold is always interpreted
// as an offline sale, never as data loss.
func (r *Reconciler) Recover(ctx context.Context) (*RecoveryReport, error) {
	trades, err := r.store.GetPendingTrades(ctx, TradeFilter{})
	if err != nil {
		return nil, fmt.Errorf("load pending trades: %w", err)
	}

	if len(trades) == 0 {
		r.logger.Info("recovery-nothing-pending")
		return &RecoveryReport{}, nil
	}

	items, err := r.inventory.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}

	held := make(map[string]bool, len(items))
	for _, item := range items {
		held[item.AssetID] = true
	}

	report := &RecoveryReport{}

	for _, trade := range trades {
		inInventory := held[trade.AssetID]

		switch {
		case inInventory && trade.Status == StatusBought:
			report.Items = append(report.Items, RecoveryItem{Trade: trade, Action: ActionNeedsListing})
			report.NeedsListing++
			r.logger.Info("recovery-needs-listing",
				zap.String("asset-id", trade.AssetID),
				zap.String("title", trade.Title),
				zap.Float64("min-sell-price", trade.MinSellPrice))

		case inInventory:
			// Listed, adjusting or failed but still held.
			report.Items = append(report.Items, RecoveryItem{Trade: trade, Action: ActionNeedsPriceCheck})
			report.NeedsPriceCheck++
			r.logger.Info("recovery-needs-price-check",
				zap.String("asset-id", trade.AssetID),
				zap.String("status", string(trade.Status)))

		case trade.Status == StatusBought || trade.Status == StatusListed:
			err = r.store.MarkAsSold(ctx, trade.AssetID, nil)
			if err != nil {
				// Leave the trade pending; the next recovery pass retries.
				r.logger.Error("recovery-mark-sold-failed",
					zap.String("asset-id", trade.AssetID),
					zap.Error(err))
				continue
			}
			report.Items = append(report.Items, RecoveryItem{Trade: trade, Action: ActionSoldOffline})
			report.SoldOffline++
			r.logger.Info("recovery-sold-offline",
				zap.String("asset-id", trade.AssetID),
				zap.String("title", trade.Title))

		default:
			r.logger.Warn("recovery-unresolved-trade",
				zap.String("asset-id", trade.AssetID),
				zap.String("status", string(trade.Status)))
		}
	}

	RecoveryActionsTotal.WithLabelValues(string(ActionNeedsListing)).Add(float64(report.NeedsListing))
	RecoveryActionsTotal.WithLabelValues(string(ActionNeedsPriceCheck)).Add(float64(report.NeedsPriceCheck))
	RecoveryActionsTotal.WithLabelValues(string(ActionSoldOffline)).Add(float64(report.SoldOffline))

	r.notify(ctx, report, len(trades))

	return report, nil
}

func (r *Reconciler) notify(ctx context.Context, report *RecoveryReport, pending int) {
	if r.notifier == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trade recovery complete: %d pending trade(s) reconciled.\n", pending)
	fmt.Fprintf(&b, "- sold while offline: %d\n", report.SoldOffline)
	fmt.Fprintf(&b, "- need re-listing: %d\n", report.NeedsListing)
	fmt.Fprintf(&b, "- need price check: %d", report.NeedsPriceCheck)

	err := r.notifier.Send(ctx, b.String())
	if err != nil {
		r.logger.Warn("recovery-notification-failed", zap.Error(err))
	}
}
