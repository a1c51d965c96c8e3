package storage

import (
	"context"
	"errors"
)

// ErrTradeNotFound is returned when an update targets an asset that has no
// pending trade row.
var ErrTradeNotFound = errors.New("pending trade not found")

// PurchaseParams describes a confirmed purchase about to be recorded.
type PurchaseParams struct {
	AssetID string
	ItemID  string
	UserID  string
	Title   string
	Game    string
	// BuyPrice is in major units (dollars).
	BuyPrice float64
	// TargetSellPrice, when positive, records the price the trader intends to
	// list at. The computed min sell price remains the hard floor.
	TargetSellPrice float64
	// MinMarginPercent and FeePercent feed the min-sell-price computation,
	// done once here and never silently altered afterwards.
	MinMarginPercent float64
	FeePercent       float64
}

// StatusUpdate carries optional fields accompanying a status transition.
type StatusUpdate struct {
	OfferID      *string
	CurrentPrice *float64
}

// TradeFilter narrows pending-trade queries. The zero value returns all
// non-terminal trades.
type TradeFilter struct {
	Status *TradeStatus
	Game   string
}

// Store owns the PendingTrade lifecycle. It is the single writer: the trading
// engine reads and triggers, but every state change flows through these
// methods so the min-sell-price invariant is computed exactly once.
type Store interface {
	// SavePurchase durably records a confirmed purchase before any sell
	// attempt. Upserts by asset ID: retrying a purchase call never creates a
	// duplicate row. The call returning nil error means the row is committed.
	SavePurchase(ctx context.Context, p PurchaseParams) (*PendingTrade, error)

	// UpdateStatus transitions a trade's status. Setting StatusListed stamps
	// listed_at; StatusSold or StatusStopLoss stamp sold_at.
	UpdateStatus(ctx context.Context, assetID string, status TradeStatus, upd StatusUpdate) error

	// MarkAsSold transitions a trade to sold, recording the realized profit
	// against the final price when one is observed.
	MarkAsSold(ctx context.Context, assetID string, finalPrice *float64) error

	// GetPendingTrades returns trades matching the filter. Terminal states
	// are excluded unless the filter names one explicitly.
	GetPendingTrades(ctx context.Context, f TradeFilter) ([]*PendingTrade, error)

	// Cleanup deletes terminal-status trades older than the retention
	// horizon. Returns the number of rows deleted.
	Cleanup(ctx context.Context, retentionDays int) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
