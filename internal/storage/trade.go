package storage

import "time"

// TradeStatus is the lifecycle state of a pending trade. The set is closed;
// every transition site switches exhaustively over these values.
type TradeStatus string

// Trade lifecycle states.
const (
	StatusBought    TradeStatus = "bought"
	StatusListed    TradeStatus = "listed"
	StatusAdjusting TradeStatus = "adjusting"
	StatusSold      TradeStatus = "sold"
	StatusCancelled TradeStatus = "cancelled"
	StatusStopLoss  TradeStatus = "stop_loss"
	StatusFailed    TradeStatus = "failed"
)

// Valid reports whether s is a known trade status.
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusBought, StatusListed, StatusAdjusting, StatusSold, StatusCancelled, StatusStopLoss, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is an end state. Terminal trades are excluded
// from pending queries and recovery, and are eligible for retention cleanup.
func (s TradeStatus) IsTerminal() bool {
	switch s {
	case StatusSold, StatusCancelled, StatusStopLoss:
		return true
	case StatusBought, StatusListed, StatusAdjusting, StatusFailed:
		return false
	default:
		return false
	}
}

// PendingTrade is the durable record of one buy-then-sell cycle. It is
// created the instant a purchase succeeds, before any sell attempt, and is
// mutated only through the Store. Prices are in major units (dollars).
type PendingTrade struct {
	AssetID          string
	ItemID           string
	UserID           string
	Title            string
	Game             string
	BuyPrice         float64
	MinSellPrice     float64
	TargetSellPrice  *float64
	CurrentPrice     *float64
	OfferID          *string
	Status           TradeStatus
	AdjustmentsCount int
	CreatedAt        time.Time
	ListedAt         *time.Time
	SoldAt           *time.Time
	UpdatedAt        time.Time
}

// Schema is the authoritative layout of the pending_trades table. Migration
// tooling lives outside this repository; the DDL is kept here so other
// tooling querying the table has a single reference.
const Schema = `
CREATE TABLE IF NOT EXISTS pending_trades (
	asset_id          TEXT PRIMARY KEY,
	item_id           TEXT NOT NULL DEFAULT '',
	user_id           TEXT NOT NULL DEFAULT '',
	title             TEXT NOT NULL DEFAULT '',
	game              TEXT NOT NULL DEFAULT '',
	buy_price         DOUBLE PRECISION NOT NULL,
	min_sell_price    DOUBLE PRECISION NOT NULL,
	target_sell_price DOUBLE PRECISION,
	current_price     DOUBLE PRECISION,
	offer_id          TEXT,
	status            TEXT NOT NULL,
	adjustments_count INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL,
	listed_at         TIMESTAMPTZ,
	sold_at           TIMESTAMPTZ,
	updated_at        TIMESTAMPTZ NOT NULL
);
`
