package scanner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Opportunity is a ranked buy-low/sell-high pairing of two listings of the
// same item. Immutable once created; discarded after a trading cycle or when
// the scan cache entry expires.
type Opportunity struct {
	ID                string
	Title             string
	Game              string
	BuyPrice          float64
	SellPrice         float64
	CommissionPercent float64
	NetProfit         float64
	ProfitPercent     float64
	BuyItemID         string
	SellItemID        string
	DetectedAt        time.Time
}

// NewOpportunity creates an opportunity with a fresh ID and timestamp.
func NewOpportunity(title, game, buyItemID, sellItemID string, buyPrice, sellPrice, commissionPct, netProfit, profitPct float64) *Opportunity {
	return &Opportunity{
		ID:                uuid.New().String(),
		Title:             title,
		Game:              game,
		BuyPrice:          buyPrice,
		SellPrice:         sellPrice,
		CommissionPercent: commissionPct,
		NetProfit:         netProfit,
		ProfitPercent:     profitPct,
		BuyItemID:         buyItemID,
		SellItemID:        sellItemID,
		DetectedAt:        time.Now(),
	}
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] %s buy=$%.2f sell=$%.2f fee=%.1f%% net=$%.2f (%.1f%%)",
		o.ID[:8],
		o.Title,
		o.BuyPrice,
		o.SellPrice,
		o.CommissionPercent,
		o.NetProfit,
		o.ProfitPercent,
	)
}
