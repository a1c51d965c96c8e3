package httpserver

import (
	"net/http"

	"github.com/antonk9218/skinflip/internal/storage"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// TradesHandler serves the pending-trades inspection endpoint.
type TradesHandler struct {
	store  storage.Store
	logger *zap.Logger
}

// NewTradesHandler creates a trades handler.
func NewTradesHandler(store storage.Store, logger *zap.Logger) *TradesHandler {
	return &TradesHandler{
		store:  store,
		logger: logger,
	}
}

// tradeView is the JSON shape of one pending trade.
type tradeView struct {
	AssetID      string   `json:"asset_id"`
	Title        string   `json:"title"`
	Game         string   `json:"game"`
	Status       string   `json:"status"`
	BuyPrice     float64  `json:"buy_price"`
	MinSellPrice float64  `json:"min_sell_price"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	OfferID      *string  `json:"offer_id,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// HandleTrades returns pending trades, optionally filtered by ?status= and
// ?game=.
func (h *TradesHandler) HandleTrades(w http.ResponseWriter, r *http.Request) {
	filter := storage.TradeFilter{
		Game: r.URL.Query().Get("game"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := storage.TradeStatus(raw)
		if !status.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}

	trades, err := h.store.GetPendingTrades(r.Context(), filter)
	if err != nil {
		h.logger.Error("trades-query-failed", zap.Error(err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	views := make([]tradeView, 0, len(trades))
	for _, t := range trades {
		views = append(views, tradeView{
			AssetID:      t.AssetID,
			Title:        t.Title,
			Game:         t.Game,
			Status:       string(t.Status),
			BuyPrice:     t.BuyPrice,
			MinSellPrice: t.MinSellPrice,
			CurrentPrice: t.CurrentPrice,
			OfferID:      t.OfferID,
			CreatedAt:    t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"count":  len(views),
		"trades": views,
	})
}
