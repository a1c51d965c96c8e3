package scanner

import (
	"sort"
	"time"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/pricing"
	"go.uber.org/zap"
)

// DefaultMaxOpportunities caps how many ranked opportunities a single scan emits.
const DefaultMaxOpportunities = 50

// Scanner finds arbitrage opportunities inside a price-bucketed snapshot of
// listings for one game.
type Scanner struct {
	config Config
	logger *zap.Logger
}

// Config holds scanner configuration.
type Config struct {
	Marketplace      string
	MaxOpportunities int
	Logger           *zap.Logger
}

// New creates a new opportunity scanner.
func New(cfg Config) *Scanner {
	if cfg.MaxOpportunities <= 0 {
		cfg.MaxOpportunities = DefaultMaxOpportunities
	}
	return &Scanner{
		config: cfg,
		logger: cfg.Logger,
	}
}

// Scan groups listings by item title, pairs the cheapest listing of each group
// against every costlier one, and returns the opportunities clearing
// minProfitPct, sorted by profit percentage descending and capped at
// MaxOpportunities.
func (s *Scanner) Scan(game string, listings []marketplace.Listing, minProfitPct float64) []*Opportunity {
	start := time.Now()
	defer func() {
		ScanDurationSeconds.Observe(time.Since(start).Seconds())
	}()
	ScansTotal.Inc()

	groups := make(map[string][]marketplace.Listing)
	for _, l := range listings {
		if l.Title == "" {
			// Unidentifiable listing, nothing to pair it with.
			ListingsDroppedTotal.WithLabelValues("empty_title").Inc()
			continue
		}
		groups[l.Title] = append(groups[l.Title], l)
	}

	var opportunities []*Opportunity

	for title, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Price < group[j].Price
		})

		buy := group[0]
		buyPrice := pricing.CentsToDollars(buy.Price)
		if buyPrice <= 0 {
			ListingsDroppedTotal.WithLabelValues("non_positive_price").Inc()
			continue
		}

		// Commission depends on the buy candidate's own metadata; compute it
		// once and reuse it for every sell comparison in the group.
		commission := pricing.Commission(buy.Rarity, buy.ItemType, buy.Popularity, s.config.Marketplace)

		for _, sell := range group[1:] {
			sellPrice := pricing.CentsToDollars(sell.Price)
			net, pct := pricing.Profit(buyPrice, sellPrice, commission)

			if net <= 0 {
				OpportunitiesRejectedTotal.WithLabelValues("no_net_profit").Inc()
				continue
			}
			if pct < minProfitPct {
				OpportunitiesRejectedTotal.WithLabelValues("below_threshold").Inc()
				continue
			}

			opp := NewOpportunity(title, game, buy.ItemID, sell.ItemID, buyPrice, sellPrice, commission, net, pct)
			opportunities = append(opportunities, opp)

			s.logger.Debug("opportunity-found",
				zap.String("title", title),
				zap.Float64("buy-price", buyPrice),
				zap.Float64("sell-price", sellPrice),
				zap.Float64("net-profit", net),
				zap.Float64("profit-pct", pct))
		}
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitPercent > opportunities[j].ProfitPercent
	})

	if len(opportunities) > s.config.MaxOpportunities {
		opportunities = opportunities[:s.config.MaxOpportunities]
	}

	OpportunitiesFoundTotal.Add(float64(len(opportunities)))

	s.logger.Info("scan-complete",
		zap.String("game", game),
		zap.Int("listings", len(listings)),
		zap.Int("groups", len(groups)),
		zap.Int("opportunities", len(opportunities)),
		zap.Float64("min-profit-pct", minProfitPct))

	return opportunities
}
