package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/pkg/cache"
	"go.uber.org/zap"
)

// DefaultScanTTL is how long a scan result stays valid before the marketplace
// is queried again for the same parameters.
const DefaultScanTTL = 5 * time.Minute

// CachedScanner wraps Scanner with a TTL cache so repeated scans of the same
// (game, mode, price range, min profit) window do not hammer the marketplace.
type CachedScanner struct {
	scanner *Scanner
	client  marketplace.Client
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// ScanParams addresses one cached scan.
type ScanParams struct {
	Game          string
	Mode          string
	PriceFrom     int64
	PriceTo       int64
	MinProfitPct  float64
	ListingsLimit int
}

// CacheKey returns the cache address for these parameters.
func (p ScanParams) CacheKey() string {
	return fmt.Sprintf("scan:%s:%s:%d-%d:%.2f", p.Game, p.Mode, p.PriceFrom, p.PriceTo, p.MinProfitPct)
}

// NewCachedScanner creates a scanner that memoizes results in the given cache.
func NewCachedScanner(s *Scanner, client marketplace.Client, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedScanner {
	if ttl <= 0 {
		ttl = DefaultScanTTL
	}
	return &CachedScanner{
		scanner: s,
		client:  client,
		cache:   c,
		ttl:     ttl,
		logger:  logger,
	}
}

// Scan returns cached opportunities when a fresh entry exists, otherwise
// fetches listings from the marketplace, scans them and caches the result.
func (c *CachedScanner) Scan(ctx context.Context, params ScanParams) ([]*Opportunity, error) {
	key := params.CacheKey()

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			if opps, ok := cached.([]*Opportunity); ok {
				ScanCacheHitsTotal.Inc()
				c.logger.Debug("scan-cache-hit", zap.String("key", key))
				return opps, nil
			}
		}
		ScanCacheMissesTotal.Inc()
	}

	listings, err := c.client.ListItems(ctx, marketplace.ListQuery{
		Game:      params.Game,
		PriceFrom: params.PriceFrom,
		PriceTo:   params.PriceTo,
		Limit:     params.ListingsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	opps := c.scanner.Scan(params.Game, listings, params.MinProfitPct)

	if c.cache != nil {
		c.cache.Set(key, opps, c.ttl)
	}

	return opps, nil
}
