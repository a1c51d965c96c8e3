package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the marketplace REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// HTTPConfig holds marketplace client configuration.
type HTTPConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	// RequestsPerSecond throttles outbound calls; the marketplace bans
	// aggressive pollers.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// NewHTTPClient creates a rate-limited marketplace client.
func NewHTTPClient(cfg *HTTPConfig) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  cfg.Logger,
	}
}

// wireListing is the raw market item record as returned by the API. Optional
// fields stay pointers so "missing" is distinguishable from zero.
type wireListing struct {
	ItemID         string `json:"itemId"`
	Title          string `json:"title"`
	Game           string `json:"gameId"`
	Price          *int64 `json:"price"`
	SuggestedPrice *int64 `json:"suggestedPrice"`
	Category       string `json:"category"`
	ItemType       string `json:"type"`
	Rarity         string `json:"rarity"`
	Popularity     string `json:"popularity"`
}

type listItemsResponse struct {
	Objects []wireListing `json:"objects"`
	Total   int           `json:"total"`
}

// ListItems fetches active listings for a game.
func (c *HTTPClient) ListItems(ctx context.Context, q ListQuery) ([]Listing, error) {
	params := url.Values{}
	params.Set("gameId", q.Game)
	params.Set("currency", "USD")
	if q.Title != "" {
		params.Set("title", q.Title)
	}
	if q.PriceFrom > 0 {
		params.Set("priceFrom", strconv.FormatInt(q.PriceFrom, 10))
	}
	if q.PriceTo > 0 {
		params.Set("priceTo", strconv.FormatInt(q.PriceTo, 10))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(q.Offset))

	var resp listItemsResponse
	err := c.get(ctx, "/exchange/v1/market/items", params, &resp)
	if err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(resp.Objects))
	for _, raw := range resp.Objects {
		// Fail closed on malformed records: skip and count, never propagate.
		if raw.ItemID == "" || raw.Price == nil || *raw.Price < 0 {
			c.logger.Debug("malformed-listing-skipped",
				zap.String("item-id", raw.ItemID),
				zap.String("title", raw.Title))
			MalformedListingsTotal.Inc()
			continue
		}
		listings = append(listings, Listing{
			ItemID:         raw.ItemID,
			Title:          raw.Title,
			Game:           raw.Game,
			Price:          *raw.Price,
			SuggestedPrice: raw.SuggestedPrice,
			Category:       raw.Category,
			ItemType:       raw.ItemType,
			Rarity:         raw.Rarity,
			Popularity:     raw.Popularity,
		})
	}

	return listings, nil
}

type balanceResponse struct {
	USD int64 `json:"usd"`
}

// Balance returns the account balance in cents.
func (c *HTTPClient) Balance(ctx context.Context) (int64, error) {
	var resp balanceResponse
	err := c.get(ctx, "/account/v1/balance", nil, &resp)
	if err != nil {
		return 0, err
	}
	return resp.USD, nil
}

type inventoryResponse struct {
	Objects []struct {
		AssetID string `json:"assetId"`
		Title   string `json:"title"`
	} `json:"objects"`
}

// Inventory returns the assets currently held by the account.
func (c *HTTPClient) Inventory(ctx context.Context) ([]InventoryItem, error) {
	var resp inventoryResponse
	err := c.get(ctx, "/account/v1/inventory", nil, &resp)
	if err != nil {
		return nil, err
	}

	items := make([]InventoryItem, 0, len(resp.Objects))
	for _, raw := range resp.Objects {
		if raw.AssetID == "" {
			MalformedListingsTotal.Inc()
			continue
		}
		items = append(items, InventoryItem{AssetID: raw.AssetID, Title: raw.Title})
	}
	return items, nil
}

type buyRequest struct {
	ItemID   string `json:"itemId"`
	MaxPrice int64  `json:"maxPrice"`
}

type buyResponse struct {
	Success   bool   `json:"success"`
	NewItemID string `json:"newItemId"`
	Price     int64  `json:"price"`
	Error     string `json:"error"`
}

// Buy purchases a listed item.
func (c *HTTPClient) Buy(ctx context.Context, itemID string, maxPrice int64) (BuyResult, error) {
	var resp buyResponse
	err := c.post(ctx, "/exchange/v1/market/buy", buyRequest{ItemID: itemID, MaxPrice: maxPrice}, &resp)
	if err != nil {
		return BuyResult{}, err
	}
	return BuyResult{
		Success:    resp.Success,
		NewItemID:  resp.NewItemID,
		PaidPrice:  resp.Price,
		ErrMessage: resp.Error,
	}, nil
}

type sellRequest struct {
	ItemID string `json:"itemId"`
	Price  int64  `json:"price"`
}

type sellResponse struct {
	Success bool   `json:"success"`
	OfferID string `json:"offerId"`
	Error   string `json:"error"`
}

// ListForSale creates a sell offer for an owned item.
func (c *HTTPClient) ListForSale(ctx context.Context, itemID string, price int64) (SellResult, error) {
	var resp sellResponse
	err := c.post(ctx, "/exchange/v1/market/sell", sellRequest{ItemID: itemID, Price: price}, &resp)
	if err != nil {
		return SellResult{}, err
	}
	return SellResult{
		Success:    resp.Success,
		OfferID:    resp.OfferID,
		ErrMessage: resp.Error,
	}, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	err := c.limiter.Wait(req.Context())
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDurationSeconds.WithLabelValues(req.URL.Path).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestErrorsTotal.WithLabelValues(req.URL.Path).Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		RequestErrorsTotal.WithLabelValues(req.URL.Path).Inc()
		return fmt.Errorf("marketplace returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
