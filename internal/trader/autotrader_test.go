package trader

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/pricing"
	"github.com/antonk9218/skinflip/internal/scanner"
	"github.com/antonk9218/skinflip/internal/storage"
	"go.uber.org/zap"
)

// mockClient is a scriptable marketplace.Client. Unset hooks fall back to a
// happy path: the live price equals the scanned price, buys and listings
// succeed.
type mockClient struct {
	mu sync.Mutex

	listItemsFn   func(ctx context.Context, q marketplace.ListQuery) ([]marketplace.Listing, error)
	buyFn         func(ctx context.Context, itemID string, maxPrice int64) (marketplace.BuyResult, error)
	listForSaleFn func(ctx context.Context, itemID string, price int64) (marketplace.SellResult, error)

	buys     []string
	listings []string
}

func (m *mockClient) ListItems(ctx context.Context, q marketplace.ListQuery) ([]marketplace.Listing, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, q)
	}
	return nil, errors.New("ListItems not scripted")
}

func (m *mockClient) Balance(ctx context.Context) (int64, error) {
	return 0, errors.New("Balance not scripted")
}

func (m *mockClient) Inventory(ctx context.Context) ([]marketplace.InventoryItem, error) {
	return nil, nil
}

func (m *mockClient) Buy(ctx context.Context, itemID string, maxPrice int64) (marketplace.BuyResult, error) {
	m.mu.Lock()
	m.buys = append(m.buys, itemID)
	m.mu.Unlock()

	if m.buyFn != nil {
		return m.buyFn(ctx, itemID, maxPrice)
	}
	return marketplace.BuyResult{Success: true, NewItemID: "asset-" + itemID, PaidPrice: maxPrice}, nil
}

func (m *mockClient) ListForSale(ctx context.Context, itemID string, price int64) (marketplace.SellResult, error) {
	m.mu.Lock()
	m.listings = append(m.listings, itemID)
	m.mu.Unlock()

	if m.listForSaleFn != nil {
		return m.listForSaleFn(ctx, itemID, price)
	}
	return marketplace.SellResult{Success: true, OfferID: "offer-" + itemID}, nil
}

// liveQuote scripts ListItems so every title quotes at the given scanned
// price, as if the market had not moved since the scan.
func (m *mockClient) liveQuote(priceOf func(q marketplace.ListQuery) int64) {
	m.listItemsFn = func(ctx context.Context, q marketplace.ListQuery) ([]marketplace.Listing, error) {
		return []marketplace.Listing{{
			ItemID: "live-" + q.Title,
			Title:  q.Title,
			Game:   q.Game,
			Price:  priceOf(q),
		}}, nil
	}
}

// mockStore is an in-memory storage.Store.
type mockStore struct {
	mu sync.Mutex

	savePurchaseErr error
	updateStatusErr error

	saved    []storage.PurchaseParams
	statuses map[string]storage.TradeStatus
}

func newMockStore() *mockStore {
	return &mockStore{statuses: make(map[string]storage.TradeStatus)}
}

func (m *mockStore) SavePurchase(ctx context.Context, p storage.PurchaseParams) (*storage.PendingTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.savePurchaseErr != nil {
		return nil, m.savePurchaseErr
	}

	m.saved = append(m.saved, p)
	m.statuses[p.AssetID] = storage.StatusBought

	target := p.TargetSellPrice
	return &storage.PendingTrade{
		AssetID:         p.AssetID,
		ItemID:          p.ItemID,
		Title:           p.Title,
		Game:            p.Game,
		BuyPrice:        p.BuyPrice,
		MinSellPrice:    pricing.MinSellPrice(p.BuyPrice, p.MinMarginPercent, p.FeePercent),
		TargetSellPrice: &target,
		Status:          storage.StatusBought,
	}, nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, assetID string, status storage.TradeStatus, upd storage.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.statuses[assetID] = status
	return nil
}

func (m *mockStore) MarkAsSold(ctx context.Context, assetID string, finalPrice *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[assetID] = storage.StatusSold
	return nil
}

func (m *mockStore) GetPendingTrades(ctx context.Context, f storage.TradeFilter) ([]*storage.PendingTrade, error) {
	return nil, nil
}

func (m *mockStore) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) statusOf(assetID string) storage.TradeStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[assetID]
}

// stubNotifier records operator notifications.
type stubNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubNotifier) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *stubNotifier) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func newTestTrader(client *mockClient, store *mockStore) (*Trader, *ErrorBackoffController) {
	backoff := NewErrorBackoffController(BackoffConfig{Logger: zap.NewNop()})
	tr := New(Config{
		Marketplace:       "dmarket",
		StaleQuotePercent: 5,
		PacingDelay:       time.Millisecond,
		MinMarginPercent:  5,
		FeePercent:        7,
		Logger:            zap.NewNop(),
	}, client, store, backoff)
	return tr, backoff
}

func makeOpportunity(title string, buyCents, sellCents int64) *scanner.Opportunity {
	buy := pricing.CentsToDollars(buyCents)
	sell := pricing.CentsToDollars(sellCents)
	net, pct := pricing.Profit(buy, sell, 7.0)
	return scanner.NewOpportunity(title, "csgo", "item-"+title, "sell-"+title, buy, sell, 7.0, net, pct)
}

func TestRunSessionExecutesBestCandidatesFirst(t *testing.T) {
	client := &mockClient{}
	client.liveQuote(func(q marketplace.ListQuery) int64 {
		switch q.Title {
		case "small":
			return 500
		default:
			return 1000
		}
	})
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{
		makeOpportunity("small", 500, 700),  // net $1.51
		makeOpportunity("big", 1000, 1800), // net $6.74
	}

	risk := ResolveRiskConfig(TierLow, 0, 1, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 1 {
		t.Fatalf("purchases = %d, want 1", result.Purchases)
	}
	if len(client.buys) != 1 || client.buys[0] != "item-big" {
		t.Errorf("bought %v, want the higher-net candidate item-big", client.buys)
	}
	if result.Sales != 1 {
		t.Errorf("sales = %d, want 1", result.Sales)
	}
	if store.statusOf("asset-item-big") != storage.StatusListed {
		t.Errorf("trade status = %s, want listed", store.statusOf("asset-item-big"))
	}
}

// Whatever the opportunity mix, and however far live prices drift within the
// staleness bound, a session must never exceed the trade count or spend past
// the balance.
func TestRunSessionHonorsRiskEnvelope(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		client := &mockClient{}
		prices := make(map[string]int64)
		client.liveQuote(func(q marketplace.ListQuery) int64 {
			return prices[q.Title]
		})
		store := newMockStore()
		tr, _ := newTestTrader(client, store)

		var opps []*scanner.Opportunity
		for i := 0; i < 1+rng.Intn(20); i++ {
			title := string(rune('a' + i))
			buyCents := int64(100 + rng.Intn(4000))
			sellCents := buyCents + int64(200+rng.Intn(2000))
			// Live price rises up to 5% above the scan, inside the
			// staleness bound.
			prices[title] = buyCents + int64(rng.Intn(int(buyCents/20)+1))
			opps = append(opps, makeOpportunity(title, buyCents, sellCents))
		}

		balance := float64(5 + rng.Intn(60))
		risk := ResolveRiskConfig(TierMedium, 0, 1+rng.Intn(5), 0, balance)

		result, err := tr.RunSession(context.Background(), opps, risk)
		if err != nil {
			t.Fatalf("round %d: RunSession: %v", round, err)
		}

		if result.Purchases > risk.MaxTrades {
			t.Fatalf("round %d: purchases %d exceed max trades %d", round, result.Purchases, risk.MaxTrades)
		}
		if result.Spent > balance+1e-9 {
			t.Fatalf("round %d: spent %.2f exceeds balance %.2f", round, result.Spent, balance)
		}
		for _, p := range store.saved {
			if p.BuyPrice > risk.MaxTradeValue+1e-9 {
				t.Fatalf("round %d: recorded purchase %.2f over per-trade cap %.2f", round, p.BuyPrice, risk.MaxTradeValue)
			}
		}
	}
}

func TestRunSessionSkipReasons(t *testing.T) {
	client := &mockClient{}
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1000 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{
		makeOpportunity("over-cap", 5000, 9000),    // $50 > low tier $20 cap
		makeOpportunity("thin-margin", 1000, 1150), // ~7% < 10% floor
	}

	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 0 {
		t.Errorf("purchases = %d, want 0", result.Purchases)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}
	if len(client.buys) != 0 {
		t.Errorf("buy calls = %v, want none", client.buys)
	}
}

func TestRunSessionSkipsStaleQuote(t *testing.T) {
	client := &mockClient{}
	// Live price 10% over the scanned price, past the 5% staleness bound.
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1100 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("moved", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 0 || len(client.buys) != 0 {
		t.Errorf("stale candidate was bought: %+v", result)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
}

func TestRunSessionToleratesSmallPriceDrift(t *testing.T) {
	client := &mockClient{}
	// 3% over the scanned price stays within the 5% staleness bound.
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1030 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("drifted", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 1 {
		t.Fatalf("purchases = %d, want 1", result.Purchases)
	}
	if result.Spent != 10.30 {
		t.Errorf("spent = %v, want the live price 10.30", result.Spent)
	}
}

// A drift within the staleness bound can still push the live price past the
// remaining balance; the purchase must be skipped, not executed.
func TestRunSessionLivePriceCannotExceedBalance(t *testing.T) {
	client := &mockClient{}
	// Scanned at $10.00, quoting $10.40: a 4% rise, inside the 5% bound but
	// past the $10.00 balance.
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1040 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("edge", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 10)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 0 || len(client.buys) != 0 {
		t.Errorf("bought past the balance: %+v", result)
	}
	if result.Spent != 0 {
		t.Errorf("spent = %v, want 0", result.Spent)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
}

func TestRunSessionLivePriceCannotExceedTradeCap(t *testing.T) {
	client := &mockClient{}
	// Scanned at $19.80 under the low-tier $20 cap; live $20.30 is a 2.5%
	// rise, tolerated by staleness but over the cap.
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 2030 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("capped", 1980, 2900)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 0 || len(client.buys) != 0 {
		t.Errorf("bought past the per-trade cap: %+v", result)
	}
	if len(store.saved) != 0 {
		t.Errorf("recorded purchases = %v, want none", store.saved)
	}
}

// A failed durable record means the item must not be listed. The held asset
// has no row for reconciliation to find, so the operator gets notified.
func TestRunSessionPersistenceFailureBlocksListing(t *testing.T) {
	client := &mockClient{}
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1000 })
	store := newMockStore()
	store.savePurchaseErr = errors.New("database down")
	tr, _ := newTestTrader(client, store)
	notifier := &stubNotifier{}
	tr.notifier = notifier

	opps := []*scanner.Opportunity{makeOpportunity("orphan", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 1 {
		t.Errorf("purchases = %d, want 1 (money was spent)", result.Purchases)
	}
	if result.Errors != 1 {
		t.Errorf("errors = %d, want 1", result.Errors)
	}
	if len(client.listings) != 0 {
		t.Errorf("listing attempted without a durable record: %v", client.listings)
	}

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if !strings.Contains(sent[0], "asset-item-orphan") {
		t.Errorf("notification %q does not name the unrecorded asset", sent[0])
	}
}

// A failed sell offer leaves the trade at bought; recovery re-lists it.
func TestRunSessionListingFailureLeavesTradeBought(t *testing.T) {
	client := &mockClient{}
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 1000 })
	client.listForSaleFn = func(ctx context.Context, itemID string, price int64) (marketplace.SellResult, error) {
		return marketplace.SellResult{}, errors.New("marketplace rejected offer")
	}
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("unsold", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 1 || result.Sales != 0 {
		t.Errorf("purchases/sales = %d/%d, want 1/0", result.Purchases, result.Sales)
	}
	if got := store.statusOf("asset-item-unsold"); got != storage.StatusBought {
		t.Errorf("trade status = %s, want bought", got)
	}
}

func TestRunSessionNoOpWhilePaused(t *testing.T) {
	client := &mockClient{}
	store := newMockStore()
	tr, backoff := newTestTrader(client, store)

	for i := 0; i < DefaultPauseThreshold; i++ {
		backoff.RecordFailure()
	}

	opps := []*scanner.Opportunity{makeOpportunity("blocked", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	result, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Purchases != 0 || len(client.buys) != 0 {
		t.Error("session traded while backoff pause was active")
	}
}

func TestRunSessionConcurrentStartIsNoOp(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	client := &mockClient{}
	client.listItemsFn = func(ctx context.Context, q marketplace.ListQuery) ([]marketplace.Listing, error) {
		close(started)
		<-release
		return []marketplace.Listing{{ItemID: "live", Title: q.Title, Price: 1000}}, nil
	}
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	opps := []*scanner.Opportunity{makeOpportunity("slow", 1000, 1500)}
	risk := ResolveRiskConfig(TierLow, 0, 0, 0, 100)

	done := make(chan *TradeResult)
	go func() {
		result, _ := tr.RunSession(context.Background(), opps, risk)
		done <- result
	}()

	<-started

	// Second session while the first is mid-trade: must return empty
	// immediately instead of running concurrently.
	second, err := tr.RunSession(context.Background(), opps, risk)
	if err != nil {
		t.Fatalf("second RunSession: %v", err)
	}
	if second.Purchases != 0 || second.Skipped != 0 || second.Errors != 0 {
		t.Errorf("second session did work: %+v", second)
	}

	close(release)
	first := <-done
	if first.Purchases != 1 {
		t.Errorf("first session purchases = %d, want 1", first.Purchases)
	}
}

func TestRunSessionStopsOnContextCancel(t *testing.T) {
	client := &mockClient{}
	client.liveQuote(func(q marketplace.ListQuery) int64 { return 500 })
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opps := []*scanner.Opportunity{
		makeOpportunity("a", 500, 900),
		makeOpportunity("b", 500, 900),
	}
	risk := ResolveRiskConfig(TierMedium, 0, 0, 0, 100)

	result, err := tr.RunSession(ctx, opps, risk)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}
	if result.Purchases != 0 {
		t.Errorf("purchases = %d, want 0 with cancelled context", result.Purchases)
	}
}

func TestRelistRecovered(t *testing.T) {
	client := &mockClient{}
	store := newMockStore()
	tr, _ := newTestTrader(client, store)

	target := 14.50
	items := []storage.RecoveryItem{
		{
			Action: storage.ActionNeedsListing,
			Trade: &storage.PendingTrade{
				AssetID:         "asset-1",
				Title:           "AWP | Asiimov",
				BuyPrice:        10,
				MinSellPrice:    11.29,
				TargetSellPrice: &target,
				Status:          storage.StatusBought,
			},
		},
		{
			Action: storage.ActionNeedsPriceCheck,
			Trade: &storage.PendingTrade{
				AssetID:      "asset-2",
				Status:       storage.StatusListed,
				MinSellPrice: 5,
			},
		},
	}

	tr.RelistRecovered(context.Background(), items)

	if len(client.listings) != 1 || client.listings[0] != "asset-1" {
		t.Fatalf("listed %v, want exactly asset-1", client.listings)
	}
	if got := store.statusOf("asset-1"); got != storage.StatusListed {
		t.Errorf("asset-1 status = %s, want listed", got)
	}
	if _, touched := store.statuses["asset-2"]; touched {
		t.Error("price-check item must not be re-listed")
	}
}
