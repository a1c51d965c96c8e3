package marketplace

import "context"

// Client is the capability surface the trading engine needs from the
// marketplace. Implementations own call timeouts; the engine treats a timeout
// like any other call failure.
type Client interface {
	// ListItems returns active listings matching the query.
	ListItems(ctx context.Context, q ListQuery) ([]Listing, error)

	// Balance returns the account balance in minor units (cents).
	Balance(ctx context.Context) (int64, error)

	// Inventory returns the assets currently held by the account.
	Inventory(ctx context.Context) ([]InventoryItem, error)

	// Buy purchases a listed item, paying at most maxPrice (minor units).
	Buy(ctx context.Context, itemID string, maxPrice int64) (BuyResult, error)

	// ListForSale creates a sell offer for an owned item at the given price
	// (minor units).
	ListForSale(ctx context.Context, itemID string, price int64) (SellResult, error)
}

// ListQuery selects listings for one game, optionally bounded by price.
type ListQuery struct {
	Game      string
	Title     string
	PriceFrom int64
	PriceTo   int64
	Limit     int
	Offset    int
}
