package marketplace

// Listing is one active sell offer on the marketplace. Prices are in minor
// units (cents). SuggestedPrice is nil when the marketplace does not publish
// one.
type Listing struct {
	ItemID         string
	Title          string
	Game           string
	Price          int64
	SuggestedPrice *int64
	Category       string
	ItemType       string
	Rarity         string
	Popularity     string
}

// InventoryItem is one asset held by the account.
type InventoryItem struct {
	AssetID string
	Title   string
}

// BuyResult is the marketplace's response to a purchase call.
type BuyResult struct {
	Success    bool
	NewItemID  string
	PaidPrice  int64
	ErrMessage string
}

// SellResult is the marketplace's response to a list-for-sale call.
type SellResult struct {
	Success    bool
	OfferID    string
	ErrMessage string
}
