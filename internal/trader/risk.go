package trader

// RiskTier names a bundle of trading limits.
type RiskTier string

// Supported risk tiers.
const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// RiskConfig is the immutable risk envelope of one trading session, derived
// from a named tier. Values are in major units (dollars). Recomputed each
// time auto-trading starts.
type RiskConfig struct {
	Tier             RiskTier
	MaxTrades        int
	MaxTradeValue    float64
	MinProfitPercent float64
	Balance          float64
}

// tierCeiling bounds what a caller may request within a tier.
type tierCeiling struct {
	maxTrades int
	// maxValue caps the per-trade price; balanceShare, when > 0, caps it as a
	// fraction of the usable balance instead.
	maxValue       float64
	balanceShare   float64
	minProfitFloor float64
}

var tierCeilings = map[RiskTier]tierCeiling{
	TierLow:    {maxTrades: 2, maxValue: 20, minProfitFloor: 10},
	TierMedium: {maxTrades: 5, maxValue: 50, minProfitFloor: 7},
	TierHigh:   {maxTrades: 10, balanceShare: 0.8, minProfitFloor: 5},
}

// ResolveRiskConfig clamps caller-supplied limits against the tier's
// ceilings. Unknown tiers resolve as TierLow, the most conservative.
func ResolveRiskConfig(tier RiskTier, maxTradeValue float64, maxTrades int, minProfitPct float64, balance float64) RiskConfig {
	ceiling, ok := tierCeilings[tier]
	if !ok {
		tier = TierLow
		ceiling = tierCeilings[TierLow]
	}

	valueCap := ceiling.maxValue
	if ceiling.balanceShare > 0 {
		valueCap = balance * ceiling.balanceShare
	}

	if maxTradeValue <= 0 || maxTradeValue > valueCap {
		maxTradeValue = valueCap
	}
	if maxTrades <= 0 || maxTrades > ceiling.maxTrades {
		maxTrades = ceiling.maxTrades
	}
	if minProfitPct < ceiling.minProfitFloor {
		minProfitPct = ceiling.minProfitFloor
	}

	return RiskConfig{
		Tier:             tier,
		MaxTrades:        maxTrades,
		MaxTradeValue:    maxTradeValue,
		MinProfitPercent: minProfitPct,
		Balance:          balance,
	}
}

// TradeResult accumulates one session's outcomes. Counters are monotonic
// within the session and reflect only confirmed marketplace responses.
type TradeResult struct {
	Purchases      int
	Sales          int
	Skipped        int
	Errors         int
	Spent          float64
	ExpectedProfit float64
}
