package pricing

import "math"

// Profit computes net profit and profit percentage for a buy/sell pair.
// Prices are in major units (dollars). The commission is charged on the sell
// side: net = (sell - buy) - sell * commissionPct/100.
// A non-positive buy price yields a 0 profit percentage rather than a
// division error.
func Profit(buy, sell, commissionPct float64) (net, pct float64) {
	net = (sell - buy) - sell*commissionPct/100
	if buy <= 0 {
		return net, 0
	}
	return net, net / buy * 100
}

// IsProfitable reports whether a buy/sell pair clears the minimum profit
// percentage after commission. Requires a positive buy price and sell > buy.
func IsProfitable(buy, sell, minProfitPct, commissionPct float64) bool {
	if buy <= 0 || sell <= buy {
		return false
	}
	net, pct := Profit(buy, sell, commissionPct)
	return net > 0 && pct >= minProfitPct
}

// MinSellPrice computes the lowest sale price that still yields marginPct
// profit after the marketplace retains feePct of the sale. Rounded to the
// cent; never below the buy price.
func MinSellPrice(buy, marginPct, feePct float64) float64 {
	if buy <= 0 {
		return 0
	}
	price := buy * (1 + marginPct/100) / (1 - feePct/100)
	price = math.Round(price*100) / 100
	if price < buy {
		return buy
	}
	return price
}

// CentsToDollars converts a minor-unit amount to major units.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// DollarsToCents converts a major-unit amount to minor units, rounding to the
// nearest cent.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
