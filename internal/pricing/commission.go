package pricing

import "strings"

// Commission fee band, in percent. Every computed fee is clamped into this range.
const (
	MinCommissionPercent = 2.0
	MaxCommissionPercent = 15.0
)

// BaseCommissionPercent is the marketplace-neutral starting fee before
// rarity/type/popularity scaling.
const BaseCommissionPercent = 7.0

// rarityFactors scales the base fee by item rarity tier. Premium rarities
// carry a higher fee, commons a lower one.
var rarityFactors = map[string]float64{
	"covert":     1.1,
	"contraband": 1.1,
	"classified": 1.05,
	"restricted": 1.0,
	"mil-spec":   0.95,
	"industrial": 0.9,
	"consumer":   0.9,
	"common":     0.9,
}

// typeFactors scales the base fee by the item's value class.
var typeFactors = map[string]float64{
	"knife":    1.2,
	"gloves":   1.2,
	"rifle":    1.0,
	"pistol":   0.95,
	"smg":      0.95,
	"sticker":  0.9,
	"case":     0.9,
	"graffiti": 0.9,
}

// popularityFactors scales the base fee by how liquid the item is. Very
// popular items clear fast and take a lower fee; illiquid ones the opposite.
var popularityFactors = map[string]float64{
	"very_high": 0.85,
	"high":      0.9,
	"medium":    1.0,
	"low":       1.1,
	"very_low":  1.15,
}

// marketplaceFactors applies a per-marketplace adjustment on top of the
// item-derived factors.
var marketplaceFactors = map[string]float64{
	"dmarket":  1.0,
	"skinport": 1.1,
	"bitskins": 0.95,
	"steam":    1.3,
}

// Commission computes the expected marketplace fee percentage for an item.
// It is deterministic and never errors: unknown rarity, type, popularity or
// marketplace strings use a neutral x1.0 factor, and the result is clamped
// to [MinCommissionPercent, MaxCommissionPercent].
func Commission(rarity, itemType, popularity, marketplace string) float64 {
	fee := BaseCommissionPercent
	fee *= factorOr(rarityFactors, rarity, 1.0)
	fee *= factorOr(typeFactors, itemType, 1.0)
	fee *= factorOr(popularityFactors, popularity, 1.0)
	fee *= factorOr(marketplaceFactors, marketplace, 1.0)

	if fee < MinCommissionPercent {
		return MinCommissionPercent
	}
	if fee > MaxCommissionPercent {
		return MaxCommissionPercent
	}
	return fee
}

func factorOr(factors map[string]float64, key string, fallback float64) float64 {
	f, ok := factors[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fallback
	}
	return f
}
