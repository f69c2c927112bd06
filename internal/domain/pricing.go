package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AggregatePrices combines competitor prices with mode.
// It returns false when prices is empty.
func AggregatePrices(mode PricingMode, prices []decimal.Decimal) (decimal.Decimal, bool) {
	if len(prices) == 0 {
		return decimal.Zero, false
	}

	switch mode {
	case PricingModeMin:
		return decimal.Min(prices[0], prices[1:]...), true
	case PricingModeMax:
		return decimal.Max(prices[0], prices[1:]...), true
	case PricingModeMedian:
		sorted := SortedPrices(prices)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid], true
		}
		return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)), true
	default:
		return decimal.Avg(prices[0], prices[1:]...), true
	}
}

// SortedPrices returns an ascending copy of prices
func SortedPrices(prices []decimal.Decimal) []decimal.Decimal {
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return sorted
}

// ApplyPercent returns price increased by percent (negative decreases)
func ApplyPercent(price, percent decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Add(percent)).Div(hundred)
}

// ApplyAdjustment applies a percentage or fixed adjustment to price
func ApplyAdjustment(price decimal.Decimal, t AdjustmentType, value decimal.Decimal) decimal.Decimal {
	if t == AdjustmentFixed {
		return price.Add(value)
	}
	return ApplyPercent(price, value)
}

// RoundPrice rounds to PRICE_SCALE decimals
func RoundPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PRICE_SCALE)
}
