package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY - All currency and percentage math runs on decimal.Decimal
// =============================================================================

var (
	// hundred is the percentage base.
	hundred = decimal.NewFromInt(100)

	// shareTolerance is the allowed drift when validating that bill shares
	// sum to 100%.
	shareTolerance = decimal.NewFromFloat(0.01)

	// placeholderIncome stands in for a pay schedule with no declared amount.
	// It exists only so proportional math has something to divide by; it is
	// never presented as real income.
	placeholderIncome = decimal.NewFromInt(1000)
)

// Money builds a decimal amount from a float literal. Intended for
// construction sites (tests, fixtures, JSON boundaries); internal math stays
// in decimal space.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// percentOf returns part/whole * 100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
