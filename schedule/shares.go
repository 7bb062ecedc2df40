package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COST SHARING - Who pays what percentage of a bill
// =============================================================================

// PayeeShares resolves each payee's percentage of this bill:
//
//  1. Excluded payees are dropped from the roster.
//  2. Bill-level custom percentages are applied verbatim.
//  3. Payee-level defaults fill from what remains, scaled down when they
//     collectively exceed it.
//  4. Payees with neither split the leftover equally.
//
// Whenever any payee is eligible the resulting percentages sum to 100%
// (within tolerance); ValidateShares rejects configurations that do not.
// No eligible payees yields an empty map: the bill is funded by no one.
func (b Bill) PayeeShares(payees []Payee) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal)

	var eligible []Payee
	for _, p := range payees {
		if !b.Share.Excludes(p.Name) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return shares
	}

	remaining := hundred
	var unassigned []Payee
	for _, p := range eligible {
		if pct, ok := b.Share.Custom[p.Name]; ok {
			shares[p.Name] = pct
			remaining = remaining.Sub(pct)
		} else {
			unassigned = append(unassigned, p)
		}
	}

	if len(unassigned) == 0 || !remaining.IsPositive() {
		return shares
	}

	var withDefaults, withoutDefaults []Payee
	totalDefaults := decimal.Zero
	for _, p := range unassigned {
		if p.DefaultSharePercent != nil {
			withDefaults = append(withDefaults, p)
			totalDefaults = totalDefaults.Add(*p.DefaultSharePercent)
		} else {
			withoutDefaults = append(withoutDefaults, p)
		}
	}

	if totalDefaults.GreaterThan(remaining) {
		// Defaults overcommit the leftover: normalize them down to it and
		// give payees without defaults nothing.
		for _, p := range withDefaults {
			shares[p.Name] = p.DefaultSharePercent.Div(totalDefaults).Mul(remaining)
		}
		for _, p := range withoutDefaults {
			shares[p.Name] = decimal.Zero
		}
		return shares
	}

	for _, p := range withDefaults {
		shares[p.Name] = *p.DefaultSharePercent
		remaining = remaining.Sub(*p.DefaultSharePercent)
	}

	switch {
	case len(withoutDefaults) > 0 && remaining.IsPositive():
		equal := remaining.Div(decimal.NewFromInt(int64(len(withoutDefaults))))
		for _, p := range withoutDefaults {
			shares[p.Name] = equal
		}
	case remaining.GreaterThan(shareTolerance) && len(withDefaults) > 0:
		// Leftover percentage with nobody left to take it: spread it over
		// the defaulters in proportion to their declared defaults.
		for _, p := range withDefaults {
			extra := p.DefaultSharePercent.Div(totalDefaults).Mul(remaining)
			shares[p.Name] = shares[p.Name].Add(extra)
		}
	}

	return shares
}

// PayeeShare returns a single payee's percentage of the bill.
func (b Bill) PayeeShare(name string, payees []Payee) decimal.Decimal {
	return b.PayeeShares(payees)[name]
}

// ValidateShares checks that the bill's sharing rules resolve to a complete,
// non-negative split across the given roster. Intended for explicit
// validation before persisting configuration changes; the scheduling read
// path never calls it.
func (b Bill) ValidateShares(payees []Payee) error {
	shares := b.PayeeShares(payees)
	if len(shares) == 0 {
		return nil // degenerate but valid: nobody funds this bill
	}

	total := decimal.Zero
	for name, pct := range shares {
		if pct.IsNegative() {
			return &ShareValidationError{
				Bill:   b.Name,
				Payee:  name,
				Total:  total,
				Detail: fmt.Sprintf("negative percentage: %s%%", pct.StringFixed(2)),
			}
		}
		total = total.Add(pct)
	}

	if total.Sub(hundred).Abs().GreaterThan(shareTolerance) {
		return &ShareValidationError{
			Bill:   b.Name,
			Total:  total,
			Detail: fmt.Sprintf("total percentages equal %s%%, should be 100%%", total.StringFixed(2)),
		}
	}
	return nil
}
