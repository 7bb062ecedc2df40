package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// BILL - A recurring expense with a dated price history
// =============================================================================

// PricePoint is one entry in a bill's price history: the amount and cadence
// in force from StartDate until superseded by a later entry.
type PricePoint struct {
	Amount     decimal.Decimal
	Recurrence Recurrence
	StartDate  Date
}

// BillShare is the cost-sharing configuration of a bill.
type BillShare struct {
	// Exclude lists payees never charged for this bill.
	Exclude []string
	// Custom maps payee name to a fixed percentage for this bill only.
	Custom map[string]decimal.Decimal
}

// Excludes reports whether a payee is exempt from the bill.
func (s BillShare) Excludes(name string) bool {
	for _, n := range s.Exclude {
		if n == name {
			return true
		}
	}
	return false
}

// HasConfig reports whether any sharing rule deviates from the equal split.
func (s BillShare) HasConfig() bool {
	return len(s.Exclude) > 0 || len(s.Custom) > 0
}

type Bill struct {
	Name        string
	Description string

	// PriceHistory is ordered ascending by StartDate. The entry with the
	// latest StartDate at or before a target date is authoritative for it;
	// the engine always resolves by date, never by list position.
	PriceHistory []PricePoint

	Share BillShare
}

// NewBill builds a single-price bill, the common case. The price takes
// effect from the recurrence start.
func NewBill(name string, amount decimal.Decimal, rec Recurrence) Bill {
	return Bill{
		Name: name,
		PriceHistory: []PricePoint{
			{Amount: amount, Recurrence: rec, StartDate: rec.Start},
		},
	}
}

// PriceAt resolves the authoritative price-history entry for a date.
func (b Bill) PriceAt(d Date) (PricePoint, bool) {
	var found PricePoint
	ok := false
	for _, pp := range b.PriceHistory {
		if pp.StartDate.BeforeOrEqual(d) {
			found = pp
			ok = true
		}
	}
	return found, ok
}

// AmountAt returns the bill amount in force on a date.
func (b Bill) AmountAt(d Date) (decimal.Decimal, bool) {
	pp, ok := b.PriceAt(d)
	if !ok {
		return decimal.Zero, false
	}
	return pp.Amount, true
}

// RecurrenceAt returns the cadence in force on a date. Dates before the first
// price point fall back to the first entry so upcoming occurrences of a bill
// that has not started yet are still discoverable.
func (b Bill) RecurrenceAt(d Date) (Recurrence, bool) {
	if pp, ok := b.PriceAt(d); ok {
		return pp.Recurrence, true
	}
	if len(b.PriceHistory) > 0 {
		return b.PriceHistory[0].Recurrence, true
	}
	return Recurrence{}, false
}
