package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY SCHEDULE - One income stream of a payee
// =============================================================================

// PaySchedule is a single recurring income stream.
type PaySchedule struct {
	// Amount of each payment. When not positive, a nominal placeholder is
	// used for proportional math only (see EffectiveAmount).
	Amount      decimal.Decimal
	Recurrence  Recurrence
	Description string

	// WeekendShift moves payment dates off Saturday/Sunday. The zero value
	// falls back to shifting to the last working day.
	WeekendShift WeekendShift

	// ContributionPercent, when set, pins this stream to funding the given
	// percentage of its payee's monthly responsibility instead of a share
	// proportional to its income.
	ContributionPercent *decimal.Decimal
}

// EffectiveAmount returns the payment amount used for proportional math,
// substituting the nominal placeholder when no positive amount is declared.
func (ps PaySchedule) EffectiveAmount() decimal.Decimal {
	if ps.Amount.IsPositive() {
		return ps.Amount
	}
	return placeholderIncome
}

// AdjustedPaymentDate applies the stream's weekend strategy to a raw
// occurrence date.
func (ps PaySchedule) AdjustedPaymentDate(d Date) Date {
	return AdjustWeekend(d, ps.WeekendShift)
}

// Label returns the display description, deriving one from the recurrence
// unit when none is set.
func (ps PaySchedule) Label() string {
	if ps.Description != "" {
		return ps.Description
	}
	unit := ps.Recurrence.Unit
	if unit == "" {
		unit = UnitMonthly
	}
	return string(unit) + " payment"
}

// =============================================================================
// PAYEE - An income earner sharing responsibility for the bills
// =============================================================================

type Payee struct {
	Name        string
	Description string

	// StartDate, when set, excludes the payee from any bill-month before the
	// first day of the month containing it. Absent means always active.
	StartDate *Date

	// DefaultSharePercent is the payee-level default used by bill
	// cost-sharing when the bill itself has no custom percentage for them.
	DefaultSharePercent *decimal.Decimal

	PaySchedules []PaySchedule
}

// ActiveInMonth reports whether the payee carries bill responsibility in the
// given calendar month.
func (p Payee) ActiveInMonth(month, year int) bool {
	if p.StartDate == nil {
		return true
	}
	activeFrom := NewDate(p.StartDate.Year(), p.StartDate.Month(), 1)
	monthStart := NewDate(year, time.Month(month), 1)
	return monthStart.AfterOrEqual(activeFrom)
}

// activePayees filters the roster down to payees responsible in a month,
// preserving input order for deterministic output.
func activePayees(payees []Payee, month, year int) []Payee {
	var active []Payee
	for _, p := range payees {
		if p.ActiveInMonth(month, year) {
			active = append(active, p)
		}
	}
	return active
}
