package schedule

// =============================================================================
// INCOME ENUMERATION - Which payments land inside a month window
// =============================================================================

// IncomeEvent is one weekend-adjusted payment occurrence of a pay schedule.
type IncomeEvent struct {
	Schedule PaySchedule
	Date     Date // adjusted date, inside the queried window
}

// maxIncomeChecks bounds the occurrences examined per schedule per window.
// A window is one month; fifty daily occurrences more than cover it.
const maxIncomeChecks = 50

// scanMarginDays widens the raw scan on both sides of the window. A
// prior-month Saturday/Sunday can shift forward into the window, and a
// following-month Saturday can shift back into it; two days covers the
// longest shift (Saturday to Monday).
const scanMarginDays = 2

// IncomeInMonth enumerates every payment of the payee whose ADJUSTED date
// falls in [monthStart, monthEnd]. The raw scan starts before the window and
// runs slightly past its end so weekend shifts across the month boundary are
// caught in both directions. Each schedule contributes a given adjusted date
// at most once.
func (p Payee) IncomeInMonth(monthStart, monthEnd Date) []IncomeEvent {
	var events []IncomeEvent

	for _, ps := range p.PaySchedules {
		if ps.Recurrence.IsZero() {
			continue
		}

		seen := make(map[Date]bool)
		// NextDue is strictly-after, so starting the cursor margin+1 days
		// back makes the first raw candidate monthStart - margin.
		check := monthStart.AddDays(-scanMarginDays - 1)
		scanEnd := monthEnd.AddDays(scanMarginDays)

		for i := 0; i < maxIncomeChecks; i++ {
			raw, ok := ps.Recurrence.NextDue(check)
			if !ok || raw.After(scanEnd) {
				break
			}

			adjusted := ps.AdjustedPaymentDate(raw)
			if adjusted.AfterOrEqual(monthStart) && adjusted.BeforeOrEqual(monthEnd) && !seen[adjusted] {
				seen[adjusted] = true
				events = append(events, IncomeEvent{Schedule: ps, Date: adjusted})
			}

			check = raw.AddDays(1)
		}
	}

	return events
}

// displacedPayment records a payment whose weekend shift moved it across a
// month boundary.
type displacedPayment struct {
	Schedule PaySchedule
	Original Date
	Adjusted Date
}

// maxDisplacementChecks bounds the diagnostic scan per schedule per month.
const maxDisplacementChecks = 10

// weekendDisplacedPayments finds payments that naturally occur inside the
// given month but whose adjusted date lands outside it. These create funding
// shortfalls (when the month funds bills) and are surfaced as diagnostics.
func weekendDisplacedPayments(payee Payee, month, year int) []displacedPayment {
	monthStart, monthEnd := MonthBounds(month, year)
	var displaced []displacedPayment

	for _, ps := range payee.PaySchedules {
		if ps.Recurrence.IsZero() {
			continue
		}

		check := monthStart.AddDays(-1)
		for i := 0; i < maxDisplacementChecks; i++ {
			raw, ok := ps.Recurrence.NextDue(check)
			if !ok || raw.After(monthEnd) {
				break
			}

			adjusted := ps.AdjustedPaymentDate(raw)
			if adjusted.Before(monthStart) || adjusted.After(monthEnd) {
				displaced = append(displaced, displacedPayment{
					Schedule: ps,
					Original: raw,
					Adjusted: adjusted,
				})
			}

			check = raw
		}
	}

	return displaced
}
