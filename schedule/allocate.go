/*
allocate.go - Splitting one payee's monthly responsibility across their income

PURPOSE:
  Given the euro amount a payee owes toward a bill-month and the income
  events found in the funding month, produce one schedule item per event so
  that the items always sum back to exactly the responsibility (plus any
  weekend-shortfall compensation).

ALLOCATION MODES:
  Pure proportional:
    No event declares a contribution percentage. Each event funds
    responsibility x (its income / total income).

  Custom percentage:
    An event declaring N% funds responsibility x N/100, regardless of its
    income size. The declared percentages apply against the PAYEE's single
    responsibility, never against a shared pool: two events each declaring
    100% split the responsibility 50/50, they do not double it. When declared
    percentages sum past 100 they are normalized by the sum first.

  Hybrid:
    Declared percentages are honored (normalized if needed); the undeclared
    events split whatever percentage remains, floored at zero, proportional
    to their income.

WEEKEND SHORTFALL:
  A payment naturally due in the funding month but weekend-shifted out of it
  is not in the event list; the contribution it would have carried is
  redistributed over the remaining events in proportion to their income.

SEE ALSO:
  - scheduler.go: computes the responsibility and the shortfall
  - income.go: enumerates the funding-month events
*/
package schedule

import "github.com/shopspring/decimal"

// noIncomeDescription labels the synthetic placeholder item emitted when a
// payee had no income in the funding month.
const noIncomeDescription = "No income in previous month"

// allocateContributions splits responsibility across the payee's funding
// month income events. The caller guarantees events is non-empty; the
// no-income placeholder is the scheduler's job.
func allocateContributions(payee Payee, events []IncomeEvent, responsibility, shortfall decimal.Decimal, fundingCutoff Date) []PaymentScheduleItem {
	totalIncome := decimal.Zero
	declaredTotal := decimal.Zero
	hasCustom := false
	for _, ev := range events {
		totalIncome = totalIncome.Add(ev.Schedule.EffectiveAmount())
		if ev.Schedule.ContributionPercent != nil {
			hasCustom = true
			declaredTotal = declaredTotal.Add(*ev.Schedule.ContributionPercent)
		}
	}

	if !hasCustom {
		return allocateProportional(payee, events, responsibility, shortfall, totalIncome, fundingCutoff)
	}

	// Declared percentages over 100 are normalized by their sum so the
	// total still conserves to exactly the responsibility.
	scale := decimal.NewFromInt(1)
	if declaredTotal.GreaterThan(hundred) {
		scale = hundred.Div(declaredTotal)
	}

	items := make([]PaymentScheduleItem, 0, len(events))
	usedPercent := decimal.Zero
	var remaining []IncomeEvent

	for _, ev := range events {
		if ev.Schedule.ContributionPercent == nil {
			remaining = append(remaining, ev)
			continue
		}
		pct := ev.Schedule.ContributionPercent.Mul(scale)
		usedPercent = usedPercent.Add(pct)

		base := responsibility.Mul(pct).Div(hundred)
		contribution := base.Add(shortfallShare(ev.Schedule, shortfall, totalIncome))
		items = append(items, newScheduleItem(payee.Name, ev, contribution, fundingCutoff))
	}

	// Undeclared events split whatever bill percentage the custom ones left,
	// floored at zero: once customs claim 100% these events only carry
	// shortfall compensation.
	remainingPercent := hundred.Sub(usedPercent)
	if remainingPercent.IsNegative() {
		remainingPercent = decimal.Zero
	}

	items = append(items, allocateRemaining(payee, remaining, responsibility, remainingPercent, shortfall, totalIncome, fundingCutoff)...)
	return items
}

// allocateProportional is the no-custom-percentage path: every event funds a
// slice of the responsibility proportional to its income.
func allocateProportional(payee Payee, events []IncomeEvent, responsibility, shortfall, totalIncome decimal.Decimal, fundingCutoff Date) []PaymentScheduleItem {
	items := make([]PaymentScheduleItem, 0, len(events))
	for _, ev := range events {
		contribution := decimal.Zero
		if totalIncome.IsPositive() {
			proportion := ev.Schedule.EffectiveAmount().Div(totalIncome)
			contribution = responsibility.Mul(proportion).Add(shortfall.Mul(proportion))
		}
		items = append(items, newScheduleItem(payee.Name, ev, contribution, fundingCutoff))
	}
	return items
}

// allocateRemaining distributes remainingPercent of the responsibility over
// the events without a declared percentage, proportional to income.
func allocateRemaining(payee Payee, events []IncomeEvent, responsibility, remainingPercent, shortfall, totalIncome decimal.Decimal, fundingCutoff Date) []PaymentScheduleItem {
	if len(events) == 0 {
		return nil
	}

	items := make([]PaymentScheduleItem, 0, len(events))

	remainingIncome := decimal.Zero
	for _, ev := range events {
		remainingIncome = remainingIncome.Add(ev.Schedule.EffectiveAmount())
	}

	for _, ev := range events {
		contribution := shortfallShare(ev.Schedule, shortfall, totalIncome)
		if remainingPercent.IsPositive() && remainingIncome.IsPositive() {
			streamPercent := remainingPercent.Mul(ev.Schedule.EffectiveAmount()).Div(remainingIncome)
			contribution = contribution.Add(responsibility.Mul(streamPercent).Div(hundred))
		}
		items = append(items, newScheduleItem(payee.Name, ev, contribution, fundingCutoff))
	}
	return items
}

// shortfallShare is an event's income-proportional slice of the weekend
// shortfall.
func shortfallShare(ps PaySchedule, shortfall, totalIncome decimal.Decimal) decimal.Decimal {
	if !shortfall.IsPositive() || !totalIncome.IsPositive() {
		return decimal.Zero
	}
	return shortfall.Mul(ps.EffectiveAmount()).Div(totalIncome)
}

func newScheduleItem(payeeName string, ev IncomeEvent, contribution decimal.Decimal, fundingCutoff Date) PaymentScheduleItem {
	return PaymentScheduleItem{
		PayeeName:            payeeName,
		ScheduleDescription:  ev.Schedule.Label(),
		IncomeAmount:         ev.Schedule.Amount,
		RequiredContribution: contribution,
		ContributionPercent:  percentOf(contribution, ev.Schedule.Amount),
		PaymentDate:          ev.Date,
		IsBeforeCutoff:       ev.Date.BeforeOrEqual(fundingCutoff),
	}
}

// noIncomeItem is the synthetic placeholder for a payee with no funding-month
// income: the full responsibility lands on them with nothing to split across.
func noIncomeItem(payeeName string, responsibility decimal.Decimal, cutoff Date) PaymentScheduleItem {
	return PaymentScheduleItem{
		PayeeName:            payeeName,
		ScheduleDescription:  noIncomeDescription,
		IncomeAmount:         decimal.Zero,
		RequiredContribution: responsibility,
		ContributionPercent:  decimal.Zero,
		PaymentDate:          cutoff,
		IsBeforeCutoff:       false,
	}
}
