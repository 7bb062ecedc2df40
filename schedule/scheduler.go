/*
scheduler.go - Month-by-month cash-flow projection

PURPOSE:
  The orchestrator. Walks the projection window one calendar month at a
  time: totals the bills due that month, determines the active payee roster,
  splits the total equally across it, and allocates each payee's slice over
  the income they received in the FUNDING month (the month before, whose
  income pays this month's bills).

STATE MACHINE PER MONTH:
  1. Roll (startMonth + offset) into a concrete month/year.
  2. Total the bills due, resolving each bill's price by date.
  3. Record the monthly total even when zero; zero months produce no items.
  4. Gate payees on their start date; split the total equally among them.
  5. Enumerate funding-month income, compute the weekend shortfall, allocate.
  6. Collect weekend-displacement diagnostics.

The computation is pure and deterministic: it reads an immutable Snapshot,
touches no global state, and is safe to invoke concurrently on independent
inputs. Payees are processed in input order so output ordering is stable.

SEE ALSO:
  - allocate.go: per-payee allocation modes
  - income.go: funding-month income enumeration
  - bill.go: price-history resolution
*/
package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// RESULT TYPES - Immutable value records consumed by presentation layers
// =============================================================================

// PaymentScheduleItem is one income event's required contribution toward one
// bill-month. Payees with no funding-month income get a single synthetic item
// carrying their full responsibility.
type PaymentScheduleItem struct {
	PayeeName            string
	ScheduleDescription  string
	IncomeAmount         decimal.Decimal
	RequiredContribution decimal.Decimal
	// ContributionPercent is RequiredContribution relative to the declared
	// income amount, as a percentage.
	ContributionPercent decimal.Decimal
	PaymentDate         Date
	IsBeforeCutoff      bool
}

// BillDue is one bill's contribution to a monthly total.
type BillDue struct {
	Name   string
	Amount decimal.Decimal
}

// MonthlyBillTotal is the bills due in one projected calendar month.
type MonthlyBillTotal struct {
	Month      int
	Year       int
	TotalBills decimal.Decimal
	BillsDue   []BillDue
}

// WeekendAdjustment is a diagnostic: a payment whose weekend shift moved it
// across a month boundary.
type WeekendAdjustment struct {
	PayeeName           string
	ScheduleDescription string
	OriginalDate        Date
	AdjustedDate        Date
	IncomeAmount        decimal.Decimal
}

// PaymentScheduleResult is the complete output of one projection run.
type PaymentScheduleResult struct {
	ScheduleItems      []PaymentScheduleItem
	MonthlyBillTotals  []MonthlyBillTotal
	WeekendAdjustments []WeekendAdjustment
	StartMonth         int
	StartYear          int
	MonthsAhead        int
}

// =============================================================================
// SNAPSHOT - The immutable input of a scheduling run
// =============================================================================

// Snapshot is a loaded, validated view of the household: every bill, every
// payee, and the run options. The scheduler never mutates it.
type Snapshot struct {
	Bills   []Bill
	Payees  []Payee
	Options Options
}

// =============================================================================
// SCHEDULER
// =============================================================================

// maxBillChecks bounds the occurrences examined per bill per month.
const maxBillChecks = 10

type Scheduler struct {
	Snapshot Snapshot

	// ProjectionStartMonth/Year, when set, floor the projection: months
	// before them report zero bills. Zero values disable the floor.
	ProjectionStartMonth int
	ProjectionStartYear  int
}

func NewScheduler(snapshot Snapshot) *Scheduler {
	return &Scheduler{Snapshot: snapshot}
}

// ProportionalContributions projects monthsAhead months starting at
// (startMonth, startYear) and returns the full result set. This is the sole
// public entry point; all fields of the result are read-only value data.
func (s *Scheduler) ProportionalContributions(startMonth, startYear, monthsAhead int) PaymentScheduleResult {
	result := PaymentScheduleResult{
		StartMonth:  startMonth,
		StartYear:   startYear,
		MonthsAhead: monthsAhead,
	}

	for offset := 0; offset < monthsAhead; offset++ {
		month, year := RolloverMonth(startMonth+offset, startYear)

		monthly := s.MonthlyBillTotal(month, year)
		result.MonthlyBillTotals = append(result.MonthlyBillTotals, monthly)

		// Zero-bill months stay in the totals for display completeness but
		// generate no contributions.
		if !monthly.TotalBills.IsPositive() {
			continue
		}

		active := activePayees(s.Snapshot.Payees, month, year)
		if len(active) == 0 {
			continue
		}
		responsibility := monthly.TotalBills.Div(decimal.NewFromInt(int64(len(active))))

		fundingMonth, fundingYear := RolloverMonth(month-1, year)
		fundingStart, fundingEnd := MonthBounds(fundingMonth, fundingYear)
		fundingCutoff := s.Snapshot.Options.CutoffDate(fundingMonth, fundingYear)
		cutoff := s.Snapshot.Options.CutoffDate(month, year)

		for _, payee := range active {
			events := payee.IncomeInMonth(fundingStart, fundingEnd)

			if len(events) == 0 {
				result.ScheduleItems = append(result.ScheduleItems, noIncomeItem(payee.Name, responsibility, cutoff))
				continue
			}

			totalIncome := decimal.Zero
			for _, ev := range events {
				totalIncome = totalIncome.Add(ev.Schedule.EffectiveAmount())
			}

			shortfall := s.weekendShortfall(payee, fundingMonth, fundingYear, responsibility, totalIncome)

			for _, dp := range weekendDisplacedPayments(payee, month, year) {
				result.WeekendAdjustments = append(result.WeekendAdjustments, WeekendAdjustment{
					PayeeName:           payee.Name,
					ScheduleDescription: dp.Schedule.Label(),
					OriginalDate:        dp.Original,
					AdjustedDate:        dp.Adjusted,
					IncomeAmount:        dp.Schedule.Amount,
				})
			}

			items := allocateContributions(payee, events, responsibility, shortfall, fundingCutoff)
			result.ScheduleItems = append(result.ScheduleItems, items...)
		}
	}

	return result
}

// MonthlyBillTotal totals every bill occurrence landing in a calendar month,
// with the price history resolved per occurrence date.
func (s *Scheduler) MonthlyBillTotal(month, year int) MonthlyBillTotal {
	monthly := MonthlyBillTotal{Month: month, Year: year, TotalBills: decimal.Zero}

	if s.beforeProjectionStart(month, year) {
		return monthly
	}

	monthStart, monthEnd := MonthBounds(month, year)

	for _, bill := range s.Snapshot.Bills {
		check := monthStart.AddDays(-1)

		for i := 0; i < maxBillChecks; i++ {
			rec, ok := bill.RecurrenceAt(check)
			if !ok {
				break
			}
			due, ok := rec.NextDue(check)
			if !ok || due.After(monthEnd) {
				break
			}

			if due.AfterOrEqual(monthStart) {
				if amount, ok := bill.AmountAt(due); ok {
					monthly.TotalBills = monthly.TotalBills.Add(amount)
					monthly.BillsDue = append(monthly.BillsDue, BillDue{Name: bill.Name, Amount: amount})
				}
			}

			check = due.AddDays(1)
		}
	}

	return monthly
}

// weekendShortfall totals the contributions lost to payments that naturally
// fall in the funding month but were weekend-shifted out of it. Custom
// percentage streams would have contributed responsibility x pct/100;
// proportional streams their income-proportional slice.
func (s *Scheduler) weekendShortfall(payee Payee, fundingMonth, fundingYear int, responsibility, totalIncome decimal.Decimal) decimal.Decimal {
	shortfall := decimal.Zero

	for _, dp := range weekendDisplacedPayments(payee, fundingMonth, fundingYear) {
		if int(dp.Original.Month()) != fundingMonth || dp.Original.Year() != fundingYear {
			continue
		}
		if pct := dp.Schedule.ContributionPercent; pct != nil {
			shortfall = shortfall.Add(responsibility.Mul(*pct).Div(hundred))
		} else if totalIncome.IsPositive() {
			proportion := dp.Schedule.EffectiveAmount().Div(totalIncome)
			shortfall = shortfall.Add(responsibility.Mul(proportion))
		}
	}

	return shortfall
}

func (s *Scheduler) beforeProjectionStart(month, year int) bool {
	if s.ProjectionStartMonth == 0 || s.ProjectionStartYear == 0 {
		return false
	}
	return year < s.ProjectionStartYear ||
		(year == s.ProjectionStartYear && month < s.ProjectionStartMonth)
}
