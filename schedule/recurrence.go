/*
Package schedule implements the household cash-flow contribution engine.

PURPOSE:
  Given a set of recurring bills, a set of income earners ("payees") with
  their own pay cadences, and a monthly cutoff configuration, the engine
  projects how much of each month's bills every individual income payment
  must contribute, and on what date. Income received in month M funds the
  bills due in month M+1.

KEY CONCEPTS:
  - Recurrence: when a bill or paycheck occurs (recurrence.go)
  - WeekendShift: how weekend payment dates move to business days (adjust.go)
  - Bill / BillShare: a recurring expense and its cost-sharing rules (bill.go)
  - Payee / PaySchedule: an earner and their income streams (payee.go)
  - Scheduler: the month-by-month projection orchestrator (scheduler.go)

DESIGN PRINCIPLES:
  1. Purity: the engine performs no I/O and mutates no input; every run is a
     deterministic function of an immutable Snapshot.
  2. Precision: money and percentages use decimal.Decimal throughout.
  3. Totality: degenerate inputs (no bills, no payees, exhausted recurrences)
     produce empty results, not errors.
  4. Bounded work: occurrence lookup is constant-time arithmetic, and every
     scan over occurrences carries a defensive iteration cap so pathological
     configurations cannot loop forever.

SEE ALSO:
  - scheduler.go: the public entry point, ProportionalContributions
  - allocate.go: per-payee contribution allocation
*/
package schedule

// =============================================================================
// RECURRENCE - When does a bill or paycheck occur?
// =============================================================================

// RecurrenceKind selects the recurrence grammar.
type RecurrenceKind string

const (
	// KindInterval repeats after a fixed amount of elapsed time since Start.
	KindInterval RecurrenceKind = "interval"
	// KindCalendar repeats on the same day-of-month each period, snapping to
	// the last valid day when the target month is shorter.
	KindCalendar RecurrenceKind = "calendar"
)

// RecurrenceUnit is the base period of a recurrence. Its meaning depends on
// the kind: interval units measure elapsed time, calendar units measure
// month steps.
type RecurrenceUnit string

const (
	UnitDaily     RecurrenceUnit = "daily"
	UnitWeekly    RecurrenceUnit = "weekly"
	UnitMonthly   RecurrenceUnit = "monthly"
	UnitQuarterly RecurrenceUnit = "quarterly"
	UnitYearly    RecurrenceUnit = "yearly"
)

// Interval quarters and years are approximated with fixed day counts rather
// than true calendar steps. This drifts over long projections (a "yearly"
// interval shifts around leap years) but is the documented behavior; calendar
// kind recurrences of the same units stay calendar-exact.
const (
	quarterDays = 91
	yearDays    = 365
)

// Recurrence describes a periodic occurrence rule. Occurrences are
// monotonically increasing and never fall before Start; once an occurrence
// would pass End the rule is exhausted.
type Recurrence struct {
	Kind  RecurrenceKind
	Unit  RecurrenceUnit
	Every int   // every N units; values < 1 default to 1 for calendar kinds
	Start Date
	End   *Date // nil = open-ended
}

// IsZero reports whether the recurrence is unset.
func (r Recurrence) IsZero() bool {
	return r.Kind == "" && r.Start.IsZero()
}

// Validate flags configurations NextDue would silently treat as inert or
// exhausted. Use before persisting a recurrence; the read path never errors.
func (r Recurrence) Validate() error {
	switch r.Kind {
	case KindInterval, KindCalendar:
	default:
		return &RecurrenceConfigError{Field: "kind", Detail: "must be interval or calendar"}
	}
	if r.Start.IsZero() {
		return &RecurrenceConfigError{Field: "start", Detail: "required"}
	}
	if r.Kind == KindInterval && r.Every < 1 {
		return &RecurrenceConfigError{Field: "every", Detail: "must be a positive integer"}
	}
	if r.End != nil && r.End.Before(r.Start) {
		return &RecurrenceConfigError{Field: "end", Detail: "before start"}
	}
	switch r.Unit {
	case UnitDaily, UnitWeekly, UnitMonthly, UnitQuarterly, UnitYearly:
	case "":
		if r.Kind == KindInterval {
			return &RecurrenceConfigError{Field: "unit", Detail: "required for interval recurrences"}
		}
		// Calendar recurrences default to monthly.
	default:
		return &RecurrenceConfigError{Field: "unit", Detail: "unknown unit"}
	}
	return nil
}

// NextDue returns the first occurrence strictly after the given date, or
// false when the rule is exhausted or inert. When after precedes Start, the
// first occurrence is exactly Start.
func (r Recurrence) NextDue(after Date) (Date, bool) {
	if r.Start.IsZero() {
		return Date{}, false
	}
	if after.IsZero() {
		after = Today()
	}

	switch r.Kind {
	case KindInterval:
		return r.nextInterval(after)
	case KindCalendar:
		return r.nextCalendar(after)
	}
	return Date{}, false
}

func (r Recurrence) nextInterval(after Date) (Date, bool) {
	if r.Every < 1 {
		// Pathological: an interval that never advances. Treated as inert
		// rather than looping; Validate reports it on write paths.
		return Date{}, false
	}

	var stepDays int
	switch r.Unit {
	case UnitDaily:
		stepDays = r.Every
	case UnitWeekly:
		stepDays = 7 * r.Every
	case UnitMonthly:
		return r.nextByMonths(after, r.Every)
	case UnitQuarterly:
		stepDays = quarterDays * r.Every
	case UnitYearly:
		stepDays = yearDays * r.Every
	default:
		return Date{}, false
	}

	if after.BeforeOrEqual(r.Start) {
		return r.occurrenceOrExhausted(r.Start)
	}

	elapsed := DaysBetween(r.Start, after)
	next := r.Start.AddDays((elapsed/stepDays + 1) * stepDays)
	return r.occurrenceOrExhausted(next)
}

func (r Recurrence) nextCalendar(after Date) (Date, bool) {
	every := r.Every
	if every < 1 {
		every = 1
	}

	var stepMonths int
	switch r.Unit {
	case UnitMonthly, "":
		stepMonths = every
	case UnitQuarterly:
		stepMonths = 3 * every
	case UnitYearly:
		stepMonths = 12 * every
	default:
		return Date{}, false
	}
	return r.nextByMonths(after, stepMonths)
}

// nextByMonths jumps directly to the first occurrence after the query date,
// re-deriving the day-of-month from the anchor so a clamped February
// occurrence returns to the 31st in March. The month distance from Start
// gives the step count arithmetically, so a query decades past Start costs
// the same as one the next month.
func (r Recurrence) nextByMonths(after Date, stepMonths int) (Date, bool) {
	if after.BeforeOrEqual(r.Start) {
		return r.occurrenceOrExhausted(r.Start)
	}

	anchorDay := r.Start.Day()
	monthsAhead := (after.Year()-r.Start.Year())*12 + int(after.Month()) - int(r.Start.Month())
	steps := monthsAhead / stepMonths
	current := addMonthsClamped(r.Start, steps*stepMonths, anchorDay)
	// At most one more step: the floored candidate shares the query month or
	// precedes it, and the step after that lands in a strictly later month.
	for !current.After(after) {
		current = addMonthsClamped(current, stepMonths, anchorDay)
	}
	return r.occurrenceOrExhausted(current)
}

func (r Recurrence) occurrenceOrExhausted(d Date) (Date, bool) {
	if r.End != nil && d.After(*r.End) {
		return Date{}, false
	}
	return d, true
}
