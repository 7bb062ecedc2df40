package schedule

import "time"

// =============================================================================
// WEEKEND ADJUSTMENT - Payments never land on Saturday or Sunday
// =============================================================================

// WeekendShift selects how a weekend payment date moves to a business day.
// The string values match the persisted configuration format.
type WeekendShift string

const (
	// ShiftToLastWorkingDay moves Saturday/Sunday back to the preceding Friday.
	ShiftToLastWorkingDay WeekendShift = "last_working_day"
	// ShiftToNextWorkingDay moves Saturday/Sunday forward to the following Monday.
	ShiftToNextWorkingDay WeekendShift = "next_working_day"
)

// AdjustWeekend shifts a weekend date to an adjacent business day per the
// strategy. Weekday dates pass through unchanged, which makes the function
// idempotent: adjusting an already-adjusted date is a no-op.
func AdjustWeekend(d Date, shift WeekendShift) Date {
	wd := d.Weekday()
	if wd != time.Saturday && wd != time.Sunday {
		return d
	}

	switch shift {
	case ShiftToNextWorkingDay:
		if wd == time.Saturday {
			return d.AddDays(2)
		}
		return d.AddDays(1) // Sunday
	default:
		// ShiftToLastWorkingDay, also the fallback for an unset strategy.
		if wd == time.Saturday {
			return d.AddDays(-1)
		}
		return d.AddDays(-2) // Sunday
	}
}
