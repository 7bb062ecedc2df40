package schedule

import "time"

// =============================================================================
// OPTIONS - Run-wide scheduling configuration
// =============================================================================

const (
	// DefaultCutoffDay is safe for every month of the year.
	DefaultCutoffDay = 28

	DefaultProjectionMonths = 12
)

// Options configures a scheduling run.
type Options struct {
	// CutoffDay is the day of month by which income must arrive to count
	// toward that month's funding. Clamped to the last valid day of
	// whichever month it is applied to.
	CutoffDay int

	// WeekendShift adjusts cutoff dates falling on a weekend.
	WeekendShift WeekendShift

	// ProjectionMonths is the default projection window length.
	ProjectionMonths int
}

func DefaultOptions() Options {
	return Options{
		CutoffDay:        DefaultCutoffDay,
		WeekendShift:     ShiftToLastWorkingDay,
		ProjectionMonths: DefaultProjectionMonths,
	}
}

// CutoffDate returns the clamped, weekend-adjusted cutoff date for a month.
func (o Options) CutoffDate(month, year int) Date {
	day := o.CutoffDay
	if day < 1 {
		day = DefaultCutoffDay
	}
	if last := DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return AdjustWeekend(NewDate(year, time.Month(month), day), o.WeekendShift)
}
