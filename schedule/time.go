package schedule

import "time"

// =============================================================================
// DATE - Day-granularity calendar date (all scheduling math is whole-day)
// =============================================================================

// Date is a calendar date in UTC. The engine never deals in times of day;
// every comparison and step is whole-day arithmetic.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the whole days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// MONTH ARITHMETIC
// =============================================================================

// DaysInMonth returns the number of days in a month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last day of a month.
func MonthBounds(month, year int) (Date, Date) {
	start := NewDate(year, time.Month(month), 1)
	end := NewDate(year, time.Month(month), DaysInMonth(year, time.Month(month)))
	return start, end
}

// RolloverMonth normalizes a month that ran past December or before January,
// adjusting the year accordingly (month 13 -> month 1 of year+1).
func RolloverMonth(month, year int) (int, int) {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	return month, year
}

// clampDay builds a date snapping the day to the last valid day of the month
// (day 31 in February becomes February 28/29).
func clampDay(year int, month time.Month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// addMonthsClamped steps n months forward from d while preserving the anchor
// day-of-month, clamping when the target month is shorter. time.AddDate is not
// used here because it normalizes overflow (Jan 31 + 1 month = Mar 2/3).
func addMonthsClamped(d Date, n, anchorDay int) Date {
	month := int(d.Month()) + n
	year := d.Year()
	month, year = RolloverMonth(month, year)
	return clampDay(year, time.Month(month), anchorDay)
}
