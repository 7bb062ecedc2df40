package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/cashflow-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) schedule.Date {
	return schedule.NewDate(year, month, day)
}

func monthlyCalendar(start schedule.Date) schedule.Recurrence {
	return schedule.Recurrence{
		Kind:  schedule.KindCalendar,
		Unit:  schedule.UnitMonthly,
		Start: start,
	}
}

func requireDue(t *testing.T, r schedule.Recurrence, after, want schedule.Date) {
	t.Helper()
	got, ok := r.NextDue(after)
	if !ok {
		t.Fatalf("NextDue(%s): expected %s, got no occurrence", after, want)
	}
	if !got.Equal(want) {
		t.Errorf("NextDue(%s) = %s, want %s", after, got, want)
	}
}

func requireExhausted(t *testing.T, r schedule.Recurrence, after schedule.Date) {
	t.Helper()
	if got, ok := r.NextDue(after); ok {
		t.Errorf("NextDue(%s) = %s, want no occurrence", after, got)
	}
}

// =============================================================================
// CALENDAR KIND
// =============================================================================

func TestCalendar_MonthlyClampsToShortMonths(t *testing.T) {
	// GIVEN: a monthly calendar recurrence anchored on the 31st
	// WHEN: stepping through a leap-year spring
	// THEN: short months snap to their last day, long months return to the 31st
	r := monthlyCalendar(date(2024, time.January, 31))

	requireDue(t, r, date(2024, time.January, 1), date(2024, time.January, 31))
	requireDue(t, r, date(2024, time.January, 31), date(2024, time.February, 29))
	requireDue(t, r, date(2024, time.February, 29), date(2024, time.March, 31))
	requireDue(t, r, date(2024, time.March, 31), date(2024, time.April, 30))
	requireDue(t, r, date(2024, time.April, 30), date(2024, time.May, 31))
}

func TestCalendar_NonLeapFebruary(t *testing.T) {
	r := monthlyCalendar(date(2023, time.January, 30))
	requireDue(t, r, date(2023, time.February, 1), date(2023, time.February, 28))
}

func TestCalendar_StartReturnedWhenQueryPrecedesIt(t *testing.T) {
	r := monthlyCalendar(date(2024, time.March, 15))
	requireDue(t, r, date(2024, time.January, 1), date(2024, time.March, 15))
	requireDue(t, r, date(2024, time.March, 15), date(2024, time.April, 15))
}

func TestCalendar_BimonthlyStepsTwoMonths(t *testing.T) {
	r := schedule.Recurrence{
		Kind:  schedule.KindCalendar,
		Unit:  schedule.UnitMonthly,
		Every: 2,
		Start: date(2024, time.January, 15),
	}
	requireDue(t, r, date(2024, time.January, 16), date(2024, time.March, 15))
	requireDue(t, r, date(2024, time.March, 16), date(2024, time.May, 15))
}

func TestCalendar_QuarterlyStaysOnCalendarQuarters(t *testing.T) {
	r := schedule.Recurrence{
		Kind:  schedule.KindCalendar,
		Unit:  schedule.UnitQuarterly,
		Start: date(2024, time.April, 15),
	}
	requireDue(t, r, date(2024, time.March, 31), date(2024, time.April, 15))
	requireDue(t, r, date(2024, time.April, 30), date(2024, time.July, 15))
	requireDue(t, r, date(2024, time.July, 15), date(2024, time.October, 15))
}

func TestCalendar_YearlyDefaultsUnitWhenUnset(t *testing.T) {
	// An unset unit on a calendar recurrence means monthly.
	r := schedule.Recurrence{Kind: schedule.KindCalendar, Start: date(2024, time.June, 1)}
	requireDue(t, r, date(2024, time.June, 2), date(2024, time.July, 1))

	yearly := schedule.Recurrence{
		Kind:  schedule.KindCalendar,
		Unit:  schedule.UnitYearly,
		Start: date(2024, time.February, 29),
	}
	// Anniversary of Feb 29 clamps to Feb 28 off leap years.
	requireDue(t, yearly, date(2024, time.March, 1), date(2025, time.February, 28))
}

func TestCalendar_LiveRuleFarFromStart(t *testing.T) {
	// GIVEN: a monthly rule anchored decades before the query date
	// WHEN: asking for the next occurrence
	// THEN: the rule stays live and lands on the anchor day in the query month
	r := monthlyCalendar(date(1970, time.January, 15))
	requireDue(t, r, date(2030, time.June, 1), date(2030, time.June, 15))
	requireDue(t, r, date(2030, time.June, 15), date(2030, time.July, 15))
}

func TestCalendar_BimonthlyAlignmentHoldsFarFromStart(t *testing.T) {
	// Odd-month cadence from January 1970: May 2030 is on it, June is not.
	r := schedule.Recurrence{
		Kind:  schedule.KindCalendar,
		Unit:  schedule.UnitMonthly,
		Every: 2,
		Start: date(1970, time.January, 15),
	}
	requireDue(t, r, date(2030, time.June, 1), date(2030, time.July, 15))
}

func TestCalendar_ClampHoldsFarFromStart(t *testing.T) {
	r := monthlyCalendar(date(2000, time.January, 31))
	requireDue(t, r, date(2055, time.February, 10), date(2055, time.February, 28))
}

// =============================================================================
// INTERVAL KIND
// =============================================================================

func TestInterval_DailySteps(t *testing.T) {
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitDaily,
		Every: 10,
		Start: date(2024, time.March, 1),
	}
	requireDue(t, r, date(2024, time.February, 1), date(2024, time.March, 1))
	requireDue(t, r, date(2024, time.March, 1), date(2024, time.March, 1))
	requireDue(t, r, date(2024, time.March, 5), date(2024, time.March, 11))
	requireDue(t, r, date(2024, time.March, 11), date(2024, time.March, 21))
}

func TestInterval_FourWeeklySteps(t *testing.T) {
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitWeekly,
		Every: 4,
		Start: date(2024, time.February, 1),
	}
	requireDue(t, r, date(2024, time.February, 2), date(2024, time.February, 29))
	requireDue(t, r, date(2024, time.March, 1), date(2024, time.March, 28))
}

func TestInterval_MonthlyUsesCalendarMonths(t *testing.T) {
	// Interval-monthly is month-stepped, not a 30-day approximation.
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitMonthly,
		Every: 1,
		Start: date(2024, time.January, 31),
	}
	requireDue(t, r, date(2024, time.February, 1), date(2024, time.February, 29))
	requireDue(t, r, date(2024, time.February, 29), date(2024, time.March, 31))
}

func TestInterval_QuarterlyApproximatesNinetyOneDays(t *testing.T) {
	// Interval quarters are a fixed 91 days, an intentional approximation.
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitQuarterly,
		Every: 1,
		Start: date(2024, time.January, 1),
	}
	requireDue(t, r, date(2024, time.January, 2), date(2024, time.April, 1))
}

func TestInterval_YearlyApproximatesThreeSixtyFiveDays(t *testing.T) {
	// 2024 has 366 days, so a "yearly" interval lands one day early.
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitYearly,
		Every: 1,
		Start: date(2024, time.January, 1),
	}
	requireDue(t, r, date(2024, time.June, 1), date(2024, time.December, 31))
}

// =============================================================================
// BOUNDARIES
// =============================================================================

func TestNextDue_EndDateExhaustsRule(t *testing.T) {
	end := date(2024, time.February, 28)
	r := monthlyCalendar(date(2024, time.January, 15))
	r.End = &end

	requireDue(t, r, date(2024, time.January, 20), date(2024, time.February, 15))
	requireExhausted(t, r, date(2024, time.February, 20))
}

func TestNextDue_NeverReturnsDateAtOrBeforeQuery(t *testing.T) {
	r := monthlyCalendar(date(2024, time.January, 15))
	after := date(2024, time.January, 16)
	for i := 0; i < 24; i++ {
		got, ok := r.NextDue(after)
		if !ok {
			t.Fatalf("rule exhausted unexpectedly at %s", after)
		}
		if !got.After(after) {
			t.Fatalf("NextDue(%s) = %s, not strictly after", after, got)
		}
		after = got
	}
}

func TestNextDue_ZeroEveryIntervalIsInert(t *testing.T) {
	r := schedule.Recurrence{
		Kind:  schedule.KindInterval,
		Unit:  schedule.UnitDaily,
		Every: 0,
		Start: date(2024, time.January, 1),
	}
	requireExhausted(t, r, date(2024, time.January, 2))

	if err := r.Validate(); !errors.Is(err, schedule.ErrInvalidRecurrence) {
		t.Errorf("Validate() = %v, want ErrInvalidRecurrence", err)
	}
}

func TestNextDue_MissingStartIsInert(t *testing.T) {
	r := schedule.Recurrence{Kind: schedule.KindCalendar, Unit: schedule.UnitMonthly}
	requireExhausted(t, r, date(2024, time.January, 2))
}

func TestValidate_AcceptsWellFormedRules(t *testing.T) {
	r := monthlyCalendar(date(2024, time.January, 15))
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
