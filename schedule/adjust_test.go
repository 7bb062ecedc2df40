package schedule_test

import (
	"testing"
	"time"

	"github.com/warp/cashflow-engine/schedule"
)

func TestAdjustWeekend_ShiftsBackToFriday(t *testing.T) {
	// 2024-06-15 is a Saturday, 2024-06-16 a Sunday.
	sat := date(2024, time.June, 15)
	sun := date(2024, time.June, 16)
	fri := date(2024, time.June, 14)

	if got := schedule.AdjustWeekend(sat, schedule.ShiftToLastWorkingDay); !got.Equal(fri) {
		t.Errorf("Saturday: got %s, want %s", got, fri)
	}
	if got := schedule.AdjustWeekend(sun, schedule.ShiftToLastWorkingDay); !got.Equal(fri) {
		t.Errorf("Sunday: got %s, want %s", got, fri)
	}
}

func TestAdjustWeekend_ShiftsForwardToMonday(t *testing.T) {
	sat := date(2024, time.June, 15)
	sun := date(2024, time.June, 16)
	mon := date(2024, time.June, 17)

	if got := schedule.AdjustWeekend(sat, schedule.ShiftToNextWorkingDay); !got.Equal(mon) {
		t.Errorf("Saturday: got %s, want %s", got, mon)
	}
	if got := schedule.AdjustWeekend(sun, schedule.ShiftToNextWorkingDay); !got.Equal(mon) {
		t.Errorf("Sunday: got %s, want %s", got, mon)
	}
}

func TestAdjustWeekend_WeekdaysPassThrough(t *testing.T) {
	for day := 10; day <= 14; day++ { // Mon 2024-06-10 .. Fri 2024-06-14
		d := date(2024, time.June, day)
		if got := schedule.AdjustWeekend(d, schedule.ShiftToLastWorkingDay); !got.Equal(d) {
			t.Errorf("%s (weekday) was adjusted to %s", d, got)
		}
	}
}

func TestAdjustWeekend_Idempotent(t *testing.T) {
	// adjust(adjust(d)) == adjust(d) for every day of a full week and both
	// strategies: adjusted dates are fixed points.
	strategies := []schedule.WeekendShift{
		schedule.ShiftToLastWorkingDay,
		schedule.ShiftToNextWorkingDay,
	}
	for _, s := range strategies {
		for day := 10; day <= 16; day++ {
			d := date(2024, time.June, day)
			once := schedule.AdjustWeekend(d, s)
			twice := schedule.AdjustWeekend(once, s)
			if !twice.Equal(once) {
				t.Errorf("strategy %s: adjust(adjust(%s)) = %s, want %s", s, d, twice, once)
			}
		}
	}
}

func TestAdjustWeekend_UnsetStrategyDefaultsToLastWorkingDay(t *testing.T) {
	sat := date(2024, time.June, 15)
	fri := date(2024, time.June, 14)
	if got := schedule.AdjustWeekend(sat, ""); !got.Equal(fri) {
		t.Errorf("got %s, want %s", got, fri)
	}
}
