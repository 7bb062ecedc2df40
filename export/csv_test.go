package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/warp/cashflow-engine/export"
	"github.com/warp/cashflow-engine/schedule"
)

func TestWriteSchedule(t *testing.T) {
	bills := []schedule.Bill{
		schedule.NewBill("Rent", schedule.Money(1200), schedule.Recurrence{
			Kind:  schedule.KindCalendar,
			Unit:  schedule.UnitMonthly,
			Start: schedule.NewDate(2024, time.March, 15),
		}),
	}
	payees := []schedule.Payee{{
		Name: "Alice",
		PaySchedules: []schedule.PaySchedule{{
			Amount:      schedule.Money(3000),
			Description: "Salary",
			Recurrence: schedule.Recurrence{
				Kind:  schedule.KindCalendar,
				Unit:  schedule.UnitMonthly,
				Start: schedule.NewDate(2024, time.February, 15),
			},
		}},
	}}
	snap := schedule.Snapshot{Bills: bills, Payees: payees, Options: schedule.DefaultOptions()}
	result := schedule.NewScheduler(snap).ProportionalContributions(3, 2024, 1)

	var buf strings.Builder
	if err := export.WriteSchedule(&buf, result); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "payee_name,schedule_description,income_amount,required_contribution,contribution_percentage,payment_date,is_before_cutoff" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "Alice,Salary,3000.00,1200.00,40.0%,2024-02-15,true" {
		t.Errorf("unexpected item row: %s", lines[1])
	}
	if !strings.Contains(out, "month,year,total_bills") {
		t.Error("missing monthly totals header")
	}
	if !strings.Contains(out, "3,2024,1200.00") {
		t.Errorf("missing monthly total row in:\n%s", out)
	}
}

func TestWriteSchedule_EmptyResult(t *testing.T) {
	var buf strings.Builder
	if err := export.WriteSchedule(&buf, schedule.PaymentScheduleResult{}); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "payee_name,") {
		t.Errorf("header missing: %s", buf.String())
	}
}
