/*
Package export renders projection results as CSV for spreadsheet import.

The output has two sections: one row per contribution item, then a blank
line and one row per monthly bill total. Amounts are formatted with two
decimals and percentages with one, matching what the schedule endpoints
display.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/cashflow-engine/schedule"
)

var itemHeader = []string{
	"payee_name",
	"schedule_description",
	"income_amount",
	"required_contribution",
	"contribution_percentage",
	"payment_date",
	"is_before_cutoff",
}

var totalHeader = []string{"month", "year", "total_bills"}

// WriteSchedule renders a projection result as CSV.
func WriteSchedule(w io.Writer, result schedule.PaymentScheduleResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(itemHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range result.ScheduleItems {
		row := []string{
			item.PayeeName,
			item.ScheduleDescription,
			item.IncomeAmount.StringFixed(2),
			item.RequiredContribution.StringFixed(2),
			item.ContributionPercent.StringFixed(1) + "%",
			item.PaymentDate.String(),
			fmt.Sprintf("%t", item.IsBeforeCutoff),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	// Blank separator line between the two sections.
	if err := cw.Write([]string{""}); err != nil {
		return err
	}
	if err := cw.Write(totalHeader); err != nil {
		return err
	}
	for _, monthly := range result.MonthlyBillTotals {
		row := []string{
			fmt.Sprintf("%d", monthly.Month),
			fmt.Sprintf("%d", monthly.Year),
			monthly.TotalBills.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
