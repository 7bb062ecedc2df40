package store_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warp/cashflow-engine/schedule"
	"github.com/warp/cashflow-engine/store"
)

func TestShareRecord_UnmarshalJSONCurrentForm(t *testing.T) {
	var share store.ShareRecord
	require.NoError(t, json.Unmarshal(
		[]byte(`{"exclude":["Carol"],"custom":{"Alice":70}}`), &share))
	require.Equal(t, []string{"Carol"}, share.Exclude)
	require.Equal(t, 70.0, share.Custom["Alice"])
}

func TestShareRecord_UnmarshalJSONLegacyList(t *testing.T) {
	var share store.ShareRecord
	require.NoError(t, json.Unmarshal(
		[]byte(`[{"payee":"Alice","percentage":60},{"payee":"Bob","percentage":40}]`), &share))
	require.Equal(t, 60.0, share.Custom["Alice"])
	require.Equal(t, 40.0, share.Custom["Bob"])
	require.Empty(t, share.Exclude)
}

func TestShareRecord_MarshalRoundTrip(t *testing.T) {
	original := store.ShareRecord{Exclude: []string{"Carol"}, Custom: map[string]float64{"Alice": 70}}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded store.ShareRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, original, decoded)
}

func TestBillRecord_ToDomainLegacyLayout(t *testing.T) {
	record := store.BillRecord{
		Name:   "Internet",
		Amount: 45.5,
		Recurrence: &store.RecurrenceRecord{
			Kind: "calendar", Unit: "monthly", Start: "2024-02-01",
		},
	}

	bill, err := record.ToDomain()
	require.NoError(t, err)
	require.Len(t, bill.PriceHistory, 1)
	require.True(t, bill.PriceHistory[0].Amount.Equal(schedule.Money(45.5)))
	require.Equal(t, "2024-02-01", bill.PriceHistory[0].StartDate.String())
}

func TestBillRecord_ToDomainRejectsBadDates(t *testing.T) {
	record := store.BillRecord{
		Name: "Rent",
		PriceHistory: []store.PricePointRecord{{
			Amount:     1200,
			Recurrence: store.RecurrenceRecord{Kind: "calendar", Start: "not-a-date"},
		}},
	}
	_, err := record.ToDomain()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Rent")
}

func TestPayeeRecord_ToDomain(t *testing.T) {
	share := 40.0
	pct := 100.0
	record := store.PayeeRecord{
		Name:                   "Bob",
		StartDate:              "2024-03-01",
		DefaultSharePercentage: &share,
		PaySchedules: []store.PayScheduleRecord{{
			Amount:                 500,
			WeekendAdjustment:      "next_working_day",
			ContributionPercentage: &pct,
			Recurrence: store.RecurrenceRecord{
				Kind: "interval", Unit: "weekly", Every: 4, Start: "2024-03-08",
			},
		}},
	}

	payee, err := record.ToDomain()
	require.NoError(t, err)
	require.NotNil(t, payee.StartDate)
	require.False(t, payee.ActiveInMonth(2, 2024))
	require.True(t, payee.ActiveInMonth(3, 2024))
	require.True(t, payee.DefaultSharePercent.Equal(schedule.Money(40)))

	ps := payee.PaySchedules[0]
	require.Equal(t, schedule.ShiftToNextWorkingDay, ps.WeekendShift)
	require.NotNil(t, ps.ContributionPercent)
	require.Equal(t, 4, ps.Recurrence.Every)
}

func TestSnapshotRecord_ToDomainDefaultsOptions(t *testing.T) {
	snap, err := store.SnapshotRecord{}.ToDomain()
	require.NoError(t, err)
	require.Equal(t, schedule.DefaultOptions(), snap.Options)
}

func TestSnapshotRoundTripThroughWireForm(t *testing.T) {
	end := schedule.NewDate(2025, 1, 31)
	pct := schedule.Money(40)
	domain := schedule.Snapshot{
		Bills: []schedule.Bill{{
			Name: "Rent",
			PriceHistory: []schedule.PricePoint{{
				Amount:    schedule.Money(1200),
				StartDate: schedule.NewDate(2024, 1, 15),
				Recurrence: schedule.Recurrence{
					Kind:  schedule.KindCalendar,
					Unit:  schedule.UnitMonthly,
					Start: schedule.NewDate(2024, 1, 15),
					End:   &end,
				},
			}},
			Share: schedule.BillShare{Exclude: []string{"Carol"}},
		}},
		Payees: []schedule.Payee{{
			Name: "Alice",
			PaySchedules: []schedule.PaySchedule{{
				Amount:              schedule.Money(3000),
				ContributionPercent: &pct,
				Recurrence: schedule.Recurrence{
					Kind:  schedule.KindCalendar,
					Unit:  schedule.UnitMonthly,
					Start: schedule.NewDate(2024, 1, 25),
				},
			}},
		}},
		Options: schedule.DefaultOptions(),
	}

	restored, err := store.SnapshotFromDomain(domain).ToDomain()
	require.NoError(t, err)

	require.Len(t, restored.Bills, 1)
	rec := restored.Bills[0].PriceHistory[0].Recurrence
	require.NotNil(t, rec.End)
	require.Equal(t, "2025-01-31", rec.End.String())
	require.True(t, restored.Bills[0].Share.Excludes("Carol"))

	got := restored.Payees[0].PaySchedules[0]
	require.True(t, got.Amount.Equal(schedule.Money(3000)))
	require.NotNil(t, got.ContributionPercent)
	require.True(t, got.ContributionPercent.Equal(pct))
	require.Equal(t, domain.Options, restored.Options)
}
