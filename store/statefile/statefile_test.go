package statefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/warp/cashflow-engine/schedule"
	"github.com/warp/cashflow-engine/store"
	"github.com/warp/cashflow-engine/store/statefile"
)

const sampleState = `
bills:
  - name: Rent
    price_history:
      - amount: 1200
        start_date: 2024-01-15
        recurrence:
          kind: calendar
          unit: monthly
          start: 2024-01-15
      - amount: 1300
        start_date: 2024-07-01
        recurrence:
          kind: calendar
          unit: monthly
          start: 2024-07-15
    share:
      exclude: [Carol]
      custom:
        Alice: 70
payees:
  - name: Alice
    pay_schedules:
      - amount: 3000
        description: Salary
        weekend_adjustment: last_working_day
        recurrence:
          kind: calendar
          unit: monthly
          start: 2024-01-25
  - name: Bob
    start_date: 2024-03-01
    pay_schedules:
      - amount: 500
        contribution_percentage: 40
        recurrence:
          kind: interval
          unit: weekly
          every: 4
          start: 2024-03-08
options:
  cutoff_day: 26
  weekend_adjustment: next_working_day
  projection_months: 6
`

const legacyState = `
bills:
  - name: Internet
    amount: 45.5
    recurrence:
      kind: calendar
      unit: monthly
      start: 2024-02-01
    share:
      - payee: Alice
        percentage: 60
      - payee: Bob
        percentage: 40
`

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshot_CurrentLayout(t *testing.T) {
	snap, err := statefile.LoadSnapshot(writeState(t, sampleState))
	require.NoError(t, err)

	require.Len(t, snap.Bills, 1)
	rent := snap.Bills[0]
	require.Len(t, rent.PriceHistory, 2)

	// Price resolution follows the history dates.
	amount, ok := rent.AmountAt(schedule.NewDate(2024, 3, 1))
	require.True(t, ok)
	require.True(t, amount.Equal(schedule.Money(1200)))
	amount, ok = rent.AmountAt(schedule.NewDate(2024, 8, 1))
	require.True(t, ok)
	require.True(t, amount.Equal(schedule.Money(1300)))

	require.True(t, rent.Share.Excludes("Carol"))
	require.True(t, rent.Share.Custom["Alice"].Equal(schedule.Money(70)))

	require.Len(t, snap.Payees, 2)
	bob := snap.Payees[1]
	require.NotNil(t, bob.StartDate)
	require.Equal(t, "2024-03-01", bob.StartDate.String())
	require.NotNil(t, bob.PaySchedules[0].ContributionPercent)
	require.Equal(t, schedule.ShiftToLastWorkingDay, snap.Payees[0].PaySchedules[0].WeekendShift)

	require.Equal(t, 26, snap.Options.CutoffDay)
	require.Equal(t, schedule.ShiftToNextWorkingDay, snap.Options.WeekendShift)
	require.Equal(t, 6, snap.Options.ProjectionMonths)
}

func TestLoadSnapshot_LegacyBillAndShareList(t *testing.T) {
	// GIVEN: the old layout with a flat amount and a list-form share
	snap, err := statefile.LoadSnapshot(writeState(t, legacyState))
	require.NoError(t, err)

	require.Len(t, snap.Bills, 1)
	internet := snap.Bills[0]

	// THEN: the flat amount becomes a single-entry price history
	require.Len(t, internet.PriceHistory, 1)
	amount, ok := internet.AmountAt(schedule.NewDate(2024, 2, 1))
	require.True(t, ok)
	require.True(t, amount.Equal(schedule.Money(45.5)))

	// AND: the share list becomes the custom-percentage map
	require.True(t, internet.Share.Custom["Alice"].Equal(schedule.Money(60)))
	require.True(t, internet.Share.Custom["Bob"].Equal(schedule.Money(40)))
}

func TestLoadSnapshot_MissingFileYieldsEmpty(t *testing.T) {
	snap, err := statefile.LoadSnapshot(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Empty(t, snap.Bills)
	require.Empty(t, snap.Payees)
	require.Equal(t, schedule.DefaultCutoffDay, snap.Options.CutoffDay)
}

func TestLoadSnapshot_MalformedYAML(t *testing.T) {
	_, err := statefile.LoadSnapshot(writeState(t, "bills: [unclosed"))
	require.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	original, err := statefile.Load(writeState(t, sampleState))
	require.NoError(t, err)
	require.NoError(t, statefile.Save(path, original))

	reloaded, err := statefile.Load(path)
	require.NoError(t, err)

	origSnap, err := original.ToDomain()
	require.NoError(t, err)
	reloadedSnap, err := reloaded.ToDomain()
	require.NoError(t, err)

	require.Equal(t, len(origSnap.Bills), len(reloadedSnap.Bills))
	require.Equal(t, len(origSnap.Payees), len(reloadedSnap.Payees))
	require.Equal(t, origSnap.Options, reloadedSnap.Options)
}

func TestSave_EmitsCurrentLayout(t *testing.T) {
	// A legacy file saved back comes out in the current layout.
	legacy, err := statefile.Load(writeState(t, legacyState))
	require.NoError(t, err)
	snap, err := legacy.ToDomain()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, statefile.SaveSnapshot(path, snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "price_history")
	require.NotContains(t, string(data), "percentage:")

	var record store.SnapshotRecord
	require.NoError(t, yaml.Unmarshal(data, &record))
	require.Len(t, record.Bills, 1)
	require.Len(t, record.Bills[0].PriceHistory, 1)
}
