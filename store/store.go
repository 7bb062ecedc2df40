/*
Package store defines the wire representation of the household configuration.

PURPOSE:
  The engine works on decimal amounts and day-granularity dates; files and
  database columns work on floats and "YYYY-MM-DD" strings. This package owns
  the records serialized to YAML state files and SQLite JSON columns, and the
  conversion to and from the engine's Snapshot.

LEGACY FORMS:
  Two older layouts are still accepted on read and normalized on conversion:
  - A bill with a top-level amount and recurrence instead of a price history
    becomes a single-entry history starting at the recurrence start.
  - A share given as a list of {payee, percentage} entries becomes the
    custom-percentage map.
  Writes always emit the current layout.

SEE ALSO:
  - store/statefile: YAML file persistence
  - store/sqlite: database persistence
  - schedule: the domain types these records mirror
*/
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/cashflow-engine/schedule"
)

// ErrNotFound is returned when a named bill or payee does not exist.
var ErrNotFound = errors.New("not found")

// =============================================================================
// WIRE RECORDS
// =============================================================================

// RecurrenceRecord is the serialized form of a recurrence rule. Dates are
// "YYYY-MM-DD" strings; an empty end means open-ended.
type RecurrenceRecord struct {
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Every int    `json:"every,omitempty" yaml:"every,omitempty"`
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// PricePointRecord is one dated entry of a bill's price history.
type PricePointRecord struct {
	Amount     float64          `json:"amount" yaml:"amount"`
	Recurrence RecurrenceRecord `json:"recurrence" yaml:"recurrence"`
	StartDate  string           `json:"start_date,omitempty" yaml:"start_date,omitempty"`
}

// ShareRecord is a bill's cost-sharing configuration. It unmarshals from
// either the current {exclude, custom} mapping or the legacy list of
// {payee, percentage} entries.
type ShareRecord struct {
	Exclude []string           `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Custom  map[string]float64 `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// legacyShareEntry is one element of the legacy list form.
type legacyShareEntry struct {
	Payee      string  `json:"payee" yaml:"payee"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// shareFields mirrors ShareRecord without its unmarshal methods so the
// current form can be decoded without recursing.
type shareFields struct {
	Exclude []string           `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Custom  map[string]float64 `json:"custom,omitempty" yaml:"custom,omitempty"`
}

func (r *ShareRecord) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var entries []legacyShareEntry
		if err := node.Decode(&entries); err != nil {
			return err
		}
		r.fromLegacy(entries)
		return nil
	}
	var fields shareFields
	if err := node.Decode(&fields); err != nil {
		return err
	}
	r.Exclude, r.Custom = fields.Exclude, fields.Custom
	return nil
}

func (r *ShareRecord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var entries []legacyShareEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		r.fromLegacy(entries)
		return nil
	}
	var fields shareFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Exclude, r.Custom = fields.Exclude, fields.Custom
	return nil
}

func (r *ShareRecord) fromLegacy(entries []legacyShareEntry) {
	r.Custom = make(map[string]float64, len(entries))
	for _, e := range entries {
		r.Custom[e.Payee] = e.Percentage
	}
}

// BillRecord is the serialized form of a bill. Amount and Recurrence are the
// legacy single-price layout; PriceHistory is the current one. Exactly one of
// the two should be populated.
type BillRecord struct {
	Name         string             `json:"name" yaml:"name"`
	Description  string             `json:"description,omitempty" yaml:"description,omitempty"`
	Amount       float64            `json:"amount,omitempty" yaml:"amount,omitempty"`
	Recurrence   *RecurrenceRecord  `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	PriceHistory []PricePointRecord `json:"price_history,omitempty" yaml:"price_history,omitempty"`
	Share        *ShareRecord       `json:"share,omitempty" yaml:"share,omitempty"`
}

// PayScheduleRecord is one serialized income stream.
type PayScheduleRecord struct {
	Amount                 float64          `json:"amount,omitempty" yaml:"amount,omitempty"`
	Recurrence             RecurrenceRecord `json:"recurrence" yaml:"recurrence"`
	Description            string           `json:"description,omitempty" yaml:"description,omitempty"`
	WeekendAdjustment      string           `json:"weekend_adjustment,omitempty" yaml:"weekend_adjustment,omitempty"`
	ContributionPercentage *float64         `json:"contribution_percentage,omitempty" yaml:"contribution_percentage,omitempty"`
}

// PayeeRecord is the serialized form of a payee.
type PayeeRecord struct {
	Name                   string              `json:"name" yaml:"name"`
	Description            string              `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate              string              `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DefaultSharePercentage *float64            `json:"default_share_percentage,omitempty" yaml:"default_share_percentage,omitempty"`
	PaySchedules           []PayScheduleRecord `json:"pay_schedules,omitempty" yaml:"pay_schedules,omitempty"`
}

// OptionsRecord is the serialized run configuration.
type OptionsRecord struct {
	CutoffDay         int    `json:"cutoff_day,omitempty" yaml:"cutoff_day,omitempty"`
	WeekendAdjustment string `json:"weekend_adjustment,omitempty" yaml:"weekend_adjustment,omitempty"`
	ProjectionMonths  int    `json:"projection_months,omitempty" yaml:"projection_months,omitempty"`
}

// SnapshotRecord is the full serialized household: the root document of a
// state file and the unit loaded from the database.
type SnapshotRecord struct {
	Bills   []BillRecord   `json:"bills,omitempty" yaml:"bills,omitempty"`
	Payees  []PayeeRecord  `json:"payees,omitempty" yaml:"payees,omitempty"`
	Options *OptionsRecord `json:"options,omitempty" yaml:"options,omitempty"`
}

// =============================================================================
// WIRE -> DOMAIN
// =============================================================================

func (r RecurrenceRecord) ToDomain() (schedule.Recurrence, error) {
	rec := schedule.Recurrence{
		Kind:  schedule.RecurrenceKind(r.Kind),
		Unit:  schedule.RecurrenceUnit(r.Unit),
		Every: r.Every,
	}
	if r.Start != "" {
		start, err := schedule.ParseDate(r.Start)
		if err != nil {
			return schedule.Recurrence{}, fmt.Errorf("recurrence start: %w", err)
		}
		rec.Start = start
	}
	if r.End != "" {
		end, err := schedule.ParseDate(r.End)
		if err != nil {
			return schedule.Recurrence{}, fmt.Errorf("recurrence end: %w", err)
		}
		rec.End = &end
	}
	return rec, nil
}

func (r BillRecord) ToDomain() (schedule.Bill, error) {
	bill := schedule.Bill{Name: r.Name, Description: r.Description}

	history := r.PriceHistory
	if len(history) == 0 && r.Recurrence != nil {
		// Legacy single-price layout.
		history = []PricePointRecord{{
			Amount:     r.Amount,
			Recurrence: *r.Recurrence,
			StartDate:  r.Recurrence.Start,
		}}
	}
	for _, pp := range history {
		rec, err := pp.Recurrence.ToDomain()
		if err != nil {
			return schedule.Bill{}, fmt.Errorf("bill %q: %w", r.Name, err)
		}
		start := rec.Start
		if pp.StartDate != "" {
			start, err = schedule.ParseDate(pp.StartDate)
			if err != nil {
				return schedule.Bill{}, fmt.Errorf("bill %q price start: %w", r.Name, err)
			}
		}
		bill.PriceHistory = append(bill.PriceHistory, schedule.PricePoint{
			Amount:     schedule.Money(pp.Amount),
			Recurrence: rec,
			StartDate:  start,
		})
	}

	if r.Share != nil {
		bill.Share.Exclude = r.Share.Exclude
		if len(r.Share.Custom) > 0 {
			bill.Share.Custom = make(map[string]decimal.Decimal, len(r.Share.Custom))
			for name, pct := range r.Share.Custom {
				bill.Share.Custom[name] = schedule.Money(pct)
			}
		}
	}
	return bill, nil
}

func (r PayScheduleRecord) ToDomain() (schedule.PaySchedule, error) {
	rec, err := r.Recurrence.ToDomain()
	if err != nil {
		return schedule.PaySchedule{}, err
	}
	ps := schedule.PaySchedule{
		Amount:       schedule.Money(r.Amount),
		Recurrence:   rec,
		Description:  r.Description,
		WeekendShift: schedule.WeekendShift(r.WeekendAdjustment),
	}
	if r.ContributionPercentage != nil {
		pct := schedule.Money(*r.ContributionPercentage)
		ps.ContributionPercent = &pct
	}
	return ps, nil
}

func (r PayeeRecord) ToDomain() (schedule.Payee, error) {
	p := schedule.Payee{Name: r.Name, Description: r.Description}
	if r.StartDate != "" {
		start, err := schedule.ParseDate(r.StartDate)
		if err != nil {
			return schedule.Payee{}, fmt.Errorf("payee %q start date: %w", r.Name, err)
		}
		p.StartDate = &start
	}
	if r.DefaultSharePercentage != nil {
		pct := schedule.Money(*r.DefaultSharePercentage)
		p.DefaultSharePercent = &pct
	}
	for i, ps := range r.PaySchedules {
		dps, err := ps.ToDomain()
		if err != nil {
			return schedule.Payee{}, fmt.Errorf("payee %q schedule %d: %w", r.Name, i, err)
		}
		p.PaySchedules = append(p.PaySchedules, dps)
	}
	return p, nil
}

func (r OptionsRecord) ToDomain() schedule.Options {
	opts := schedule.DefaultOptions()
	if r.CutoffDay > 0 {
		opts.CutoffDay = r.CutoffDay
	}
	if r.WeekendAdjustment != "" {
		opts.WeekendShift = schedule.WeekendShift(r.WeekendAdjustment)
	}
	if r.ProjectionMonths > 0 {
		opts.ProjectionMonths = r.ProjectionMonths
	}
	return opts
}

// ToDomain converts the full record set into an engine snapshot, applying
// defaults for absent options.
func (r SnapshotRecord) ToDomain() (schedule.Snapshot, error) {
	snap := schedule.Snapshot{Options: schedule.DefaultOptions()}
	for _, b := range r.Bills {
		bill, err := b.ToDomain()
		if err != nil {
			return schedule.Snapshot{}, err
		}
		snap.Bills = append(snap.Bills, bill)
	}
	for _, p := range r.Payees {
		payee, err := p.ToDomain()
		if err != nil {
			return schedule.Snapshot{}, err
		}
		snap.Payees = append(snap.Payees, payee)
	}
	if r.Options != nil {
		snap.Options = r.Options.ToDomain()
	}
	return snap, nil
}

// =============================================================================
// DOMAIN -> WIRE
// =============================================================================

func RecurrenceFromDomain(rec schedule.Recurrence) RecurrenceRecord {
	r := RecurrenceRecord{
		Kind:  string(rec.Kind),
		Unit:  string(rec.Unit),
		Every: rec.Every,
	}
	if !rec.Start.IsZero() {
		r.Start = rec.Start.String()
	}
	if rec.End != nil {
		r.End = rec.End.String()
	}
	return r
}

func BillFromDomain(bill schedule.Bill) BillRecord {
	r := BillRecord{Name: bill.Name, Description: bill.Description}
	for _, pp := range bill.PriceHistory {
		r.PriceHistory = append(r.PriceHistory, PricePointRecord{
			Amount:     pp.Amount.InexactFloat64(),
			Recurrence: RecurrenceFromDomain(pp.Recurrence),
			StartDate:  pp.StartDate.String(),
		})
	}
	if bill.Share.HasConfig() {
		share := &ShareRecord{Exclude: bill.Share.Exclude}
		if len(bill.Share.Custom) > 0 {
			share.Custom = make(map[string]float64, len(bill.Share.Custom))
			for name, pct := range bill.Share.Custom {
				share.Custom[name] = pct.InexactFloat64()
			}
		}
		r.Share = share
	}
	return r
}

func PayeeFromDomain(p schedule.Payee) PayeeRecord {
	r := PayeeRecord{Name: p.Name, Description: p.Description}
	if p.StartDate != nil {
		r.StartDate = p.StartDate.String()
	}
	if p.DefaultSharePercent != nil {
		pct := p.DefaultSharePercent.InexactFloat64()
		r.DefaultSharePercentage = &pct
	}
	for _, ps := range p.PaySchedules {
		rec := PayScheduleRecord{
			Amount:            ps.Amount.InexactFloat64(),
			Recurrence:        RecurrenceFromDomain(ps.Recurrence),
			Description:       ps.Description,
			WeekendAdjustment: string(ps.WeekendShift),
		}
		if ps.ContributionPercent != nil {
			pct := ps.ContributionPercent.InexactFloat64()
			rec.ContributionPercentage = &pct
		}
		r.PaySchedules = append(r.PaySchedules, rec)
	}
	return r
}

func OptionsFromDomain(o schedule.Options) OptionsRecord {
	return OptionsRecord{
		CutoffDay:         o.CutoffDay,
		WeekendAdjustment: string(o.WeekendShift),
		ProjectionMonths:  o.ProjectionMonths,
	}
}

func SnapshotFromDomain(snap schedule.Snapshot) SnapshotRecord {
	r := SnapshotRecord{}
	for _, b := range snap.Bills {
		r.Bills = append(r.Bills, BillFromDomain(b))
	}
	for _, p := range snap.Payees {
		r.Payees = append(r.Payees, PayeeFromDomain(p))
	}
	opts := OptionsFromDomain(snap.Options)
	r.Options = &opts
	return r
}
