/*
Package sqlite provides SQLite-backed persistence for the household
configuration.

PURPOSE:
  Stores bills, payees, and run options so the HTTP API can mutate them
  independently. Structured sub-documents (price histories, pay schedules,
  share rules) are kept as JSON columns; the engine never queries inside
  them, it always loads the full household before projecting.

KEY TABLES:
  bills:   one row per bill, unique by name, price history and share as JSON
  payees:  one row per payee, unique by name, pay schedules as JSON
  options: single-row run configuration

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers do not block each other.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store: the wire records serialized into the JSON columns
  - store/statefile: the YAML counterpart used for seeding
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/cashflow-engine/schedule"
	"github.com/warp/cashflow-engine/store"
)

// Store persists the household configuration in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at the given path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		price_history_json TEXT NOT NULL,
		share_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		start_date TEXT,
		default_share_percentage REAL,
		pay_schedules_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single-row run configuration; id is pinned to 1.
	CREATE TABLE IF NOT EXISTS options (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		cutoff_day INTEGER NOT NULL,
		weekend_adjustment TEXT NOT NULL,
		projection_months INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BILLS
// =============================================================================

// SaveBill inserts or updates a bill by name.
func (s *Store) SaveBill(ctx context.Context, bill store.BillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveBill(ctx, s.db, bill)
}

func saveBill(ctx context.Context, db execer, bill store.BillRecord) error {
	historyJSON, err := json.Marshal(normalizedHistory(bill))
	if err != nil {
		return fmt.Errorf("encode price history: %w", err)
	}
	shareJSON, err := marshalShare(bill.Share)
	if err != nil {
		return fmt.Errorf("encode share: %w", err)
	}

	query := `
		INSERT INTO bills (id, name, description, price_history_json, share_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			price_history_json = excluded.price_history_json,
			share_json = excluded.share_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, query,
		uuid.NewString(), bill.Name, bill.Description,
		string(historyJSON), shareJSON, now, now,
	)
	return err
}

// GetBill retrieves a bill by name. Returns store.ErrNotFound when absent.
func (s *Store) GetBill(ctx context.Context, name string) (store.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT name, description, price_history_json, share_json FROM bills WHERE name = ?",
		name,
	)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return store.BillRecord{}, fmt.Errorf("bill %q: %w", name, store.ErrNotFound)
	}
	return bill, err
}

// ListBills returns all bills ordered by name.
func (s *Store) ListBills(ctx context.Context) ([]store.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listBills(ctx)
}

func (s *Store) listBills(ctx context.Context) ([]store.BillRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, description, price_history_json, share_json FROM bills ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []store.BillRecord
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// DeleteBill removes a bill by name. Returns store.ErrNotFound when absent.
func (s *Store) DeleteBill(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %q: %w", name, store.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// execer abstracts *sql.DB and *sql.Tx so the save helpers can run either
// directly or inside the seeding transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanBill(row rowScanner) (store.BillRecord, error) {
	var bill store.BillRecord
	var description, historyJSON, shareJSON sql.NullString

	if err := row.Scan(&bill.Name, &description, &historyJSON, &shareJSON); err != nil {
		return bill, err
	}
	bill.Description = description.String

	if historyJSON.Valid && historyJSON.String != "" {
		if err := json.Unmarshal([]byte(historyJSON.String), &bill.PriceHistory); err != nil {
			return bill, fmt.Errorf("decode price history for %q: %w", bill.Name, err)
		}
	}
	if shareJSON.Valid && shareJSON.String != "" {
		var share store.ShareRecord
		if err := json.Unmarshal([]byte(shareJSON.String), &share); err != nil {
			return bill, fmt.Errorf("decode share for %q: %w", bill.Name, err)
		}
		bill.Share = &share
	}
	return bill, nil
}

// normalizedHistory folds the legacy flat amount layout into a price history
// so the database only ever stores the current form.
func normalizedHistory(bill store.BillRecord) []store.PricePointRecord {
	if len(bill.PriceHistory) > 0 {
		return bill.PriceHistory
	}
	if bill.Recurrence == nil {
		return nil
	}
	return []store.PricePointRecord{{
		Amount:     bill.Amount,
		Recurrence: *bill.Recurrence,
		StartDate:  bill.Recurrence.Start,
	}}
}

// =============================================================================
// PAYEES
// =============================================================================

// SavePayee inserts or updates a payee by name.
func (s *Store) SavePayee(ctx context.Context, payee store.PayeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return savePayee(ctx, s.db, payee)
}

func savePayee(ctx context.Context, db execer, payee store.PayeeRecord) error {
	schedulesJSON, err := json.Marshal(payee.PaySchedules)
	if err != nil {
		return fmt.Errorf("encode pay schedules: %w", err)
	}

	var defaultShare sql.NullFloat64
	if payee.DefaultSharePercentage != nil {
		defaultShare = sql.NullFloat64{Float64: *payee.DefaultSharePercentage, Valid: true}
	}

	query := `
		INSERT INTO payees (id, name, description, start_date, default_share_percentage, pay_schedules_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			start_date = excluded.start_date,
			default_share_percentage = excluded.default_share_percentage,
			pay_schedules_json = excluded.pay_schedules_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, query,
		uuid.NewString(), payee.Name, payee.Description,
		nullString(payee.StartDate), defaultShare, string(schedulesJSON),
		now, now,
	)
	return err
}

// GetPayee retrieves a payee by name. Returns store.ErrNotFound when absent.
func (s *Store) GetPayee(ctx context.Context, name string) (store.PayeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT name, description, start_date, default_share_percentage, pay_schedules_json FROM payees WHERE name = ?",
		name,
	)
	payee, err := scanPayee(row)
	if err == sql.ErrNoRows {
		return store.PayeeRecord{}, fmt.Errorf("payee %q: %w", name, store.ErrNotFound)
	}
	return payee, err
}

// ListPayees returns all payees ordered by name.
func (s *Store) ListPayees(ctx context.Context) ([]store.PayeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listPayees(ctx)
}

func (s *Store) listPayees(ctx context.Context) ([]store.PayeeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, description, start_date, default_share_percentage, pay_schedules_json FROM payees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payees []store.PayeeRecord
	for rows.Next() {
		payee, err := scanPayee(rows)
		if err != nil {
			return nil, err
		}
		payees = append(payees, payee)
	}
	return payees, rows.Err()
}

// DeletePayee removes a payee by name. Returns store.ErrNotFound when absent.
func (s *Store) DeletePayee(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM payees WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("payee %q: %w", name, store.ErrNotFound)
	}
	return nil
}

func scanPayee(row rowScanner) (store.PayeeRecord, error) {
	var payee store.PayeeRecord
	var description, startDate, schedulesJSON sql.NullString
	var defaultShare sql.NullFloat64

	if err := row.Scan(&payee.Name, &description, &startDate, &defaultShare, &schedulesJSON); err != nil {
		return payee, err
	}
	payee.Description = description.String
	payee.StartDate = startDate.String
	if defaultShare.Valid {
		v := defaultShare.Float64
		payee.DefaultSharePercentage = &v
	}
	if schedulesJSON.Valid && schedulesJSON.String != "" {
		if err := json.Unmarshal([]byte(schedulesJSON.String), &payee.PaySchedules); err != nil {
			return payee, fmt.Errorf("decode pay schedules for %q: %w", payee.Name, err)
		}
	}
	return payee, nil
}

// =============================================================================
// OPTIONS
// =============================================================================

// SaveOptions replaces the run configuration.
func (s *Store) SaveOptions(ctx context.Context, opts store.OptionsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveOptions(ctx, s.db, opts)
}

func saveOptions(ctx context.Context, db execer, opts store.OptionsRecord) error {
	query := `
		INSERT INTO options (id, cutoff_day, weekend_adjustment, projection_months, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cutoff_day = excluded.cutoff_day,
			weekend_adjustment = excluded.weekend_adjustment,
			projection_months = excluded.projection_months,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		opts.CutoffDay, opts.WeekendAdjustment, opts.ProjectionMonths,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetOptions returns the run configuration, or the defaults when none has
// been saved yet.
func (s *Store) GetOptions(ctx context.Context) (store.OptionsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getOptions(ctx)
}

func (s *Store) getOptions(ctx context.Context) (store.OptionsRecord, error) {
	var opts store.OptionsRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT cutoff_day, weekend_adjustment, projection_months FROM options WHERE id = 1",
	).Scan(&opts.CutoffDay, &opts.WeekendAdjustment, &opts.ProjectionMonths)

	if err == sql.ErrNoRows {
		return store.OptionsFromDomain(schedule.DefaultOptions()), nil
	}
	return opts, err
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// LoadSnapshot assembles the full household from the database into an engine
// snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (schedule.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills, err := s.listBills(ctx)
	if err != nil {
		return schedule.Snapshot{}, err
	}
	payees, err := s.listPayees(ctx)
	if err != nil {
		return schedule.Snapshot{}, err
	}
	opts, err := s.getOptions(ctx)
	if err != nil {
		return schedule.Snapshot{}, err
	}

	record := store.SnapshotRecord{Bills: bills, Payees: payees, Options: &opts}
	return record.ToDomain()
}

// Seed loads a full record set, replacing any existing rows. Used to import
// a YAML state file on startup. The reset and inserts run in a single
// transaction and every record must convert to the domain model, so a failed
// import leaves the previous contents untouched.
func (s *Store) Seed(ctx context.Context, record store.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"bills", "payees", "options"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	for _, bill := range record.Bills {
		if _, err := bill.ToDomain(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if err := saveBill(ctx, tx, bill); err != nil {
			return fmt.Errorf("seed bill %q: %w", bill.Name, err)
		}
	}
	for _, payee := range record.Payees {
		if _, err := payee.ToDomain(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if err := savePayee(ctx, tx, payee); err != nil {
			return fmt.Errorf("seed payee %q: %w", payee.Name, err)
		}
	}
	if record.Options != nil {
		if err := saveOptions(ctx, tx, *record.Options); err != nil {
			return fmt.Errorf("seed options: %w", err)
		}
	}
	return tx.Commit()
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"bills", "payees", "options"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func marshalShare(share *store.ShareRecord) (sql.NullString, error) {
	if share == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(share)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
