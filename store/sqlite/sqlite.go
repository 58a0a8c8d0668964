/*
Package sqlite provides a SQLite-backed implementation of booking.TxStore.

PURPOSE:
  Embedded persistence for a single restaurant. The same schema ideas carry
  over to store/postgres; only the dialect and the overlap guard differ.

INTERFACES IMPLEMENTED:
  booking.Store:   Customers, tables, reservations, audit log
  booking.TxStore: WithTx on top of the above

KEY TABLES:
  customers:        Guests
  dining_tables:    The floor (number is unique, case-insensitive)
  reservations:     Bookings with starts_at/ends_at as unix nanoseconds
  reservation_logs: Append-only audit trail

OVERLAP GUARD:
  Two triggers reject an insert or update that would make two occupying
  reservations overlap on one table. The error is mapped to
  booking.ErrDoubleBooking. Services check first; the triggers are the
  backstop for anything that bypasses them.

CONCURRENCY:
  Transactions are opened with _txlock=immediate so a WithTx takes the
  write lock at BEGIN: the check-then-write in the services cannot
  interleave with another writer. busy_timeout makes the second writer
  wait instead of failing.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/reservations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := booking.NewReservationService(store, booking.SystemClock{})

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - booking/store.go: Interface definitions
  - booking/store/memory.go: In-memory implementation for testing
  - store/postgres/postgres.go: Multi-instance deployment
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/reservation-engine/booking"
)

// Store implements booking.TxStore using SQLite.
type Store struct {
	queries
	db *sql.DB
	mu sync.Mutex // serialises WithTx within this process
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{queries: queries{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		is_vip BOOLEAN NOT NULL DEFAULT FALSE,
		is_blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dining_tables (
		id INTEGER PRIMARY KEY,
		number TEXT NOT NULL COLLATE NOCASE UNIQUE,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		min_capacity INTEGER,
		max_capacity INTEGER,
		location TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		table_id INTEGER NOT NULL REFERENCES dining_tables(id),
		starts_at INTEGER NOT NULL,
		ends_at INTEGER NOT NULL,
		party_size INTEGER NOT NULL CHECK (party_size BETWEEN 1 AND 12),
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		status TEXT NOT NULL,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		special_requests TEXT NOT NULL DEFAULT '',
		confirmation_code TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		cancelled_at INTEGER,
		cancellation_reason TEXT NOT NULL DEFAULT ''
	);

	-- Availability hot path: occupying reservations of a table in a window
	CREATE INDEX IF NOT EXISTS idx_reservations_table_time
		ON reservations(table_id, starts_at, ends_at);
	CREATE INDEX IF NOT EXISTS idx_reservations_customer
		ON reservations(customer_id, starts_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reservations_status_time
		ON reservations(status, starts_at);

	CREATE TRIGGER IF NOT EXISTS trg_reservations_no_overlap_insert
	BEFORE INSERT ON reservations
	WHEN NEW.status NOT IN ('Cancelled', 'Completed')
	BEGIN
		SELECT RAISE(ABORT, 'reservation overlaps')
		WHERE EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.table_id = NEW.table_id
			  AND r.status NOT IN ('Cancelled', 'Completed')
			  AND r.starts_at < NEW.ends_at
			  AND NEW.starts_at < r.ends_at
		);
	END;

	CREATE TRIGGER IF NOT EXISTS trg_reservations_no_overlap_update
	BEFORE UPDATE OF table_id, starts_at, ends_at, status ON reservations
	WHEN NEW.status NOT IN ('Cancelled', 'Completed')
	BEGIN
		SELECT RAISE(ABORT, 'reservation overlaps')
		WHERE EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.table_id = NEW.table_id
			  AND r.id != NEW.id
			  AND r.status NOT IN ('Cancelled', 'Completed')
			  AND r.starts_at < NEW.ends_at
			  AND NEW.starts_at < r.ends_at
		);
	END;

	CREATE TABLE IF NOT EXISTS reservation_logs (
		id INTEGER PRIMARY KEY,
		reservation_id INTEGER NOT NULL REFERENCES reservations(id),
		action TEXT NOT NULL,
		old_status TEXT NOT NULL DEFAULT '',
		new_status TEXT NOT NULL DEFAULT '',
		at INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_reservation_logs_reservation
		ON reservation_logs(reservation_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (booking.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store booking.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"reservation_logs", "reservations", "dining_tables", "customers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// QUERIES - booking.Store over *sql.DB or *sql.Tx
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// ----- customers -----

const customerColumns = `id, first_name, last_name, email, phone, is_vip, is_blacklisted, created_at`

func (s queries) GetCustomer(ctx context.Context, id booking.CustomerID) (*booking.Customer, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (s queries) ListCustomers(ctx context.Context) ([]booking.Customer, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []booking.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s queries) SaveCustomer(ctx context.Context, c *booking.Customer) error {
	if c.ID == 0 {
		res, err := s.q.ExecContext(ctx, `
			INSERT INTO customers (first_name, last_name, email, phone, is_vip, is_blacklisted, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.FirstName, c.LastName, c.Email, c.Phone, c.IsVIP, c.IsBlacklisted, unix(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = booking.CustomerID(id)
		return nil
	}

	_, err := s.q.ExecContext(ctx, `
		UPDATE customers
		SET first_name = ?, last_name = ?, email = ?, phone = ?, is_vip = ?, is_blacklisted = ?
		WHERE id = ?`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.IsVIP, c.IsBlacklisted, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// ----- tables -----

const tableColumns = `id, number, capacity, min_capacity, max_capacity, location, active, created_at`

func (s queries) GetTable(ctx context.Context, id booking.TableID) (*booking.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = ?`, id)
}

func (s queries) GetTableByNumber(ctx context.Context, number string) (*booking.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE number = ?`, number)
}

func (s queries) getTable(ctx context.Context, query string, args ...any) (*booking.Table, error) {
	t, err := scanTable(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return &t, nil
}

func (s queries) ListTables(ctx context.Context, activeOnly bool) ([]booking.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables`
	if activeOnly {
		query += ` WHERE active`
	}
	return s.queryTables(ctx, query+` ORDER BY id`)
}

func (s queries) queryTables(ctx context.Context, query string, args ...any) ([]booking.Table, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var out []booking.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListActiveTablesWithReservations loads the candidate tables and their
// occupying reservations in two queries.
func (s queries) ListActiveTablesWithReservations(ctx context.Context, f booking.TableFilter) ([]booking.TableWithReservations, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE active AND capacity >= ?`
	args := []any{f.MinCapacity}
	if f.Location != "" {
		query += ` AND instr(lower(location), lower(?)) > 0`
		args = append(args, f.Location)
	}
	tables, err := s.queryTables(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	rquery := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status NOT IN ('Cancelled', 'Completed')`
	var rargs []any
	if f.Window != nil {
		rquery += ` AND starts_at < ? AND ends_at > ?`
		rargs = append(rargs, unix(f.Window.End()), unix(f.Window.Start))
	}
	reservations, err := s.queryReservations(ctx, rquery+` ORDER BY starts_at, id`, rargs...)
	if err != nil {
		return nil, err
	}

	byTable := make(map[booking.TableID][]booking.Reservation)
	for _, r := range reservations {
		byTable[r.TableID] = append(byTable[r.TableID], r)
	}
	out := make([]booking.TableWithReservations, 0, len(tables))
	for _, t := range tables {
		out = append(out, booking.TableWithReservations{Table: t, Reservations: byTable[t.ID]})
	}
	return out, nil
}

func (s queries) SaveTable(ctx context.Context, t *booking.Table) error {
	if t.ID == 0 {
		res, err := s.q.ExecContext(ctx, `
			INSERT INTO dining_tables (number, capacity, min_capacity, max_capacity, location, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.Number, t.Capacity, nullInt(t.MinCapacity), nullInt(t.MaxCapacity), t.Location, t.Active, unix(t.CreatedAt),
		)
		if err != nil {
			return tableError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = booking.TableID(id)
		return nil
	}

	_, err := s.q.ExecContext(ctx, `
		UPDATE dining_tables
		SET number = ?, capacity = ?, min_capacity = ?, max_capacity = ?, location = ?, active = ?
		WHERE id = ?`,
		t.Number, t.Capacity, nullInt(t.MinCapacity), nullInt(t.MaxCapacity), t.Location, t.Active, t.ID,
	)
	if err != nil {
		return tableError(err)
	}
	return nil
}

func (s queries) DeleteTable(ctx context.Context, id booking.TableID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM dining_tables WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	return nil
}

func tableError(err error) error {
	if isUniqueConstraintError(err) {
		return booking.ErrDuplicateTableNumber
	}
	return fmt.Errorf("failed to save table: %w", err)
}

// ----- reservations -----

const reservationColumns = `id, customer_id, table_id, starts_at, party_size, duration_minutes,
	status, is_confirmed, special_requests, confirmation_code,
	created_at, updated_at, cancelled_at, cancellation_reason`

func (s queries) GetReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
}

func (s queries) GetReservationByCode(ctx context.Context, code string) (*booking.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_code = ?`, code)
}

func (s queries) getReservation(ctx context.Context, query string, args ...any) (*booking.Reservation, error) {
	r, err := scanReservation(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &r, nil
}

func (s queries) ListByCustomer(ctx context.Context, id booking.CustomerID) ([]booking.Reservation, error) {
	return s.queryReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE customer_id = ?
		ORDER BY starts_at DESC, id DESC`, id)
}

func (s queries) ListReservations(ctx context.Context, f booking.ReservationFilter) ([]booking.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	if f.CustomerID != 0 {
		conds = append(conds, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.TableID != 0 {
		conds = append(conds, "table_id = ?")
		args = append(args, f.TableID)
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "status IN (?"+strings.Repeat(", ?", len(f.Statuses)-1)+")")
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if !f.From.IsZero() {
		conds = append(conds, "starts_at >= ?")
		args = append(args, unix(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "starts_at < ?")
		args = append(args, unix(f.To))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return s.queryReservations(ctx, query+` ORDER BY starts_at, id`, args...)
}

func (s queries) queryReservations(ctx context.Context, query string, args ...any) ([]booking.Reservation, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s queries) SaveReservation(ctx context.Context, r *booking.Reservation) error {
	if r.ID == 0 {
		res, err := s.q.ExecContext(ctx, `
			INSERT INTO reservations
			(customer_id, table_id, starts_at, ends_at, party_size, duration_minutes,
			 status, is_confirmed, special_requests, confirmation_code,
			 created_at, updated_at, cancelled_at, cancellation_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.CustomerID, r.TableID, unix(r.Moment), unix(r.End()), r.PartySize, r.DurationMinutes,
			string(r.Status), r.IsConfirmed, r.SpecialRequests, r.ConfirmationCode,
			unix(r.CreatedAt), unix(r.UpdatedAt), nullUnix(r.CancelledAt), r.CancellationReason,
		)
		if err != nil {
			return reservationError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = booking.ReservationID(id)
		return nil
	}

	_, err := s.q.ExecContext(ctx, `
		UPDATE reservations
		SET customer_id = ?, table_id = ?, starts_at = ?, ends_at = ?, party_size = ?,
		    duration_minutes = ?, status = ?, is_confirmed = ?, special_requests = ?,
		    confirmation_code = ?, updated_at = ?, cancelled_at = ?, cancellation_reason = ?
		WHERE id = ?`,
		r.CustomerID, r.TableID, unix(r.Moment), unix(r.End()), r.PartySize,
		r.DurationMinutes, string(r.Status), r.IsConfirmed, r.SpecialRequests,
		r.ConfirmationCode, unix(r.UpdatedAt), nullUnix(r.CancelledAt), r.CancellationReason,
		r.ID,
	)
	if err != nil {
		return reservationError(err)
	}
	return nil
}

func (s queries) HasConflictingReservation(ctx context.Context, tableID booking.TableID, iv booking.Interval, exclude booking.ReservationID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = ? AND id != ?
			  AND status NOT IN ('Cancelled', 'Completed')
			  AND starts_at < ? AND ends_at > ?
		)`,
		tableID, exclude, unix(iv.End()), unix(iv.Start),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return exists, nil
}

func reservationError(err error) error {
	switch {
	case isOverlapError(err):
		return booking.ErrDoubleBooking
	case isUniqueConstraintError(err):
		return booking.ErrDuplicateCode
	}
	return fmt.Errorf("failed to save reservation: %w", err)
}

// ----- audit log -----

func (s queries) AppendLog(ctx context.Context, e booking.LogEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reservation_logs (reservation_id, action, old_status, new_status, at, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ReservationID, e.Action, string(e.OldStatus), string(e.NewStatus), unix(e.At), e.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	return nil
}

func (s queries) ListLogs(ctx context.Context, id booking.ReservationID) ([]booking.LogEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, reservation_id, action, old_status, new_status, at, notes
		FROM reservation_logs WHERE reservation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	var out []booking.LogEntry
	for rows.Next() {
		var (
			e            booking.LogEntry
			oldSt, newSt string
			at           int64
		)
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.Action, &oldSt, &newSt, &at, &e.Notes); err != nil {
			return nil, err
		}
		e.OldStatus, e.NewStatus, e.At = booking.Status(oldSt), booking.Status(newSt), fromUnix(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (booking.Customer, error) {
	var (
		c       booking.Customer
		created int64
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.IsVIP, &c.IsBlacklisted, &created)
	c.CreatedAt = fromUnix(created)
	return c, err
}

func scanTable(row scanner) (booking.Table, error) {
	var (
		t       booking.Table
		lo, hi  sql.NullInt64
		created int64
	)
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &lo, &hi, &t.Location, &t.Active, &created)
	t.MinCapacity, t.MaxCapacity = intPtr(lo), intPtr(hi)
	t.CreatedAt = fromUnix(created)
	return t, err
}

func scanReservation(row scanner) (booking.Reservation, error) {
	var (
		r                        booking.Reservation
		status                   string
		starts, created, updated int64
		cancelled                sql.NullInt64
	)
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.TableID, &starts, &r.PartySize, &r.DurationMinutes,
		&status, &r.IsConfirmed, &r.SpecialRequests, &r.ConfirmationCode,
		&created, &updated, &cancelled, &r.CancellationReason,
	)
	if err != nil {
		return r, err
	}
	r.Status = booking.Status(status)
	r.Moment = fromUnix(starts)
	r.CreatedAt = fromUnix(created)
	r.UpdatedAt = fromUnix(updated)
	if cancelled.Valid {
		at := fromUnix(cancelled.Int64)
		r.CancelledAt = &at
	}
	return r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Times are stored as UTC unix nanoseconds; zero means unset.
func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isOverlapError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "reservation overlaps")
}

var _ booking.TxStore = (*Store)(nil)
