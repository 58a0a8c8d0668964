/*
Package postgres provides a PostgreSQL implementation of booking.TxStore.

PURPOSE:
  Shared persistence when several server instances book against one floor.
  Same contract as store/sqlite; the database enforces the invariants the
  services rely on.

INVARIANTS IN THE SCHEMA:
  - reservations_no_overlap: GiST exclusion over (table_id, [starts_at, ends_at))
    for every status except Cancelled and Completed (needs btree_gist)
  - reservations_confirmation_code_key: unique confirmation codes
  - dining_tables_number_lower_idx: table numbers unique regardless of case

CONCURRENCY:
  WithTx runs at SERIALIZABLE. A concurrent booking that slips between the
  service's check and its write fails with a serialization error, which is
  reported as booking.ErrConcurrentModification.

ERROR MAPPING (SQLSTATE):
  23P01 exclusion_violation    -> booking.ErrDoubleBooking
  23505 unique_violation       -> ErrDuplicateCode / ErrDuplicateTableNumber
  40001 serialization_failure  -> booking.ErrConcurrentModification

SEE ALSO:
  - booking/store.go: Interface definitions
  - store/sqlite/sqlite.go: Embedded variant
*/
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/warp/reservation-engine/booking"
)

// Constraint names referenced by error mapping.
const (
	constraintNoOverlap   = "reservations_no_overlap"
	constraintCode        = "reservations_confirmation_code_key"
	constraintTableNumber = "dining_tables_number_lower_idx"
)

// Store wraps a sqlx handle.
type Store struct {
	queries
	db *sqlx.DB
}

// New connects, checks the connection and migrates the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{queries: queries{q: db}, db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE EXTENSION IF NOT EXISTS btree_gist;

	CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		is_vip BOOLEAN NOT NULL DEFAULT FALSE,
		is_blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dining_tables (
		id BIGSERIAL PRIMARY KEY,
		number TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		min_capacity INTEGER,
		max_capacity INTEGER,
		location TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS dining_tables_number_lower_idx
		ON dining_tables (lower(number));

	CREATE TABLE IF NOT EXISTS reservations (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		table_id BIGINT NOT NULL REFERENCES dining_tables(id),
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		party_size INTEGER NOT NULL CHECK (party_size BETWEEN 1 AND 12),
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		status TEXT NOT NULL,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		special_requests TEXT NOT NULL DEFAULT '',
		confirmation_code TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		cancelled_at TIMESTAMPTZ,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		CONSTRAINT reservations_confirmation_code_key UNIQUE (confirmation_code),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			table_id WITH =,
			tstzrange(starts_at, ends_at, '[)') WITH &&
		) WHERE (status NOT IN ('Cancelled', 'Completed'))
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_customer
		ON reservations (customer_id, starts_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reservations_status_time
		ON reservations (status, starts_at);

	CREATE TABLE IF NOT EXISTS reservation_logs (
		id BIGSERIAL PRIMARY KEY,
		reservation_id BIGINT NOT NULL REFERENCES reservations(id),
		action TEXT NOT NULL,
		old_status TEXT NOT NULL DEFAULT '',
		new_status TEXT NOT NULL DEFAULT '',
		at TIMESTAMPTZ NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_reservation_logs_reservation
		ON reservation_logs (reservation_id, id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// WithTx runs fn in a SERIALIZABLE transaction.
func (s *Store) WithTx(ctx context.Context, fn func(booking.Store) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "commit")
	}
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`TRUNCATE reservation_logs, reservations, dining_tables, customers RESTART IDENTITY CASCADE`)
	return err
}

// =============================================================================
// ROWS
// =============================================================================

type customerRow struct {
	ID            int64     `db:"id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	IsVIP         bool      `db:"is_vip"`
	IsBlacklisted bool      `db:"is_blacklisted"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r customerRow) toDomain() booking.Customer {
	return booking.Customer{
		ID:            booking.CustomerID(r.ID),
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		IsVIP:         r.IsVIP,
		IsBlacklisted: r.IsBlacklisted,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type tableRow struct {
	ID          int64         `db:"id"`
	Number      string        `db:"number"`
	Capacity    int           `db:"capacity"`
	MinCapacity sql.NullInt64 `db:"min_capacity"`
	MaxCapacity sql.NullInt64 `db:"max_capacity"`
	Location    string        `db:"location"`
	Active      bool          `db:"active"`
	CreatedAt   time.Time     `db:"created_at"`
}

func (r tableRow) toDomain() booking.Table {
	return booking.Table{
		ID:          booking.TableID(r.ID),
		Number:      r.Number,
		Capacity:    r.Capacity,
		MinCapacity: intPtr(r.MinCapacity),
		MaxCapacity: intPtr(r.MaxCapacity),
		Location:    r.Location,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type reservationRow struct {
	ID                 int64        `db:"id"`
	CustomerID         int64        `db:"customer_id"`
	TableID            int64        `db:"table_id"`
	StartsAt           time.Time    `db:"starts_at"`
	PartySize          int          `db:"party_size"`
	DurationMinutes    int          `db:"duration_minutes"`
	Status             string       `db:"status"`
	IsConfirmed        bool         `db:"is_confirmed"`
	SpecialRequests    string       `db:"special_requests"`
	ConfirmationCode   string       `db:"confirmation_code"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
	CancelledAt        sql.NullTime `db:"cancelled_at"`
	CancellationReason string       `db:"cancellation_reason"`
}

func (r reservationRow) toDomain() booking.Reservation {
	out := booking.Reservation{
		ID:                 booking.ReservationID(r.ID),
		CustomerID:         booking.CustomerID(r.CustomerID),
		TableID:            booking.TableID(r.TableID),
		Moment:             r.StartsAt.UTC(),
		PartySize:          r.PartySize,
		DurationMinutes:    r.DurationMinutes,
		Status:             booking.Status(r.Status),
		IsConfirmed:        r.IsConfirmed,
		SpecialRequests:    r.SpecialRequests,
		ConfirmationCode:   r.ConfirmationCode,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
		CancellationReason: r.CancellationReason,
	}
	if r.CancelledAt.Valid {
		at := r.CancelledAt.Time.UTC()
		out.CancelledAt = &at
	}
	return out
}

type logRow struct {
	ID            int64     `db:"id"`
	ReservationID int64     `db:"reservation_id"`
	Action        string    `db:"action"`
	OldStatus     string    `db:"old_status"`
	NewStatus     string    `db:"new_status"`
	At            time.Time `db:"at"`
	Notes         string    `db:"notes"`
}

// =============================================================================
// QUERIES - booking.Store over *sqlx.DB or *sqlx.Tx
// =============================================================================

type queries struct {
	q sqlx.ExtContext
}

const (
	customerColumns    = `id, first_name, last_name, email, phone, is_vip, is_blacklisted, created_at`
	tableColumns       = `id, number, capacity, min_capacity, max_capacity, location, active, created_at`
	reservationColumns = `id, customer_id, table_id, starts_at, party_size, duration_minutes,
		status, is_confirmed, special_requests, confirmation_code,
		created_at, updated_at, cancelled_at, cancellation_reason`
)

// occupying is the SQL form of booking.Status.Occupies.
const occupying = `status NOT IN ('Cancelled', 'Completed')`

func (s queries) GetCustomer(ctx context.Context, id booking.CustomerID) (*booking.Customer, error) {
	var row customerRow
	err := sqlx.GetContext(ctx, s.q, &row, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

func (s queries) ListCustomers(ctx context.Context) ([]booking.Customer, error) {
	var rows []customerRow
	if err := sqlx.SelectContext(ctx, s.q, &rows, `SELECT `+customerColumns+` FROM customers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	out := make([]booking.Customer, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s queries) SaveCustomer(ctx context.Context, c *booking.Customer) error {
	if c.ID == 0 {
		var id int64
		err := s.q.QueryRowxContext(ctx, `
			INSERT INTO customers (first_name, last_name, email, phone, is_vip, is_blacklisted, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			c.FirstName, c.LastName, c.Email, c.Phone, c.IsVIP, c.IsBlacklisted, c.CreatedAt,
		).Scan(&id)
		if err != nil {
			return mapError(err, "insert customer")
		}
		c.ID = booking.CustomerID(id)
		return nil
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, is_vip = $5, is_blacklisted = $6
		WHERE id = $7`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.IsVIP, c.IsBlacklisted, c.ID,
	)
	return mapError(err, "update customer")
}

func (s queries) GetTable(ctx context.Context, id booking.TableID) (*booking.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1`, id)
}

func (s queries) GetTableByNumber(ctx context.Context, number string) (*booking.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE lower(number) = lower($1)`, number)
}

func (s queries) getTable(ctx context.Context, query string, args ...any) (*booking.Table, error) {
	var row tableRow
	err := sqlx.GetContext(ctx, s.q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	t := row.toDomain()
	return &t, nil
}

func (s queries) ListTables(ctx context.Context, activeOnly bool) ([]booking.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables`
	if activeOnly {
		query += ` WHERE active`
	}
	return s.selectTables(ctx, query+` ORDER BY id`)
}

func (s queries) selectTables(ctx context.Context, query string, args ...any) ([]booking.Table, error) {
	var rows []tableRow
	if err := sqlx.SelectContext(ctx, s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	out := make([]booking.Table, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s queries) ListActiveTablesWithReservations(ctx context.Context, f booking.TableFilter) ([]booking.TableWithReservations, error) {
	var b argBuilder
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE active AND capacity >= ` + b.add(f.MinCapacity)
	if f.Location != "" {
		query += ` AND strpos(lower(location), lower(` + b.add(f.Location) + `)) > 0`
	}
	tables, err := s.selectTables(ctx, query+` ORDER BY id`, b.args...)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(tables))
	for i, t := range tables {
		ids[i] = int64(t.ID)
	}
	var rb argBuilder
	rquery := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE ` + occupying + ` AND table_id = ANY(` + rb.add(pq.Array(ids)) + `)`
	if f.Window != nil {
		rquery += ` AND starts_at < ` + rb.add(f.Window.End()) + ` AND ends_at > ` + rb.add(f.Window.Start)
	}
	reservations, err := s.selectReservations(ctx, rquery+` ORDER BY starts_at, id`, rb.args...)
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
		var id int64
		err := s.q.QueryRowxContext(ctx, `
			INSERT INTO dining_tables (number, capacity, min_capacity, max_capacity, location, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			t.Number, t.Capacity, nullInt(t.MinCapacity), nullInt(t.MaxCapacity), t.Location, t.Active, t.CreatedAt,
		).Scan(&id)
		if err != nil {
			return mapError(err, "insert table")
		}
		t.ID = booking.TableID(id)
		return nil
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE dining_tables
		SET number = $1, capacity = $2, min_capacity = $3, max_capacity = $4, location = $5, active = $6
		WHERE id = $7`,
		t.Number, t.Capacity, nullInt(t.MinCapacity), nullInt(t.MaxCapacity), t.Location, t.Active, t.ID,
	)
	return mapError(err, "update table")
}

func (s queries) DeleteTable(ctx context.Context, id booking.TableID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM dining_tables WHERE id = $1`, id)
	return mapError(err, "delete table")
}

func (s queries) GetReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (s queries) GetReservationByCode(ctx context.Context, code string) (*booking.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_code = $1`, code)
}

func (s queries) getReservation(ctx context.Context, query string, args ...any) (*booking.Reservation, error) {
	var row reservationRow
	err := sqlx.GetContext(ctx, s.q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	r := row.toDomain()
	return &r, nil
}

func (s queries) ListByCustomer(ctx context.Context, id booking.CustomerID) ([]booking.Reservation, error) {
	return s.selectReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE customer_id = $1
		ORDER BY starts_at DESC, id DESC`, id)
}

func (s queries) ListReservations(ctx context.Context, f booking.ReservationFilter) ([]booking.Reservation, error) {
	var (
		b     argBuilder
		conds []string
	)
	if f.CustomerID != 0 {
		conds = append(conds, "customer_id = "+b.add(f.CustomerID))
	}
	if f.TableID != 0 {
		conds = append(conds, "table_id = "+b.add(f.TableID))
	}
	if len(f.Statuses) > 0 {
		names := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			names[i] = string(st)
		}
		conds = append(conds, "status = ANY("+b.add(pq.Array(names))+")")
	}
	if !f.From.IsZero() {
		conds = append(conds, "starts_at >= "+b.add(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "starts_at < "+b.add(f.To))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return s.selectReservations(ctx, query+` ORDER BY starts_at, id`, b.args...)
}

func (s queries) selectReservations(ctx context.Context, query string, args ...any) ([]booking.Reservation, error) {
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	out := make([]booking.Reservation, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s queries) SaveReservation(ctx context.Context, r *booking.Reservation) error {
	if r.ID == 0 {
		var id int64
		err := s.q.QueryRowxContext(ctx, `
			INSERT INTO reservations
			(customer_id, table_id, starts_at, ends_at, party_size, duration_minutes,
			 status, is_confirmed, special_requests, confirmation_code,
			 created_at, updated_at, cancelled_at, cancellation_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id`,
			r.CustomerID, r.TableID, r.Moment, r.End(), r.PartySize, r.DurationMinutes,
			string(r.Status), r.IsConfirmed, r.SpecialRequests, r.ConfirmationCode,
			r.CreatedAt, r.UpdatedAt, nullTime(r.CancelledAt), r.CancellationReason,
		).Scan(&id)
		if err != nil {
			return mapError(err, "insert reservation")
		}
		r.ID = booking.ReservationID(id)
		return nil
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE reservations
		SET customer_id = $1, table_id = $2, starts_at = $3, ends_at = $4, party_size = $5,
		    duration_minutes = $6, status = $7, is_confirmed = $8, special_requests = $9,
		    confirmation_code = $10, updated_at = $11, cancelled_at = $12, cancellation_reason = $13
		WHERE id = $14`,
		r.CustomerID, r.TableID, r.Moment, r.End(), r.PartySize,
		r.DurationMinutes, string(r.Status), r.IsConfirmed, r.SpecialRequests,
		r.ConfirmationCode, r.UpdatedAt, nullTime(r.CancelledAt), r.CancellationReason,
		r.ID,
	)
	return mapError(err, "update reservation")
}

func (s queries) HasConflictingReservation(ctx context.Context, tableID booking.TableID, iv booking.Interval, exclude booking.ReservationID) (bool, error) {
	var exists bool
	err := s.q.QueryRowxContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = $1 AND id <> $2 AND `+occupying+`
			  AND starts_at < $3 AND ends_at > $4
		)`,
		tableID, exclude, iv.End(), iv.Start,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check conflicts")
	}
	return exists, nil
}

func (s queries) AppendLog(ctx context.Context, e booking.LogEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reservation_logs (reservation_id, action, old_status, new_status, at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ReservationID, e.Action, string(e.OldStatus), string(e.NewStatus), e.At, e.Notes,
	)
	return mapError(err, "append log")
}

func (s queries) ListLogs(ctx context.Context, id booking.ReservationID) ([]booking.LogEntry, error) {
	var rows []logRow
	err := sqlx.SelectContext(ctx, s.q, &rows, `
		SELECT id, reservation_id, action, old_status, new_status, at, notes
		FROM reservation_logs WHERE reservation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	out := make([]booking.LogEntry, len(rows))
	for i, r := range rows {
		out[i] = booking.LogEntry{
			ID:            r.ID,
			ReservationID: booking.ReservationID(r.ReservationID),
			Action:        r.Action,
			OldStatus:     booking.Status(r.OldStatus),
			NewStatus:     booking.Status(r.NewStatus),
			At:            r.At.UTC(),
			Notes:         r.Notes,
		}
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// argBuilder numbers positional parameters as they are added.
type argBuilder struct {
	args []any
}

func (b *argBuilder) add(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// mapError translates constraint violations into booking sentinels and
// wraps everything else. nil stays nil.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23P01":
			if pqErr.Constraint == constraintNoOverlap || pqErr.Constraint == "" {
				return booking.ErrDoubleBooking
			}
		case "23505":
			switch pqErr.Constraint {
			case constraintCode:
				return booking.ErrDuplicateCode
			case constraintTableNumber:
				return booking.ErrDuplicateTableNumber
			}
		case "40001":
			return fmt.Errorf("%s: %w", op, booking.ErrConcurrentModification)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
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

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ booking.TxStore = (*Store)(nil)
