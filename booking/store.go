/*
store.go - Persistence interfaces for the booking engine

PURPOSE:
  Defines the boundary between booking rules and the database. The core
  never traverses object graphs: it asks the store for "reservations of
  table X" or "active tables with their reservations in this window".

KEY INTERFACES:
  CustomerStore:    Customer lookup (blacklist flag)
  TableStore:       Table inventory
  ReservationStore: Reservations and the per-table conflict query
  LogStore:         Append-only reservation audit trail
  TxStore:          All of the above plus WithTx

LOOKUP CONTRACT:
  Get* methods return (nil, nil) when the row does not exist. The services
  decide whether that is a NotFound error or simply "not available".

SERIALIZATION CONTRACT:
  Every mutating service call runs check-then-write inside WithTx. The
  store must make that sequence atomic with respect to other WithTx calls:
  - booking/store memory: holds its write lock for the whole transaction
  - store/sqlite:         BEGIN IMMEDIATE (one writer at a time)
  - store/postgres:       SERIALIZABLE plus a GiST exclusion constraint
  Stores also reject overlapping active reservations on SaveReservation
  with ErrDoubleBooking, so the invariant holds even for direct writes.

IMPLEMENTATIONS:
  - booking/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go:  Embedded SQLite
  - store/postgres/postgres.go: PostgreSQL via sqlx

SEE ALSO:
  - inventory.go: Main reader of ListActiveTablesWithReservations
  - lifecycle.go: Main writer
*/
package booking

import (
	"context"
	"time"
)

// =============================================================================
// FILTERS
// =============================================================================

// TableFilter narrows ListActiveTablesWithReservations.
type TableFilter struct {
	MinCapacity int       // 0 means any capacity
	Location    string    // case-insensitive substring; empty means any
	Window      *Interval // when set, only reservations overlapping it are attached
}

// TableWithReservations pairs an active table with its occupying reservations.
type TableWithReservations struct {
	Table        Table
	Reservations []Reservation
}

// ReservationFilter narrows ListReservations. Zero values mean "any".
type ReservationFilter struct {
	CustomerID CustomerID
	TableID    TableID
	Statuses   []Status
	From       time.Time // Moment >= From
	To         time.Time // Moment < To
}

// Matches applies the filter in memory.
func (f ReservationFilter) Matches(r Reservation) bool {
	if f.CustomerID != 0 && r.CustomerID != f.CustomerID {
		return false
	}
	if f.TableID != 0 && r.TableID != f.TableID {
		return false
	}
	if !f.From.IsZero() && r.Moment.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.Moment.Before(f.To) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// =============================================================================
// STORES
// =============================================================================

type CustomerStore interface {
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	// SaveCustomer inserts when ID is zero (assigning the new ID) and
	// updates otherwise.
	SaveCustomer(ctx context.Context, c *Customer) error
}

type TableStore interface {
	GetTable(ctx context.Context, id TableID) (*Table, error)
	// GetTableByNumber matches the number case-insensitively.
	GetTableByNumber(ctx context.Context, number string) (*Table, error)
	// ListTables returns tables ordered by ID.
	ListTables(ctx context.Context, activeOnly bool) ([]Table, error)
	// ListActiveTablesWithReservations returns active tables passing the
	// filter, ordered by ID, each with its occupying reservations.
	ListActiveTablesWithReservations(ctx context.Context, filter TableFilter) ([]TableWithReservations, error)
	SaveTable(ctx context.Context, t *Table) error
	DeleteTable(ctx context.Context, id TableID) error
}

type ReservationStore interface {
	GetReservation(ctx context.Context, id ReservationID) (*Reservation, error)
	GetReservationByCode(ctx context.Context, code string) (*Reservation, error)
	// ListByCustomer returns the customer's reservations, newest first.
	ListByCustomer(ctx context.Context, id CustomerID) ([]Reservation, error)
	// ListReservations returns matches ordered by Moment, then ID.
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	// SaveReservation inserts when ID is zero and updates otherwise.
	// Returns ErrDuplicateCode or ErrDoubleBooking on constraint violations.
	SaveReservation(ctx context.Context, r *Reservation) error
	// HasConflictingReservation reports whether an occupying reservation
	// other than exclude overlaps iv on the table. exclude may be zero.
	HasConflictingReservation(ctx context.Context, tableID TableID, iv Interval, exclude ReservationID) (bool, error)
}

type LogStore interface {
	AppendLog(ctx context.Context, entry LogEntry) error
	// ListLogs returns entries in the order they were appended.
	ListLogs(ctx context.Context, id ReservationID) ([]LogEntry, error)
}

// Store is everything the services read and write.
type Store interface {
	CustomerStore
	TableStore
	ReservationStore
	LogStore
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
