/*
types.go - Core entities of the booking engine

PURPOSE:
  Tables, customers and reservations. Relations are ids, never pointers:
  "reservations of table X" is a store query, not an object graph.

INVARIANTS:
  - Table: MinCapacity <= Capacity <= MaxCapacity when bounds are set
  - Reservation: 1 <= PartySize <= 12, DurationMinutes > 0
  - Reservation: occupies [Moment, Moment+Duration) on TableID
  - No two occupying reservations on one table overlap

SEE ALSO:
  - status.go: Reservation lifecycle states
  - store.go: Persistence contracts
*/
package booking

import (
	"strings"
	"time"
)

type (
	TableID       int64
	ReservationID int64
	CustomerID    int64
)

// Booking limits.
const (
	MinPartySize           = 1
	MaxPartySize           = 12
	DefaultDurationMinutes = 120
	BookingHorizonDays     = 90
	CancellationCutoff     = 2 * time.Hour
)

// =============================================================================
// TABLE
// =============================================================================

type Table struct {
	ID          TableID
	Number      string
	Capacity    int
	MinCapacity *int
	MaxCapacity *int
	Location    string
	Active      bool
	CreatedAt   time.Time
}

// Validate checks the capacity bounds of a table definition.
func (t Table) Validate() error {
	if strings.TrimSpace(t.Number) == "" {
		return violation(RuleInvalidInput, "Table number is required")
	}
	if t.Capacity <= 0 {
		return violation(RuleTableBounds, "Table capacity must be positive")
	}
	if t.MinCapacity != nil {
		if *t.MinCapacity <= 0 {
			return violation(RuleTableBounds, "Minimum capacity must be positive")
		}
		if *t.MinCapacity > t.Capacity {
			return violation(RuleTableBounds, "Minimum capacity cannot be greater than capacity")
		}
	}
	if t.MaxCapacity != nil && *t.MaxCapacity < t.Capacity {
		return violation(RuleTableBounds, "Maximum capacity cannot be less than capacity")
	}
	return nil
}

// Fits reports whether a party may be seated at the table.
func (t Table) Fits(partySize int) bool {
	if t.Capacity < partySize {
		return false
	}
	return t.MinCapacity == nil || partySize >= *t.MinCapacity
}

// MatchesLocation is a case-insensitive substring match.
func (t Table) MatchesLocation(location string) bool {
	return strings.Contains(strings.ToLower(t.Location), strings.ToLower(location))
}

// =============================================================================
// CUSTOMER
// =============================================================================

type Customer struct {
	ID            CustomerID
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	IsVIP         bool
	IsBlacklisted bool
	CreatedAt     time.Time
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// =============================================================================
// RESERVATION
// =============================================================================

type Reservation struct {
	ID                 ReservationID
	CustomerID         CustomerID
	TableID            TableID
	Moment             time.Time
	PartySize          int
	DurationMinutes    int
	Status             Status
	IsConfirmed        bool
	SpecialRequests    string
	ConfirmationCode   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

func (r Reservation) Interval() Interval {
	return NewInterval(r.Moment, r.DurationMinutes)
}

func (r Reservation) End() time.Time {
	return r.Interval().End()
}

// Occupies reports whether the reservation holds its table.
func (r Reservation) Occupies() bool {
	return r.Status.Occupies()
}

// Confirmation is what a successful booking returns to the caller.
type Confirmation struct {
	ReservationID    ReservationID
	ConfirmationCode string
	TableID          TableID
	TableNumber      string
	Moment           time.Time
	PartySize        int
	DurationMinutes  int
	CustomerName     string
	Message          string
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// LogEntry records one lifecycle change of a reservation.
type LogEntry struct {
	ID            int64
	ReservationID ReservationID
	Action        string
	OldStatus     Status
	NewStatus     Status
	At            time.Time
	Notes         string
}

const (
	ActionCreated   = "Created"
	ActionUpdated   = "Updated"
	ActionCancelled = "Cancelled"
	ActionConfirmed = "Confirmed"
	ActionSeated    = "Seated"
	ActionCompleted = "Completed"
	ActionNoShow    = "NoShow"
)
