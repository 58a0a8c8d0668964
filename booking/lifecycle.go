/*
lifecycle.go - Reservation lifecycle service

PURPOSE:
  Creates, updates and moves reservations through their states. Every
  write runs check-then-write inside one store transaction and appends an
  audit log entry in the same transaction.

STATE MACHINE:
  Pending ──▶ Confirmed ──▶ Seated ──▶ Completed
                  │
                  └──▶ NoShow          (only once the moment has passed)
  Pending|Confirmed ──▶ Cancelled      (not within 2 hours of the moment)

CREATE GUARDS (in order):
  1. Customer exists (NotFound) and is not blacklisted
  2. now < moment <= now + 90 days
  3. 1 <= party size <= 12, duration > 0 (0 means 120 minutes)
  4. A table can be assigned (Unavailable otherwise)
  The reservation is stored as Confirmed with a fresh confirmation code.

UPDATE:
  Terminal reservations cannot be changed. The table is re-chosen when the
  caller names a different table, when the current table no longer fits the
  party, or when the new time collides with another reservation on it.

EVENTS:
  Published after commit. A failed publish is logged and swallowed.

SEE ALSO:
  - assignment.go: Table choice
  - status.go: Transition table
*/
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ReservationService orchestrates the reservation lifecycle.
type ReservationService struct {
	Store  TxStore
	Clock  Clock
	Codes  CodeGenerator
	Events EventSink          // optional
	Log    logrus.FieldLogger // optional
}

func NewReservationService(store TxStore, clock Clock) *ReservationService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReservationService{
		Store: store,
		Clock: clock,
		Codes: RandomCodes{},
	}
}

// Inventory returns a read-only availability view over the service's store.
func (s *ReservationService) Inventory() Inventory {
	return Inventory{Store: s.Store}
}

// =============================================================================
// CREATE
// =============================================================================

type CreateRequest struct {
	CustomerID        CustomerID
	Moment            time.Time
	PartySize         int
	DurationMinutes   int // 0 means DefaultDurationMinutes
	SpecialRequests   string
	PreferredTableID  TableID
	PreferredLocation string
}

func (s *ReservationService) CreateReservation(ctx context.Context, req CreateRequest) (*Confirmation, error) {
	now := s.now()

	var (
		created Reservation
		conf    Confirmation
	)
	err := s.Store.WithTx(ctx, func(tx Store) error {
		customer, err := tx.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if customer == nil {
			return notFound("customer", req.CustomerID)
		}
		if customer.IsBlacklisted {
			return violation(RuleCustomerBlacklisted, "Customer is blacklisted and cannot make reservations")
		}
		if err := checkFuture(req.Moment, now); err != nil {
			return err
		}
		if req.Moment.After(now.AddDate(0, 0, BookingHorizonDays)) {
			return violation(RuleBeyondHorizon, "Reservations can only be made up to %d days in advance", BookingHorizonDays)
		}
		if err := checkPartySize(req.PartySize); err != nil {
			return err
		}
		minutes, err := normalizeDuration(req.DurationMinutes)
		if err != nil {
			return err
		}

		table, err := Inventory{Store: tx}.Assign(ctx, AssignmentRequest{
			PreferredTableID:  req.PreferredTableID,
			PreferredLocation: req.PreferredLocation,
			Moment:            req.Moment,
			PartySize:         req.PartySize,
			Duration:          time.Duration(minutes) * time.Minute,
		})
		if err != nil {
			return err
		}
		if table == nil {
			return &UnavailableError{
				Moment:    req.Moment,
				PartySize: req.PartySize,
				Reason:    "No available tables for the requested time and party size",
			}
		}

		code, err := uniqueCode(ctx, s.codes(), tx)
		if err != nil {
			return err
		}

		created = Reservation{
			CustomerID:       customer.ID,
			TableID:          table.ID,
			Moment:           req.Moment,
			PartySize:        req.PartySize,
			DurationMinutes:  minutes,
			Status:           StatusConfirmed,
			IsConfirmed:      true,
			SpecialRequests:  strings.TrimSpace(req.SpecialRequests),
			ConfirmationCode: code,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.SaveReservation(ctx, &created); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		if err := tx.AppendLog(ctx, LogEntry{
			ReservationID: created.ID,
			Action:        ActionCreated,
			NewStatus:     created.Status,
			At:            now,
			Notes:         fmt.Sprintf("Assigned table %s", table.Number),
		}); err != nil {
			return fmt.Errorf("append reservation log: %w", err)
		}

		conf = Confirmation{
			ReservationID:    created.ID,
			ConfirmationCode: created.ConfirmationCode,
			TableID:          table.ID,
			TableNumber:      table.Number,
			Moment:           created.Moment,
			PartySize:        created.PartySize,
			DurationMinutes:  created.DurationMinutes,
			CustomerName:     customer.FullName(),
			Message:          "Reservation confirmed successfully!",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(EventCreated, created, now))
	return &conf, nil
}

// =============================================================================
// UPDATE
// =============================================================================

type UpdateRequest struct {
	Moment          time.Time
	PartySize       int
	DurationMinutes int     // 0 means DefaultDurationMinutes
	SpecialRequests *string // nil keeps the current text
	TableID         TableID // explicit target table; zero lets the engine decide
}

func (s *ReservationService) UpdateReservation(ctx context.Context, id ReservationID, req UpdateRequest) (*Reservation, error) {
	now := s.now()

	var updated Reservation
	err := s.Store.WithTx(ctx, func(tx Store) error {
		r, err := tx.GetReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		if r == nil {
			return notFound("reservation", id)
		}
		if r.Status == StatusCancelled || r.Status == StatusCompleted {
			return violation(RuleInvalidTransition, "Cannot update a reservation that is %s", r.Status)
		}
		if err := checkFuture(req.Moment, now); err != nil {
			return err
		}
		if err := checkPartySize(req.PartySize); err != nil {
			return err
		}
		minutes, err := normalizeDuration(req.DurationMinutes)
		if err != nil {
			return err
		}
		iv := NewInterval(req.Moment, minutes)

		move, err := needsNewTable(ctx, tx, r, req, iv)
		if err != nil {
			return err
		}
		previous := r.TableID
		if move {
			table, err := chooseTable(ctx, tx, r, req, iv)
			if err != nil {
				return err
			}
			r.TableID = table.ID
		}

		r.Moment = req.Moment
		r.PartySize = req.PartySize
		r.DurationMinutes = minutes
		if req.SpecialRequests != nil {
			r.SpecialRequests = strings.TrimSpace(*req.SpecialRequests)
		}
		r.UpdatedAt = now
		if err := tx.SaveReservation(ctx, r); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}

		notes := ""
		if previous != r.TableID {
			notes = fmt.Sprintf("Moved from table %d to table %d", previous, r.TableID)
		}
		if err := tx.AppendLog(ctx, LogEntry{
			ReservationID: r.ID,
			Action:        ActionUpdated,
			OldStatus:     r.Status,
			NewStatus:     r.Status,
			At:            now,
			Notes:         notes,
		}); err != nil {
			return fmt.Errorf("append reservation log: %w", err)
		}
		updated = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(EventUpdated, updated, now))
	return &updated, nil
}

func needsNewTable(ctx context.Context, tx Store, r *Reservation, req UpdateRequest, iv Interval) (bool, error) {
	if req.TableID != 0 && req.TableID != r.TableID {
		return true, nil
	}
	current, err := tx.GetTable(ctx, r.TableID)
	if err != nil {
		return false, fmt.Errorf("load current table: %w", err)
	}
	if current == nil || !current.Active || !current.Fits(req.PartySize) {
		return true, nil
	}
	if iv.Start.Equal(r.Moment) && iv.Duration == r.Interval().Duration {
		return false, nil
	}
	conflict, err := tx.HasConflictingReservation(ctx, r.TableID, iv, r.ID)
	if err != nil {
		return false, fmt.Errorf("check conflicts for table %d: %w", r.TableID, err)
	}
	return conflict, nil
}

func chooseTable(ctx context.Context, tx Store, r *Reservation, req UpdateRequest, iv Interval) (*Table, error) {
	inv := Inventory{Store: tx}

	if req.TableID != 0 {
		t, err := tx.GetTable(ctx, req.TableID)
		if err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
		if t == nil {
			return nil, notFound("table", req.TableID)
		}
		if !t.Active {
			return nil, violation(RuleTableInactive, "Table %s is not active", t.Number)
		}
		if !t.Fits(req.PartySize) {
			return nil, violation(RuleTableCapacity, "Table %s cannot seat a party of %d", t.Number, req.PartySize)
		}
		ok, err := inv.tableAvailable(ctx, t.ID, iv, r.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnavailableError{
				Moment:    req.Moment,
				PartySize: req.PartySize,
				Reason:    fmt.Sprintf("Table %s is not available at the requested time", t.Number),
			}
		}
		return t, nil
	}

	t, err := inv.Assign(ctx, AssignmentRequest{
		Moment:    iv.Start,
		PartySize: req.PartySize,
		Duration:  iv.Duration,
		Exclude:   r.ID,
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &UnavailableError{
			Moment:    req.Moment,
			PartySize: req.PartySize,
			Reason:    "No available tables for the updated reservation",
		}
	}
	return t, nil
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func (s *ReservationService) CancelReservation(ctx context.Context, id ReservationID, reason string) (*Reservation, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, StatusCancelled, ActionCancelled, EventCancelled, reason,
		func(r *Reservation, now time.Time) error {
			if r.Moment.Sub(now) < CancellationCutoff {
				return violation(RuleCancellationWindow, "Cannot cancel reservations less than 2 hours before the reservation time")
			}
			r.CancelledAt = &now
			r.CancellationReason = reason
			return nil
		})
}

func (s *ReservationService) ConfirmReservation(ctx context.Context, id ReservationID) (*Reservation, error) {
	return s.transition(ctx, id, StatusConfirmed, ActionConfirmed, EventConfirmed, "",
		func(r *Reservation, _ time.Time) error {
			r.IsConfirmed = true
			return nil
		})
}

func (s *ReservationService) SeatReservation(ctx context.Context, id ReservationID) (*Reservation, error) {
	return s.transition(ctx, id, StatusSeated, ActionSeated, EventSeated, "", nil)
}

func (s *ReservationService) CompleteReservation(ctx context.Context, id ReservationID) (*Reservation, error) {
	return s.transition(ctx, id, StatusCompleted, ActionCompleted, EventCompleted, "", nil)
}

func (s *ReservationService) MarkNoShow(ctx context.Context, id ReservationID) (*Reservation, error) {
	return s.transition(ctx, id, StatusNoShow, ActionNoShow, EventNoShow, "",
		func(r *Reservation, now time.Time) error {
			if r.Moment.After(now) {
				return violation(RuleNoShowTooEarly, "Cannot mark future reservations as no-show")
			}
			return nil
		})
}

func (s *ReservationService) transition(
	ctx context.Context,
	id ReservationID,
	to Status,
	action string,
	evType EventType,
	notes string,
	guard func(r *Reservation, now time.Time) error,
) (*Reservation, error) {
	now := s.now()

	var changed Reservation
	err := s.Store.WithTx(ctx, func(tx Store) error {
		r, err := tx.GetReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		if r == nil {
			return notFound("reservation", id)
		}
		if !r.Status.CanTransitionTo(to) {
			return transitionError(r.Status, to)
		}
		if guard != nil {
			if err := guard(r, now); err != nil {
				return err
			}
		}

		from := r.Status
		r.Status = to
		r.UpdatedAt = now
		if err := tx.SaveReservation(ctx, r); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		if err := tx.AppendLog(ctx, LogEntry{
			ReservationID: r.ID,
			Action:        action,
			OldStatus:     from,
			NewStatus:     to,
			At:            now,
			Notes:         notes,
		}); err != nil {
			return fmt.Errorf("append reservation log: %w", err)
		}
		changed = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(evType, changed, now))
	return &changed, nil
}

// =============================================================================
// QUERIES
// =============================================================================

func (s *ReservationService) GetReservation(ctx context.Context, id ReservationID) (*Reservation, error) {
	r, err := s.Store.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	if r == nil {
		return nil, notFound("reservation", id)
	}
	return r, nil
}

func (s *ReservationService) GetReservationByCode(ctx context.Context, code string) (*Reservation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	r, err := s.Store.GetReservationByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load reservation by code: %w", err)
	}
	if r == nil {
		return nil, notFound("reservation", code)
	}
	return r, nil
}

// ListCustomerReservations returns the customer's reservations, newest first.
func (s *ReservationService) ListCustomerReservations(ctx context.Context, id CustomerID) ([]Reservation, error) {
	c, err := s.Store.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if c == nil {
		return nil, notFound("customer", id)
	}
	return s.Store.ListByCustomer(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	return s.Store.ListReservations(ctx, filter)
}

// ReservationHistory returns the audit trail of one reservation.
func (s *ReservationService) ReservationHistory(ctx context.Context, id ReservationID) ([]LogEntry, error) {
	if _, err := s.GetReservation(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.ListLogs(ctx, id)
}

// UpcomingReservations returns confirmed reservations starting within the
// next `within`.
func (s *ReservationService) UpcomingReservations(ctx context.Context, within time.Duration) ([]Reservation, error) {
	now := s.now()
	return s.Store.ListReservations(ctx, ReservationFilter{
		Statuses: []Status{StatusConfirmed},
		From:     now,
		To:       now.Add(within),
	})
}

// SendReminders publishes a reminder for every confirmed reservation that
// starts in [from, to). Callers tile consecutive windows so each reminder
// goes out once.
func (s *ReservationService) SendReminders(ctx context.Context, from, to time.Time) (int, error) {
	now := s.now()
	due, err := s.Store.ListReservations(ctx, ReservationFilter{
		Statuses: []Status{StatusConfirmed},
		From:     from,
		To:       to,
	})
	if err != nil {
		return 0, fmt.Errorf("list reminder candidates: %w", err)
	}
	for _, r := range due {
		s.publish(ctx, newEvent(EventReminder, r, now))
	}
	return len(due), nil
}

// =============================================================================
// GUARDS & HELPERS
// =============================================================================

func checkFuture(moment, now time.Time) error {
	if !moment.After(now) {
		return violation(RuleMomentInPast, "Reservation date must be in the future")
	}
	return nil
}

func checkPartySize(n int) error {
	if n < MinPartySize || n > MaxPartySize {
		return violation(RulePartySize, "Party size must be between %d and %d", MinPartySize, MaxPartySize)
	}
	return nil
}

func normalizeDuration(minutes int) (int, error) {
	switch {
	case minutes == 0:
		return DefaultDurationMinutes, nil
	case minutes < 0:
		return 0, violation(RuleDuration, "Duration must be positive")
	}
	return minutes, nil
}

// Now is the service clock.
func (s *ReservationService) Now() time.Time {
	return s.now()
}

func (s *ReservationService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *ReservationService) codes() CodeGenerator {
	if s.Codes == nil {
		return RandomCodes{}
	}
	return s.Codes
}

func (s *ReservationService) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s *ReservationService) publish(ctx context.Context, ev Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.logger().WithError(err).WithFields(logrus.Fields{
			"event":          ev.Type,
			"reservation_id": ev.ReservationID,
		}).Warn("failed to publish reservation event")
	}
}
