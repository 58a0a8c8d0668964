/*
tables.go - Table management and per-table schedules

PURPOSE:
  CRUD over the dining floor with the rules the booking engine relies on:
  unique (case-insensitive) table numbers, consistent capacity bounds, and
  no removal of a table that still holds future reservations.

DELETE:
  A table with reservation history is deactivated instead of removed, so
  retained reservations keep pointing at a real table. A table that never
  held a reservation is removed.

SEE ALSO:
  - types.go: Table.Validate
  - api/handlers.go: /api/tables routes
*/
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TableService manages tables.
type TableService struct {
	Store TxStore
	Clock Clock
}

func NewTableService(store TxStore, clock Clock) *TableService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TableService{Store: store, Clock: clock}
}

// TableInput is the editable part of a table.
type TableInput struct {
	Number      string
	Capacity    int
	MinCapacity *int
	MaxCapacity *int
	Location    string
	Active      bool
}

func (s *TableService) CreateTable(ctx context.Context, in TableInput) (*Table, error) {
	t := Table{
		Number:      strings.TrimSpace(in.Number),
		Capacity:    in.Capacity,
		MinCapacity: in.MinCapacity,
		MaxCapacity: in.MaxCapacity,
		Location:    strings.TrimSpace(in.Location),
		Active:      in.Active,
		CreatedAt:   s.Clock.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.Store.WithTx(ctx, func(tx Store) error {
		if err := checkNumberFree(ctx, tx, t.Number, 0); err != nil {
			return err
		}
		if err := tx.SaveTable(ctx, &t); err != nil {
			return fmt.Errorf("save table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TableService) UpdateTable(ctx context.Context, id TableID, in TableInput) (*Table, error) {
	var updated Table
	err := s.Store.WithTx(ctx, func(tx Store) error {
		t, err := tx.GetTable(ctx, id)
		if err != nil {
			return fmt.Errorf("load table: %w", err)
		}
		if t == nil {
			return notFound("table", id)
		}

		t.Number = strings.TrimSpace(in.Number)
		t.Capacity = in.Capacity
		t.MinCapacity = in.MinCapacity
		t.MaxCapacity = in.MaxCapacity
		t.Location = strings.TrimSpace(in.Location)
		t.Active = in.Active
		if err := t.Validate(); err != nil {
			return err
		}
		if err := checkNumberFree(ctx, tx, t.Number, t.ID); err != nil {
			return err
		}
		if err := tx.SaveTable(ctx, t); err != nil {
			return fmt.Errorf("save table: %w", err)
		}
		updated = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTable removes a table, or deactivates it when it has history.
// Tables with occupying reservations from now on cannot be deleted.
func (s *TableService) DeleteTable(ctx context.Context, id TableID) error {
	now := s.Clock.Now()
	return s.Store.WithTx(ctx, func(tx Store) error {
		t, err := tx.GetTable(ctx, id)
		if err != nil {
			return fmt.Errorf("load table: %w", err)
		}
		if t == nil {
			return notFound("table", id)
		}

		history, err := tx.ListReservations(ctx, ReservationFilter{TableID: id})
		if err != nil {
			return fmt.Errorf("list table reservations: %w", err)
		}
		for _, r := range history {
			if r.Occupies() && r.End().After(now) {
				return violation(RuleTableInUse, "Cannot delete table with active future reservations")
			}
		}

		if len(history) > 0 {
			t.Active = false
			if err := tx.SaveTable(ctx, t); err != nil {
				return fmt.Errorf("deactivate table: %w", err)
			}
			return nil
		}
		if err := tx.DeleteTable(ctx, id); err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		return nil
	})
}

func (s *TableService) GetTable(ctx context.Context, id TableID) (*Table, error) {
	t, err := s.Store.GetTable(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	if t == nil {
		return nil, notFound("table", id)
	}
	return t, nil
}

func (s *TableService) GetTableByNumber(ctx context.Context, number string) (*Table, error) {
	t, err := s.Store.GetTableByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	if t == nil {
		return nil, notFound("table", number)
	}
	return t, nil
}

func (s *TableService) ListTables(ctx context.Context, activeOnly bool) ([]Table, error) {
	return s.Store.ListTables(ctx, activeOnly)
}

func checkNumberFree(ctx context.Context, tx Store, number string, self TableID) error {
	existing, err := tx.GetTableByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("check table number: %w", err)
	}
	if existing != nil && existing.ID != self {
		return violation(RuleDuplicateTable, "Table number %s already exists", number)
	}
	return nil
}

// =============================================================================
// SCHEDULE
// =============================================================================

// ScheduleEntry is one booking on a table's daily schedule.
type ScheduleEntry struct {
	ReservationID ReservationID
	Start         time.Time
	End           time.Time
	CustomerName  string
	PartySize     int
	Status        Status
}

// TableSchedule lists the table's non-cancelled reservations starting on
// date's calendar day, ordered by start time.
func (s *TableService) TableSchedule(ctx context.Context, id TableID, date time.Time) ([]ScheduleEntry, error) {
	if _, err := s.GetTable(ctx, id); err != nil {
		return nil, err
	}

	day := StartOfDay(date)
	reservations, err := s.Store.ListReservations(ctx, ReservationFilter{
		TableID: id,
		From:    day,
		To:      day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("list table reservations: %w", err)
	}

	names := make(map[CustomerID]string)
	entries := make([]ScheduleEntry, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == StatusCancelled {
			continue
		}
		name, ok := names[r.CustomerID]
		if !ok {
			c, err := s.Store.GetCustomer(ctx, r.CustomerID)
			if err != nil {
				return nil, fmt.Errorf("load customer: %w", err)
			}
			if c != nil {
				name = c.FullName()
			}
			names[r.CustomerID] = name
		}
		entries = append(entries, ScheduleEntry{
			ReservationID: r.ID,
			Start:         r.Moment,
			End:           r.End(),
			CustomerName:  name,
			PartySize:     r.PartySize,
			Status:        r.Status,
		})
	}
	return entries, nil
}
