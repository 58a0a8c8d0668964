// Package store provides Store implementations.
package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/warp/reservation-engine/booking"
)

// =============================================================================
// MEMORY STATE - Unlocked implementation of booking.Store
// =============================================================================

// state holds the data and implements booking.Store without locking. The
// Memory wrapper locks around it; WithTx hands it to fn directly while
// holding the write lock.
type state struct {
	customers    map[booking.CustomerID]booking.Customer
	tables       map[booking.TableID]booking.Table
	reservations map[booking.ReservationID]booking.Reservation
	logs         []booking.LogEntry

	nextCustomer    booking.CustomerID
	nextTable       booking.TableID
	nextReservation booking.ReservationID
	nextLog         int64
}

func newState() *state {
	return &state{
		customers:    make(map[booking.CustomerID]booking.Customer),
		tables:       make(map[booking.TableID]booking.Table),
		reservations: make(map[booking.ReservationID]booking.Reservation),
	}
}

func (s *state) clone() *state {
	c := *s
	c.customers = maps.Clone(s.customers)
	c.tables = maps.Clone(s.tables)
	c.reservations = maps.Clone(s.reservations)
	c.logs = slices.Clone(s.logs)
	return &c
}

// ----- customers -----

func (s *state) GetCustomer(_ context.Context, id booking.CustomerID) (*booking.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *state) ListCustomers(_ context.Context) ([]booking.Customer, error) {
	out := slices.Collect(maps.Values(s.customers))
	slices.SortFunc(out, func(a, b booking.Customer) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *state) SaveCustomer(_ context.Context, c *booking.Customer) error {
	if c.ID == 0 {
		s.nextCustomer++
		c.ID = s.nextCustomer
	} else if c.ID > s.nextCustomer {
		s.nextCustomer = c.ID
	}
	s.customers[c.ID] = *c
	return nil
}

// ----- tables -----

func (s *state) GetTable(_ context.Context, id booking.TableID) (*booking.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *state) GetTableByNumber(_ context.Context, number string) (*booking.Table, error) {
	for _, t := range s.tables {
		if strings.EqualFold(t.Number, number) {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *state) ListTables(_ context.Context, activeOnly bool) ([]booking.Table, error) {
	var out []booking.Table
	for _, t := range s.tables {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b booking.Table) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *state) ListActiveTablesWithReservations(ctx context.Context, f booking.TableFilter) ([]booking.TableWithReservations, error) {
	tables, _ := s.ListTables(ctx, true)

	var out []booking.TableWithReservations
	for _, t := range tables {
		if f.MinCapacity > 0 && t.Capacity < f.MinCapacity {
			continue
		}
		if f.Location != "" && !t.MatchesLocation(f.Location) {
			continue
		}
		entry := booking.TableWithReservations{Table: t}
		for _, r := range s.reservations {
			if r.TableID != t.ID || !r.Occupies() {
				continue
			}
			if f.Window != nil && !r.Interval().Overlaps(*f.Window) {
				continue
			}
			entry.Reservations = append(entry.Reservations, r)
		}
		sortReservations(entry.Reservations)
		out = append(out, entry)
	}
	return out, nil
}

func (s *state) SaveTable(_ context.Context, t *booking.Table) error {
	for _, other := range s.tables {
		if other.ID != t.ID && strings.EqualFold(other.Number, t.Number) {
			return booking.ErrDuplicateTableNumber
		}
	}
	if t.ID == 0 {
		s.nextTable++
		t.ID = s.nextTable
	} else if t.ID > s.nextTable {
		s.nextTable = t.ID
	}
	s.tables[t.ID] = *t
	return nil
}

func (s *state) DeleteTable(_ context.Context, id booking.TableID) error {
	delete(s.tables, id)
	return nil
}

// ----- reservations -----

func (s *state) GetReservation(_ context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *state) GetReservationByCode(_ context.Context, code string) (*booking.Reservation, error) {
	for _, r := range s.reservations {
		if r.ConfirmationCode == code {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *state) ListByCustomer(_ context.Context, id booking.CustomerID) ([]booking.Reservation, error) {
	var out []booking.Reservation
	for _, r := range s.reservations {
		if r.CustomerID == id {
			out = append(out, r)
		}
	}
	sortReservations(out)
	slices.Reverse(out)
	return out, nil
}

func (s *state) ListReservations(_ context.Context, f booking.ReservationFilter) ([]booking.Reservation, error) {
	var out []booking.Reservation
	for _, r := range s.reservations {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	return out, nil
}

func (s *state) SaveReservation(ctx context.Context, r *booking.Reservation) error {
	for _, other := range s.reservations {
		if other.ID != r.ID && other.ConfirmationCode == r.ConfirmationCode {
			return booking.ErrDuplicateCode
		}
	}
	if r.Occupies() {
		conflict, _ := s.HasConflictingReservation(ctx, r.TableID, r.Interval(), r.ID)
		if conflict {
			return booking.ErrDoubleBooking
		}
	}
	if r.ID == 0 {
		s.nextReservation++
		r.ID = s.nextReservation
	} else if r.ID > s.nextReservation {
		s.nextReservation = r.ID
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *state) HasConflictingReservation(_ context.Context, tableID booking.TableID, iv booking.Interval, exclude booking.ReservationID) (bool, error) {
	for _, r := range s.reservations {
		if r.TableID != tableID || r.ID == exclude || !r.Occupies() {
			continue
		}
		if r.Interval().Overlaps(iv) {
			return true, nil
		}
	}
	return false, nil
}

// ----- audit log -----

func (s *state) AppendLog(_ context.Context, e booking.LogEntry) error {
	s.nextLog++
	e.ID = s.nextLog
	s.logs = append(s.logs, e)
	return nil
}

func (s *state) ListLogs(_ context.Context, id booking.ReservationID) ([]booking.LogEntry, error) {
	var out []booking.LogEntry
	for _, e := range s.logs {
		if e.ReservationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func sortReservations(rs []booking.Reservation) {
	slices.SortFunc(rs, func(a, b booking.Reservation) int {
		if c := a.Moment.Compare(b.Moment); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a booking.TxStore kept entirely in memory.
type Memory struct {
	mu sync.RWMutex
	st *state
}

func NewMemory() *Memory {
	return &Memory{st: newState()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole call, so transactions are serial.
func (m *Memory) WithTx(_ context.Context, fn func(booking.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(m.st); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = newState()
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) GetCustomer(ctx context.Context, id booking.CustomerID) (*booking.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetCustomer(ctx, id)
}

func (m *Memory) ListCustomers(ctx context.Context) ([]booking.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListCustomers(ctx)
}

func (m *Memory) SaveCustomer(ctx context.Context, c *booking.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveCustomer(ctx, c)
}

func (m *Memory) GetTable(ctx context.Context, id booking.TableID) (*booking.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetTable(ctx, id)
}

func (m *Memory) GetTableByNumber(ctx context.Context, number string) (*booking.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetTableByNumber(ctx, number)
}

func (m *Memory) ListTables(ctx context.Context, activeOnly bool) ([]booking.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListTables(ctx, activeOnly)
}

func (m *Memory) ListActiveTablesWithReservations(ctx context.Context, f booking.TableFilter) ([]booking.TableWithReservations, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListActiveTablesWithReservations(ctx, f)
}

func (m *Memory) SaveTable(ctx context.Context, t *booking.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveTable(ctx, t)
}

func (m *Memory) DeleteTable(ctx context.Context, id booking.TableID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.DeleteTable(ctx, id)
}

func (m *Memory) GetReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetReservation(ctx, id)
}

func (m *Memory) GetReservationByCode(ctx context.Context, code string) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.GetReservationByCode(ctx, code)
}

func (m *Memory) ListByCustomer(ctx context.Context, id booking.CustomerID) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListByCustomer(ctx, id)
}

func (m *Memory) ListReservations(ctx context.Context, f booking.ReservationFilter) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListReservations(ctx, f)
}

func (m *Memory) SaveReservation(ctx context.Context, r *booking.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveReservation(ctx, r)
}

func (m *Memory) HasConflictingReservation(ctx context.Context, tableID booking.TableID, iv booking.Interval, exclude booking.ReservationID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.HasConflictingReservation(ctx, tableID, iv, exclude)
}

func (m *Memory) AppendLog(ctx context.Context, e booking.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.AppendLog(ctx, e)
}

func (m *Memory) ListLogs(ctx context.Context, id booking.ReservationID) ([]booking.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListLogs(ctx, id)
}

var (
	_ booking.TxStore = (*Memory)(nil)
	_ booking.Store   = (*state)(nil)
)
