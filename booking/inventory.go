/*
inventory.go - Which tables are free at a given moment

PURPOSE:
  Answers "which active tables can seat this party during this interval?"
  The store supplies active tables with their occupying reservations; the
  overlap decision itself is always made here with Overlaps.

PROBE WINDOWS:
  General availability (the grid, GET /tables/available) probes a 3 hour
  window. A concrete booking probes its exact duration.

NOT FOUND:
  Missing or inactive tables are simply "not available". Only store errors
  are returned, wrapped, and never retried here.

SEE ALSO:
  - assignment.go: Picks one table out of FindAvailableTables
  - availability.go: Runs FindAvailableTables once per slot
*/
package booking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"
)

// DefaultProbeWindow is the interval used for general availability checks.
const DefaultProbeWindow = 3 * time.Hour

// Inventory reads table availability from a Store.
type Inventory struct {
	Store Store
}

// FindAvailableTables returns the active tables, ordered by ID, that fit the
// party and have no occupying reservation overlapping [moment, moment+window).
// A zero window means DefaultProbeWindow.
func (inv Inventory) FindAvailableTables(ctx context.Context, moment time.Time, partySize int, window time.Duration) ([]Table, error) {
	if window <= 0 {
		window = DefaultProbeWindow
	}
	return inv.availableTables(ctx, Interval{Start: moment, Duration: window}, partySize, 0)
}

// IsTableAvailable applies the overlap rule to one table. It is false when
// the table does not exist or is inactive.
func (inv Inventory) IsTableAvailable(ctx context.Context, tableID TableID, moment time.Time, duration time.Duration) (bool, error) {
	return inv.tableAvailable(ctx, tableID, Interval{Start: moment, Duration: duration}, 0)
}

func (inv Inventory) tableAvailable(ctx context.Context, tableID TableID, iv Interval, exclude ReservationID) (bool, error) {
	t, err := inv.Store.GetTable(ctx, tableID)
	if err != nil {
		return false, fmt.Errorf("load table %d: %w", tableID, err)
	}
	if t == nil || !t.Active {
		return false, nil
	}
	conflict, err := inv.Store.HasConflictingReservation(ctx, tableID, iv, exclude)
	if err != nil {
		return false, fmt.Errorf("check conflicts for table %d: %w", tableID, err)
	}
	return !conflict, nil
}

func (inv Inventory) availableTables(ctx context.Context, iv Interval, partySize int, exclude ReservationID) ([]Table, error) {
	candidates, err := inv.Store.ListActiveTablesWithReservations(ctx, TableFilter{
		MinCapacity: partySize,
		Window:      &iv,
	})
	if err != nil {
		return nil, fmt.Errorf("list active tables: %w", err)
	}

	var free []Table
	for _, c := range candidates {
		if !c.Table.Active || !c.Table.Fits(partySize) {
			continue
		}
		if conflicts(c.Reservations, iv, exclude) {
			continue
		}
		free = append(free, c.Table)
	}
	slices.SortFunc(free, func(a, b Table) int { return cmp.Compare(a.ID, b.ID) })
	return free, nil
}

func conflicts(reservations []Reservation, iv Interval, exclude ReservationID) bool {
	for _, r := range reservations {
		if r.ID == exclude || !r.Occupies() {
			continue
		}
		if r.Interval().Overlaps(iv) {
			return true
		}
	}
	return false
}
