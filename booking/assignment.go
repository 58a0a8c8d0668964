package booking

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TABLE ASSIGNMENT - Preferred table, then location, then smallest fit
// =============================================================================

// AssignmentRequest describes the booking a table is being chosen for.
type AssignmentRequest struct {
	PreferredTableID  TableID // zero means no preference
	PreferredLocation string  // case-insensitive substring
	Moment            time.Time
	PartySize         int
	Duration          time.Duration

	// Exclude ignores one reservation when checking conflicts, so a
	// reservation being moved does not block itself.
	Exclude ReservationID
}

func (r AssignmentRequest) interval() Interval {
	return Interval{Start: r.Moment, Duration: r.Duration}
}

// Assign picks a table for the request, or returns nil when none is free.
// It has no side effects; the caller persists the reservation.
//
// Order:
//  1. The preferred table, if active, large enough and free.
//  2. Among free tables matching the preferred location, the smallest.
//  3. Among all free tables, the smallest.
//
// Ties on capacity go to the lowest table ID.
func (inv Inventory) Assign(ctx context.Context, req AssignmentRequest) (*Table, error) {
	if req.PreferredTableID != 0 {
		t, err := inv.Store.GetTable(ctx, req.PreferredTableID)
		if err != nil {
			return nil, fmt.Errorf("load preferred table: %w", err)
		}
		if t != nil && t.Active && t.Capacity >= req.PartySize {
			ok, err := inv.tableAvailable(ctx, t.ID, req.interval(), req.Exclude)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	}

	free, err := inv.availableTables(ctx, req.interval(), req.PartySize, req.Exclude)
	if err != nil {
		return nil, err
	}

	if loc := strings.TrimSpace(req.PreferredLocation); loc != "" {
		var matching []Table
		for _, t := range free {
			if t.MatchesLocation(loc) {
				matching = append(matching, t)
			}
		}
		if best := smallestFit(matching); best != nil {
			return best, nil
		}
	}
	return smallestFit(free), nil
}

// smallestFit returns the table with the lowest capacity, lowest ID first.
func smallestFit(tables []Table) *Table {
	var best *Table
	for i := range tables {
		t := &tables[i]
		if best == nil || t.Capacity < best.Capacity ||
			(t.Capacity == best.Capacity && t.ID < best.ID) {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
