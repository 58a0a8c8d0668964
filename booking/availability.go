package booking

import (
	"context"
	"iter"
	"time"
)

// Opening hours of the availability grid. Slots start every SlotInterval
// from OpeningHour up to, but excluding, ClosingHour: 22 per day.
const (
	OpeningHour  = 11
	ClosingHour  = 22
	SlotInterval = 30 * time.Minute
)

// SlotAvailability is one row of the daily grid.
type SlotAvailability struct {
	Time            time.Time
	AvailableTables int
	TableIDs        []TableID
}

type DailyAvailability struct {
	Date      time.Time
	PartySize int
	Slots     []SlotAvailability
}

// SlotTimes yields the slot start times of date's calendar day in date's
// location. The sequence is finite and can be ranged over repeatedly.
func SlotTimes(date time.Time) iter.Seq[time.Time] {
	day := StartOfDay(date)
	open := time.Date(day.Year(), day.Month(), day.Day(), OpeningHour, 0, 0, 0, day.Location())
	closing := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, day.Location())

	return func(yield func(time.Time) bool) {
		for t := open; t.Before(closing); t = t.Add(SlotInterval) {
			if !yield(t) {
				return
			}
		}
	}
}

// CheckAvailability builds the grid for one day, probing each slot with
// DefaultProbeWindow.
func (inv Inventory) CheckAvailability(ctx context.Context, date time.Time, partySize int) (*DailyAvailability, error) {
	if err := checkPartySize(partySize); err != nil {
		return nil, err
	}

	out := &DailyAvailability{Date: StartOfDay(date), PartySize: partySize}
	for slot := range SlotTimes(date) {
		tables, err := inv.FindAvailableTables(ctx, slot, partySize, DefaultProbeWindow)
		if err != nil {
			return nil, err
		}
		ids := make([]TableID, len(tables))
		for i, t := range tables {
			ids[i] = t.ID
		}
		out.Slots = append(out.Slots, SlotAvailability{
			Time:            slot,
			AvailableTables: len(tables),
			TableIDs:        ids,
		})
	}
	return out, nil
}
