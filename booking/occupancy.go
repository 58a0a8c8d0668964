package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TableOccupancy is one table's share of the opening hours in use.
type TableOccupancy struct {
	TableID       TableID
	TableNumber   string
	Capacity      int
	Reservations  int
	Covers        int
	BookedMinutes int
	Utilization   decimal.Decimal // BookedMinutes / open minutes, 4 places
}

type OccupancyReport struct {
	Date          time.Time
	OpenMinutes   int
	Tables        []TableOccupancy
	Reservations  int
	Covers        int
	BookedMinutes int
	Utilization   decimal.Decimal
}

// countsTowardOccupancy excludes reservations that never used the table.
func countsTowardOccupancy(s Status) bool {
	return s != StatusCancelled && s != StatusNoShow
}

// OccupancyReport measures how much of the day's opening hours each active
// table is booked for. Bookings are clipped to opening hours.
func (inv Inventory) OccupancyReport(ctx context.Context, date time.Time) (*OccupancyReport, error) {
	day := StartOfDay(date)
	open := time.Date(day.Year(), day.Month(), day.Day(), OpeningHour, 0, 0, 0, day.Location())
	closing := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, day.Location())
	openMinutes := int(closing.Sub(open) / time.Minute)

	tables, err := inv.Store.ListTables(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	// Reservations that started the previous evening can run past midnight
	// but never into opening hours, so the calendar day is enough.
	reservations, err := inv.Store.ListReservations(ctx, ReservationFilter{
		From: day,
		To:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	byTable := make(map[TableID][]Reservation)
	for _, r := range reservations {
		if countsTowardOccupancy(r.Status) {
			byTable[r.TableID] = append(byTable[r.TableID], r)
		}
	}

	report := &OccupancyReport{Date: day, OpenMinutes: openMinutes}
	for _, t := range tables {
		occ := TableOccupancy{TableID: t.ID, TableNumber: t.Number, Capacity: t.Capacity}
		for _, r := range byTable[t.ID] {
			occ.Reservations++
			occ.Covers += r.PartySize
			occ.BookedMinutes += clippedMinutes(r.Interval(), open, closing)
		}
		occ.Utilization = ratio(occ.BookedMinutes, openMinutes)
		report.Tables = append(report.Tables, occ)

		report.Reservations += occ.Reservations
		report.Covers += occ.Covers
		report.BookedMinutes += occ.BookedMinutes
	}
	report.Utilization = ratio(report.BookedMinutes, openMinutes*len(tables))
	return report, nil
}

func clippedMinutes(iv Interval, from, to time.Time) int {
	start, end := iv.Start, iv.End()
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

func ratio(num, den int) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Round(4)
}
