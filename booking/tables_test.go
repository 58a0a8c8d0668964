package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reservation-engine/booking"
)

func TestCreateTable_Validation(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "Main")

	tests := []struct {
		name string
		in   booking.TableInput
		rule string
	}{
		{"duplicate number", booking.TableInput{Number: "T1", Capacity: 2}, booking.RuleDuplicateTable},
		{"duplicate number any case", booking.TableInput{Number: " t1 ", Capacity: 2}, booking.RuleDuplicateTable},
		{"missing number", booking.TableInput{Number: "  ", Capacity: 2}, booking.RuleInvalidInput},
		{"zero capacity", booking.TableInput{Number: "T9", Capacity: 0}, booking.RuleTableBounds},
		{"min above capacity", booking.TableInput{Number: "T9", Capacity: 4, MinCapacity: intPtr(5)}, booking.RuleTableBounds},
		{"min not positive", booking.TableInput{Number: "T9", Capacity: 4, MinCapacity: intPtr(0)}, booking.RuleTableBounds},
		{"max below capacity", booking.TableInput{Number: "T9", Capacity: 4, MaxCapacity: intPtr(3)}, booking.RuleTableBounds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tables.CreateTable(f.ctx, tc.in)
			requireRule(t, err, tc.rule)
		})
	}

	ok, err := f.tables.CreateTable(f.ctx, booking.TableInput{
		Number: "T2", Capacity: 4, MinCapacity: intPtr(4), MaxCapacity: intPtr(6), Active: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, ok.ID)
	assert.Equal(t, testNow, ok.CreatedAt)
}

func TestUpdateTable(t *testing.T) {
	f := newFixture(t)
	t1 := f.addTable(t, "T1", 4, "Main")
	f.addTable(t, "T2", 4, "Main")

	// Renaming onto another table's number is refused.
	_, err := f.tables.UpdateTable(f.ctx, t1.ID, booking.TableInput{Number: "t2", Capacity: 4, Active: true})
	requireRule(t, err, booking.RuleDuplicateTable)

	// Keeping its own number is fine.
	updated, err := f.tables.UpdateTable(f.ctx, t1.ID, booking.TableInput{
		Number: "T1", Capacity: 6, Location: "Terrace", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)
	assert.Equal(t, "Terrace", updated.Location)

	got, err := f.tables.GetTableByNumber(f.ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Terrace", got.Location)

	_, err = f.tables.UpdateTable(f.ctx, 999, booking.TableInput{Number: "X", Capacity: 2})
	assert.True(t, booking.IsNotFound(err))
}

func TestDeleteTable(t *testing.T) {
	t.Run("refuses while future bookings exist", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(t, "T1", 4, "")
		c := f.addCustomer(t, "Jo", "King")
		f.book(t, c, at(10, 19, 0), 2)

		err := f.tables.DeleteTable(f.ctx, table.ID)
		requireRule(t, err, booking.RuleTableInUse)
	})

	t.Run("deactivates a table with history", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(t, "T1", 4, "")
		c := f.addCustomer(t, "Kim", "Lee")
		f.insertReservation(t, booking.Reservation{
			CustomerID: c.ID, TableID: table.ID, Moment: at(3, 19, 0), PartySize: 2,
			Status: booking.StatusCompleted,
		})

		require.NoError(t, f.tables.DeleteTable(f.ctx, table.ID))

		got, err := f.tables.GetTable(f.ctx, table.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)

		active, err := f.tables.ListTables(f.ctx, true)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("cancelled future bookings do not block", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(t, "T1", 4, "")
		c := f.addCustomer(t, "Lu", "Moss")
		conf := f.book(t, c, at(12, 19, 0), 2)
		_, err := f.svc.CancelReservation(f.ctx, conf.ReservationID, "changed plans")
		require.NoError(t, err)

		require.NoError(t, f.tables.DeleteTable(f.ctx, table.ID))
	})

	t.Run("removes a table without history", func(t *testing.T) {
		f := newFixture(t)
		table := f.addTable(t, "T1", 4, "")

		require.NoError(t, f.tables.DeleteTable(f.ctx, table.ID))

		_, err := f.tables.GetTable(f.ctx, table.ID)
		assert.True(t, booking.IsNotFound(err))
	})

	t.Run("unknown table", func(t *testing.T) {
		f := newFixture(t)
		assert.True(t, booking.IsNotFound(f.tables.DeleteTable(f.ctx, 42)))
	})
}

func TestTableSchedule(t *testing.T) {
	// GIVEN: Three bookings on one table, one of them cancelled
	f := newFixture(t)
	table := f.addTable(t, "T1", 4, "")
	ann := f.addCustomer(t, "Ann", "North")
	bob := f.addCustomer(t, "Bob", "South")

	late := f.book(t, ann, at(11, 20, 0), 2)
	early := f.book(t, bob, at(11, 12, 0), 3)
	dropped := f.book(t, bob, at(11, 16, 0), 2)
	_, err := f.svc.CancelReservation(f.ctx, dropped.ReservationID, "")
	require.NoError(t, err)
	f.book(t, ann, at(12, 12, 0), 2) // next day

	// WHEN: Reading the schedule
	entries, err := f.tables.TableSchedule(f.ctx, table.ID, at(11, 8, 0))

	// THEN: Ordered by start, cancelled excluded, names filled
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, early.ReservationID, entries[0].ReservationID)
	assert.Equal(t, "Bob South", entries[0].CustomerName)
	assert.Equal(t, at(11, 14, 0), entries[0].End)
	assert.Equal(t, late.ReservationID, entries[1].ReservationID)
	assert.Equal(t, "Ann North", entries[1].CustomerName)
	assert.Equal(t, booking.StatusConfirmed, entries[1].Status)

	_, err = f.tables.TableSchedule(f.ctx, 999, at(11, 8, 0))
	assert.True(t, booking.IsNotFound(err))
}
