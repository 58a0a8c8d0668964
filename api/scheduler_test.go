package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reservation-engine/booking"
	"github.com/warp/reservation-engine/booking/store"
)

type recordingSink struct {
	mu     sync.Mutex
	events []booking.Event
}

func (s *recordingSink) Publish(_ context.Context, ev booking.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) ofType(typ booking.EventType) []booking.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestReminderScheduler_RunNow(t *testing.T) {
	// GIVEN: Bookings tomorrow at 09:05 and 09:20 (clock is 09:00)
	ctx := context.Background()
	sink := &recordingSink{}
	h := NewHandler(store.NewMemory(), Options{
		Clock:  booking.NewManualClock(testNow),
		Events: sink,
		Logger: logrus.New(),
	})
	_, err := h.Tables.CreateTable(ctx, booking.TableInput{Number: "T1", Capacity: 4, Active: true})
	require.NoError(t, err)
	c, err := h.Customers.CreateCustomer(ctx, booking.CustomerInput{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	early, err := h.Reservations.CreateReservation(ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: testNow.Add(24*time.Hour + 5*time.Minute), PartySize: 2, DurationMinutes: 10,
	})
	require.NoError(t, err)
	_, err = h.Reservations.CreateReservation(ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: testNow.Add(24*time.Hour + 20*time.Minute), PartySize: 2, DurationMinutes: 10,
	})
	require.NoError(t, err)

	// WHEN: One 15-minute window is processed
	rs := NewReminderScheduler(h.Reservations, nil)
	sent := rs.RunNow(ctx)

	// THEN: Only the booking inside the window is reminded
	assert.Equal(t, 1, sent)
	reminders := sink.ofType(booking.EventReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, early.ReservationID, reminders[0].ReservationID)
}

func TestReminderScheduler_LateAndEarlyTicks(t *testing.T) {
	// GIVEN: Bookings tomorrow at 09:05 and 09:20 (clock is 09:00)
	ctx := context.Background()
	sink := &recordingSink{}
	clock := booking.NewManualClock(testNow)
	h := NewHandler(store.NewMemory(), Options{Clock: clock, Events: sink, Logger: logrus.New()})
	_, err := h.Tables.CreateTable(ctx, booking.TableInput{Number: "T1", Capacity: 4, Active: true})
	require.NoError(t, err)
	c, err := h.Customers.CreateCustomer(ctx, booking.CustomerInput{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	var ids []booking.ReservationID
	for _, offset := range []time.Duration{5 * time.Minute, 20 * time.Minute} {
		conf, err := h.Reservations.CreateReservation(ctx, booking.CreateRequest{
			CustomerID: c.ID, Moment: testNow.Add(24*time.Hour + offset), PartySize: 2, DurationMinutes: 10,
		})
		require.NoError(t, err)
		ids = append(ids, conf.ReservationID)
	}

	rs := NewReminderScheduler(h.Reservations, nil)
	assert.Equal(t, 1, rs.RunNow(ctx))

	// WHEN: The next tick fires 30 minutes later instead of 15
	clock.Advance(30 * time.Minute)

	// THEN: The 09:20 booking that fell between ticks is still reminded
	assert.Equal(t, 1, rs.RunNow(ctx))

	// AND: An immediate extra tick repeats nothing
	assert.Equal(t, 0, rs.RunNow(ctx))

	reminders := sink.ofType(booking.EventReminder)
	require.Len(t, reminders, 2)
	assert.Equal(t, ids[0], reminders[0].ReservationID)
	assert.Equal(t, ids[1], reminders[1].ReservationID)
}

func TestReminderScheduler_StartStop(t *testing.T) {
	h := NewHandler(store.NewMemory(), Options{Clock: booking.NewManualClock(testNow)})
	rs := NewReminderScheduler(h.Reservations, nil)

	// Disabled: Start and Stop are no-ops
	rs.Start()
	rs.Stop()

	rs.Enabled = true
	rs.CheckInterval = time.Hour
	rs.Start()
	rs.Start()
	rs.Stop()
	rs.Stop()
}
