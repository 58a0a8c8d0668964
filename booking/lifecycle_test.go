package booking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reservation-engine/booking"
	"github.com/warp/reservation-engine/booking/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Monday morning, well before opening.
var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctx       context.Context
	store     *store.Memory
	clock     *booking.ManualClock
	svc       *booking.ReservationService
	tables    *booking.TableService
	customers *booking.CustomerService
	events    *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	clock := booking.NewManualClock(testNow)
	events := &recordingSink{}

	svc := booking.NewReservationService(mem, clock)
	svc.Events = events

	return &fixture{
		ctx:       context.Background(),
		store:     mem,
		clock:     clock,
		svc:       svc,
		tables:    booking.NewTableService(mem, clock),
		customers: booking.NewCustomerService(mem, clock),
		events:    events,
	}
}

func (f *fixture) addTable(t *testing.T, number string, capacity int, location string) booking.Table {
	t.Helper()
	tbl, err := f.tables.CreateTable(f.ctx, booking.TableInput{
		Number:   number,
		Capacity: capacity,
		Location: location,
		Active:   true,
	})
	require.NoError(t, err)
	return *tbl
}

func (f *fixture) addCustomer(t *testing.T, first, last string) booking.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(f.ctx, booking.CustomerInput{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
	})
	require.NoError(t, err)
	return *c
}

func (f *fixture) book(t *testing.T, c booking.Customer, moment time.Time, party int) *booking.Confirmation {
	t.Helper()
	conf, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID,
		Moment:     moment,
		PartySize:  party,
	})
	require.NoError(t, err)
	return conf
}

// insertReservation writes a reservation directly, bypassing the guards.
func (f *fixture) insertReservation(t *testing.T, r booking.Reservation) booking.Reservation {
	t.Helper()
	if r.DurationMinutes == 0 {
		r.DurationMinutes = booking.DefaultDurationMinutes
	}
	if r.ConfirmationCode == "" {
		code, err := booking.RandomCodes{}.NewCode()
		require.NoError(t, err)
		r.ConfirmationCode = code
	}
	require.NoError(t, f.store.SaveReservation(f.ctx, &r))
	return r
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, booking.ErrPolicyViolation), "expected policy violation, got %v", err)
	var pe *booking.PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, rule, pe.Rule)
}

type recordingSink struct {
	mu     sync.Mutex
	events []booking.Event
	fail   error
}

func (s *recordingSink) Publish(_ context.Context, ev booking.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) types() []booking.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.EventType
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

// assertNoOverlaps checks the core invariant over the whole store.
func assertNoOverlaps(t *testing.T, f *fixture) {
	t.Helper()
	all, err := f.store.ListReservations(f.ctx, booking.ReservationFilter{})
	require.NoError(t, err)
	for i, a := range all {
		for _, b := range all[i+1:] {
			if a.TableID != b.TableID || !a.Occupies() || !b.Occupies() {
				continue
			}
			assert.False(t, a.Interval().Overlaps(b.Interval()),
				"reservations %d and %d overlap on table %d", a.ID, b.ID, a.TableID)
		}
	}
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreateReservation_Success(t *testing.T) {
	// GIVEN: One table and a customer
	f := newFixture(t)
	table := f.addTable(t, "T1", 4, "Patio")
	alice := f.addCustomer(t, "Alice", "Martin")

	// WHEN: Booking dinner for three
	conf, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID:      alice.ID,
		Moment:          at(10, 19, 0),
		PartySize:       3,
		SpecialRequests: "  window seat ",
	})

	// THEN: The reservation is confirmed on the only table
	require.NoError(t, err)
	assert.Equal(t, table.ID, conf.TableID)
	assert.Equal(t, "T1", conf.TableNumber)
	assert.Equal(t, "Alice Martin", conf.CustomerName)
	assert.Equal(t, 3, conf.PartySize)
	assert.Equal(t, booking.DefaultDurationMinutes, conf.DurationMinutes)
	assert.Equal(t, "Reservation confirmed successfully!", conf.Message)
	assert.True(t, booking.ValidCode(conf.ConfirmationCode))

	r, err := f.svc.GetReservation(f.ctx, conf.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, r.Status)
	assert.True(t, r.IsConfirmed)
	assert.Equal(t, "window seat", r.SpecialRequests)
	assert.Equal(t, testNow, r.CreatedAt)

	byCode, err := f.svc.GetReservationByCode(f.ctx, conf.ConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, r.ID, byCode.ID)

	history, err := f.svc.ReservationHistory(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, booking.ActionCreated, history[0].Action)
	assert.Equal(t, booking.StatusConfirmed, history[0].NewStatus)

	assert.Equal(t, []booking.EventType{booking.EventCreated}, f.events.types())
}

func TestCreateReservation_PartySizeBounds(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "Big", 12, "")
	c := f.addCustomer(t, "Bob", "Stone")

	for _, party := range []int{0, 13, -1} {
		_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
			CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: party,
		})
		requireRule(t, err, booking.RulePartySize)
	}

	for _, party := range []int{1, 12} {
		_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
			CustomerID: c.ID, Moment: at(11+party, 19, 0), PartySize: party,
		})
		assert.NoError(t, err, "party of %d", party)
	}
}

func TestCreateReservation_DateWindow(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Cara", "Diaz")

	tests := []struct {
		name   string
		moment time.Time
		rule   string
	}{
		{"in the past", testNow.Add(-time.Hour), booking.RuleMomentInPast},
		{"exactly now", testNow, booking.RuleMomentInPast},
		{"91 days ahead", testNow.AddDate(0, 0, 91), booking.RuleBeyondHorizon},
		{"89 days ahead", testNow.AddDate(0, 0, 89), ""},
		{"exactly 90 days ahead", testNow.AddDate(0, 0, 90), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
				CustomerID: c.ID, Moment: tc.moment, PartySize: 2,
			})
			if tc.rule == "" {
				assert.NoError(t, err)
				return
			}
			requireRule(t, err, tc.rule)
		})
	}
}

func TestCreateReservation_CustomerChecks(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Dan", "Evans")

	// Unknown customer
	_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: 999, Moment: at(10, 19, 0), PartySize: 2,
	})
	assert.True(t, booking.IsNotFound(err))

	// Blacklisted customer
	_, err = f.customers.SetBlacklisted(f.ctx, c.ID, true)
	require.NoError(t, err)
	_, err = f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: 2,
	})
	requireRule(t, err, booking.RuleCustomerBlacklisted)
}

func TestCreateReservation_Duration(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Eve", "Fox")

	_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: 2, DurationMinutes: -30,
	})
	requireRule(t, err, booking.RuleDuration)

	conf, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 12, 0), PartySize: 2, DurationMinutes: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, conf.DurationMinutes)
}

func TestCreateReservation_NoTableIsUnavailable(t *testing.T) {
	// GIVEN: The only table is booked at 19:00
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Finn", "Gray")
	f.book(t, c, at(10, 19, 0), 2)

	// WHEN: Another party wants 20:00 (inside the first two hours)
	_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 20, 0), PartySize: 2,
	})

	// THEN: Unavailable, not a policy violation
	require.Error(t, err)
	assert.True(t, booking.IsUnavailable(err))
	assert.False(t, booking.IsClientError(err))

	// AND: 21:00 is back-to-back and succeeds
	f.book(t, c, at(10, 21, 0), 2)
}

func TestCreateReservation_CodeCollisionIsRegenerated(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Gus", "Hale")
	f.svc.Codes = &scriptedCodes{codes: []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}}

	first := f.book(t, c, at(10, 19, 0), 2)
	second := f.book(t, c, at(10, 19, 0), 2)

	assert.Equal(t, "AAAAAAAA", first.ConfirmationCode)
	assert.Equal(t, "BBBBBBBB", second.ConfirmationCode)
}

func TestCreateReservation_GivesUpOnPersistentCollisions(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Hal", "Ives")
	f.svc.Codes = &scriptedCodes{codes: []string{"SAMECODE"}}
	f.book(t, c, at(10, 19, 0), 2)

	_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: 2,
	})
	assert.ErrorIs(t, err, booking.ErrDuplicateCode)
}

func TestCreateReservation_FailureRollsBack(t *testing.T) {
	// GIVEN: A code generator that fails
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Ivy", "Jones")
	f.svc.Codes = &scriptedCodes{err: errors.New("entropy exhausted")}

	// WHEN: Creating
	_, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: 2,
	})

	// THEN: Infrastructure error, nothing persisted, nothing published
	require.Error(t, err)
	assert.False(t, booking.IsClientError(err))
	all, err := f.store.ListReservations(f.ctx, booking.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.events.types())
}

func TestCreateReservation_PublishFailureIsLoggedNotReturned(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Jon", "Kent")

	logger, hook := logtest.NewNullLogger()
	f.svc.Log = logger
	f.events.fail = errors.New("broker down")

	conf, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
		CustomerID: c.ID, Moment: at(10, 19, 0), PartySize: 2,
	})
	require.NoError(t, err)
	assert.NotZero(t, conf.ReservationID)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, booking.EventCreated, hook.LastEntry().Data["event"])
}

type scriptedCodes struct {
	codes []string
	i     int
	err   error
}

func (s *scriptedCodes) NewCode() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	code := s.codes[min(s.i, len(s.codes)-1)]
	s.i++
	return code, nil
}

// =============================================================================
// CANCEL
// =============================================================================

func TestCancelReservation_TwoHourCutoff(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Kim", "Lee")

	soon := f.book(t, c, testNow.Add(time.Hour), 2)
	later := f.book(t, c, testNow.Add(3*time.Hour), 2)

	_, err := f.svc.CancelReservation(f.ctx, soon.ReservationID, "")
	requireRule(t, err, booking.RuleCancellationWindow)

	r, err := f.svc.CancelReservation(f.ctx, later.ReservationID, "  change of plans ")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, r.Status)
	require.NotNil(t, r.CancelledAt)
	assert.Equal(t, testNow, *r.CancelledAt)
	assert.Equal(t, "change of plans", r.CancellationReason)

	// Exactly two hours before is still allowed.
	edge := f.book(t, c, testNow.Add(5*time.Hour), 2)
	f.clock.Advance(3 * time.Hour)
	_, err = f.svc.CancelReservation(f.ctx, edge.ReservationID, "")
	assert.NoError(t, err)
}

func TestCancelReservation_TerminalStates(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Lou", "Moss")
	conf := f.book(t, c, at(10, 19, 0), 2)

	_, err := f.svc.CancelReservation(f.ctx, conf.ReservationID, "")
	require.NoError(t, err)

	_, err = f.svc.CancelReservation(f.ctx, conf.ReservationID, "")
	requireRule(t, err, booking.RuleInvalidTransition)

	_, err = f.svc.CancelReservation(f.ctx, 404, "")
	assert.True(t, booking.IsNotFound(err))
}

func TestCancelReservation_FreesTheTable(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Max", "Nash")
	conf := f.book(t, c, at(10, 19, 0), 2)

	_, err := f.svc.CancelReservation(f.ctx, conf.ReservationID, "")
	require.NoError(t, err)

	again := f.book(t, c, at(10, 19, 0), 2)
	assert.Equal(t, conf.TableID, again.TableID)
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestStateMachine_SeatAndComplete(t *testing.T) {
	f := newFixture(t)
	table := f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Ned", "Owen")

	pending := f.insertReservation(t, booking.Reservation{
		CustomerID: c.ID, TableID: table.ID, Moment: at(10, 12, 0),
		PartySize: 2, Status: booking.StatusPending,
	})

	// Seat on Pending fails
	_, err := f.svc.SeatReservation(f.ctx, pending.ID)
	requireRule(t, err, booking.RuleInvalidTransition)

	// Confirm from Pending
	r, err := f.svc.ConfirmReservation(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, r.Status)
	assert.True(t, r.IsConfirmed)

	// Confirm twice fails
	_, err = f.svc.ConfirmReservation(f.ctx, pending.ID)
	requireRule(t, err, booking.RuleInvalidTransition)

	// Complete on Confirmed fails
	_, err = f.svc.CompleteReservation(f.ctx, pending.ID)
	requireRule(t, err, booking.RuleInvalidTransition)

	// Seat on Confirmed succeeds
	r, err = f.svc.SeatReservation(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusSeated, r.Status)

	// Cancel on Seated fails
	_, err = f.svc.CancelReservation(f.ctx, pending.ID, "")
	requireRule(t, err, booking.RuleInvalidTransition)

	// Complete on Seated succeeds
	r, err = f.svc.CompleteReservation(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, r.Status)

	history, err := f.svc.ReservationHistory(f.ctx, pending.ID)
	require.NoError(t, err)
	var actions []string
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{booking.ActionConfirmed, booking.ActionSeated, booking.ActionCompleted}, actions)
	assert.Equal(t, booking.StatusSeated, history[2].OldStatus)
}

func TestStateMachine_NoShow(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Ola", "Park")
	conf := f.book(t, c, at(10, 12, 0), 2)

	_, err := f.svc.MarkNoShow(f.ctx, conf.ReservationID)
	requireRule(t, err, booking.RuleNoShowTooEarly)

	f.clock.Set(at(10, 12, 0))
	r, err := f.svc.MarkNoShow(f.ctx, conf.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusNoShow, r.Status)

	_, err = f.svc.SeatReservation(f.ctx, conf.ReservationID)
	requireRule(t, err, booking.RuleInvalidTransition)
}

func TestStateMachine_NoShowOnlyFromConfirmed(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Pat", "Quinn")
	conf := f.book(t, c, at(10, 12, 0), 2)

	_, err := f.svc.SeatReservation(f.ctx, conf.ReservationID)
	require.NoError(t, err)

	f.clock.Set(at(10, 13, 0))
	_, err = f.svc.MarkNoShow(f.ctx, conf.ReservationID)
	requireRule(t, err, booking.RuleInvalidTransition)
}

func TestStateMachine_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	for name, fn := range map[string]func(context.Context, booking.ReservationID) (*booking.Reservation, error){
		"confirm":  f.svc.ConfirmReservation,
		"seat":     f.svc.SeatReservation,
		"complete": f.svc.CompleteReservation,
		"no-show":  f.svc.MarkNoShow,
	} {
		_, err := fn(f.ctx, 42)
		assert.True(t, booking.IsNotFound(err), name)
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdateReservation_KeepsTableWhenStillFree(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Rae", "Stone")
	conf := f.book(t, c, at(10, 19, 0), 2)

	// Shift by 30 minutes: overlaps only itself.
	notes := "birthday"
	r, err := f.svc.UpdateReservation(f.ctx, conf.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 30), PartySize: 3, SpecialRequests: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, conf.TableID, r.TableID)
	assert.Equal(t, 3, r.PartySize)
	assert.Equal(t, "birthday", r.SpecialRequests)
	assert.Equal(t, booking.StatusConfirmed, r.Status)
}

func TestUpdateReservation_MovesOnConflict(t *testing.T) {
	// GIVEN: Two reservations on different tables at 19:00 and 21:00
	f := newFixture(t)
	t1 := f.addTable(t, "T1", 2, "")
	t2 := f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Sam", "Tate")
	early := f.book(t, c, at(10, 17, 0), 2) // T1
	late := f.book(t, c, at(10, 20, 0), 2)  // T1 too, back-to-back free
	require.Equal(t, t1.ID, early.TableID)
	require.Equal(t, t1.ID, late.TableID)

	// WHEN: Moving the early one onto the late one's time
	r, err := f.svc.UpdateReservation(f.ctx, early.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 30), PartySize: 2,
	})

	// THEN: It moves to the other table
	require.NoError(t, err)
	assert.Equal(t, t2.ID, r.TableID)
	assertNoOverlaps(t, f)

	history, err := f.svc.ReservationHistory(f.ctx, early.ReservationID)
	require.NoError(t, err)
	assert.Contains(t, history[len(history)-1].Notes, "Moved from table")
}

func TestUpdateReservation_PartyOutgrowsTable(t *testing.T) {
	f := newFixture(t)
	small := f.addTable(t, "T1", 2, "")
	large := f.addTable(t, "T2", 6, "")
	c := f.addCustomer(t, "Tia", "Upton")
	conf := f.book(t, c, at(10, 19, 0), 2)
	require.Equal(t, small.ID, conf.TableID)

	r, err := f.svc.UpdateReservation(f.ctx, conf.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, large.ID, r.TableID)
}

func TestUpdateReservation_ExplicitTable(t *testing.T) {
	f := newFixture(t)
	t1 := f.addTable(t, "T1", 4, "")
	t2 := f.addTable(t, "T2", 4, "")
	tiny := f.addTable(t, "T3", 2, "")
	c := f.addCustomer(t, "Uma", "Vale")
	mine := f.book(t, c, at(10, 19, 0), 4)
	other := f.book(t, c, at(10, 19, 0), 4)
	require.Equal(t, t1.ID, mine.TableID)
	require.Equal(t, t2.ID, other.TableID)

	// Busy explicit table
	_, err := f.svc.UpdateReservation(f.ctx, mine.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 4, TableID: t2.ID,
	})
	assert.True(t, booking.IsUnavailable(err))

	// Too small
	_, err = f.svc.UpdateReservation(f.ctx, mine.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 4, TableID: tiny.ID,
	})
	requireRule(t, err, booking.RuleTableCapacity)

	// Unknown
	_, err = f.svc.UpdateReservation(f.ctx, mine.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 4, TableID: 999,
	})
	assert.True(t, booking.IsNotFound(err))

	// Inactive
	_, err = f.tables.UpdateTable(f.ctx, tiny.ID, booking.TableInput{Number: "T3", Capacity: 4, Active: false})
	require.NoError(t, err)
	_, err = f.svc.UpdateReservation(f.ctx, mine.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 4, TableID: tiny.ID,
	})
	requireRule(t, err, booking.RuleTableInactive)

	// Free explicit table at a later time
	r, err := f.svc.UpdateReservation(f.ctx, mine.ReservationID, booking.UpdateRequest{
		Moment: at(10, 21, 0), PartySize: 4, TableID: t2.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, t2.ID, r.TableID)
	assertNoOverlaps(t, f)
}

func TestUpdateReservation_Guards(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Val", "West")
	conf := f.book(t, c, at(10, 19, 0), 2)

	_, err := f.svc.UpdateReservation(f.ctx, conf.ReservationID, booking.UpdateRequest{
		Moment: testNow.Add(-time.Minute), PartySize: 2,
	})
	requireRule(t, err, booking.RuleMomentInPast)

	_, err = f.svc.UpdateReservation(f.ctx, conf.ReservationID, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 13,
	})
	requireRule(t, err, booking.RulePartySize)

	_, err = f.svc.UpdateReservation(f.ctx, 77, booking.UpdateRequest{
		Moment: at(10, 19, 0), PartySize: 2,
	})
	assert.True(t, booking.IsNotFound(err))

	_, err = f.svc.CancelReservation(f.ctx, conf.ReservationID, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateReservation(f.ctx, conf.ReservationID, booking.UpdateRequest{
		Moment: at(10, 20, 0), PartySize: 2,
	})
	requireRule(t, err, booking.RuleInvalidTransition)

	// A no-show can still be moved to another day
	missed := f.book(t, c, at(10, 12, 0), 2)
	f.clock.Set(at(10, 12, 30))
	_, err = f.svc.MarkNoShow(f.ctx, missed.ReservationID)
	require.NoError(t, err)
	moved, err := f.svc.UpdateReservation(f.ctx, missed.ReservationID, booking.UpdateRequest{
		Moment: at(11, 19, 0), PartySize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, at(11, 19, 0), moved.Moment)
	assert.Equal(t, booking.StatusNoShow, moved.Status)
}

func TestUpdateReservation_NoTableLeft(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Wes", "Young")
	first := f.book(t, c, at(10, 17, 0), 2)
	f.book(t, c, at(10, 19, 0), 2)

	_, err := f.svc.UpdateReservation(f.ctx, first.ReservationID, booking.UpdateRequest{
		Moment: at(10, 18, 0), PartySize: 2,
	})
	assert.True(t, booking.IsUnavailable(err))

	// Unchanged after the failed update
	r, err := f.svc.GetReservation(f.ctx, first.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 17, 0), r.Moment)
}

// =============================================================================
// INVARIANT HARNESS
// =============================================================================

func TestNoOverlappingActiveReservations(t *testing.T) {
	// GIVEN: A small floor and a stream of sequential bookings and moves
	f := newFixture(t)
	f.addTable(t, "A", 2, "Window")
	f.addTable(t, "B", 4, "Window")
	f.addTable(t, "C", 4, "Patio")
	f.addTable(t, "D", 6, "Patio")
	c := f.addCustomer(t, "Xan", "Zed")

	var booked []booking.ReservationID
	for i := 0; i < 60; i++ {
		moment := at(11+i%3, 11+(i*7)%10, (i%2)*30)
		party := 1 + (i*5)%6
		conf, err := f.svc.CreateReservation(f.ctx, booking.CreateRequest{
			CustomerID:        c.ID,
			Moment:            moment,
			PartySize:         party,
			DurationMinutes:   60 + (i%4)*30,
			PreferredLocation: []string{"", "window", "PATIO"}[i%3],
		})
		if err != nil {
			require.True(t, booking.IsUnavailable(err), "unexpected error: %v", err)
		} else {
			booked = append(booked, conf.ReservationID)
		}
		assertNoOverlaps(t, f)

		if i%4 == 3 && len(booked) > 0 {
			id := booked[(i*3)%len(booked)]
			_, err := f.svc.UpdateReservation(f.ctx, id, booking.UpdateRequest{
				Moment:    moment.Add(time.Duration(i%5) * 30 * time.Minute),
				PartySize: party,
			})
			if err != nil {
				require.True(t, booking.IsUnavailable(err) || booking.IsClientError(err), "unexpected error: %v", err)
			}
			assertNoOverlaps(t, f)
		}
	}
	assert.NotEmpty(t, booked)
}

// =============================================================================
// QUERIES & REMINDERS
// =============================================================================

func TestListCustomerReservations_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	c := f.addCustomer(t, "Amy", "Bell")
	first := f.book(t, c, at(11, 19, 0), 2)
	second := f.book(t, c, at(12, 19, 0), 2)

	list, err := f.svc.ListCustomerReservations(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ReservationID, list[0].ID)
	assert.Equal(t, first.ReservationID, list[1].ID)

	_, err = f.svc.ListCustomerReservations(f.ctx, 999)
	assert.True(t, booking.IsNotFound(err))
}

func TestUpcomingAndReminders(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "T1", 4, "")
	f.addTable(t, "T2", 4, "")
	c := f.addCustomer(t, "Ben", "Cole")
	tomorrow := f.book(t, c, testNow.Add(24*time.Hour), 2)
	f.book(t, c, testNow.Add(48*time.Hour), 2)
	cancelled := f.book(t, c, testNow.Add(24*time.Hour), 2)
	_, err := f.svc.CancelReservation(f.ctx, cancelled.ReservationID, "")
	require.NoError(t, err)

	upcoming, err := f.svc.UpcomingReservations(f.ctx, 25*time.Hour)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, tomorrow.ReservationID, upcoming[0].ID)

	sent, err := f.svc.SendReminders(f.ctx, testNow.Add(23*time.Hour+30*time.Minute), testNow.Add(24*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	types := f.events.types()
	assert.Equal(t, booking.EventReminder, types[len(types)-1])
}
