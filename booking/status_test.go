package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reservation-engine/booking"
)

func TestStatus_Transitions(t *testing.T) {
	allowed := map[booking.Status][]booking.Status{
		booking.StatusPending:   {booking.StatusConfirmed, booking.StatusCancelled},
		booking.StatusConfirmed: {booking.StatusSeated, booking.StatusNoShow, booking.StatusCancelled},
		booking.StatusSeated:    {booking.StatusCompleted},
	}

	for _, from := range booking.Statuses() {
		for _, to := range booking.Statuses() {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_TerminalAndOccupying(t *testing.T) {
	terminal := map[booking.Status]bool{
		booking.StatusCompleted: true,
		booking.StatusCancelled: true,
		booking.StatusNoShow:    true,
	}
	for _, s := range booking.Statuses() {
		assert.Equal(t, terminal[s], s.IsTerminal(), string(s))
	}

	assert.False(t, booking.StatusCancelled.Occupies())
	assert.False(t, booking.StatusCompleted.Occupies())
	assert.True(t, booking.StatusNoShow.Occupies())
	assert.True(t, booking.StatusPending.Occupies())
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]booking.Status{
		"Pending":   booking.StatusPending,
		"confirmed": booking.StatusConfirmed,
		"SEATED":    booking.StatusSeated,
		"no_show":   booking.StatusNoShow,
		"no-show":   booking.StatusNoShow,
		"NoShow":    booking.StatusNoShow,
	} {
		got, err := booking.ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.True(t, got.Valid())
	}

	_, err := booking.ParseStatus("waitlisted")
	assert.ErrorIs(t, err, booking.ErrPolicyViolation)
	assert.False(t, booking.Status("waitlisted").Valid())
}
