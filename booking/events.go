package booking

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventUpdated   EventType = "reservation.updated"
	EventCancelled EventType = "reservation.cancelled"
	EventConfirmed EventType = "reservation.confirmed"
	EventSeated    EventType = "reservation.seated"
	EventCompleted EventType = "reservation.completed"
	EventNoShow    EventType = "reservation.no_show"
	EventReminder  EventType = "reservation.reminder"
)

// Event is published after a lifecycle change has been committed.
type Event struct {
	Type             EventType
	ReservationID    ReservationID
	CustomerID       CustomerID
	TableID          TableID
	ConfirmationCode string
	Moment           time.Time
	PartySize        int
	Status           Status
	OccurredAt       time.Time
}

// EventSink receives committed lifecycle events. Delivery failures never
// undo the change that produced the event.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

func newEvent(typ EventType, r Reservation, at time.Time) Event {
	return Event{
		Type:             typ,
		ReservationID:    r.ID,
		CustomerID:       r.CustomerID,
		TableID:          r.TableID,
		ConfirmationCode: r.ConfirmationCode,
		Moment:           r.Moment,
		PartySize:        r.PartySize,
		Status:           r.Status,
		OccurredAt:       at,
	}
}
