package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warp/reservation-engine/booking"
)

// LogSink writes events to the log. Used when no broker is configured.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Publish(_ context.Context, ev booking.Event) error {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"event":             ev.Type,
		"reservation_id":    ev.ReservationID,
		"table_id":          ev.TableID,
		"confirmation_code": ev.ConfirmationCode,
		"moment":            ev.Moment,
		"party_size":        ev.PartySize,
		"status":            ev.Status,
	}).Info("reservation event")
	return nil
}

// Fanout publishes to every sink and returns the first error.
type Fanout []booking.EventSink

func (f Fanout) Publish(ctx context.Context, ev booking.Event) error {
	var first error
	for _, s := range f {
		if err := s.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
