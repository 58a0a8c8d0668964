// Package events delivers committed reservation events outside the process.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/warp/reservation-engine/booking"
)

// Envelope is the wire form of a booking.Event. ID is unique per
// publication so consumers can deduplicate redeliveries.
type Envelope struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	OccurredAt       time.Time `json:"occurred_at"`
	ReservationID    int64     `json:"reservation_id"`
	CustomerID       int64     `json:"customer_id"`
	TableID          int64     `json:"table_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Moment           time.Time `json:"moment"`
	PartySize        int       `json:"party_size"`
	Status           string    `json:"status"`
}

func NewEnvelope(ev booking.Event) Envelope {
	return Envelope{
		ID:               uuid.NewString(),
		Type:             string(ev.Type),
		OccurredAt:       ev.OccurredAt.UTC(),
		ReservationID:    int64(ev.ReservationID),
		CustomerID:       int64(ev.CustomerID),
		TableID:          int64(ev.TableID),
		ConfirmationCode: ev.ConfirmationCode,
		Moment:           ev.Moment.UTC(),
		PartySize:        ev.PartySize,
		Status:           string(ev.Status),
	}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
