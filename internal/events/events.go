// Package events publishes domain events about seats and trips to an
// external broker. Publishing happens after commit and is best effort:
// the database stays the source of truth.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type Type string

const (
	HoldCreated    Type = "hold.created"
	HoldReleased   Type = "hold.released"
	TicketSold     Type = "ticket.sold"
	TripsGenerated Type = "trips.generated"
	TripCancelled  Type = "trip.cancelled"
)

type Event struct {
	Type       Type      `json:"type"`
	TripID     int64     `json:"tripId"`
	SeatNumber int       `json:"seatNumber,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	TicketID   string    `json:"ticketId,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key partitions events so that every event of one trip lands in order.
func (e Event) Key() string {
	return strconv.FormatInt(e.TripID, 10)
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
