package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/kirinyoku/busseat/internal/events"
)

type recorder struct {
	got []events.Event
	err error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.got = append(r.got, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func TestTripChangedPublishesEvent(t *testing.T) {
	rec := &recorder{}
	n := New(nil, nil, rec, nil)

	n.TripChanged(context.Background(), 9, &events.Event{Type: events.TicketSold, TripID: 9, SeatNumber: 3})
	n.TripChanged(context.Background(), 9, nil)

	if len(rec.got) != 1 {
		t.Fatalf("published %d events, want 1", len(rec.got))
	}
	if rec.got[0].OccurredAt.IsZero() {
		t.Error("OccurredAt not stamped")
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	n := New(nil, nil, rec, nil)

	n.Publish(context.Background(), events.Event{Type: events.HoldCreated, TripID: 1})

	if len(rec.got) != 1 {
		t.Fatalf("published %d events, want 1", len(rec.got))
	}
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.TripChanged(context.Background(), 1, &events.Event{})
}
