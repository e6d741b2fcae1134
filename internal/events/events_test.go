package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func TestKafkaPublisherSendsTripKeyedJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != TicketSold || e.TripID != 42 || e.SeatNumber != 7 {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "busseat.events", zap.NewNop())

	err := p.Publish(context.Background(), Event{
		Type:       TicketSold,
		TripID:     42,
		SeatNumber: 7,
		OccurredAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestKafkaPublisherReportsFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "busseat.events", zap.NewNop())
	if err := p.Publish(context.Background(), Event{Type: HoldCreated, TripID: 1}); err == nil {
		t.Fatal("Publish succeeded, want error")
	}
}

func TestEventKey(t *testing.T) {
	if got := (Event{TripID: 981}).Key(); got != "981" {
		t.Errorf("Key = %q, want 981", got)
	}
}
