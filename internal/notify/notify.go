// Package notify fans out "trip changed" after a commit: local cache
// invalidation, a Redis notice for other instances, and a domain event
// for the broker. Every step is best effort and only logged on failure.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/events"
	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
)

type Notifier struct {
	cache     *redisrepo.Cache
	pubsub    *redisrepo.TripsPubSub
	publisher events.Publisher
	log       *zap.Logger
}

// New builds a Notifier. Any of cache, pubsub and publisher may be nil.
func New(
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	publisher events.Publisher,
	log *zap.Logger,
) *Notifier {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		cache:     cache,
		pubsub:    pubsub,
		publisher: publisher,
		log:       log.With(zap.String("component", "notify")),
	}
}

// TripChanged invalidates cached views of tripID and announces the change.
// A non-nil e is also published to the broker.
func (n *Notifier) TripChanged(ctx context.Context, tripID int64, e *events.Event) {
	if n == nil {
		return
	}

	if n.cache != nil {
		if err := n.cache.InvalidateTrip(ctx, tripID); err != nil {
			n.log.Warn("cache invalidation failed", zap.Int64("trip_id", tripID), zap.Error(err))
		}
	}

	if n.pubsub != nil {
		if err := n.pubsub.PublishTripChanged(ctx, tripID); err != nil {
			n.log.Warn("trip change notice failed", zap.Int64("trip_id", tripID), zap.Error(err))
		}
	}

	if e != nil {
		n.Publish(ctx, *e)
	}
}

// Publish sends e to the broker.
func (n *Notifier) Publish(ctx context.Context, e events.Event) {
	if n == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := n.publisher.Publish(ctx, e); err != nil {
		n.log.Warn("event publish failed",
			zap.String("type", string(e.Type)),
			zap.Int64("trip_id", e.TripID),
			zap.Error(err),
		)
	}
}
