package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/events"
	"github.com/kirinyoku/busseat/internal/notify"
	"github.com/kirinyoku/busseat/internal/repository"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
	"github.com/kirinyoku/busseat/internal/service/query"
	"github.com/kirinyoku/busseat/internal/uow"
)

type Config struct {
	HoldTTL    time.Duration
	MinHoldTTL time.Duration
	MaxHoldTTL time.Duration
	Now        func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MinHoldTTL <= 0 {
		c.MinHoldTTL = time.Minute
	}

	if c.MaxHoldTTL <= 0 {
		c.MaxHoldTTL = 15 * time.Minute
	}

	if c.MaxHoldTTL < c.MinHoldTTL {
		c.MaxHoldTTL = c.MinHoldTTL
	}

	if c.HoldTTL <= 0 {
		c.HoldTTL = 5 * time.Minute
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return c
}

type Service struct {
	store    *postgresrepo.Store
	seats    *query.Service
	notifier *notify.Notifier
	limiter  *redisrepo.SlidingWindowLimiter
	uow      *uow.UoW
	log      *zap.Logger
	cfg      Config
}

func New(
	store *postgresrepo.Store,
	seats *query.Service,
	notifier *notify.Notifier,
	limiter *redisrepo.SlidingWindowLimiter,
	log *zap.Logger,
	cfg Config,
) *Service {
	return &Service{
		store:    store,
		seats:    seats,
		notifier: notifier,
		limiter:  limiter,
		uow:      uow.NewUoW(store),
		log:      log.With(zap.String("service", "reservation")),
		cfg:      cfg.withDefaults(),
	}
}

// Reserve holds one seat of a trip for a session.
//
// A seat is granted when it exists in the trip's layout, has no ticket,
// and carries no live hold of another session. Re-reserving a seat the
// session already holds extends the hold. Any other seat the session
// held on the trip is released.
//
// Parameters:
//   - ctx: request-scoped context.
//   - sessionID: holder session.
//   - tripID, seat: the seat to hold.
//   - ttl: requested hold duration; zero means the default. Clamped to
//     the configured bounds.
//
// Returns:
//   - *domain.ReservationHold: the hold with its server expiry.
//   - error: reservation.ErrSeatHeld, reservation.ErrSeatSold,
//     reservation.ErrTripNotFound, reservation.ErrTripNotOpen,
//     reservation.ErrSeatNotFound, RateLimitedError.
func (s *Service) Reserve(
	ctx context.Context,
	sessionID string,
	tripID int64,
	seat int,
	ttl time.Duration,
) (*domain.ReservationHold, error) {
	const op = "service.reservation.Reserve"

	if sessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, sessionID)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
		} else if !ok {
			return nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	if err := s.checkSeat(ctx, tripID, seat); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ttl = s.ClampTTL(ttl)

	var hold *domain.ReservationHold

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.checkTrip(ctx, tx, tripID); err != nil {
			return err
		}

		sold, err := s.store.Tickets().With(tx).IsSold(ctx, tripID, seat)
		if err != nil {
			return err
		}
		if sold {
			return ErrSeatSold
		}

		now := s.cfg.Now()
		lockedUntil, err := s.store.Holds().
			With(tx).
			Acquire(ctx, tripID, seat, sessionID, now, now.Add(ttl))
		if err != nil {
			if errors.Is(err, repository.ErrSeatHeld) {
				return ErrSeatHeld
			}
			return err
		}

		hold = &domain.ReservationHold{
			TripID:          tripID,
			SeatNumber:      seat,
			HolderSessionID: sessionID,
			LockedUntil:     lockedUntil,
		}

		after(func(ctx context.Context) {
			s.notifier.TripChanged(ctx, tripID, &events.Event{
				Type:       events.HoldCreated,
				TripID:     tripID,
				SeatNumber: seat,
				SessionID:  sessionID,
				OccurredAt: now,
			})
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("seat held",
		zap.Int64("trip_id", tripID),
		zap.Int("seat", seat),
		zap.Time("locked_until", hold.LockedUntil),
	)

	return hold, nil
}

// Release drops the session's own hold on a seat.
//
// Returns:
//   - error: reservation.ErrHoldNotFound if the session holds nothing there.
func (s *Service) Release(ctx context.Context, sessionID string, tripID int64, seat int) error {
	const op = "service.reservation.Release"

	if sessionID == "" {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Holds().With(tx).Release(ctx, tripID, seat, sessionID); err != nil {
			if errors.Is(err, repository.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return err
		}

		after(func(ctx context.Context) {
			s.notifier.TripChanged(ctx, tripID, &events.Event{
				Type:       events.HoldReleased,
				TripID:     tripID,
				SeatNumber: seat,
				SessionID:  sessionID,
			})
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Expire deletes every hold that has run out and returns how many trips
// were affected.
func (s *Service) Expire(ctx context.Context) (int, error) {
	const op = "service.reservation.Expire"

	trips, err := s.store.Holds().Expire(ctx, s.cfg.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range trips {
		s.notifier.TripChanged(ctx, id, nil)
	}

	return len(trips), nil
}

// RunSweeper calls Expire every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := s.Expire(ctx)
			if err != nil {
				s.log.Error("hold sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("expired holds released", zap.Int("trips", n))
			}
		}
	}
}

// ClampTTL maps a requested hold duration into the configured bounds.
func (s *Service) ClampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.cfg.HoldTTL
	}

	if ttl < s.cfg.MinHoldTTL {
		return s.cfg.MinHoldTTL
	}

	if ttl > s.cfg.MaxHoldTTL {
		return s.cfg.MaxHoldTTL
	}

	return ttl
}

func (s *Service) checkSeat(ctx context.Context, tripID int64, seat int) error {
	seating, err := s.seats.Seating(ctx, tripID)
	if err != nil {
		if errors.Is(err, query.ErrTripNotFound) {
			return ErrTripNotFound
		}
		return err
	}

	if _, ok := seating.Layout.Seat(seat); !ok {
		return ErrSeatNotFound
	}

	return nil
}

func (s *Service) checkTrip(ctx context.Context, tx postgresrepo.DB, tripID int64) error {
	trip, err := s.store.Trips().With(tx).GetForUpdate(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTripNotFound
		}
		return err
	}

	if trip.Status != domain.TripScheduled {
		return ErrTripNotOpen
	}

	return nil
}
