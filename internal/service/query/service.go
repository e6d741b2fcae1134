package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/fare"
	"github.com/kirinyoku/busseat/internal/layout"
	"github.com/kirinyoku/busseat/internal/occupancy"
	"github.com/kirinyoku/busseat/internal/repository"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
)

type Config struct {
	SeatingTTL time.Duration
	FareTTL    time.Duration
	Layout     layout.Options
	Now        func() time.Time
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	calc  *fare.Calculator
	log   *zap.Logger
	cfg   Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	calc *fare.Calculator,
	log *zap.Logger,
	cfg Config,
) *Service {
	if cfg.SeatingTTL <= 0 {
		cfg.SeatingTTL = 30 * time.Second
	}

	if cfg.FareTTL <= 0 {
		cfg.FareTTL = 5 * time.Minute
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store: store,
		cache: cache,
		calc:  calc,
		log:   log.With(zap.String("service", "query")),
		cfg:   cfg,
	}
}

// Seating is the cacheable part of a seat map: the trip, its normalized
// layout and the seats sold so far. Holds are never cached.
type Seating struct {
	Trip   domain.Trip       `json:"trip"`
	Layout domain.SeatLayout `json:"layout"`
	Sold   []int             `json:"sold"`
}

// FareContext is what pricing a seat on a trip needs besides the seat.
type FareContext struct {
	Route    domain.Route     `json:"route"`
	Override *decimal.Decimal `json:"override,omitempty"`
}

type Quote struct {
	TripID     int64            `json:"tripId"`
	SeatNumber int              `json:"seatNumber"`
	SeatClass  domain.SeatClass `json:"seatClass"`
	Boarding   string           `json:"boarding,omitempty"`
	Dropoff    string           `json:"dropoff,omitempty"`
	Price      decimal.Decimal  `json:"price"`
	Display    string           `json:"display"`
}

// Seating returns the trip's normalized layout and sold seats, cached.
//
// Parameters:
//   - ctx: request-scoped context.
//   - tripID: ID of the trip.
//
// Returns:
//   - Seating: trip, layout and sold seats.
//   - error: query.ErrTripNotFound if the trip does not exist.
func (s *Service) Seating(ctx context.Context, tripID int64) (Seating, error) {
	const op = "service.query.Seating"

	seating, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyTripSeating(tripID),
		s.cfg.SeatingTTL,
		func(ctx context.Context) (Seating, error) {
			return s.loadSeating(ctx, tripID)
		},
	)
	if err != nil {
		return Seating{}, fmt.Errorf("%s: %w", op, err)
	}

	return seating, nil
}

func (s *Service) loadSeating(ctx context.Context, tripID int64) (Seating, error) {
	trip, err := s.store.Trips().Get(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Seating{}, ErrTripNotFound
		}
		return Seating{}, err
	}

	raw, total, err := s.store.Buses().Layout(ctx, trip.BusID)
	if err != nil {
		return Seating{}, err
	}

	opts := s.cfg.Layout
	if total > 0 {
		opts.TotalSeats = total
	}
	grid := layout.NormalizeJSON(raw, opts)
	if len(raw) == 0 {
		s.log.Debug("bus has no stored layout, using synthetic grid",
			zap.Int64("bus_id", trip.BusID), zap.Int("seats", len(grid.Seats)))
	}

	sold, err := s.store.Tickets().Sold(ctx, tripID)
	if err != nil {
		return Seating{}, err
	}

	return Seating{Trip: *trip, Layout: grid, Sold: sold}, nil
}

// SeatMap returns the canonical layout of a trip with its authoritative
// occupied list: sold seats plus seats held live by other sessions. The
// caller's own hold is left out so it can still buy its seat.
//
// Parameters:
//   - ctx: request-scoped context.
//   - tripID: ID of the trip.
//   - sessionID: the caller's session; may be empty.
//
// Returns:
//   - *domain.SeatMap: layout with Occupied flags set.
//   - error: query.ErrTripNotFound if the trip does not exist.
func (s *Service) SeatMap(ctx context.Context, tripID int64, sessionID string) (*domain.SeatMap, error) {
	const op = "service.query.SeatMap"

	seating, err := s.Seating(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	held, err := s.store.Holds().Live(ctx, tripID, sessionID, s.cfg.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	occupied := mergeSeats(seating.Sold, held)
	grid, _ := occupancy.Reconcile(seating.Layout, occupancy.FromNumbers(occupied...))

	return &domain.SeatMap{
		TripID:        tripID,
		SeatLayout:    grid,
		OccupiedSeats: occupied,
	}, nil
}

// FareContext returns the route and effective override for a trip, cached.
func (s *Service) FareContext(ctx context.Context, tripID int64) (FareContext, error) {
	const op = "service.query.FareContext"

	fc, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyTripFare(tripID),
		s.cfg.FareTTL,
		func(ctx context.Context) (FareContext, error) {
			trip, err := s.store.Trips().Get(ctx, tripID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return FareContext{}, ErrTripNotFound
				}
				return FareContext{}, err
			}

			route, err := s.store.Routes().Get(ctx, trip.RouteID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return FareContext{}, ErrRouteNotFound
				}
				return FareContext{}, err
			}

			return FareContext{Route: *route, Override: trip.PriceOverride}, nil
		},
	)
	if err != nil {
		return FareContext{}, fmt.Errorf("%s: %w", op, err)
	}

	return fc, nil
}

// Fare prices one seat of a trip for a boarding/drop-off pair. Empty stop
// names mean the route terminals.
//
// A seat that is sold, or held live by a session other than sessionID, is
// not priced.
//
// Returns:
//   - *Quote: the priced seat.
//   - error: query.ErrTripNotFound, query.ErrSeatNotFound,
//     query.ErrSeatUnavailable.
func (s *Service) Fare(ctx context.Context, tripID int64, seat int, sessionID, boarding, dropoff string) (*Quote, error) {
	const op = "service.query.Fare"

	seating, err := s.Seating(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, ok := seating.Layout.Seat(seat)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSeatNotFound)
	}

	held, err := s.store.Holds().Live(ctx, tripID, sessionID, s.cfg.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := seatFree(seat, seating.Sold, held); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fc, err := s.FareContext(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	price := s.calc.Price(fare.Quote{
		Route:    fc.Route,
		Override: fc.Override,
		Class:    st.Class,
		Boarding: boarding,
		Dropoff:  dropoff,
	})

	return &Quote{
		TripID:     tripID,
		SeatNumber: seat,
		SeatClass:  st.Class,
		Boarding:   boarding,
		Dropoff:    dropoff,
		Price:      fare.Round(price),
		Display:    fare.Display(price),
	}, nil
}

// seatFree reports ErrSeatUnavailable when seat is sold or held by
// another session.
func seatFree(seat int, sold, held []int) error {
	for _, list := range [][]int{sold, held} {
		for _, n := range list {
			if n == seat {
				return ErrSeatUnavailable
			}
		}
	}
	return nil
}

func mergeSeats(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, list := range [][]int{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Ints(out)
	return out
}
