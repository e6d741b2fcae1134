package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/booking"
	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/events"
	"github.com/kirinyoku/busseat/internal/fare"
	"github.com/kirinyoku/busseat/internal/notify"
	"github.com/kirinyoku/busseat/internal/repository"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	"github.com/kirinyoku/busseat/internal/service/query"
	"github.com/kirinyoku/busseat/internal/uow"
)

type Service struct {
	store    *postgresrepo.Store
	seats    *query.Service
	calc     *fare.Calculator
	notifier *notify.Notifier
	uow      *uow.UoW
	log      *zap.Logger
	now      func() time.Time
}

func New(
	store *postgresrepo.Store,
	seats *query.Service,
	calc *fare.Calculator,
	notifier *notify.Notifier,
	log *zap.Logger,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:    store,
		seats:    seats,
		calc:     calc,
		notifier: notifier,
		uow:      uow.NewUoW(store),
		log:      log.With(zap.String("service", "tickets")),
		now:      now,
	}
}

// Purchase sells one seat to a passenger.
//
// The price is computed here from the route table and seat class; the
// client's own quote is never trusted. The sale goes through only when the
// seat is unsold and the hold row on it belongs to sessionID; that hold is
// consumed. An own hold past its expiry still counts while nobody else
// has taken the seat. The tickets unique key settles any race left.
//
// Parameters:
//   - ctx: request-scoped context.
//   - sessionID: buying session.
//   - draft: trip, seat, stops and passenger.
//
// Returns:
//   - *domain.Ticket: the sold ticket.
//   - error: *booking.ValidationError for bad passenger data;
//     tickets.ErrSeatSold, tickets.ErrSeatHeld, tickets.ErrHoldRequired
//     on conflict;
//     tickets.ErrTripNotFound, tickets.ErrTripNotOpen, tickets.ErrSeatNotFound.
func (s *Service) Purchase(ctx context.Context, sessionID string, draft domain.TicketDraft) (*domain.Ticket, error) {
	const op = "service.tickets.Purchase"

	if sessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	if err := booking.ValidatePassenger(draft.Passenger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seating, err := s.seats.Seating(ctx, draft.TripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapQueryErr(err))
	}

	seat, ok := seating.Layout.Seat(draft.SeatNumber)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSeatNotFound)
	}

	fc, err := s.seats.FareContext(ctx, draft.TripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapQueryErr(err))
	}

	price := fare.Round(s.calc.Price(fare.Quote{
		Route:    fc.Route,
		Override: fc.Override,
		Class:    seat.Class,
		Boarding: draft.BoardingStop,
		Dropoff:  draft.DropoffStop,
	}))

	var ticket *domain.Ticket

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		trip, err := s.store.Trips().With(tx).GetForUpdate(ctx, draft.TripID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTripNotFound
			}
			return err
		}
		if trip.Status != domain.TripScheduled {
			return ErrTripNotOpen
		}

		sold, err := s.store.Tickets().With(tx).IsSold(ctx, draft.TripID, draft.SeatNumber)
		if err != nil {
			return err
		}
		if sold {
			return ErrSeatSold
		}

		now := s.now()

		hold, err := s.store.Holds().With(tx).Get(ctx, draft.TripID, draft.SeatNumber)
		if err := checkHold(hold, err, sessionID, now); err != nil {
			return err
		}

		t := domain.Ticket{
			ID:           uuid.New(),
			TripID:       draft.TripID,
			SeatNumber:   draft.SeatNumber,
			SeatClass:    seat.Class,
			BoardingStop: draft.BoardingStop,
			DropoffStop:  draft.DropoffStop,
			Passenger:    draft.Passenger,
			Price:        price,
			CreatedAt:    now.UTC(),
		}

		if err := s.store.Tickets().With(tx).Insert(ctx, t, sessionID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSeatSold
			}
			return err
		}

		if err := s.store.Holds().With(tx).Delete(ctx, draft.TripID, draft.SeatNumber); err != nil {
			return err
		}

		ticket = &t

		after(func(ctx context.Context) {
			s.notifier.TripChanged(ctx, draft.TripID, &events.Event{
				Type:       events.TicketSold,
				TripID:     draft.TripID,
				SeatNumber: draft.SeatNumber,
				SessionID:  sessionID,
				TicketID:   t.ID.String(),
				OccurredAt: now,
			})
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ticket sold",
		zap.String("ticket_id", ticket.ID.String()),
		zap.Int64("trip_id", ticket.TripID),
		zap.Int("seat", ticket.SeatNumber),
		zap.String("price", ticket.Price.StringFixed(2)),
	)

	return ticket, nil
}

// Get retrieves a ticket by its ID.
//
// Returns:
//   - error: tickets.ErrTicketNotFound if the ticket does not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "service.tickets.Get"

	t, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// checkHold decides a purchase from the hold row read for the seat and the
// error of that read.
func checkHold(hold *domain.ReservationHold, err error, sessionID string, now time.Time) error {
	switch {
	case errors.Is(err, repository.ErrHoldNotFound):
		return ErrHoldRequired
	case err != nil:
		return err
	case hold.HolderSessionID == sessionID:
		return nil
	case !hold.Admits(sessionID, now):
		return ErrSeatHeld
	default:
		return ErrHoldRequired
	}
}

func mapQueryErr(err error) error {
	switch {
	case errors.Is(err, query.ErrTripNotFound):
		return ErrTripNotFound
	case errors.Is(err, query.ErrSeatNotFound):
		return ErrSeatNotFound
	default:
		return err
	}
}
