// Package booking is the session side of seat reservation: it keeps one
// trip's canonical seat grid, the user's current hold and its display
// countdown, and drives the re-check-then-purchase flow against the
// authoritative backend.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/fare"
	"github.com/kirinyoku/busseat/internal/layout"
	"github.com/kirinyoku/busseat/internal/occupancy"
)

// RawSeatMap is a seat-map response as decoded JSON, before any
// normalization.
type RawSeatMap struct {
	Layout   any
	Occupied any
}

// Backend is the authoritative side. Implementations wrap ErrConflict,
// ErrUnauthorized, ErrNetwork or return *ValidationError.
type Backend interface {
	SeatMap(ctx context.Context, tripID int64) (RawSeatMap, error)
	Reserve(ctx context.Context, tripID int64, seat int) (time.Time, error)
	Release(ctx context.Context, tripID int64, seat int) error
	Purchase(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error)
}

type Config struct {
	Layout       layout.Options
	TickInterval time.Duration
	Now          func() time.Time
}

type SeatView struct {
	domain.Seat
	Status domain.SeatStatus `json:"status"`
}

type hold struct {
	seat        int
	lockedUntil time.Time
	gen         uint64
	countdown   *Countdown
}

type Session struct {
	backend Backend
	tripID  int64
	cfg     Config
	log     *zap.Logger

	mu       sync.Mutex
	grid     domain.SeatLayout
	occupied occupancy.Set
	hold     *hold
	gen      uint64
	selected int // seat of the newest Select, 0 once released
	closed   bool

	purchasing atomic.Bool
	ticks      chan Tick
}

func NewSession(backend Backend, tripID int64, cfg Config, log *zap.Logger) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		backend:  backend,
		tripID:   tripID,
		cfg:      cfg,
		log:      log.With(zap.String("component", "booking"), zap.Int64("trip_id", tripID)),
		occupied: occupancy.Set{},
		ticks:    make(chan Tick, 1),
	}
}

// Ticks streams countdown updates for the current hold.
func (s *Session) Ticks() <-chan Tick {
	return s.ticks
}

// Load fetches the seat map and rebuilds the local grid.
func (s *Session) Load(ctx context.Context) error {
	const op = "booking.Session.Load"

	raw, err := s.backend.SeatMap(ctx, s.tripID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(raw)

	return nil
}

// Seats returns the per-seat view: SOLD for authoritatively occupied
// seats, HELD for this session's hold, FREE otherwise.
func (s *Session) Seats() []SeatView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SeatView, 0, len(s.grid.Seats))
	for _, seat := range s.grid.Seats {
		status := domain.SeatFree
		switch {
		case seat.Occupied:
			status = domain.SeatSold
		case s.hold != nil && s.hold.seat == seat.Number:
			status = domain.SeatHeld
		}
		out = append(out, SeatView{Seat: seat, Status: status})
	}
	return out
}

// Layout returns a copy of the current grid.
func (s *Session) Layout() domain.SeatLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Held returns the held seat and its server expiry.
func (s *Session) Held() (int, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold == nil {
		return 0, time.Time{}, false
	}
	return s.hold.seat, s.hold.lockedUntil, true
}

// Select asks the backend to hold seat and starts the display countdown.
// Any previous hold of this session is superseded.
func (s *Session) Select(ctx context.Context, seat int) (time.Time, error) {
	const op = "booking.Session.Select"

	s.mu.Lock()
	st, ok := s.grid.Seat(seat)
	if !ok {
		s.mu.Unlock()
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrUnknownSeat)
	}
	if st.Occupied {
		s.mu.Unlock()
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrSeatUnavailable)
	}
	previous := s.dropHoldLocked()
	s.gen++
	gen := s.gen
	s.selected = seat
	s.mu.Unlock()

	if previous != nil && previous.seat != seat {
		if err := s.backend.Release(ctx, s.tripID, previous.seat); err != nil {
			s.log.Debug("release of superseded hold failed", zap.Int("seat", previous.seat), zap.Error(err))
		}
	}

	lockedUntil, err := s.backend.Reserve(ctx, s.tripID, seat)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrSeatUnavailable) {
			s.reload(ctx)
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.closed || gen != s.gen {
		// A newer selection owns the session. The backend hold this
		// answer created is orphaned unless the newer one wants the
		// same seat.
		keep := !s.closed && s.selected == seat
		s.mu.Unlock()
		if !keep {
			if err := s.backend.Release(ctx, s.tripID, seat); err != nil {
				s.log.Debug("release of stale hold failed", zap.Int("seat", seat), zap.Error(err))
			}
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrSuperseded)
	}
	defer s.mu.Unlock()

	h := &hold{seat: seat, lockedUntil: lockedUntil, gen: gen}
	h.countdown = startCountdown(seat, lockedUntil, s.cfg.TickInterval, s.cfg.Now, s.ticks, func() {
		s.expire(gen)
	})
	s.hold = h

	s.log.Info("seat held", zap.Int("seat", seat), zap.Time("locked_until", lockedUntil))

	return lockedUntil, nil
}

// Release gives the current hold back.
func (s *Session) Release(ctx context.Context) error {
	const op = "booking.Session.Release"

	s.mu.Lock()
	h := s.dropHoldLocked()
	s.gen++
	s.selected = 0
	s.mu.Unlock()

	if h == nil {
		return nil
	}
	if err := s.backend.Release(ctx, s.tripID, h.seat); err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

type PurchaseRequest struct {
	Passenger    domain.Passenger
	BoardingStop string
	DropoffStop  string
}

// Purchase turns the current hold into a ticket.
//
// The occupied list is re-fetched and reconciled first; if the seat was
// taken meanwhile the grid is refreshed and ErrSeatUnavailable returned.
// A network failure during that re-check is tolerated and the backend's
// own conflict answer decides. A call made while another is pending
// returns ErrPurchaseInFlight without side effects.
func (s *Session) Purchase(ctx context.Context, req PurchaseRequest) (*domain.Ticket, error) {
	const op = "booking.Session.Purchase"

	if !s.purchasing.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s: %w", op, ErrPurchaseInFlight)
	}
	defer s.purchasing.Store(false)

	if err := ValidatePassenger(req.Passenger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	h := s.hold
	s.mu.Unlock()

	if h == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSelection)
	}
	if !s.cfg.Now().Before(h.lockedUntil) {
		s.expire(h.gen)
		return nil, fmt.Errorf("%s: %w", op, ErrHoldExpired)
	}

	raw, err := s.backend.SeatMap(ctx, s.tripID)
	switch {
	case err == nil:
		s.mu.Lock()
		s.applyLocked(raw)
		taken := s.occupied.Has(h.seat)
		if taken {
			s.dropHoldLocked()
		}
		s.mu.Unlock()

		if taken {
			return nil, fmt.Errorf("%s: %w", op, ErrSeatUnavailable)
		}
	case errors.Is(classify(err), ErrAuthExpired):
		return nil, fmt.Errorf("%s: %w", op, ErrAuthExpired)
	default:
		s.log.Warn("occupancy re-check failed, relying on backend conflict check",
			zap.Int("seat", h.seat), zap.Error(err))
	}

	ticket, err := s.backend.Purchase(ctx, domain.TicketDraft{
		TripID:       s.tripID,
		SeatNumber:   h.seat,
		BoardingStop: req.BoardingStop,
		DropoffStop:  req.DropoffStop,
		Passenger:    req.Passenger,
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrSeatUnavailable) {
			s.mu.Lock()
			s.dropHoldLocked()
			s.mu.Unlock()
			s.reload(ctx)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.dropHoldLocked()
	s.occupied[fmt.Sprint(h.seat)] = struct{}{}
	s.grid, _ = occupancy.Reconcile(s.grid, s.occupied)
	s.mu.Unlock()

	s.log.Info("ticket purchased", zap.Int("seat", h.seat), zap.String("ticket_id", ticket.ID.String()))

	return ticket, nil
}

// Quote prices seat on route. Occupied seats are never priced.
func (s *Session) Quote(
	calc *fare.Calculator,
	route domain.Route,
	override *decimal.Decimal,
	seat int,
	boarding, dropoff string,
) (decimal.Decimal, error) {
	s.mu.Lock()
	st, ok := s.grid.Seat(seat)
	s.mu.Unlock()

	if !ok {
		return decimal.Zero, ErrUnknownSeat
	}
	if st.Occupied {
		return decimal.Zero, ErrSeatUnavailable
	}

	return calc.Price(fare.Quote{
		Route:    route,
		Override: override,
		Class:    st.Class,
		Boarding: boarding,
		Dropoff:  dropoff,
	}), nil
}

// Close stops the countdown. The backend hold is left to expire.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.dropHoldLocked()
}

// expire reverts the local view once the countdown of generation gen
// reaches zero. The backend may still hold the seat for a moment; the
// user has to select again either way.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hold == nil || s.hold.gen != gen {
		return
	}
	s.log.Info("hold countdown expired", zap.Int("seat", s.hold.seat))
	s.dropHoldLocked()
}

func (s *Session) dropHoldLocked() *hold {
	h := s.hold
	if h != nil {
		h.countdown.Stop()
		s.hold = nil
	}
	return h
}

func (s *Session) applyLocked(raw RawSeatMap) {
	grid := layout.Normalize(raw.Layout, s.cfg.Layout)
	s.occupied = occupancy.Parse(raw.Occupied)
	s.grid, _ = occupancy.Reconcile(grid, s.occupied)
}

// reload refreshes the grid after a conflict; failures leave the old
// grid in place.
func (s *Session) reload(ctx context.Context) {
	raw, err := s.backend.SeatMap(ctx, s.tripID)
	if err != nil {
		s.log.Warn("seat map reload failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.applyLocked(raw)
	s.mu.Unlock()
}

// classify maps backend errors onto session outcomes.
func classify(err error) error {
	var ve *ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return err
	case errors.Is(err, ErrConflict):
		return fmt.Errorf("%w: %w", ErrSeatUnavailable, err)
	case errors.Is(err, ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrAuthExpired, err)
	case errors.Is(err, ErrNetwork):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}
