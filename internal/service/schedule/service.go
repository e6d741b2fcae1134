package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/events"
	"github.com/kirinyoku/busseat/internal/frequency"
	"github.com/kirinyoku/busseat/internal/notify"
	"github.com/kirinyoku/busseat/internal/repository"
	postgresrepo "github.com/kirinyoku/busseat/internal/repository/postgres"
	"github.com/kirinyoku/busseat/internal/uow"
)

const dateLayout = "2006-01-02"

// Generation relies on ON CONFLICT DO NOTHING, not on serializable
// isolation, to stay duplicate-free under concurrent runs.
var readCommitted = &pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

type Config struct {
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	store    *postgresrepo.Store
	notifier *notify.Notifier
	uow      *uow.UoW
	log      *zap.Logger
	cfg      Config
}

func New(store *postgresrepo.Store, notifier *notify.Notifier, log *zap.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:    store,
		notifier: notifier,
		uow:      uow.NewUoW(store),
		log:      log.With(zap.String("service", "schedule")),
		cfg:      cfg,
	}
}

type GenerateRequest struct {
	StartDate    string
	EndDate      string
	FrequencyIDs []int64
	BusGroupID   *int64
}

type Conflict struct {
	FrequencyID int64  `json:"frequencyId"`
	Date        string `json:"date"`
}

type GenerateResult struct {
	Generated int        `json:"generated"`
	TripIDs   []int64    `json:"tripIds"`
	Conflicts []Conflict `json:"conflicts"`
}

// GenerateTrips materializes the trips of the selected frequencies over
// a date range.
//
// Trips that already exist for a (frequency, date) pair are never
// duplicated; they are reported as conflicts, including those lost to a
// concurrent run. With BusGroupID set, selecting more frequencies than
// the group has buses fails as a whole.
//
// Parameters:
//   - ctx: request-scoped context.
//   - req: date range (YYYY-MM-DD, inclusive), optional frequency filter
//     (all frequencies when empty), optional bus group cap.
//
// Returns:
//   - *GenerateResult: created trip ids and skipped conflicts.
//   - error: *frequency.ValidationError for a bad range or bus cap;
//     schedule.ErrFrequencyNotFound, schedule.ErrBusGroupNotFound.
func (s *Service) GenerateTrips(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	const op = "service.schedule.GenerateTrips"

	r, err := frequency.NewDateRange(req.StartDate, req.EndDate, s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	freqs, err := s.store.Frequencies().List(ctx, req.FrequencyIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(req.FrequencyIDs) > 0 && len(freqs) != len(unique(req.FrequencyIDs)) {
		return nil, fmt.Errorf("%s: %w", op, ErrFrequencyNotFound)
	}

	var capGroup *domain.BusGroup
	if req.BusGroupID != nil {
		capGroup, err = s.store.Buses().Group(ctx, *req.BusGroupID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrBusGroupNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	groupIDs := make([]int64, 0, len(freqs))
	freqIDs := make([]int64, 0, len(freqs))
	for _, f := range freqs {
		groupIDs = append(groupIDs, f.BusGroupID)
		freqIDs = append(freqIDs, f.ID)
	}

	groups, err := s.store.Buses().Groups(ctx, unique(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	drafts, err := frequency.ExpandBatch(freqs, r, capGroup, groups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.store.Trips().ExistingKeys(ctx, freqIDs, r.Start.Format(dateLayout), r.End.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan := frequency.PlanDrafts(drafts, existing)

	res := &GenerateResult{TripIDs: []int64{}, Conflicts: conflictsOf(plan.Conflicts)}

	err = s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		ids, lost, err := s.store.Trips().With(tx).InsertDrafts(ctx, plan.New)
		if err != nil {
			return err
		}

		res.TripIDs = append(res.TripIDs, ids...)
		res.Generated = len(ids)
		res.Conflicts = append(res.Conflicts, conflictsOf(lost)...)

		after(func(ctx context.Context) {
			s.notifier.Publish(ctx, events.Event{Type: events.TripsGenerated, Count: len(ids)})
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("trips generated",
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
		zap.Int("generated", res.Generated),
		zap.Int("conflicts", len(res.Conflicts)),
	)

	return res, nil
}

type FrequencyInput struct {
	RouteID       int64
	BusGroupID    int64
	DepartureTime string
	OperatingDays []string
	PriceOverride *decimal.Decimal
}

// CreateFrequency validates and stores a weekly departure.
//
// Returns:
//   - int64: the new frequency id.
//   - error: *frequency.ValidationError, schedule.ErrUnknownReference.
func (s *Service) CreateFrequency(ctx context.Context, in FrequencyInput) (int64, error) {
	const op = "service.schedule.CreateFrequency"

	days, err := frequency.ParseWeekdays(in.OperatingDays)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	dep, err := frequency.ParseDepartureTime(in.DepartureTime)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkOverride(in.PriceOverride); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.Frequencies().Create(ctx, domain.Frequency{
		RouteID:       in.RouteID,
		BusGroupID:    in.BusGroupID,
		DepartureTime: dep,
		OperatingDays: days,
		PriceOverride: in.PriceOverride,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return 0, fmt.Errorf("%s: %w", op, ErrUnknownReference)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

type DeleteResult struct {
	DeletedTrips   int `json:"deletedTrips"`
	CancelledTrips int `json:"cancelledTrips"`
}

// DeleteFrequency removes a frequency together with its future trips.
// Future trips without tickets are deleted, future trips with tickets are
// cancelled, and trips that already departed (by date and departure time
// in the schedule time zone) stay on record without the frequency link.
//
// Returns:
//   - *DeleteResult: how many trips were deleted and cancelled.
//   - error: schedule.ErrFrequencyNotFound.
func (s *Service) DeleteFrequency(ctx context.Context, id int64) (*DeleteResult, error) {
	const op = "service.schedule.DeleteFrequency"

	date, clock := cutoff(s.cfg.Now(), s.cfg.Location)

	var res DeleteResult

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		unsold, sold, err := s.store.Trips().With(tx).FutureTripIDs(ctx, id, date, clock)
		if err != nil {
			return err
		}

		deleted, err := s.store.Trips().With(tx).DeleteMany(ctx, unsold)
		if err != nil {
			return err
		}

		cancelled, err := s.store.Trips().With(tx).SetStatus(ctx, sold, domain.TripCancelled)
		if err != nil {
			return err
		}

		if err := s.store.Frequencies().With(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrFrequencyNotFound
			}
			return err
		}

		res = DeleteResult{DeletedTrips: int(deleted), CancelledTrips: int(cancelled)}

		after(func(ctx context.Context) {
			for _, tripID := range unsold {
				s.notifier.TripChanged(ctx, tripID, nil)
			}
			for _, tripID := range sold {
				s.notifier.TripChanged(ctx, tripID, &events.Event{Type: events.TripCancelled, TripID: tripID})
			}
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("frequency deleted",
		zap.Int64("frequency_id", id),
		zap.Int("deleted_trips", res.DeletedTrips),
		zap.Int("cancelled_trips", res.CancelledTrips),
	)

	return &res, nil
}

type TripInput struct {
	RouteID       int64
	BusID         int64
	Date          string
	DepartureTime string
	PriceOverride *decimal.Decimal
}

// CreateTrip schedules a single trip outside any frequency.
//
// Returns:
//   - int64: the new trip id.
//   - error: *frequency.ValidationError, schedule.ErrUnknownReference.
func (s *Service) CreateTrip(ctx context.Context, in TripInput) (int64, error) {
	const op = "service.schedule.CreateTrip"

	r, err := frequency.NewDateRange(in.Date, in.Date, s.cfg.Location)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, &frequency.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
	}

	dep, err := frequency.ParseDepartureTime(in.DepartureTime)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkOverride(in.PriceOverride); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.Trips().Create(ctx, domain.Trip{
		RouteID:       in.RouteID,
		BusID:         in.BusID,
		Date:          r.Start,
		DepartureTime: dep,
		Status:        domain.TripScheduled,
		PriceOverride: in.PriceOverride,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return 0, fmt.Errorf("%s: %w", op, ErrUnknownReference)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// DeleteTrip removes a trip that has no tickets.
//
// Returns:
//   - error: schedule.ErrTripNotFound, schedule.ErrTripHasTickets.
func (s *Service) DeleteTrip(ctx context.Context, id int64) error {
	const op = "service.schedule.DeleteTrip"

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Trips().With(tx).Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrTripNotFound
			case errors.Is(err, repository.ErrHasTickets):
				return ErrTripHasTickets
			}
			return err
		}

		after(func(ctx context.Context) {
			s.notifier.TripChanged(ctx, id, nil)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func checkOverride(d *decimal.Decimal) error {
	if d != nil && !d.IsPositive() {
		return &frequency.ValidationError{Field: "priceOverride", Reason: "must be positive"}
	}
	return nil
}

// cutoff splits now into the civil date and HH:MM clock of loc; trips
// departing after it count as future.
func cutoff(now time.Time, loc *time.Location) (date, clock string) {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(dateLayout), now.Format("15:04")
}

func conflictsOf(drafts []domain.TripDraft) []Conflict {
	out := make([]Conflict, 0, len(drafts))
	for _, d := range drafts {
		k := frequency.KeyOf(d)
		out = append(out, Conflict{FrequencyID: k.FrequencyID, Date: k.Date})
	}
	return out
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
