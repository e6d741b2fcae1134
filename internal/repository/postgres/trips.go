package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/frequency"
	"github.com/kirinyoku/busseat/internal/repository"
)

const dateLayout = "2006-01-02"

type TripRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TripRepo) With(db DB) *TripRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TripRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// The effective price override is the trip's own, else its frequency's.
const selectTrip = `
	SELECT t.id, t.route_id, t.frequency_id, t.bus_id, t.trip_date,
	       t.departure_time, t.status,
	       COALESCE(t.price_override, f.price_override)::text
	FROM trips t
	LEFT JOIN frequencies f ON f.id = t.frequency_id
	WHERE t.id = $1`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var (
		t        domain.Trip
		status   string
		override *string
	)
	if err := row.Scan(
		&t.ID,
		&t.RouteID,
		&t.FrequencyID,
		&t.BusID,
		&t.Date,
		&t.DepartureTime,
		&status,
		&override,
	); err != nil {
		return nil, err
	}

	t.Status = domain.TripStatus(status)

	var err error
	if t.PriceOverride, err = parseNullDecimal(override); err != nil {
		return nil, err
	}

	return &t, nil
}

// Get retrieves a trip by its ID.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the trip.
//
// Returns:
//   - *domain.Trip: the trip when found.
//   - error: repository.ErrNotFound if the trip does not exist.
func (r *TripRepo) Get(ctx context.Context, id int64) (*domain.Trip, error) {
	const op = "postgresrepo.TripRepo.Get"

	t, err := scanTrip(r.handle().QueryRow(ctx, selectTrip, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// GetForUpdate is Get with a row lock on the trip, for use inside a
// transaction that changes its seats.
func (r *TripRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Trip, error) {
	const op = "postgresrepo.TripRepo.GetForUpdate"

	t, err := scanTrip(r.handle().QueryRow(ctx, selectTrip+` FOR UPDATE OF t`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// ExistingKeys returns the (frequency, date) pairs already generated for
// the given frequencies within [start, end].
func (r *TripRepo) ExistingKeys(
	ctx context.Context,
	frequencyIDs []int64,
	start, end string,
) (map[frequency.Key]bool, error) {
	const op = "postgresrepo.TripRepo.ExistingKeys"

	rows, err := r.handle().Query(ctx,
		`SELECT frequency_id, trip_date::text
		 FROM trips
		 WHERE frequency_id = ANY($1)
		   AND trip_date BETWEEN $2::date AND $3::date`,
		frequencyIDs, start, end,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make(map[frequency.Key]bool)
	for rows.Next() {
		var k frequency.Key
		if err := rows.Scan(&k.FrequencyID, &k.Date); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out[k] = true
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// InsertDrafts inserts generated trips in one batch. Drafts whose
// (frequency, date) already exists are skipped and returned as lost, so
// concurrent generators never create duplicates.
//
// Returns:
//   - []int64: ids of the inserted trips, in draft order.
//   - []domain.TripDraft: drafts that lost to an existing row.
func (r *TripRepo) InsertDrafts(
	ctx context.Context,
	drafts []domain.TripDraft,
) ([]int64, []domain.TripDraft, error) {
	const op = "postgresrepo.TripRepo.InsertDrafts"

	if len(drafts) == 0 {
		return nil, nil, nil
	}

	batch := &pgx.Batch{}
	for _, d := range drafts {
		batch.Queue(
			`INSERT INTO trips(route_id, frequency_id, bus_id, trip_date, departure_time, status)
			 VALUES ($1, $2, $3, $4::date, $5, 'SCHEDULED')
			 ON CONFLICT (frequency_id, trip_date) DO NOTHING
			 RETURNING id`,
			d.RouteID, d.FrequencyID, d.BusID, d.Date.Format(dateLayout), d.DepartureTime,
		)
	}

	br := r.handle().SendBatch(ctx, batch)
	defer br.Close()

	var (
		ids  []int64
		lost []domain.TripDraft
	)
	for _, d := range drafts {
		var id int64
		err := br.QueryRow().Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			lost = append(lost, d)
		case err != nil:
			return nil, nil, wrapDBErr(op, err)
		default:
			ids = append(ids, id)
		}
	}

	if err := br.Close(); err != nil {
		return nil, nil, wrapDBErr(op, err)
	}

	return ids, lost, nil
}

// Create inserts a trip that does not come from a frequency.
func (r *TripRepo) Create(ctx context.Context, t domain.Trip) (int64, error) {
	const op = "postgresrepo.TripRepo.Create"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO trips(route_id, frequency_id, bus_id, trip_date, departure_time, status, price_override)
		 VALUES ($1, $2, $3, $4::date, $5, $6, $7::numeric)
		 RETURNING id`,
		t.RouteID, t.FrequencyID, t.BusID, t.Date.Format(dateLayout),
		t.DepartureTime, string(t.Status), decimalArg(t.PriceOverride),
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// Delete removes a trip that has no tickets. Its holds go with it.
//
// Returns:
//   - error: repository.ErrHasTickets if any ticket was sold for the trip.
//   - error: repository.ErrNotFound if the trip does not exist.
func (r *TripRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgresrepo.TripRepo.Delete"

	db := r.handle()

	var sold bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE trip_id = $1)`, id,
	).Scan(&sold); err != nil {
		return wrapDBErr(op, err)
	}
	if sold {
		return fmt.Errorf("%s: %w", op, repository.ErrHasTickets)
	}

	tag, err := db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// FutureTripIDs lists scheduled trips of a frequency that depart after
// the civil date and HH:MM clock given, split by whether they have
// tickets. Departure times are zero-padded HH:MM, so they compare as text.
func (r *TripRepo) FutureTripIDs(
	ctx context.Context,
	frequencyID int64,
	date, clock string,
) (unsold, sold []int64, err error) {
	const op = "postgresrepo.TripRepo.FutureTripIDs"

	rows, err := r.handle().Query(ctx,
		`SELECT t.id, EXISTS (SELECT 1 FROM tickets k WHERE k.trip_id = t.id)
		 FROM trips t
		 WHERE t.frequency_id = $1
		   AND (t.trip_date > $2::date
		        OR (t.trip_date = $2::date AND t.departure_time > $3))
		   AND t.status = 'SCHEDULED'
		 ORDER BY t.id`,
		frequencyID, date, clock,
	)
	if err != nil {
		return nil, nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			hasTicket bool
		)
		if err := rows.Scan(&id, &hasTicket); err != nil {
			return nil, nil, wrapDBErr(op, err)
		}
		if hasTicket {
			sold = append(sold, id)
		} else {
			unsold = append(unsold, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrapDBErr(op, err)
	}

	return unsold, sold, nil
}

// DeleteMany removes the given trips.
func (r *TripRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	const op = "postgresrepo.TripRepo.DeleteMany"

	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.handle().Exec(ctx, `DELETE FROM trips WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// SetStatus moves the given trips to status. Their holds are dropped.
func (r *TripRepo) SetStatus(ctx context.Context, ids []int64, status domain.TripStatus) (int64, error) {
	const op = "postgresrepo.TripRepo.SetStatus"

	if len(ids) == 0 {
		return 0, nil
	}

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE trips SET status = $2 WHERE id = ANY($1)`,
		ids, string(status),
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	if status != domain.TripScheduled {
		if _, err := db.Exec(ctx, `DELETE FROM holds WHERE trip_id = ANY($1)`, ids); err != nil {
			return 0, wrapDBErr(op, err)
		}
	}

	return tag.RowsAffected(), nil
}
