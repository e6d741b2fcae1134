package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/repository"
)

type FrequencyRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *FrequencyRepo) With(db DB) *FrequencyRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *FrequencyRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create stores a frequency and returns its id.
func (r *FrequencyRepo) Create(ctx context.Context, f domain.Frequency) (int64, error) {
	const op = "postgresrepo.FrequencyRepo.Create"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO frequencies(route_id, bus_group_id, departure_time, operating_days, price_override)
		 VALUES ($1, $2, $3, $4, $5::numeric)
		 RETURNING id`,
		f.RouteID, f.BusGroupID, f.DepartureTime, int16(f.OperatingDays), decimalArg(f.PriceOverride),
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// List loads frequencies by id, ordered by id. A nil ids slice loads all
// of them.
func (r *FrequencyRepo) List(ctx context.Context, ids []int64) ([]domain.Frequency, error) {
	const op = "postgresrepo.FrequencyRepo.List"

	rows, err := r.handle().Query(ctx,
		`SELECT id, route_id, bus_group_id, departure_time, operating_days, price_override::text
		 FROM frequencies
		 WHERE $1::bigint[] IS NULL OR id = ANY($1)
		 ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Frequency
	for rows.Next() {
		var (
			f        domain.Frequency
			days     int16
			override *string
		)
		if err := rows.Scan(&f.ID, &f.RouteID, &f.BusGroupID, &f.DepartureTime, &days, &override); err != nil {
			return nil, wrapDBErr(op, err)
		}
		f.OperatingDays = domain.WeekdaySet(days)
		if f.PriceOverride, err = parseNullDecimal(override); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Delete removes a frequency. Remaining trips keep existing with their
// frequency reference cleared.
//
// Returns:
//   - error: repository.ErrNotFound if the frequency does not exist.
func (r *FrequencyRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgresrepo.FrequencyRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM frequencies WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
