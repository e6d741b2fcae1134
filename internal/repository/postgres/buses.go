package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/repository"
)

type BusRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BusRepo) With(db DB) *BusRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BusRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Layout returns the raw seat-layout JSON stored for a bus together with
// its declared seat count. The JSON may be nil.
func (r *BusRepo) Layout(ctx context.Context, busID int64) ([]byte, int, error) {
	const op = "postgresrepo.BusRepo.Layout"

	var (
		raw   []byte
		total int
	)
	err := r.handle().QueryRow(ctx,
		`SELECT seat_layout, total_seats FROM buses WHERE id = $1`,
		busID,
	).Scan(&raw, &total)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	return raw, total, nil
}

// TripLayout is Layout for the bus assigned to a trip.
func (r *BusRepo) TripLayout(ctx context.Context, tripID int64) ([]byte, int, error) {
	const op = "postgresrepo.BusRepo.TripLayout"

	var (
		raw   []byte
		total int
	)
	err := r.handle().QueryRow(ctx,
		`SELECT b.seat_layout, b.total_seats
		 FROM trips t JOIN buses b ON b.id = t.bus_id
		 WHERE t.id = $1`,
		tripID,
	).Scan(&raw, &total)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	return raw, total, nil
}

// Group returns a bus group with its buses ordered by id.
//
// Returns:
//   - error: repository.ErrNotFound if the group does not exist.
func (r *BusRepo) Group(ctx context.Context, id int64) (*domain.BusGroup, error) {
	const op = "postgresrepo.BusRepo.Group"

	groups, err := r.Groups(ctx, []int64{id})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	g, ok := groups[id]
	if !ok {
		var exists bool
		if err := r.handle().QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM bus_groups WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		g = domain.BusGroup{ID: id}
	}

	return &g, nil
}

// Groups loads the given bus groups keyed by id. Groups without buses
// are absent from the result.
func (r *BusRepo) Groups(ctx context.Context, ids []int64) (map[int64]domain.BusGroup, error) {
	const op = "postgresrepo.BusRepo.Groups"

	rows, err := r.handle().Query(ctx,
		`SELECT bus_group_id, id
		 FROM buses
		 WHERE bus_group_id = ANY($1)
		 ORDER BY bus_group_id, id`,
		ids,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make(map[int64]domain.BusGroup, len(ids))
	for rows.Next() {
		var groupID, busID int64
		if err := rows.Scan(&groupID, &busID); err != nil {
			return nil, wrapDBErr(op, err)
		}
		g := out[groupID]
		g.ID = groupID
		g.BusIDs = append(g.BusIDs, busID)
		out[groupID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
