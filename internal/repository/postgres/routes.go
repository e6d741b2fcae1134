package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
)

type RouteRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *RouteRepo) With(db DB) *RouteRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *RouteRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a route with its intermediate stops in travel order.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the route.
//
// Returns:
//   - *domain.Route: the route when found.
//   - error: repository.ErrNotFound if the route does not exist.
func (r *RouteRepo) Get(ctx context.Context, id int64) (*domain.Route, error) {
	const op = "postgresrepo.RouteRepo.Get"

	db := r.handle()

	var (
		rt   domain.Route
		base string
	)
	err := db.QueryRow(ctx,
		`SELECT id, origin, destination, base_price::text
		 FROM routes WHERE id = $1`,
		id,
	).Scan(&rt.ID, &rt.Origin, &rt.Destination, &base)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if rt.BasePrice, err = parseDecimal(base); err != nil {
		return nil, wrapDBErr(op, err)
	}

	rows, err := db.Query(ctx,
		`SELECT name, price_from_origin::text
		 FROM route_stops
		 WHERE route_id = $1
		 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			s     domain.Stop
			price string
		)
		if err := rows.Scan(&s.Name, &price); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if s.PriceFromOrigin, err = parseDecimal(price); err != nil {
			return nil, wrapDBErr(op, err)
		}
		rt.Stops = append(rt.Stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rt, nil
}
