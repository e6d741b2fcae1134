package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/repository"
)

type HoldRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *HoldRepo) With(db DB) *HoldRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HoldRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Acquire takes or renews the hold on one seat.
//
// The row is written only when no hold exists, the existing one expired
// at now, or it already belongs to sessionID (domain.ReservationHold.Admits).
// Any other hold the session has on the same trip is dropped, so a session
// holds at most one seat per trip.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - tripID, seat: the seat to hold.
//   - sessionID: holder session.
//   - now: the caller's clock.
//   - lockedUntil: expiry to store.
//
// Returns:
//   - time.Time: the stored expiry.
//   - error: repository.ErrSeatHeld if another session holds the seat.
func (r *HoldRepo) Acquire(
	ctx context.Context,
	tripID int64,
	seat int,
	sessionID string,
	now, lockedUntil time.Time,
) (time.Time, error) {
	const op = "postgresrepo.HoldRepo.Acquire"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`DELETE FROM holds
		 WHERE trip_id = $1 AND session_id = $2 AND seat_number <> $3`,
		tripID, sessionID, seat,
	); err != nil {
		return time.Time{}, wrapDBErr(op, err)
	}

	var stored time.Time
	err := db.QueryRow(ctx,
		`INSERT INTO holds(trip_id, seat_number, session_id, locked_until)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (trip_id, seat_number) DO UPDATE
		    SET session_id = EXCLUDED.session_id,
		        locked_until = EXCLUDED.locked_until,
		        created_at = now()
		  WHERE holds.locked_until <= $5 OR holds.session_id = EXCLUDED.session_id
		 RETURNING locked_until`,
		tripID, seat, sessionID, lockedUntil, now,
	).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%s: %w", op, repository.ErrSeatHeld)
	}
	if err != nil {
		return time.Time{}, wrapDBErr(op, err)
	}

	return stored, nil
}

// Get returns the hold on a seat, expired or not.
//
// Returns:
//   - error: repository.ErrHoldNotFound if nobody holds the seat.
func (r *HoldRepo) Get(ctx context.Context, tripID int64, seat int) (*domain.ReservationHold, error) {
	const op = "postgresrepo.HoldRepo.Get"

	h := domain.ReservationHold{TripID: tripID, SeatNumber: seat}
	err := r.handle().QueryRow(ctx,
		`SELECT session_id, locked_until
		 FROM holds WHERE trip_id = $1 AND seat_number = $2`,
		tripID, seat,
	).Scan(&h.HolderSessionID, &h.LockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrHoldNotFound)
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &h, nil
}

// Release deletes the session's own hold on a seat.
//
// Returns:
//   - error: repository.ErrHoldNotFound if the session holds nothing there.
func (r *HoldRepo) Release(ctx context.Context, tripID int64, seat int, sessionID string) error {
	const op = "postgresrepo.HoldRepo.Release"

	tag, err := r.handle().Exec(ctx,
		`DELETE FROM holds
		 WHERE trip_id = $1 AND seat_number = $2 AND session_id = $3`,
		tripID, seat, sessionID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrHoldNotFound)
	}

	return nil
}

// Delete drops any hold on a seat regardless of holder.
func (r *HoldRepo) Delete(ctx context.Context, tripID int64, seat int) error {
	const op = "postgresrepo.HoldRepo.Delete"

	if _, err := r.handle().Exec(ctx,
		`DELETE FROM holds WHERE trip_id = $1 AND seat_number = $2`,
		tripID, seat,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Expire deletes holds that expired at now and reports the trips they
// belonged to.
func (r *HoldRepo) Expire(ctx context.Context, now time.Time) ([]int64, error) {
	const op = "postgresrepo.HoldRepo.Expire"

	rows, err := r.handle().Query(ctx,
		`DELETE FROM holds WHERE locked_until <= $1 RETURNING trip_id`,
		now,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	seen := make(map[int64]bool)
	var trips []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if !seen[id] {
			seen[id] = true
			trips = append(trips, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return trips, nil
}

// Live returns seats of a trip held at now by sessions other than
// exceptSession.
func (r *HoldRepo) Live(ctx context.Context, tripID int64, exceptSession string, now time.Time) ([]int, error) {
	const op = "postgresrepo.HoldRepo.Live"

	rows, err := r.handle().Query(ctx,
		`SELECT seat_number
		 FROM holds
		 WHERE trip_id = $1 AND locked_until > $2 AND session_id <> $3
		 ORDER BY seat_number`,
		tripID, now, exceptSession,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return collectInts(op, rows)
}

func collectInts(op string, rows pgx.Rows) ([]int, error) {
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
