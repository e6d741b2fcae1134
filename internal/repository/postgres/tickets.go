package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/busseat/internal/domain"
)

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert stores a sold ticket.
//
// Returns:
//   - error: repository.ErrConflict if the seat was sold concurrently.
func (r *TicketRepo) Insert(ctx context.Context, t domain.Ticket, sessionID string) error {
	const op = "postgresrepo.TicketRepo.Insert"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO tickets(
			id, trip_id, seat_number, seat_class, boarding_stop, dropoff_stop,
			passenger_name, passenger_document, passenger_email, passenger_phone,
			price, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12, $13)`,
		t.ID, t.TripID, t.SeatNumber, string(t.SeatClass), t.BoardingStop, t.DropoffStop,
		t.Passenger.FullName, t.Passenger.Document, t.Passenger.Email, t.Passenger.Phone,
		t.Price.String(), sessionID, t.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get retrieves a ticket by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket does not exist.
func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	var (
		t     domain.Ticket
		class string
		price string
	)
	err := r.handle().QueryRow(ctx,
		`SELECT id, trip_id, seat_number, seat_class, boarding_stop, dropoff_stop,
		        passenger_name, passenger_document, passenger_email, passenger_phone,
		        price::text, created_at
		 FROM tickets WHERE id = $1`,
		id,
	).Scan(
		&t.ID,
		&t.TripID,
		&t.SeatNumber,
		&class,
		&t.BoardingStop,
		&t.DropoffStop,
		&t.Passenger.FullName,
		&t.Passenger.Document,
		&t.Passenger.Email,
		&t.Passenger.Phone,
		&price,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	t.SeatClass = domain.SeatClass(class)
	if t.Price, err = parseDecimal(price); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// Sold returns the sold seat numbers of a trip.
func (r *TicketRepo) Sold(ctx context.Context, tripID int64) ([]int, error) {
	const op = "postgresrepo.TicketRepo.Sold"

	rows, err := r.handle().Query(ctx,
		`SELECT seat_number FROM tickets WHERE trip_id = $1 ORDER BY seat_number`,
		tripID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return collectInts(op, rows)
}

// IsSold reports whether a seat already has a ticket.
func (r *TicketRepo) IsSold(ctx context.Context, tripID int64, seat int) (bool, error) {
	const op = "postgresrepo.TicketRepo.IsSold"

	var sold bool
	if err := r.handle().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE trip_id = $1 AND seat_number = $2)`,
		tripID, seat,
	).Scan(&sold); err != nil {
		return false, wrapDBErr(op, err)
	}

	return sold, nil
}
