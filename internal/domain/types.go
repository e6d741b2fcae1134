package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatFree SeatStatus = "FREE"
	SeatHeld SeatStatus = "HELD"
	SeatSold SeatStatus = "SOLD"
)

type SeatClass string

const (
	ClassNormal   SeatClass = "NORMAL"
	ClassVIP      SeatClass = "VIP"
	ClassSemiCama SeatClass = "SEMI_CAMA"
)

type TripStatus string

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Seat is one cell of a canonical layout. Floor is 0 for the lower deck
// and 1 for the upper deck of a double-decker bus.
type Seat struct {
	Number   int       `json:"number"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	Floor    int       `json:"floor"`
	Class    SeatClass `json:"class"`
	Occupied bool      `json:"occupied"`
}

type SeatLayout struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Seats   []Seat `json:"seats"`
}

// Seat returns the seat with the given number.
func (l SeatLayout) Seat(number int) (Seat, bool) {
	for _, s := range l.Seats {
		if s.Number == number {
			return s, true
		}
	}
	return Seat{}, false
}

// Clone returns a deep copy so callers may mutate seats freely.
func (l SeatLayout) Clone() SeatLayout {
	cp := l
	cp.Seats = make([]Seat, len(l.Seats))
	copy(cp.Seats, l.Seats)
	return cp
}

type Stop struct {
	Name            string          `json:"name"`
	PriceFromOrigin decimal.Decimal `json:"priceFromOrigin"`
}

type Route struct {
	ID          int64           `json:"id"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Stops       []Stop          `json:"stops"`
}

type Trip struct {
	ID            int64            `json:"id"`
	RouteID       int64            `json:"routeId"`
	FrequencyID   *int64           `json:"frequencyId,omitempty"`
	BusID         int64            `json:"busId"`
	Date          time.Time        `json:"date"`
	DepartureTime string           `json:"departureTime"`
	Status        TripStatus       `json:"status"`
	PriceOverride *decimal.Decimal `json:"priceOverride,omitempty"`
}

// WeekdaySet is a bitmask indexed by time.Weekday (bit 0 = Sunday).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

type Frequency struct {
	ID            int64            `json:"id"`
	RouteID       int64            `json:"routeId"`
	BusGroupID    int64            `json:"busGroupId"`
	DepartureTime string           `json:"departureTime"`
	OperatingDays WeekdaySet       `json:"operatingDays"`
	PriceOverride *decimal.Decimal `json:"priceOverride,omitempty"`
}

// BusGroup lists the physical buses that can serve a batch of frequencies.
type BusGroup struct {
	ID     int64   `json:"id"`
	BusIDs []int64 `json:"busIds"`
}

type TripDraft struct {
	FrequencyID   int64     `json:"frequencyId"`
	RouteID       int64     `json:"routeId"`
	BusID         int64     `json:"busId"`
	Date          time.Time `json:"date"`
	DepartureTime string    `json:"departureTime"`
}

type ReservationHold struct {
	TripID          int64     `json:"tripId"`
	SeatNumber      int       `json:"seatNumber"`
	HolderSessionID string    `json:"holderSessionId"`
	LockedUntil     time.Time `json:"lockedUntil"`
}

// Expired reports whether the hold no longer excludes other sessions at now.
func (h ReservationHold) Expired(now time.Time) bool {
	return !now.Before(h.LockedUntil)
}

// Admits reports whether sessionID may take or renew the seat over h at
// now: no hold, an expired one, or the session's own. The holds upsert in
// the postgres repository applies the same rule in its WHERE clause.
func (h *ReservationHold) Admits(sessionID string, now time.Time) bool {
	return h == nil || h.Expired(now) || h.HolderSessionID == sessionID
}

type Passenger struct {
	FullName string `json:"fullName" validate:"required,min=3,max=120"`
	Document string `json:"document" validate:"required,alphanum,min=5,max=20"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type TicketDraft struct {
	TripID       int64     `json:"tripId"`
	SeatNumber   int       `json:"seatNumber"`
	BoardingStop string    `json:"boardingStop,omitempty"`
	DropoffStop  string    `json:"dropoffStop,omitempty"`
	Passenger    Passenger `json:"passenger"`
}

type Ticket struct {
	ID           uuid.UUID       `json:"id"`
	TripID       int64           `json:"tripId"`
	SeatNumber   int             `json:"seatNumber"`
	SeatClass    SeatClass       `json:"seatClass"`
	BoardingStop string          `json:"boardingStop,omitempty"`
	DropoffStop  string          `json:"dropoffStop,omitempty"`
	Passenger    Passenger       `json:"passenger"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SeatMap is the payload served for one trip: its canonical layout plus
// the authoritative occupied seat numbers.
type SeatMap struct {
	TripID        int64      `json:"tripId"`
	SeatLayout    SeatLayout `json:"seatLayout"`
	OccupiedSeats []int      `json:"occupiedSeats"`
}
