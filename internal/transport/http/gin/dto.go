package httpgin

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/busseat/internal/domain"
)

type ReserveRequest struct {
	TripID     int64 `json:"tripId" binding:"required,gt=0"`
	SeatNumber int   `json:"seatNumber" binding:"required,gt=0"`
	TTLSec     int   `json:"ttlSec" binding:"gte=0"`
}

type ReleaseRequest struct {
	TripID     int64 `json:"tripId" binding:"required,gt=0"`
	SeatNumber int   `json:"seatNumber" binding:"required,gt=0"`
}

type PurchaseRequest struct {
	TripID       int64            `json:"tripId" binding:"required,gt=0"`
	SeatNumber   int              `json:"seatNumber" binding:"required,gt=0"`
	BoardingStop string           `json:"boardingStop"`
	DropoffStop  string           `json:"dropoffStop"`
	Passenger    domain.Passenger `json:"passenger"`
}

func (r PurchaseRequest) draft() domain.TicketDraft {
	return domain.TicketDraft{
		TripID:       r.TripID,
		SeatNumber:   r.SeatNumber,
		BoardingStop: r.BoardingStop,
		DropoffStop:  r.DropoffStop,
		Passenger:    r.Passenger,
	}
}

type GenerateTripsRequest struct {
	StartDate    string  `json:"startDate" binding:"required"`
	EndDate      string  `json:"endDate" binding:"required"`
	FrequencyIDs []int64 `json:"frequencyIds" binding:"omitempty,dive,gt=0"`
	BusGroupID   *int64  `json:"busGroupId" binding:"omitempty,gt=0"`
}

type CreateFrequencyRequest struct {
	RouteID       int64            `json:"routeId" binding:"required,gt=0"`
	BusGroupID    int64            `json:"busGroupId" binding:"required,gt=0"`
	DepartureTime string           `json:"departureTime" binding:"required"`
	OperatingDays []string         `json:"operatingDays" binding:"required,min=1"`
	PriceOverride *decimal.Decimal `json:"priceOverride"`
}

type CreateTripRequest struct {
	RouteID       int64            `json:"routeId" binding:"required,gt=0"`
	BusID         int64            `json:"busId" binding:"required,gt=0"`
	Date          string           `json:"date" binding:"required"`
	DepartureTime string           `json:"departureTime" binding:"required"`
	PriceOverride *decimal.Decimal `json:"priceOverride"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type ReserveResponse struct {
	TripID      int64     `json:"tripId"`
	SeatNumber  int       `json:"seatNumber"`
	LockedUntil time.Time `json:"lockedUntil"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
