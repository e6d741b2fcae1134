package reservation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrTripNotOpen  = errors.New("trip is not open for booking")
	ErrSeatNotFound = errors.New("seat does not exist on this trip")
	ErrSeatHeld     = errors.New("seat is held by another session")
	ErrSeatSold     = errors.New("seat is already sold")
	ErrHoldNotFound = errors.New("hold not found")
	ErrNoSession    = errors.New("session id required")
)

// RateLimitedError is returned when a session reserves too often.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("too many reservations, retry in %s", e.RetryAfter)
}
