package tickets

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTripNotFound   = errors.New("trip not found")
	ErrTripNotOpen    = errors.New("trip is not open for booking")
	ErrSeatNotFound   = errors.New("seat does not exist on this trip")
	ErrSeatHeld       = errors.New("seat is held by another session")
	ErrSeatSold       = errors.New("seat is already sold")
	ErrHoldRequired   = errors.New("seat is not held by this session")
	ErrNoSession      = errors.New("session id required")
)
