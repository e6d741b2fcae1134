package query

import (
	"errors"
)

var (
	ErrTripNotFound  = errors.New("trip not found")
	ErrRouteNotFound = errors.New("route not found")
	ErrSeatNotFound  = errors.New("seat does not exist on this trip")

	ErrSeatUnavailable = errors.New("seat is sold or held by another session")
)
