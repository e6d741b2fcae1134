package schedule

import (
	"errors"
)

var (
	ErrFrequencyNotFound = errors.New("frequency not found")
	ErrBusGroupNotFound  = errors.New("bus group not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrTripHasTickets    = errors.New("trip has sold tickets")
	ErrUnknownReference  = errors.New("route, bus or bus group does not exist")
)
