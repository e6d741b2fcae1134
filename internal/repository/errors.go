package repository

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrSeatHeld     = errors.New("seat held by another session")
	ErrSeatSold     = errors.New("seat already sold")
	ErrHoldNotFound = errors.New("hold not found")
	ErrHasTickets   = errors.New("tickets already sold")
	ErrInUse        = errors.New("still referenced")
)
