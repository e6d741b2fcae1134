package booking

import (
	"errors"
	"sort"
	"strings"
)

// Backend classification. Backend implementations wrap these so the
// session can tell recoverable failures from fatal ones.
var (
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network error")
)

// Session outcomes.
var (
	ErrSeatUnavailable  = errors.New("seat no longer available")
	ErrAuthExpired      = errors.New("session expired, sign in again")
	ErrHoldExpired      = errors.New("hold expired, select the seat again")
	ErrPurchaseInFlight = errors.New("purchase already in progress")
	ErrNoSelection      = errors.New("no seat selected")
	ErrUnknownSeat      = errors.New("seat does not exist on this trip")
	ErrSuperseded       = errors.New("selection superseded")
)

// ValidationError carries per-field messages that are shown next to the
// offending input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fatal reports whether err ends the booking flow and needs the user to
// act outside it (sign in again).
func Fatal(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

// Retryable reports whether the user can recover by reselecting.
func Retryable(err error) bool {
	return errors.Is(err, ErrSeatUnavailable) ||
		errors.Is(err, ErrHoldExpired) ||
		errors.Is(err, ErrNetwork)
}
