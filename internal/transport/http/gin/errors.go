package httpgin

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/busseat/internal/booking"
	"github.com/kirinyoku/busseat/internal/frequency"
	"github.com/kirinyoku/busseat/internal/service/query"
	"github.com/kirinyoku/busseat/internal/service/reservation"
	"github.com/kirinyoku/busseat/internal/service/schedule"
	"github.com/kirinyoku/busseat/internal/service/tickets"
)

var statusByErr = []struct {
	err    error
	status int
}{
	// query service
	{query.ErrTripNotFound, http.StatusNotFound},
	{query.ErrRouteNotFound, http.StatusNotFound},
	{query.ErrSeatNotFound, http.StatusNotFound},
	{query.ErrSeatUnavailable, http.StatusConflict},
	// reservation service
	{reservation.ErrTripNotFound, http.StatusNotFound},
	{reservation.ErrSeatNotFound, http.StatusNotFound},
	{reservation.ErrHoldNotFound, http.StatusNotFound},
	{reservation.ErrTripNotOpen, http.StatusConflict},
	{reservation.ErrSeatHeld, http.StatusConflict},
	{reservation.ErrSeatSold, http.StatusConflict},
	{reservation.ErrNoSession, http.StatusUnauthorized},
	// tickets service
	{tickets.ErrTicketNotFound, http.StatusNotFound},
	{tickets.ErrTripNotFound, http.StatusNotFound},
	{tickets.ErrSeatNotFound, http.StatusNotFound},
	{tickets.ErrTripNotOpen, http.StatusConflict},
	{tickets.ErrSeatHeld, http.StatusConflict},
	{tickets.ErrHoldRequired, http.StatusConflict},
	{tickets.ErrSeatSold, http.StatusConflict},
	{tickets.ErrNoSession, http.StatusUnauthorized},
	// schedule service
	{schedule.ErrFrequencyNotFound, http.StatusNotFound},
	{schedule.ErrBusGroupNotFound, http.StatusNotFound},
	{schedule.ErrTripNotFound, http.StatusNotFound},
	{schedule.ErrTripHasTickets, http.StatusConflict},
	{schedule.ErrUnknownReference, http.StatusUnprocessableEntity},
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		rl reservation.RateLimitedError
		bv *booking.ValidationError
		fv *frequency.ValidationError
	)
	switch {
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: rl.Error()})
		return
	case errors.As(err, &bv):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: bv.Fields})
		return
	case errors.As(err, &fv):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{fv.Field: fv.Reason},
		})
		return
	}

	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			c.JSON(m.status, ErrorResponse{Error: m.err.Error()})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
