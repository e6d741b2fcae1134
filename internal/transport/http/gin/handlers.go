package httpgin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
	"github.com/kirinyoku/busseat/internal/service"
	"github.com/kirinyoku/busseat/internal/service/schedule"
)

// --- Handlers with Swagger annotations ---

// @Summary  Seat map of a trip
// @Description  Canonical layout and occupied seats. The caller's own live hold is not reported as occupied.
// @Param    id  path  int  true  "Trip ID"
// @Param    Authorization  header  string  false  "Bearer token"
// @Success  200  {object}  domain.SeatMap
// @Failure  401  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /trips/{id}/seatmap [get]
func handleSeatMap(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		m, err := svcs.Query.SeatMap(c.Request.Context(), tripID, sessionID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		// holds change by the second; revalidate every time
		writeJSONWithCache(c, http.StatusOK, m, "private, no-cache", true)
	}
}

// @Summary  Fare quote for a seat
// @Param    Authorization  header  string  false  "Bearer token"
// @Param    id        path   int     true   "Trip ID"
// @Param    seat      query  int     true   "Seat number"
// @Param    boarding  query  string  false  "Boarding stop"
// @Param    dropoff   query  string  false  "Drop-off stop"
// @Success  200  {object}  query.Quote
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "seat sold or held by another session"
// @Router   /trips/{id}/fare [get]
func handleFare(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seat, err := strconv.Atoi(c.Query("seat"))
		if err != nil || seat <= 0 {
			badRequest(c, "invalid seat")
			return
		}
		q, err := svcs.Query.Fare(
			c.Request.Context(),
			tripID,
			seat,
			sessionID(c),
			c.Query("boarding"),
			c.Query("dropoff"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, q, "private, no-cache", true)
	}
}

// @Summary  Reserve a seat (idempotent)
// @Param    Authorization    header  string  true   "Bearer token"
// @Param    Idempotency-Key  header  string  false  "Idempotency key"
// @Param    req  body  ReserveRequest  true  "payload"
// @Success  201  {object}  ReserveResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  401  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "seat held or sold / idem in progress"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /tickets/reserve [post]
func handleReserve(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReserveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idempotent(c, idem, redisrepo.KeyIdemReserve, http.StatusCreated, func() (any, error) {
			h, err := svcs.Reservation.Reserve(
				c.Request.Context(),
				sessionID(c),
				req.TripID,
				req.SeatNumber,
				time.Duration(req.TTLSec)*time.Second,
			)
			if err != nil {
				return nil, err
			}
			return ReserveResponse{
				TripID:      h.TripID,
				SeatNumber:  h.SeatNumber,
				LockedUntil: h.LockedUntil,
			}, nil
		})
	}
}

// @Summary  Release a held seat
// @Param    Authorization  header  string  true  "Bearer token"
// @Param    req  body  ReleaseRequest  true  "payload"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /tickets/reserve [delete]
func handleRelease(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Reservation.Release(
			c.Request.Context(),
			sessionID(c),
			req.TripID,
			req.SeatNumber,
		); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Purchase a ticket (idempotent)
// @Param    Authorization    header  string  true   "Bearer token"
// @Param    Idempotency-Key  header  string  false  "Idempotency key"
// @Param    req  body  PurchaseRequest  true  "payload"
// @Success  201  {object}  domain.Ticket
// @Failure  401  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "seat held or sold"
// @Failure  422  {object}  ErrorResponse "invalid passenger data"
// @Router   /tickets [post]
func handlePurchase(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idempotent(c, idem, redisrepo.KeyIdemPurchase, http.StatusCreated, func() (any, error) {
			return svcs.Tickets.Purchase(c.Request.Context(), sessionID(c), req.draft())
		})
	}
}

// @Summary  Get ticket
// @Param    Authorization  header  string  true  "Bearer token"
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200  {object}  domain.Ticket
// @Failure  404  {object}  ErrorResponse
// @Router   /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			badRequest(c, "invalid id")
			return
		}
		t, err := svcs.Tickets.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Generate trips from frequencies
// @Param    Authorization  header  string  true  "Bearer token (admin)"
// @Param    req  body  GenerateTripsRequest  true  "payload"
// @Success  201  {object}  schedule.GenerateResult
// @Failure  404  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse "bad range or too many frequencies for the bus group"
// @Router   /frequencies/generate-trips [post]
func handleGenerateTrips(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateTripsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Schedule.GenerateTrips(c.Request.Context(), schedule.GenerateRequest{
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			FrequencyIDs: req.FrequencyIDs,
			BusGroupID:   req.BusGroupID,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// @Summary  Create frequency
// @Param    Authorization  header  string  true  "Bearer token (admin)"
// @Param    req  body  CreateFrequencyRequest  true  "payload"
// @Success  201  {object}  CreatedResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /frequencies [post]
func handleCreateFrequency(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateFrequencyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Schedule.CreateFrequency(c.Request.Context(), schedule.FrequencyInput{
			RouteID:       req.RouteID,
			BusGroupID:    req.BusGroupID,
			DepartureTime: req.DepartureTime,
			OperatingDays: req.OperatingDays,
			PriceOverride: req.PriceOverride,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreatedResponse{ID: id})
	}
}

// @Summary  Delete frequency
// @Description  Future trips without tickets are deleted, those with tickets are cancelled.
// @Param    Authorization  header  string  true  "Bearer token (admin)"
// @Param    id  path  int  true  "Frequency ID"
// @Success  200  {object}  schedule.DeleteResult
// @Failure  404  {object}  ErrorResponse
// @Router   /frequencies/{id} [delete]
func handleDeleteFrequency(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		res, err := svcs.Schedule.DeleteFrequency(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Create trip
// @Param    Authorization  header  string  true  "Bearer token (admin)"
// @Param    req  body  CreateTripRequest  true  "payload"
// @Success  201  {object}  CreatedResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /trips [post]
func handleCreateTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Schedule.CreateTrip(c.Request.Context(), schedule.TripInput{
			RouteID:       req.RouteID,
			BusID:         req.BusID,
			Date:          req.Date,
			DepartureTime: req.DepartureTime,
			PriceOverride: req.PriceOverride,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreatedResponse{ID: id})
	}
}

// @Summary  Delete trip
// @Param    Authorization  header  string  true  "Bearer token (admin)"
// @Param    id  path  int  true  "Trip ID"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "trip has tickets"
// @Router   /trips/{id} [delete]
func handleDeleteTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Schedule.DeleteTrip(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
