// Package client talks to the booking HTTP API on behalf of one session.
// It implements booking.Backend.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kirinyoku/busseat/internal/booking"
	"github.com/kirinyoku/busseat/internal/domain"
)

const maxErrorBody = 64 << 10

// StatusError is an HTTP failure the booking flow has no class for.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	token   func() string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for baseURL. token is called per request and its
// result sent as a bearer token.
func New(baseURL string, token func() string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ booking.Backend = (*Client)(nil)

type seatMapBody struct {
	SeatLayout    any `json:"seatLayout"`
	OccupiedSeats any `json:"occupiedSeats"`
}

func (c *Client) SeatMap(ctx context.Context, tripID int64) (booking.RawSeatMap, error) {
	const op = "client.SeatMap"

	var body seatMapBody
	if err := c.do(ctx, http.MethodGet, "/trips/"+strconv.FormatInt(tripID, 10)+"/seatmap", nil, &body); err != nil {
		return booking.RawSeatMap{}, fmt.Errorf("%s: %w", op, err)
	}

	return booking.RawSeatMap{Layout: body.SeatLayout, Occupied: body.OccupiedSeats}, nil
}

type seatBody struct {
	TripID     int64 `json:"tripId"`
	SeatNumber int   `json:"seatNumber"`
}

func (c *Client) Reserve(ctx context.Context, tripID int64, seat int) (time.Time, error) {
	const op = "client.Reserve"

	var out struct {
		LockedUntil time.Time `json:"lockedUntil"`
	}
	if err := c.do(ctx, http.MethodPost, "/tickets/reserve", seatBody{tripID, seat}, &out); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return out.LockedUntil, nil
}

func (c *Client) Release(ctx context.Context, tripID int64, seat int) error {
	const op = "client.Release"

	if err := c.do(ctx, http.MethodDelete, "/tickets/reserve", seatBody{tripID, seat}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Purchase(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	const op = "client.Purchase"

	var t domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", draft, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", booking.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %w", booking.ErrNetwork, err)
		}
		return nil
	}

	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
	}

	return statusErr(resp.StatusCode, eb)
}

func statusErr(code int, eb errorBody) error {
	switch {
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", booking.ErrConflict, eb.Error)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", booking.ErrUnauthorized, eb.Error)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		fields := eb.Fields
		if len(fields) == 0 {
			fields = map[string]string{"request": eb.Error}
		}
		return &booking.ValidationError{Fields: fields}
	case code >= http.StatusInternalServerError || code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", booking.ErrNetwork, &StatusError{Code: code, Message: eb.Error})
	default:
		return &StatusError{Code: code, Message: eb.Error}
	}
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
