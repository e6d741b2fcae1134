package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/booking"
	"github.com/kirinyoku/busseat/internal/domain"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, func() string { return "tok" })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSeatMapFeedsSession(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trips/7/seatmap" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, http.StatusOK, domain.SeatMap{
			TripID: 7,
			SeatLayout: domain.SeatLayout{
				Rows:    1,
				Columns: 2,
				Seats: []domain.Seat{
					{Number: 1, Row: 0, Col: 0, Class: domain.ClassNormal},
					{Number: 2, Row: 0, Col: 1, Class: domain.ClassNormal},
				},
			},
			OccupiedSeats: []int{2},
		})
	})

	s := booking.NewSession(c, 7, booking.Config{}, zap.NewNop())
	defer s.Close()

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	views := s.Seats()
	if len(views) != 2 {
		t.Fatalf("seats = %d, want 2", len(views))
	}
	for _, v := range views {
		want := domain.SeatFree
		if v.Number == 2 {
			want = domain.SeatSold
		}
		if v.Status != want {
			t.Errorf("seat %d status = %s, want %s", v.Number, v.Status, want)
		}
	}
}

func TestReserveReturnsLockedUntil(t *testing.T) {
	until := time.Date(2025, 5, 1, 12, 5, 0, 0, time.UTC)

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var in seatBody
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TripID != 3 || in.SeatNumber != 12 {
			t.Errorf("body = %+v, err %v", in, err)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"tripId": 3, "seatNumber": 12, "lockedUntil": until})
	})

	got, err := c.Reserve(context.Background(), 3, 12)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !got.Equal(until) {
		t.Errorf("lockedUntil = %v, want %v", got, until)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(error) bool
	}{
		{"conflict", http.StatusConflict, map[string]string{"error": "seat is held"},
			func(err error) bool { return errors.Is(err, booking.ErrConflict) }},
		{"unauthorized", http.StatusUnauthorized, map[string]string{"error": "token expired"},
			func(err error) bool { return errors.Is(err, booking.ErrUnauthorized) }},
		{"validation", http.StatusUnprocessableEntity,
			map[string]any{"error": "validation failed", "fields": map[string]string{"document": "required"}},
			func(err error) bool {
				var ve *booking.ValidationError
				return errors.As(err, &ve) && ve.Fields["document"] == "required"
			}},
		{"bad request", http.StatusBadRequest, map[string]string{"error": "invalid seat"},
			func(err error) bool {
				var ve *booking.ValidationError
				return errors.As(err, &ve) && ve.Fields["request"] == "invalid seat"
			}},
		{"server error", http.StatusBadGateway, map[string]string{"error": "upstream"},
			func(err error) bool { return errors.Is(err, booking.ErrNetwork) && IsStatus(err, http.StatusBadGateway) }},
		{"not found", http.StatusNotFound, map[string]string{"error": "trip not found"},
			func(err error) bool { return IsStatus(err, http.StatusNotFound) && !errors.Is(err, booking.ErrNetwork) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.Purchase(context.Background(), domain.TicketDraft{TripID: 1, SeatNumber: 1})
			if err == nil || !tt.check(err) {
				t.Fatalf("err = %v, classification mismatch", err)
			}
		})
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, nil)
	err := c.Release(context.Background(), 1, 1)
	if !errors.Is(err, booking.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestPurchaseDecodesTicket(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tickets" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusCreated, domain.Ticket{
			TripID:     4,
			SeatNumber: 9,
			SeatClass:  domain.ClassVIP,
			Price:      decimal.RequireFromString("13.00"),
		})
	})

	tk, err := c.Purchase(context.Background(), domain.TicketDraft{TripID: 4, SeatNumber: 9})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if tk.SeatNumber != 9 || !tk.Price.Equal(decimal.NewFromInt(13)) {
		t.Errorf("ticket = %+v", tk)
	}
}
