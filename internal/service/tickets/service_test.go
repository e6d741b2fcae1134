package tickets

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/repository"
	"github.com/kirinyoku/busseat/internal/service/query"
)

func TestMapQueryErr(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		in   error
		want error
	}{
		{fmt.Errorf("service.query.Seating: %w", query.ErrTripNotFound), ErrTripNotFound},
		{query.ErrSeatNotFound, ErrSeatNotFound},
		{other, other},
	}
	for _, tt := range tests {
		if got := mapQueryErr(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("mapQueryErr(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCheckHold(t *testing.T) {
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	boom := errors.New("boom")
	held := func(session string, until time.Time) *domain.ReservationHold {
		return &domain.ReservationHold{TripID: 1, SeatNumber: 4, HolderSessionID: session, LockedUntil: until}
	}

	tests := []struct {
		name      string
		hold      *domain.ReservationHold
		err       error
		expectErr error
	}{
		{"own live hold", held("s1", now.Add(time.Minute)), nil, nil},
		{"own expired hold", held("s1", now.Add(-time.Minute)), nil, nil},
		{"no hold", nil, repository.ErrHoldNotFound, ErrHoldRequired},
		{"other live hold", held("s2", now.Add(time.Minute)), nil, ErrSeatHeld},
		{"other expired hold", held("s2", now), nil, ErrHoldRequired},
		{"read failure", nil, boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkHold(tt.hold, tt.err, "s1", now)
			if tt.expectErr == nil {
				if err != nil {
					t.Fatalf("checkHold = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("checkHold = %v, want %v", err, tt.expectErr)
			}
		})
	}
}
