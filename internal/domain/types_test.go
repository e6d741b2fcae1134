package domain

import (
	"testing"
	"time"
)

func TestReservationHoldAdmits(t *testing.T) {
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hold     *ReservationHold
		session  string
		expected bool
	}{
		{"no hold", nil, "s1", true},
		{"own live hold", &ReservationHold{HolderSessionID: "s1", LockedUntil: now.Add(time.Minute)}, "s1", true},
		{"other live hold", &ReservationHold{HolderSessionID: "s2", LockedUntil: now.Add(time.Minute)}, "s1", false},
		{"other hold expiring now", &ReservationHold{HolderSessionID: "s2", LockedUntil: now}, "s1", true},
		{"other expired hold", &ReservationHold{HolderSessionID: "s2", LockedUntil: now.Add(-time.Second)}, "s1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hold.Admits(tt.session, now); got != tt.expected {
				t.Errorf("Admits(%q) = %v, want %v", tt.session, got, tt.expected)
			}
		})
	}
}

// A sequence of acquisitions applied through Admits never leaves two
// sessions with a live hold on the same seat.
func TestAdmitsKeepsOneLiveHolder(t *testing.T) {
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	steps := []struct {
		session string
		at      time.Duration
		granted bool
	}{
		{"s1", 0, true},
		{"s2", time.Minute, false},
		{"s1", 2 * time.Minute, true},
		{"s2", 6 * time.Minute, false},
		{"s2", 7 * time.Minute, true},
		{"s1", 8 * time.Minute, false},
		{"s3", 12 * time.Minute, true},
	}

	var row *ReservationHold
	for i, st := range steps {
		now := start.Add(st.at)
		granted := row.Admits(st.session, now)
		if granted != st.granted {
			t.Fatalf("step %d: %s granted = %v, want %v", i, st.session, granted, st.granted)
		}
		if granted {
			row = &ReservationHold{TripID: 1, SeatNumber: 4, HolderSessionID: st.session, LockedUntil: now.Add(ttl)}
		}
	}
}
