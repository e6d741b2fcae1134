package reservation

import (
	"testing"
	"time"
)

func TestClampTTL(t *testing.T) {
	s := &Service{cfg: Config{
		HoldTTL:    5 * time.Minute,
		MinHoldTTL: time.Minute,
		MaxHoldTTL: 10 * time.Minute,
	}.withDefaults()}

	tests := []struct {
		in, want time.Duration
	}{
		{0, 5 * time.Minute},
		{-time.Second, 5 * time.Minute},
		{10 * time.Second, time.Minute},
		{3 * time.Minute, 3 * time.Minute},
		{time.Hour, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := s.ClampTTL(tt.in); got != tt.want {
			t.Errorf("ClampTTL(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestConfigDefaultsRepairInvertedBounds(t *testing.T) {
	c := Config{MinHoldTTL: 20 * time.Minute, MaxHoldTTL: time.Minute}.withDefaults()
	if c.MaxHoldTTL < c.MinHoldTTL {
		t.Fatalf("max %s < min %s", c.MaxHoldTTL, c.MinHoldTTL)
	}
	if c.Now == nil {
		t.Fatal("Now not defaulted")
	}
}
