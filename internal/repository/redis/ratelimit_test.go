package redisrepo

import "testing"

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{int64(3), 3},
		{7, 7},
		{float64(1500), 1500},
		{"42", 42},
		{"x", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := toInt(tt.in); got != tt.want {
			t.Errorf("toInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	if got := KeyTripSeating(12); got != "busseat:v1:trip:12:seating" {
		t.Errorf("KeyTripSeating = %q", got)
	}
	if got := KeyIdemReserve("s1", "k1"); got != "busseat:v1:idem:reserve:s1:k1" {
		t.Errorf("KeyIdemReserve = %q", got)
	}
}
