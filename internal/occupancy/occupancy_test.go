package occupancy

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/layout"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected []int
	}{
		{"string array", decode(t, `["5","12"]`), []int{5, 12}},
		{"number array", decode(t, `[5, 12]`), []int{5, 12}},
		{"mixed array", decode(t, `[5, "12", " 07 ", null, true]`), []int{5, 7, 12}},
		{"object array", decode(t, `[{"seatNumber":3},{"n":"4"},{"foo":1}]`), []int{3, 4}},
		{"csv", "5, 12,,7", []int{5, 7, 12}},
		{"bracketed csv", "[5,12]", []int{5, 12}},
		{"bool map", decode(t, `{"5":true,"12":1,"7":false,"9":"no"}`), []int{5, 12}},
		{"typed slice", []int{1, 2}, []int{1, 2}},
		{"nil", nil, []int{}},
		{"empty string", "", []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.raw).Numbers()
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Parse() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestReconcileStringCoercion(t *testing.T) {
	l := layout.Synthetic(12, layout.Options{})

	got, count := Reconcile(l, Parse([]any{"5", "12"}))

	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	s12, _ := got.Seat(12)
	if !s12.Occupied {
		t.Errorf("seat 12 not occupied")
	}
	s5, _ := got.Seat(5)
	if !s5.Occupied {
		t.Errorf("seat 5 not occupied")
	}
}

func TestReconcileClearsAbsentSeats(t *testing.T) {
	l := domain.SeatLayout{Rows: 1, Columns: 5, Seats: []domain.Seat{
		{Number: 1, Occupied: true},
		{Number: 2, Col: 1, Occupied: true},
	}}

	got, count := Reconcile(l, FromNumbers(2))

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if s, _ := got.Seat(1); s.Occupied {
		t.Errorf("seat 1 still occupied")
	}
	if s, _ := l.Seat(1); !s.Occupied {
		t.Errorf("input layout was mutated")
	}
}
