package layout

import (
	"testing"

	"github.com/kirinyoku/busseat/internal/domain"
)

func checkInvariants(t *testing.T, l domain.SeatLayout) {
	t.Helper()

	seen := map[int]bool{}
	for _, s := range l.Seats {
		if s.Row < 0 || s.Row >= l.Rows {
			t.Errorf("seat %d: row %d outside [0,%d)", s.Number, s.Row, l.Rows)
		}
		if s.Col < 0 || s.Col >= l.Columns {
			t.Errorf("seat %d: col %d outside [0,%d)", s.Number, s.Col, l.Columns)
		}
		if l.Columns == DefaultPhysicalColumns && s.Col == DefaultAisleColumn {
			t.Errorf("seat %d placed on the aisle", s.Number)
		}
		if seen[s.Number] {
			t.Errorf("duplicate seat number %d", s.Number)
		}
		seen[s.Number] = true
	}
}

func TestNormalizeFieldNameVariants(t *testing.T) {
	payloads := map[string]string{
		"canonical":  `{"rows":2,"cols":5,"seats":[{"number":1,"row":0,"col":0},{"number":2,"row":1,"col":4}]}`,
		"short":      `{"rowCount":2,"columns":5,"seats":[{"n":1,"r":0,"c":0},{"n":2,"r":1,"c":4}]}`,
		"legacy":     `{"rowsCount":2,"colCount":5,"seatList":[{"seatNumber":1,"rowIndex":0,"colIndex":0},{"seatNumber":"2","rowIndex":"1","colIndex":4}]}`,
		"id":         `{"seats":[{"id":1,"row":0,"col":0},{"id":2,"row":1,"col":4}]}`,
		"wrapped":    `{"seatLayout":{"rows":2,"seats":[{"number":1,"row":0,"col":0},{"number":2,"row":1,"col":4}]}}`,
		"bare array": `[{"number":1,"row":0,"col":0},{"number":2,"row":1,"col":4}]`,
	}

	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			l := NormalizeJSON([]byte(p), Options{})
			checkInvariants(t, l)

			if l.Rows != 2 || l.Columns != 5 {
				t.Fatalf("got %dx%d, want 2x5", l.Rows, l.Columns)
			}
			s, ok := l.Seat(2)
			if !ok {
				t.Fatalf("seat 2 missing")
			}
			if s.Row != 1 || s.Col != 4 {
				t.Errorf("seat 2 at (%d,%d), want (1,4)", s.Row, s.Col)
			}
		})
	}
}

func TestNormalizeTwoFloors(t *testing.T) {
	p := `{"piso1":[{"number":1,"row":0,"col":0}],"piso2":{"seats":[{"number":2,"row":0,"col":0},{"number":3,"row":0,"col":1}]}}`

	l := NormalizeJSON([]byte(p), Options{})
	checkInvariants(t, l)

	if len(l.Seats) != 3 {
		t.Fatalf("got %d seats, want 3", len(l.Seats))
	}
	for _, tc := range []struct{ number, floor int }{{1, 0}, {2, 1}, {3, 1}} {
		s, _ := l.Seat(tc.number)
		if s.Floor != tc.floor {
			t.Errorf("seat %d floor = %d, want %d", tc.number, s.Floor, tc.floor)
		}
	}
}

func TestNormalizeOneBasedFloorField(t *testing.T) {
	p := `{"seats":[{"number":1,"piso":1},{"number":2,"piso":2}]}`

	l := NormalizeJSON([]byte(p), Options{})

	s1, _ := l.Seat(1)
	s2, _ := l.Seat(2)
	if s1.Floor != 0 || s2.Floor != 1 {
		t.Fatalf("floors = %d,%d, want 0,1", s1.Floor, s2.Floor)
	}
}

func TestNormalizeInfersGridWithoutPositions(t *testing.T) {
	p := `{"seats":[{"number":1},{"number":2},{"number":3},{"number":4},{"number":5}]}`

	l := NormalizeJSON([]byte(p), Options{})
	checkInvariants(t, l)

	if l.Rows != 2 {
		t.Fatalf("rows = %d, want 2", l.Rows)
	}
	s5, _ := l.Seat(5)
	if s5.Row != 1 || s5.Col != 0 {
		t.Errorf("seat 5 at (%d,%d), want (1,0)", s5.Row, s5.Col)
	}
	s3, _ := l.Seat(3)
	if s3.Col != 3 {
		t.Errorf("seat 3 col = %d, want 3 (aisle skipped)", s3.Col)
	}
}

func TestNormalizeSyntheticGrid(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		opts      Options
		wantSeats int
		wantRows  int
	}{
		{"total field", `{"totalSeats":10}`, Options{}, 10, 3},
		{"option fallback", `{}`, Options{TotalSeats: 8}, 8, 2},
		{"rows only", `{"rows":3}`, Options{}, 12, 3},
		{"garbage", `not json`, Options{TotalSeats: 4}, 4, 1},
		{"nothing", `null`, Options{}, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NormalizeJSON([]byte(tc.payload), tc.opts)
			checkInvariants(t, l)

			if len(l.Seats) != tc.wantSeats {
				t.Errorf("seats = %d, want %d", len(l.Seats), tc.wantSeats)
			}
			if l.Rows != tc.wantRows {
				t.Errorf("rows = %d, want %d", l.Rows, tc.wantRows)
			}
		})
	}
}

func TestNormalizeClassHeuristicDoesNotOverrideSource(t *testing.T) {
	p := `{"rows":3,"seats":[
		{"number":1,"row":0,"col":0},
		{"number":2,"row":1,"col":0},
		{"number":3,"row":2,"col":0},
		{"number":4,"row":0,"col":1,"class":"normal"},
		{"number":5,"row":1,"col":1,"seatClass":"semi-cama"}
	]}`

	l := NormalizeJSON([]byte(p), Options{})

	want := map[int]domain.SeatClass{
		1: domain.ClassVIP,
		2: domain.ClassNormal,
		3: domain.ClassSemiCama,
		4: domain.ClassNormal,
		5: domain.ClassSemiCama,
	}
	for n, class := range want {
		s, _ := l.Seat(n)
		if s.Class != class {
			t.Errorf("seat %d class = %s, want %s", n, s.Class, class)
		}
	}
}

func TestNormalizeMalformedEntries(t *testing.T) {
	p := `{"seats":[
		{"number":1,"row":0,"col":0,"class":42,"floor":"x","occupied":"maybe"},
		"7",
		null,
		{"number":1,"row":0,"col":1},
		{"row":-3,"col":2}
	]}`

	l := NormalizeJSON([]byte(p), Options{})
	checkInvariants(t, l)

	s1, _ := l.Seat(1)
	if s1.Class != domain.ClassNormal || s1.Floor != 0 || s1.Occupied {
		t.Errorf("seat 1 = %+v, want safe defaults", s1)
	}
	if s1.Col != 0 {
		t.Errorf("duplicate number replaced the first occurrence")
	}
	s7, ok := l.Seat(7)
	if !ok || s7.Class != domain.ClassNormal {
		t.Errorf("scalar entry not kept as seat 7: %+v", s7)
	}
	// 1, 7, generated 8 (null), generated 9 (missing number)
	if len(l.Seats) != 4 {
		t.Errorf("seats = %d, want 4", len(l.Seats))
	}
}

func TestNormalizeAisleSeatIsRelocated(t *testing.T) {
	p := `{"seats":[{"number":1,"row":0,"col":2}]}`

	l := NormalizeJSON([]byte(p), Options{})
	checkInvariants(t, l)
}

func TestParseSeatClass(t *testing.T) {
	tests := map[string]domain.SeatClass{
		"VIP":       domain.ClassVIP,
		" vip ":     domain.ClassVIP,
		"SEMI_CAMA": domain.ClassSemiCama,
		"Semi Cama": domain.ClassSemiCama,
		"semicama":  domain.ClassSemiCama,
		"":          domain.ClassNormal,
		"economy":   domain.ClassNormal,
	}
	for in, want := range tests {
		if got := ParseSeatClass(in); got != want {
			t.Errorf("ParseSeatClass(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSyntheticAisleColumn(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCols []int
	}{
		{"zero options use the default aisle", Options{}, []int{0, 1, 3, 4}},
		{"explicit aisle at zero", Options{AisleColumn: AisleAt(0)}, []int{1, 2, 3, 4}},
		{"out of range falls back to default", Options{AisleColumn: AisleAt(9)}, []int{0, 1, 3, 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := Synthetic(8, tc.opts)
			if len(l.Seats) != 8 {
				t.Fatalf("seats = %d, want 8", len(l.Seats))
			}
			for i, s := range l.Seats {
				if want := tc.wantCols[i%4]; s.Col != want {
					t.Errorf("seat %d col = %d, want %d", s.Number, s.Col, want)
				}
			}
		})
	}
}

func TestNormalizeKeepsSeatAtColumnZero(t *testing.T) {
	p := `{"seats":[{"number":1,"row":0,"col":0},{"number":2,"row":0,"col":1}]}`

	l := NormalizeJSON([]byte(p), Options{})
	checkInvariants(t, l)

	s1, _ := l.Seat(1)
	if s1.Row != 0 || s1.Col != 0 {
		t.Errorf("seat 1 at (%d,%d), want (0,0)", s1.Row, s1.Col)
	}
}
