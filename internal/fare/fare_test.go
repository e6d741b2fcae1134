package fare

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/busseat/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRoute() domain.Route {
	return domain.Route{
		ID:          1,
		Origin:      "A",
		Destination: "D",
		BasePrice:   d("10.00"),
		Stops: []domain.Stop{
			{Name: "B", PriceFromOrigin: d("4.00")},
			{Name: "C", PriceFromOrigin: d("7.00")},
		},
	}
}

func TestPrice(t *testing.T) {
	override := d("12.00")
	zero := decimal.Zero

	tests := []struct {
		name     string
		quote    Quote
		expected string
	}{
		{"full route normal", Quote{Route: testRoute()}, "10.00"},
		{"explicit terminals", Quote{Route: testRoute(), Boarding: "A", Dropoff: "D"}, "10.00"},
		{"intermediate both vip", Quote{Route: testRoute(), Class: domain.ClassVIP, Boarding: "B", Dropoff: "C"}, "3.90"},
		{"intermediate to destination", Quote{Route: testRoute(), Boarding: "B"}, "6.00"},
		{"origin to intermediate", Quote{Route: testRoute(), Dropoff: "C"}, "10.00"},
		{"named origin to intermediate", Quote{Route: testRoute(), Boarding: "A", Dropoff: "C"}, "10.00"},
		{"semi cama multiplier", Quote{Route: testRoute(), Class: domain.ClassSemiCama}, "15.00"},
		{"unknown stop falls back", Quote{Route: testRoute(), Boarding: "Z", Dropoff: "C"}, "10.00"},
		{"missing class is normal", Quote{Route: testRoute(), Class: ""}, "10.00"},
		{"case-insensitive names", Quote{Route: testRoute(), Boarding: " b ", Dropoff: "c"}, "3.00"},
		{"override wins", Quote{Route: testRoute(), Override: &override}, "12.00"},
		{"zero override ignored", Quote{Route: testRoute(), Override: &zero}, "10.00"},
		{"reversed stops", Quote{Route: testRoute(), Boarding: "C", Dropoff: "B"}, "3.00"},
	}

	calc := NewCalculator(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Display(calc.Price(tc.quote))
			if got != tc.expected {
				t.Errorf("Price() = %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestPriceNoBasePrice(t *testing.T) {
	r := testRoute()
	r.BasePrice = decimal.Zero

	got := NewCalculator(nil).Price(Quote{Route: r})
	if !got.IsZero() {
		t.Fatalf("Price() = %s, want 0", got)
	}
}

func TestPriceNeverNegative(t *testing.T) {
	r := domain.Route{
		Origin:      "A",
		Destination: "D",
		BasePrice:   d("5.00"),
		Stops: []domain.Stop{
			{Name: "B", PriceFromOrigin: d("9.00")},
			{Name: "C", PriceFromOrigin: d("2.00")},
			{Name: "E", PriceFromOrigin: d("-3.00")},
		},
	}

	calc := NewCalculator(nil)
	stops := []string{"", "A", "B", "C", "E", "D", "unknown"}
	for _, b := range stops {
		for _, o := range stops {
			for _, class := range []domain.SeatClass{domain.ClassNormal, domain.ClassVIP, domain.ClassSemiCama} {
				p := calc.Price(Quote{Route: r, Class: class, Boarding: b, Dropoff: o})
				if p.IsNegative() {
					t.Errorf("Price(%q→%q, %s) = %s, want >= 0", b, o, class, p)
				}
			}
		}
	}
}

func TestPriceIsPure(t *testing.T) {
	calc := NewCalculator(nil)
	q := Quote{Route: testRoute(), Class: domain.ClassVIP, Boarding: "B", Dropoff: "C"}

	first := calc.Price(q)
	second := calc.Price(q)
	if !first.Equal(second) {
		t.Fatalf("Price() not deterministic: %s vs %s", first, second)
	}
}

func TestRoundingOnlyAtBoundary(t *testing.T) {
	r := domain.Route{Origin: "A", Destination: "B", BasePrice: d("3.335")}

	p := NewCalculator(nil).Price(Quote{Route: r, Class: domain.ClassVIP})
	if p.String() != "4.3355" {
		t.Fatalf("unrounded = %s, want 4.3355", p)
	}
	if got := Display(p); got != "4.34" {
		t.Fatalf("Display() = %s, want 4.34", got)
	}
}

func TestCheckMonotonic(t *testing.T) {
	r := testRoute()
	if vs := CheckMonotonic(r); len(vs) != 0 {
		t.Fatalf("unexpected violations: %+v", vs)
	}

	r.Stops = append(r.Stops, domain.Stop{Name: "X", PriceFromOrigin: d("1.00")})
	vs := CheckMonotonic(r)
	if len(vs) != 1 || vs[0].Stop != "X" || vs[0].Previous != "C" {
		t.Fatalf("violations = %+v, want one at X", vs)
	}
}
