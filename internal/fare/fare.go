// Package fare prices a seat for a boarding/drop-off pair along a route.
// Every caller (seat selection, manual sale, clerk sale) goes through
// Calculator so the pricing rules live in one place.
package fare

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kirinyoku/busseat/internal/domain"
)

// Display precision in currency minor units.
const displayPlaces = 2

var multipliers = map[domain.SeatClass]decimal.Decimal{
	domain.ClassNormal:   decimal.NewFromInt(1),
	domain.ClassVIP:      decimal.RequireFromString("1.3"),
	domain.ClassSemiCama: decimal.RequireFromString("1.5"),
}

// Multiplier returns the fare multiplier for a seat class; unknown and
// empty classes price as NORMAL.
func Multiplier(class domain.SeatClass) decimal.Decimal {
	if m, ok := multipliers[class]; ok {
		return m
	}
	return multipliers[domain.ClassNormal]
}

type Quote struct {
	Route domain.Route
	// Override is the per-schedule price; it wins over Route.BasePrice
	// when positive.
	Override *decimal.Decimal
	Class    domain.SeatClass
	Boarding string
	Dropoff  string
}

type Calculator struct {
	log *zap.Logger
}

func NewCalculator(log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{log: log.With(zap.String("component", "fare"))}
}

// Price returns the unrounded fare for q. It never returns a negative
// amount, whatever the stop table looks like.
func (c *Calculator) Price(q Quote) decimal.Decimal {
	base := BasePrice(q.Route, q.Override)

	if vs := CheckMonotonic(q.Route); len(vs) > 0 {
		for _, v := range vs {
			c.log.Warn("non-monotonic stop price table",
				zap.Int64("route_id", q.Route.ID),
				zap.String("stop", v.Stop),
				zap.String("previous_stop", v.Previous),
				zap.String("price_from_origin", v.Price.String()),
				zap.String("previous_price", v.PreviousPrice.String()),
			)
		}
	}

	fare := segmentFare(q.Route, base, q.Boarding, q.Dropoff)
	if fare.IsNegative() {
		fare = decimal.Zero
	}

	return fare.Mul(Multiplier(q.Class))
}

// BasePrice resolves the schedule override, then the route base price,
// then zero.
func BasePrice(route domain.Route, override *decimal.Decimal) decimal.Decimal {
	if override != nil && override.IsPositive() {
		return *override
	}
	if route.BasePrice.IsPositive() {
		return route.BasePrice
	}
	return decimal.Zero
}

func segmentFare(route domain.Route, base decimal.Decimal, boarding, dropoff string) decimal.Decimal {
	fromOrigin := isTerminal(boarding, route.Origin)
	toDestination := isTerminal(dropoff, route.Destination)

	// Boarding at the origin pays the full base wherever it drops off.
	if fromOrigin {
		return base
	}

	boardPrice, ok := stopPrice(route, boarding)
	if !ok {
		return base
	}

	if toDestination {
		return decimal.Max(base.Sub(boardPrice), decimal.Zero)
	}

	dropPrice, ok := stopPrice(route, dropoff)
	if !ok {
		return base
	}

	return dropPrice.Sub(boardPrice).Abs()
}

func isTerminal(stop, terminal string) bool {
	s := normalizeName(stop)
	return s == "" || s == normalizeName(terminal)
}

func stopPrice(route domain.Route, name string) (decimal.Decimal, bool) {
	key := normalizeName(name)
	for _, s := range route.Stops {
		if normalizeName(s.Name) == key {
			return s.PriceFromOrigin, true
		}
	}
	return decimal.Zero, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Round rounds to the currency minor unit. Call it only at the display
// or persistence boundary.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayPlaces)
}

// Display formats d with exactly two decimals.
func Display(d decimal.Decimal) string {
	return d.StringFixed(displayPlaces)
}

type Violation struct {
	Previous      string
	PreviousPrice decimal.Decimal
	Stop          string
	Price         decimal.Decimal
}

// CheckMonotonic reports every stop whose priceFromOrigin drops below
// the one before it.
func CheckMonotonic(route domain.Route) []Violation {
	var out []Violation
	for i := 1; i < len(route.Stops); i++ {
		prev, cur := route.Stops[i-1], route.Stops[i]
		if cur.PriceFromOrigin.LessThan(prev.PriceFromOrigin) {
			out = append(out, Violation{
				Previous:      prev.Name,
				PreviousPrice: prev.PriceFromOrigin,
				Stop:          cur.Name,
				Price:         cur.PriceFromOrigin,
			})
		}
	}
	return out
}
