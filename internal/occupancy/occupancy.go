// Package occupancy merges authoritative occupied-seat lists into a
// canonical layout.
package occupancy

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/layout"
)

// Set holds string-coerced seat numbers.
type Set map[string]struct{}

func (s Set) Has(number int) bool {
	_, ok := s[strconv.Itoa(number)]
	return ok
}

func (s Set) Add(v any) {
	if k, ok := Key(v); ok {
		s[k] = struct{}{}
	}
}

// Numbers returns the numeric members in ascending order.
func (s Set) Numbers() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		if n, err := strconv.Atoi(k); err == nil {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// FromNumbers builds a Set from seat numbers.
func FromNumbers(numbers ...int) Set {
	s := make(Set, len(numbers))
	for _, n := range numbers {
		s[strconv.Itoa(n)] = struct{}{}
	}
	return s
}

// Key string-coerces a seat number. Numeric strings are canonicalised so
// "05", "5.0" and 5 all map to "5".
func Key(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return canonical(t)
	case bool:
		return "", false
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case map[string]any:
		if n, ok := layout.Lookup(t, layout.FieldNumber); ok {
			return Key(n)
		}
		return "", false
	}
	if n, ok := layout.AsInt(v); ok {
		return strconv.Itoa(n), true
	}
	if st, ok := v.(interface{ String() string }); ok {
		return canonical(st.String())
	}
	return "", false
}

func canonical(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return "", false
	}
	if n, ok := layout.AsInt(s); ok {
		return strconv.Itoa(n), true
	}
	return s, true
}

// Parse accepts every shape backends have used for the occupied list:
// arrays of strings, numbers or seat objects, CSV strings (optionally
// bracketed) and map-of-seat-to-bool. Unrecognised input is an empty set.
func Parse(raw any) Set {
	s := Set{}

	switch t := raw.(type) {
	case nil:
	case []any:
		for _, v := range t {
			s.Add(v)
		}
	case []string:
		for _, v := range t {
			s.Add(v)
		}
	case []int:
		for _, v := range t {
			s.Add(v)
		}
	case string:
		body := strings.TrimSpace(t)
		body = strings.TrimPrefix(body, "[")
		body = strings.TrimSuffix(body, "]")
		for _, part := range strings.FieldsFunc(body, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
		}) {
			s.Add(part)
		}
	case map[string]any:
		for k, v := range t {
			if taken, ok := layout.AsBool(v); ok && taken {
				s.Add(k)
			}
		}
	case map[string]bool:
		for k, v := range t {
			if v {
				s.Add(k)
			}
		}
	default:
		s.Add(raw)
	}

	return s
}

// Reconcile returns a copy of l whose seats are occupied exactly when
// their number is in occupied, and the number of occupied seats.
func Reconcile(l domain.SeatLayout, occupied Set) (domain.SeatLayout, int) {
	out := l.Clone()
	count := 0
	for i := range out.Seats {
		out.Seats[i].Occupied = occupied.Has(out.Seats[i].Number)
		if out.Seats[i].Occupied {
			count++
		}
	}
	return out, count
}
