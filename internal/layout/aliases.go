package layout

import (
	"math"
	"strconv"
	"strings"
)

// Field is a canonical field of a seat-map payload.
type Field int

const (
	FieldNumber Field = iota
	FieldRow
	FieldCol
	FieldRows
	FieldCols
	FieldFloor
	FieldClass
	FieldOccupied
	FieldSeats
	FieldTotal
	FieldLayout
)

// aliases maps every canonical field to the spellings producers have used
// for it, in lookup priority order.
var aliases = map[Field][]string{
	FieldNumber:   {"number", "n", "seatNumber", "seat_number", "id"},
	FieldRow:      {"row", "r", "rowIndex", "row_index"},
	FieldCol:      {"col", "c", "colIndex", "col_index", "column"},
	FieldRows:     {"rows", "rowCount", "rowsCount"},
	FieldCols:     {"cols", "columns", "colCount"},
	FieldFloor:    {"floor", "piso", "deck"},
	FieldClass:    {"class", "seatClass", "seat_class", "type"},
	FieldOccupied: {"occupied", "taken", "sold"},
	FieldSeats:    {"seats", "seatList", "asientos"},
	FieldTotal:    {"totalSeats", "total_seats", "capacity"},
	FieldLayout:   {"seatLayout", "seat_layout", "layout", "seatMap"},
}

// floorKeys holds the two-floor split keys; index is the floor number.
var floorKeys = [2][]string{
	{"piso1", "floor1"},
	{"piso2", "floor2"},
}

// Lookup returns the first present alias of f in m.
func Lookup(m map[string]any, f Field) (any, bool) {
	return lookupKeys(m, aliases[f])
}

func lookupKeys(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupInt(m map[string]any, f Field) (int, bool) {
	v, ok := Lookup(m, f)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// AsInt coerces a decoded JSON scalar into an int. Fractional values and
// non-numeric strings are rejected.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int(t), true
	case string:
		return parseIntString(t)
	case interface{ String() string }:
		// json.Number from either decoder
		return parseIntString(t.String())
	default:
		return 0, false
	}
}

func parseIntString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// AsBool accepts booleans, 0/1 numbers and the usual truthy strings.
func AsBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "si", "sí":
			return true, true
		case "false", "0", "no", "n", "":
			return false, true
		}
		return false, false
	}
	if n, ok := AsInt(v); ok {
		return n != 0, true
	}
	return false, false
}
