// Package layout turns the seat-map payloads produced by different
// backends into one canonical domain.SeatLayout.
package layout

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"

	"github.com/kirinyoku/busseat/internal/domain"
)

const (
	DefaultPhysicalColumns = 5
	DefaultAisleColumn     = 2
)

type Options struct {
	// PhysicalColumns is the column count of a bus row, aisle included.
	PhysicalColumns int
	// AisleColumn is the column index that never holds a seat. Nil
	// means DefaultAisleColumn.
	AisleColumn *int
	// TotalSeats is used for the synthetic grid when the payload carries
	// neither a seat list nor a seat count.
	TotalSeats int

	aisle int
}

// AisleAt returns an AisleColumn value for column c.
func AisleAt(c int) *int {
	return &c
}

func (o Options) withDefaults() Options {
	if o.PhysicalColumns < 2 {
		o.PhysicalColumns = DefaultPhysicalColumns
	}
	o.aisle = DefaultAisleColumn
	if o.AisleColumn != nil && *o.AisleColumn >= 0 && *o.AisleColumn < o.PhysicalColumns {
		o.aisle = *o.AisleColumn
	}
	if o.aisle >= o.PhysicalColumns {
		o.aisle = o.PhysicalColumns - 1
	}
	return o
}

func (o Options) usableColumns() int {
	return o.PhysicalColumns - 1
}

// NormalizeJSON decodes b and normalizes it. An undecodable payload
// yields the synthetic grid for opts.TotalSeats.
func NormalizeJSON(b []byte, opts Options) domain.SeatLayout {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Normalize(nil, opts)
	}
	return Normalize(raw, opts)
}

// Normalize never fails: malformed entries are given safe defaults and a
// payload without seats becomes a synthetic grid.
func Normalize(raw any, opts Options) domain.SeatLayout {
	opts = opts.withDefaults()
	root := unwrap(raw)

	var (
		entries       []entry
		declaredRows  int
		declaredCols  int
		declaredTotal int
	)

	switch v := root.(type) {
	case []any:
		entries = collect(v, -1)
	case map[string]any:
		declaredRows, _ = lookupInt(v, FieldRows)
		declaredCols, _ = lookupInt(v, FieldCols)
		declaredTotal, _ = lookupInt(v, FieldTotal)

		if list, ok := seatList(v); ok {
			entries = collect(list, -1)
		}
		for floor, keys := range floorKeys {
			fv, ok := lookupKeys(v, keys)
			if !ok {
				continue
			}
			switch f := fv.(type) {
			case []any:
				entries = append(entries, collect(f, floor)...)
			case map[string]any:
				if list, ok := seatList(f); ok {
					entries = append(entries, collect(list, floor)...)
				}
				if r, ok := lookupInt(f, FieldRows); ok && r > declaredRows {
					declaredRows = r
				}
			}
		}
	}

	if len(entries) == 0 {
		total := declaredTotal
		if total <= 0 {
			total = opts.TotalSeats
		}
		if total <= 0 && declaredRows > 0 {
			total = declaredRows * opts.usableColumns()
		}
		return Synthetic(total, opts)
	}

	return build(entries, declaredRows, declaredCols, opts)
}

// Synthetic generates total seats, four per physical row of five columns,
// numbered row-major from 1 and skipping the aisle.
func Synthetic(total int, opts Options) domain.SeatLayout {
	opts = opts.withDefaults()
	if total <= 0 {
		return domain.SeatLayout{Columns: opts.PhysicalColumns, Seats: []domain.Seat{}}
	}

	usable := opts.usableColumns()
	rows := (total + usable - 1) / usable

	seats := make([]domain.Seat, 0, total)
	number := 1
	for r := 0; r < rows && number <= total; r++ {
		for c := 0; c < opts.PhysicalColumns && number <= total; c++ {
			if c == opts.aisle {
				continue
			}
			seats = append(seats, domain.Seat{
				Number: number,
				Row:    r,
				Col:    c,
				Class:  positionalClass(r, rows),
			})
			number++
		}
	}

	return domain.SeatLayout{Rows: rows, Columns: opts.PhysicalColumns, Seats: seats}
}

type entry struct {
	number   int
	row, col int
	floor    int
	class    domain.SeatClass
	occupied bool
}

func unwrap(raw any) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	if inner, ok := Lookup(m, FieldLayout); ok {
		switch inner.(type) {
		case map[string]any, []any:
			return inner
		}
	}
	return m
}

func seatList(m map[string]any) ([]any, bool) {
	v, ok := Lookup(m, FieldSeats)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

// collect parses raw entries; floor < 0 means "read it from the entry".
func collect(list []any, floor int) []entry {
	out := make([]entry, 0, len(list))
	for _, item := range list {
		out = append(out, parseEntry(item, floor))
	}
	return out
}

func parseEntry(item any, floor int) entry {
	e := entry{row: -1, col: -1, floor: floor}

	m, ok := item.(map[string]any)
	if !ok {
		// A bare scalar is read as a seat number; the rest is defaulted.
		if n, ok := AsInt(item); ok && n > 0 {
			e.number = n
		}
		e.class = domain.ClassNormal
		if e.floor < 0 {
			e.floor = 0
		}
		return e
	}

	if n, ok := lookupInt(m, FieldNumber); ok && n > 0 {
		e.number = n
	}
	if r, ok := lookupInt(m, FieldRow); ok && r >= 0 {
		e.row = r
	}
	if c, ok := lookupInt(m, FieldCol); ok && c >= 0 {
		e.col = c
	}
	if e.floor < 0 {
		e.floor = -1
		if f, ok := lookupInt(m, FieldFloor); ok && f >= 0 && f <= 2 {
			// resolved against the whole layout in resolveFloors
			e.floor = -2 - f
		}
	}
	if v, ok := Lookup(m, FieldClass); ok {
		if s, isStr := v.(string); isStr {
			e.class = ParseSeatClass(s)
		} else {
			e.class = domain.ClassNormal
		}
	}
	if v, ok := Lookup(m, FieldOccupied); ok {
		e.occupied, _ = AsBool(v)
	}

	return e
}

// resolveFloors decodes entry-level floor values. Producers number floors
// either 0/1 or 1/2; the second scheme is detected when a 2 appears and
// no 0 does.
func resolveFloors(entries []entry) {
	var sawZero, sawTwo bool
	for _, e := range entries {
		switch e.floor {
		case -2:
			sawZero = true
		case -4:
			sawTwo = true
		}
	}
	oneBased := sawTwo && !sawZero

	for i := range entries {
		f := entries[i].floor
		switch {
		case f >= 0:
		case f == -1:
			entries[i].floor = 0
		default:
			v := -2 - f
			if oneBased {
				v--
			}
			v = min(max(v, 0), 1)
			entries[i].floor = v
		}
	}
}

type cell struct{ floor, row, col int }

func build(entries []entry, declaredRows, declaredCols int, opts Options) domain.SeatLayout {
	resolveFloors(entries)

	cols := max(declaredCols, opts.PhysicalColumns)
	for _, e := range entries {
		if e.col >= cols {
			cols = e.col + 1
		}
	}
	aisle := -1
	if cols == opts.PhysicalColumns {
		aisle = opts.aisle
	}

	// Numbers: first occurrence wins, missing ones continue after the max.
	seen := make(map[int]bool, len(entries))
	maxNumber := 0
	kept := entries[:0:0]
	for _, e := range entries {
		if e.number > 0 {
			if seen[e.number] {
				continue
			}
			seen[e.number] = true
			maxNumber = max(maxNumber, e.number)
		}
		kept = append(kept, e)
	}
	for i := range kept {
		if kept[i].number == 0 {
			maxNumber++
			kept[i].number = maxNumber
		}
	}

	taken := make(map[cell]bool, len(kept))
	var unplaced []int
	for i, e := range kept {
		c := cell{e.floor, e.row, e.col}
		if e.row < 0 || e.col < 0 || e.col == aisle || taken[c] {
			unplaced = append(unplaced, i)
			continue
		}
		taken[c] = true
	}

	cursor := map[int]cell{}
	for _, i := range unplaced {
		f := kept[i].floor
		c, ok := cursor[f]
		if !ok {
			c = cell{floor: f}
		}
		for taken[c] || c.col == aisle {
			c.col++
			if c.col >= cols {
				c.col = 0
				c.row++
			}
		}
		taken[c] = true
		kept[i].row, kept[i].col = c.row, c.col
		cursor[f] = c
	}

	rows := declaredRows
	for _, e := range kept {
		if e.row >= rows {
			rows = e.row + 1
		}
	}

	seats := make([]domain.Seat, 0, len(kept))
	for _, e := range kept {
		class := e.class
		if class == "" {
			class = positionalClass(e.row, rows)
		}
		seats = append(seats, domain.Seat{
			Number:   e.number,
			Row:      e.row,
			Col:      e.col,
			Floor:    e.floor,
			Class:    class,
			Occupied: e.occupied,
		})
	}

	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})

	return domain.SeatLayout{Rows: rows, Columns: cols, Seats: seats}
}
