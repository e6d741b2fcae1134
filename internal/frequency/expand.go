// Package frequency expands recurring weekly departures into dated trip
// drafts.
package frequency

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kirinyoku/busseat/internal/domain"
)

const dateLayout = "2006-01-02"

// MaxRangeDays caps how many calendar days one DateRange may cover.
const MaxRangeDays = 366

// DateRange is an inclusive range of calendar dates in Loc.
type DateRange struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// NewDateRange parses two YYYY-MM-DD dates as local calendar days of loc.
// The range may cover at most MaxRangeDays days, both ends included.
func NewDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := time.ParseInLocation(dateLayout, strings.TrimSpace(start), loc)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "startDate", Reason: "must be YYYY-MM-DD"}
	}
	e, err := time.ParseInLocation(dateLayout, strings.TrimSpace(end), loc)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "endDate", Reason: "must be YYYY-MM-DD"}
	}
	if e.Before(s) {
		return DateRange{}, &ValidationError{Field: "endDate", Reason: "must not be before startDate"}
	}
	if !e.Before(s.AddDate(0, 0, MaxRangeDays)) {
		return DateRange{}, &ValidationError{
			Field:  "endDate",
			Reason: fmt.Sprintf("range must not exceed %d days", MaxRangeDays),
		}
	}
	return DateRange{Start: s, End: e, Loc: loc}, nil
}

// Days returns every calendar date of the range at local midnight.
func (r DateRange) Days() []time.Time {
	loc := r.Loc
	if loc == nil {
		loc = time.Local
	}
	y, m, d := r.Start.In(loc).Date()
	cur := time.Date(y, m, d, 0, 0, 0, 0, loc)
	ey, em, ed := r.End.In(loc).Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, loc)

	var out []time.Time
	for !cur.After(end) {
		out = append(out, cur)
		// AddDate keeps wall-clock midnight across DST changes
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Expand yields one draft per operating day of freq in r. The weekday is
// taken from the local calendar of r.Loc. BusID is left for the caller.
func Expand(freq domain.Frequency, r DateRange) []domain.TripDraft {
	var out []domain.TripDraft
	for _, day := range r.Days() {
		if !freq.OperatingDays.Has(day.Weekday()) {
			continue
		}
		out = append(out, domain.TripDraft{
			FrequencyID:   freq.ID,
			RouteID:       freq.RouteID,
			Date:          day,
			DepartureTime: freq.DepartureTime,
		})
	}
	return out
}

// ExpandBatch expands several frequencies and assigns buses.
//
// With capGroup set, the batch may not select more frequencies than the
// group has buses, and frequency i runs on bus i. Without it, each
// frequency rotates over the buses of its own group (groups indexed by
// ID in groups).
func ExpandBatch(
	freqs []domain.Frequency,
	r DateRange,
	capGroup *domain.BusGroup,
	groups map[int64]domain.BusGroup,
) ([]domain.TripDraft, error) {
	if len(freqs) == 0 {
		return nil, &ValidationError{Field: "frequencyIds", Reason: "no frequencies selected"}
	}

	ordered := make([]domain.Frequency, len(freqs))
	copy(ordered, freqs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	if capGroup != nil {
		if len(capGroup.BusIDs) == 0 {
			return nil, &ValidationError{Field: "busGroupId", Reason: "bus group has no buses"}
		}
		if len(ordered) > len(capGroup.BusIDs) {
			return nil, &ValidationError{
				Field: "frequencyIds",
				Reason: fmt.Sprintf("%d frequencies selected but bus group %d has %d buses",
					len(ordered), capGroup.ID, len(capGroup.BusIDs)),
			}
		}
	}

	rotation := map[int64]int{}
	var out []domain.TripDraft
	for i, f := range ordered {
		var bus int64
		if capGroup != nil {
			bus = capGroup.BusIDs[i]
		} else {
			g, ok := groups[f.BusGroupID]
			if !ok || len(g.BusIDs) == 0 {
				return nil, &ValidationError{
					Field:  "busGroupId",
					Reason: fmt.Sprintf("frequency %d has no buses in group %d", f.ID, f.BusGroupID),
				}
			}
			bus = g.BusIDs[rotation[g.ID]%len(g.BusIDs)]
			rotation[g.ID]++
		}

		for _, d := range Expand(f, r) {
			d.BusID = bus
			out = append(out, d)
		}
	}

	return out, nil
}

// Key identifies a generated trip.
type Key struct {
	FrequencyID int64
	Date        string
}

func KeyOf(d domain.TripDraft) Key {
	return Key{FrequencyID: d.FrequencyID, Date: d.Date.Format(dateLayout)}
}

type Plan struct {
	New       []domain.TripDraft
	Conflicts []domain.TripDraft
}

// PlanDrafts splits drafts into those still to create and those already
// generated. Duplicates inside drafts count as conflicts too.
func PlanDrafts(drafts []domain.TripDraft, existing map[Key]bool) Plan {
	seen := make(map[Key]bool, len(drafts))
	var p Plan
	for _, d := range drafts {
		k := KeyOf(d)
		if existing[k] || seen[k] {
			p.Conflicts = append(p.Conflicts, d)
			continue
		}
		seen[k] = true
		p.New = append(p.New, d)
	}
	return p
}
