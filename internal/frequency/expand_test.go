package frequency

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kirinyoku/busseat/internal/domain"
)

func mustRange(t *testing.T, start, end string, loc *time.Location) DateRange {
	t.Helper()
	r, err := NewDateRange(start, end, loc)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	return r
}

func dates(drafts []domain.TripDraft) []string {
	out := make([]string, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.Date.Format(dateLayout))
	}
	return out
}

func TestExpandMondayWednesday(t *testing.T) {
	f := domain.Frequency{
		ID:            1,
		RouteID:       10,
		DepartureTime: "08:30",
		OperatingDays: domain.NewWeekdaySet(time.Monday, time.Wednesday),
	}
	// 2025-03-01 is a Saturday; the window holds one Monday and one Wednesday
	r := mustRange(t, "2025-03-01", "2025-03-07", time.UTC)

	got := Expand(f, r)

	want := []string{"2025-03-03", "2025-03-05"}
	if !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
	for _, d := range got {
		if d.FrequencyID != 1 || d.RouteID != 10 || d.DepartureTime != "08:30" {
			t.Errorf("draft = %+v", d)
		}
	}
}

func TestExpandUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	f := domain.Frequency{ID: 1, OperatingDays: domain.NewWeekdaySet(time.Monday)}

	got := Expand(f, mustRange(t, "2025-03-03", "2025-03-03", loc))

	if len(got) != 1 {
		t.Fatalf("got %d drafts, want 1", len(got))
	}
	if got[0].Date.Weekday() != time.Monday {
		t.Errorf("weekday = %s, want Monday", got[0].Date.Weekday())
	}
}

func TestExpandAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skip("tzdata not available")
	}
	f := domain.Frequency{ID: 1, OperatingDays: domain.NewWeekdaySet(
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	)}

	got := Expand(f, mustRange(t, "2025-04-01", "2025-04-10", loc))

	if len(got) != 10 {
		t.Fatalf("got %d drafts, want 10", len(got))
	}
}

func TestExpandDeterministic(t *testing.T) {
	f := domain.Frequency{ID: 3, OperatingDays: domain.NewWeekdaySet(time.Friday, time.Sunday)}
	r := mustRange(t, "2025-01-01", "2025-02-28", time.UTC)

	if !reflect.DeepEqual(Expand(f, r), Expand(f, r)) {
		t.Fatal("Expand is not deterministic")
	}
}

func TestExpandBatchBusCap(t *testing.T) {
	r := mustRange(t, "2025-03-03", "2025-03-03", time.UTC)
	monday := domain.NewWeekdaySet(time.Monday)
	freqs := []domain.Frequency{
		{ID: 2, BusGroupID: 7, OperatingDays: monday},
		{ID: 1, BusGroupID: 7, OperatingDays: monday},
	}

	t.Run("within cap", func(t *testing.T) {
		group := &domain.BusGroup{ID: 7, BusIDs: []int64{100, 200}}
		got, err := ExpandBatch(freqs, r, group, nil)
		if err != nil {
			t.Fatalf("ExpandBatch: %v", err)
		}
		if len(got) != 2 || got[0].BusID != 100 || got[1].BusID != 200 || got[0].FrequencyID != 1 {
			t.Fatalf("drafts = %+v", got)
		}
	})

	t.Run("over cap is rejected", func(t *testing.T) {
		group := &domain.BusGroup{ID: 7, BusIDs: []int64{100}}
		_, err := ExpandBatch(freqs, r, group, nil)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})

	t.Run("no cap rotates own group", func(t *testing.T) {
		groups := map[int64]domain.BusGroup{7: {ID: 7, BusIDs: []int64{100}}}
		got, err := ExpandBatch(freqs, r, nil, groups)
		if err != nil {
			t.Fatalf("ExpandBatch: %v", err)
		}
		if len(got) != 2 || got[0].BusID != 100 || got[1].BusID != 100 {
			t.Fatalf("drafts = %+v", got)
		}
	})
}

func TestPlanDraftsReportsConflicts(t *testing.T) {
	f := domain.Frequency{ID: 1, OperatingDays: domain.NewWeekdaySet(time.Monday, time.Wednesday)}

	first := PlanDrafts(Expand(f, mustRange(t, "2025-03-01", "2025-03-07", time.UTC)), nil)
	if len(first.New) != 2 || len(first.Conflicts) != 0 {
		t.Fatalf("first plan = %+v", first)
	}

	existing := map[Key]bool{}
	for _, d := range first.New {
		existing[KeyOf(d)] = true
	}

	second := PlanDrafts(Expand(f, mustRange(t, "2025-03-04", "2025-03-14", time.UTC)), existing)

	if !reflect.DeepEqual(dates(second.Conflicts), []string{"2025-03-05"}) {
		t.Errorf("conflicts = %v, want [2025-03-05]", dates(second.Conflicts))
	}
	if !reflect.DeepEqual(dates(second.New), []string{"2025-03-10", "2025-03-12"}) {
		t.Errorf("new = %v", dates(second.New))
	}
}

func TestNewDateRangeValidation(t *testing.T) {
	for _, tc := range []struct{ start, end string }{
		{"2025-03-10", "2025-03-01"},
		{"03/01/2025", "2025-03-01"},
		{"2025-03-01", ""},
	} {
		if _, err := NewDateRange(tc.start, tc.end, time.UTC); err == nil {
			t.Errorf("NewDateRange(%q,%q) succeeded", tc.start, tc.end)
		}
	}
}

func TestNewDateRangeSpan(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		expectErr bool
	}{
		{"single day", "2025-03-01", "2025-03-01", false},
		{"full leap year", "2024-01-01", "2024-12-31", false},
		{"one day too many", "2024-01-01", "2025-01-01", true},
		{"multi year", "2025-01-01", "2030-01-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDateRange(tt.start, tt.end, time.UTC)
			if !tt.expectErr {
				if err != nil {
					t.Fatalf("NewDateRange: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != "endDate" {
				t.Fatalf("err = %v, want *ValidationError on endDate", err)
			}
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	set, err := ParseWeekdays([]string{"monday", "WED", "viernes"})
	if err != nil {
		t.Fatalf("ParseWeekdays: %v", err)
	}
	want := []string{"MONDAY", "WEDNESDAY", "FRIDAY"}
	if got := WeekdayNames(set); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	if _, err := ParseWeekdays([]string{"funday"}); err == nil {
		t.Error("unknown weekday accepted")
	}
	if _, err := ParseWeekdays(nil); err == nil {
		t.Error("empty set accepted")
	}
}
