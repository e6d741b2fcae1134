package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/busseat/internal/domain"
	"github.com/kirinyoku/busseat/internal/frequency"
)

func TestConflictsOf(t *testing.T) {
	loc := time.UTC
	drafts := []domain.TripDraft{
		{FrequencyID: 3, Date: time.Date(2025, 6, 2, 0, 0, 0, 0, loc)},
		{FrequencyID: 5, Date: time.Date(2025, 6, 3, 0, 0, 0, 0, loc)},
	}

	got := conflictsOf(drafts)
	want := []Conflict{{FrequencyID: 3, Date: "2025-06-02"}, {FrequencyID: 5, Date: "2025-06-03"}}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("conflict[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if out := conflictsOf(nil); out == nil || len(out) != 0 {
		t.Errorf("conflictsOf(nil) = %#v, want empty non-nil slice", out)
	}
}

func TestUnique(t *testing.T) {
	got := unique([]int64{4, 1, 4, 2, 1})
	want := []int64{4, 1, 2}

	if len(got) != len(want) {
		t.Fatalf("unique = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unique = %v, want %v", got, want)
		}
	}
}

func TestCheckOverride(t *testing.T) {
	pos := decimal.NewFromInt(25)
	zero := decimal.Zero
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		in      *decimal.Decimal
		wantErr bool
	}{
		{"absent", nil, false},
		{"positive", &pos, false},
		{"zero", &zero, true},
		{"negative", &neg, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOverride(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkOverride err = %v, wantErr %v", err, tt.wantErr)
			}
			var ve *frequency.ValidationError
			if err != nil && !errors.As(err, &ve) {
				t.Errorf("error %T is not a *frequency.ValidationError", err)
			}
		})
	}
}

func TestCutoff(t *testing.T) {
	santiago := time.FixedZone("CLT", -3*3600)
	now := time.Date(2025, 6, 3, 2, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		loc       *time.Location
		wantDate  string
		wantClock string
	}{
		{"utc", time.UTC, "2025-06-03", "02:30"},
		{"previous civil day", santiago, "2025-06-02", "23:30"},
		{"nil location", nil, "2025-06-03", "02:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, clock := cutoff(now, tt.loc)
			if date != tt.wantDate || clock != tt.wantClock {
				t.Errorf("cutoff = %s %s, want %s %s", date, clock, tt.wantDate, tt.wantClock)
			}
		})
	}
}
