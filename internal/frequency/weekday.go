package frequency

import (
	"strings"
	"time"

	"github.com/kirinyoku/busseat/internal/domain"
)

var weekdayNames = map[string]time.Weekday{
	"SUNDAY": time.Sunday, "SUN": time.Sunday, "DOMINGO": time.Sunday,
	"MONDAY": time.Monday, "MON": time.Monday, "LUNES": time.Monday,
	"TUESDAY": time.Tuesday, "TUE": time.Tuesday, "MARTES": time.Tuesday,
	"WEDNESDAY": time.Wednesday, "WED": time.Wednesday, "MIERCOLES": time.Wednesday, "MIÉRCOLES": time.Wednesday,
	"THURSDAY": time.Thursday, "THU": time.Thursday, "JUEVES": time.Thursday,
	"FRIDAY": time.Friday, "FRI": time.Friday, "VIERNES": time.Friday,
	"SATURDAY": time.Saturday, "SAT": time.Saturday, "SABADO": time.Saturday, "SÁBADO": time.Saturday,
}

// ParseWeekday accepts English names, three-letter abbreviations and
// Spanish names in any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(s))]
	return d, ok
}

// ParseWeekdays builds a WeekdaySet; the first unknown name is reported.
func ParseWeekdays(names []string) (domain.WeekdaySet, error) {
	var set domain.WeekdaySet
	for _, n := range names {
		d, ok := ParseWeekday(n)
		if !ok {
			return 0, &ValidationError{Field: "operatingDays", Reason: "unknown weekday " + n}
		}
		set = set.With(d)
	}
	if set == 0 {
		return 0, &ValidationError{Field: "operatingDays", Reason: "at least one weekday is required"}
	}
	return set, nil
}

// WeekdayNames renders a set as upper-case English names, Monday first.
func WeekdayNames(set domain.WeekdaySet) []string {
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var out []string
	for _, d := range order {
		if set.Has(d) {
			out = append(out, strings.ToUpper(d.String()))
		}
	}
	return out
}

// ParseDepartureTime validates an HH:MM clock time and returns it
// normalised.
func ParseDepartureTime(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", &ValidationError{Field: "departureTime", Reason: "must be HH:MM"}
	}
	return t.Format("15:04"), nil
}
