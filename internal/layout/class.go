package layout

import (
	"strings"

	"github.com/kirinyoku/busseat/internal/domain"
)

// ParseSeatClass maps a producer's class label to a SeatClass. Case,
// separators and a few legacy labels are tolerated; anything else is
// NORMAL.
func ParseSeatClass(s string) domain.SeatClass {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	switch key {
	case "VIP", "PREMIUM":
		return domain.ClassVIP
	case "SEMICAMA", "SEMIBED", "CAMA":
		return domain.ClassSemiCama
	default:
		return domain.ClassNormal
	}
}

// positionalClass is the presentation fallback for seats whose class the
// producer omitted.
func positionalClass(row, rows int) domain.SeatClass {
	switch {
	case row == 0:
		return domain.ClassVIP
	case row == rows-1:
		return domain.ClassSemiCama
	default:
		return domain.ClassNormal
	}
}
