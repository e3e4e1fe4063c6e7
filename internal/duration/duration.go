// Package duration converts human-readable delay strings such as "3d" or
// "1M" to and from milliseconds.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/conorfennell/knolcard/internal/domain"
)

const (
	Second int64 = 1000
	Minute       = 60 * Second
	Hour         = 60 * Minute
	Day          = 24 * Hour
	Month        = 30 * Day
)

// MaxAmount is the largest numeric amount accepted by Parse, whatever the unit.
const MaxAmount = 365

var pattern = regexp.MustCompile(`^(\d+)(s|m|h|d|M)$`)

var unitMillis = map[string]int64{
	"s": Second,
	"m": Minute,
	"h": Hour,
	"d": Day,
	"M": Month,
}

// Parse converts text like "15m" into milliseconds. The unit is one of
// s, m, h, d or M (a 30-day month).
func Parse(text string) (int64, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, domain.Validation(domain.CodeInvalidDurationFormat, "invalid duration %q", text)
	}
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || amount > MaxAmount {
		return 0, domain.Validation(domain.CodeDelayTooLarge, "duration amount in %q exceeds %d", text, MaxAmount)
	}
	return amount * unitMillis[m[2]], nil
}

type unit struct {
	suffix string
	millis int64
}

// largest first
var units = []unit{
	{"M", Month},
	{"d", Day},
	{"h", Hour},
	{"m", Minute},
	{"s", Second},
}

// Format renders millis with two-unit precision starting at the largest
// non-zero unit, e.g. "1h 1m". Zero renders as "0s" and negative values are
// prefixed with "- ".
func Format(millis int64) string {
	sign := ""
	abs := uint64(millis)
	if millis < 0 {
		sign = "- "
		abs = -abs
	}

	amounts := make([]uint64, len(units))
	rest := abs
	for i, u := range units {
		amounts[i] = rest / uint64(u.millis)
		rest %= uint64(u.millis)
	}

	for i, a := range amounts {
		if a == 0 {
			continue
		}
		parts := []string{fmt.Sprintf("%d%s", a, units[i].suffix)}
		if i+1 < len(units) {
			parts = append(parts, fmt.Sprintf("%d%s", amounts[i+1], units[i+1].suffix))
		}
		return sign + strings.Join(parts, " ")
	}
	return sign + "0s"
}
