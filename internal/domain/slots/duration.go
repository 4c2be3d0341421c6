package slots

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxDurationDays keeps expiry dates inside a sane range.
const maxDurationDays = 3650

var (
	durationToken = regexp.MustCompile(`(\d+)\s*([A-Za-z])`)
	durationUnits = map[string]int{
		"d": 1,
		"w": 7,
		"m": 30,
	}
)

// Duration is a parsed duration expression.
type Duration struct {
	Days  int
	Parts []string
}

// Text renders the tokens the way they were entered, e.g. "1 w, 2 d".
func (d Duration) Text() string {
	if len(d.Parts) == 0 {
		return "0 days"
	}
	return strings.Join(d.Parts, ", ")
}

// ParseDuration sums a sequence of <integer><unit> tokens where the unit is d (1 day),
// w (7 days) or m (30 days). Anything else between tokens is rejected.
func ParseDuration(expr string) (Duration, error) {
	expr = strings.TrimSpace(expr)
	matches := durationToken.FindAllStringSubmatchIndex(expr, -1)
	if len(matches) == 0 {
		return Duration{}, ErrInvalidDuration
	}

	var (
		d    Duration
		prev int
	)
	for _, m := range matches {
		if gap := strings.Trim(expr[prev:m[0]], " ,"); gap != "" {
			return Duration{}, fmt.Errorf("%w: unexpected %q", ErrInvalidDuration, gap)
		}
		prev = m[1]

		value, unit := expr[m[2]:m[3]], strings.ToLower(expr[m[4]:m[5]])
		factor, ok := durationUnits[unit]
		if !ok {
			return Duration{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidDuration, unit)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n > maxDurationDays {
			return Duration{}, fmt.Errorf("%w: %q is too large", ErrInvalidDuration, value)
		}
		d.Days += n * factor
		d.Parts = append(d.Parts, fmt.Sprintf("%d %s", n, unit))
		if d.Days > maxDurationDays {
			return Duration{}, fmt.Errorf("%w: longer than %d days", ErrInvalidDuration, maxDurationDays)
		}
	}
	if rest := strings.Trim(expr[prev:], " ,"); rest != "" {
		return Duration{}, fmt.Errorf("%w: unexpected %q", ErrInvalidDuration, rest)
	}
	if d.Days == 0 {
		return Duration{}, fmt.Errorf("%w: duration must be at least one day", ErrInvalidDuration)
	}
	return d, nil
}
