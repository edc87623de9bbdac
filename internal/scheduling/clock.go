package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// Business window and meeting length bounds, in minutes.
const (
	BusinessStart = 9 * 60
	BusinessEnd   = 17 * 60
	MinDuration   = 15
	MaxDuration   = 480
)

// Interval is a half-open [Start, End) span of minute offsets from midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether iv collides with an existing booking other.
func (iv Interval) Overlaps(other Interval) bool {
	return (iv.Start >= other.Start && iv.Start < other.End) ||
		(iv.End > other.Start && iv.End <= other.End) ||
		(iv.Start <= other.Start && iv.End >= other.End)
}

// ParseClock converts "HH:MM" (seconds allowed and ignored) into minutes
// since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if !allDigits(parts[0]) || !allDigits(parts[1]) || (len(parts) == 3 && !allDigits(parts[2])) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) > 2 || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || len(parts[2]) != 2 || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return hours*60 + minutes, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders a minute offset as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
