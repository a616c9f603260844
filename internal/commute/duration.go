package commute

import (
	"fmt"
	"strconv"
	"strings"
)

// Duration is either derived from the trip's start and end (auto) or a
// value the user typed (manual). A manual value survives later start/end
// edits until RecomputeDuration is called.
type Duration struct {
	manual  bool
	minutes int
}

// AutoDuration follows the trip's time range
func AutoDuration() Duration {
	return Duration{}
}

// ManualDuration pins the duration to minutes
func ManualDuration(minutes int) Duration {
	return Duration{manual: true, minutes: minutes}
}

// Manual returns the pinned value, if any
func (d Duration) Manual() (int, bool) {
	return d.minutes, d.manual
}

// Minutes returns the pinned value, or auto when the duration is automatic
func (d Duration) Minutes(auto int) int {
	if d.manual {
		return d.minutes
	}
	return auto
}

func (d Duration) String() string {
	if d.manual {
		return fmt.Sprintf("manual(%d)", d.minutes)
	}
	return "auto"
}

// ParseMinutes reads a typed duration. Only non-negative whole numbers are
// accepted.
func ParseMinutes(text string) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, invalid("duration", "Duration is required.")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int(f)) && f >= 0 {
			return int(f), nil
		}
		return 0, invalid("duration", "Duration must be a whole number of minutes.")
	}
	if n < 0 {
		return 0, invalid("duration", "Duration must be a non-negative number.")
	}
	return n, nil
}
