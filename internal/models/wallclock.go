package models

import (
	"fmt"
	"strings"
	"time"
)

// WallClockLayout is the backend's timestamp format: local wall-clock time
// with no zone.
const WallClockLayout = "2006-01-02 15:04:05"

// FormatWallClock renders t in the backend's wall-clock format
func FormatWallClock(t time.Time) string {
	return t.Format(WallClockLayout)
}

// ParseWallClock reads a backend timestamp as wall-clock time in loc.
// Zoned RFC 3339 values are converted into loc.
func ParseWallClock(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range []string{WallClockLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.In(loc), nil
}
