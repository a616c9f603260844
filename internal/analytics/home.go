package analytics

import (
	"slices"
	"time"

	"github.com/peatergripin/ecocommute/internal/models"
)

// RecentCount is how many of the newest trips the home summary lists
const RecentCount = 3

// ModeCount pairs a mode with how often it was used
type ModeCount struct {
	Mode  models.Mode `json:"mode"`
	Count int         `json:"count"`
}

// HomeSummary is the today / last-7-days digest shown on the home screen
type HomeSummary struct {
	TodayTrips   int           `json:"todayTrips"`
	TodayMinutes int           `json:"todayMinutes"`
	WeekTrips    int           `json:"weekTrips"`
	WeekMinutes  int           `json:"weekMinutes"`
	WeekKm       float64       `json:"weekKm"`
	TopMode      *ModeCount    `json:"topMode"`
	Recent       []models.Trip `json:"recent"`
}

// SortNewestFirst orders trips by start time, newest first. Trips whose
// start time cannot be read keep their relative order after the rest.
func SortNewestFirst(trips []models.Trip, loc *time.Location) {
	starts := make(map[string]time.Time, len(trips))
	for _, t := range trips {
		if started, err := models.ParseWallClock(t.StartTime, loc); err == nil {
			starts[t.StartTime] = started
		}
	}

	slices.SortStableFunc(trips, func(a, b models.Trip) int {
		ta, okA := starts[a.StartTime]
		tb, okB := starts[b.StartTime]
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}

// Home builds the home digest. trips must already be newest first; the
// week window is the seven calendar days ending today in now's location.
func Home(trips []models.Trip, now time.Time) HomeSummary {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -6)

	summary := HomeSummary{Recent: trips[:min(RecentCount, len(trips))]}

	var modeOrder []models.Mode
	modeCounts := make(map[models.Mode]int)

	for _, t := range trips {
		started, err := models.ParseWallClock(t.StartTime, loc)
		if err != nil {
			continue
		}
		day := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, loc)

		if day.Equal(today) {
			summary.TodayTrips++
			summary.TodayMinutes += t.DurationMin
		}
		if day.Before(weekStart) || day.After(today) {
			continue
		}

		summary.WeekTrips++
		summary.WeekMinutes += t.DurationMin
		if t.DistanceKm != nil {
			summary.WeekKm += *t.DistanceKm
		}

		mode := t.Mode
		if mode == "" {
			mode = models.ModeMixed
		}
		if _, seen := modeCounts[mode]; !seen {
			modeOrder = append(modeOrder, mode)
		}
		modeCounts[mode]++
	}

	for _, m := range modeOrder {
		if summary.TopMode == nil || modeCounts[m] > summary.TopMode.Count {
			summary.TopMode = &ModeCount{Mode: m, Count: modeCounts[m]}
		}
	}
	return summary
}
