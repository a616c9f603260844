// Package analytics derives dashboard figures from a user's trip history.
// Every function is a pure transform of the slice it is given.
package analytics

import (
	"math"
	"time"

	"github.com/peatergripin/ecocommute/internal/models"
)

const (
	// CarbonKgPerKm is the CO2 credited for each eligible kilometre.
	CarbonKgPerKm = 0.103
	// CarbonKgPerTree is the yearly CO2 absorbed by one tree.
	CarbonKgPerTree = 21
	// DefaultWeeks is the trailing window used for the weekly series.
	DefaultWeeks = 6
)

// carbonEligible lists the modes that earn carbon credit.
var carbonEligible = map[models.Mode]bool{
	models.ModeWalk:  true,
	models.ModeCycle: true,
	models.ModeBus:   true,
	models.ModeMRT:   true,
}

// Overview holds the headline KPIs.
//
// TreesPlanted is nil only when there are no trips at all; a history with
// trips but no eligible distance reports zero.
type Overview struct {
	Total         int     `json:"total"`
	EligibleKm    float64 `json:"eligibleKm"`
	CarbonSavedKg float64 `json:"carbonSavedKg"`
	TreesPlanted  *int    `json:"treesPlanted"`
}

// CalcOverview computes the headline KPIs for trips
func CalcOverview(trips []models.Trip) Overview {
	if len(trips) == 0 {
		return Overview{}
	}

	var km float64
	for _, t := range trips {
		if carbonEligible[t.Mode] && t.DistanceKm != nil {
			km += *t.DistanceKm
		}
	}

	carbon := km * CarbonKgPerKm
	trees := roundHalfUp(carbon / CarbonKgPerTree)
	return Overview{
		Total:         len(trips),
		EligibleKm:    km,
		CarbonSavedKg: carbon,
		TreesPlanted:  &trees,
	}
}

// ModeStats summarises the trips taken with one mode
type ModeStats struct {
	Mode    models.Mode  `json:"mode"`
	Count   int          `json:"count"`
	AvgMin  *float64     `json:"avgMin"`
	Longest *models.Trip `json:"longest"`
}

// CalcByMode returns statistics for mode. Ties for the longest trip go to
// the earliest one in trips.
func CalcByMode(trips []models.Trip, mode models.Mode) ModeStats {
	stats := ModeStats{Mode: mode}
	sum := 0

	for i := range trips {
		t := trips[i]
		if t.Mode != mode {
			continue
		}
		stats.Count++
		sum += t.DurationMin
		if stats.Longest == nil || t.DurationMin > stats.Longest.DurationMin {
			stats.Longest = &t
		}
	}

	if stats.Count > 0 {
		avg := float64(sum) / float64(stats.Count)
		stats.AvgMin = &avg
	}
	return stats
}

// CalcAllModes returns ModeStats for every known mode in display order
func CalcAllModes(trips []models.Trip) []ModeStats {
	out := make([]ModeStats, 0, len(models.Modes))
	for _, m := range models.Modes {
		out = append(out, CalcByMode(trips, m.Key))
	}
	return out
}

// WeekBucket is one point of the weekly minutes series
type WeekBucket struct {
	WeekStart time.Time `json:"weekStart"`
	Label     string    `json:"label"`
	Minutes   int       `json:"minutes"`
}

// StartOfWeek returns the Monday 00:00 on or before t, in t's location
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// WeeklyMinutes buckets trip durations into the trailing weeks ending with
// the week containing now, oldest first. Trip times are read as wall-clock
// times in now's location; trips outside the window or with unreadable
// start times are skipped. weeks <= 0 selects DefaultWeeks.
func WeeklyMinutes(trips []models.Trip, weeks int, now time.Time) []WeekBucket {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}

	thisWeek := StartOfWeek(now)
	buckets := make([]WeekBucket, weeks)
	index := make(map[string]int, weeks)
	for i := 0; i < weeks; i++ {
		start := thisWeek.AddDate(0, 0, -7*(weeks-1-i))
		buckets[i] = WeekBucket{WeekStart: start, Label: start.Format("Jan 02")}
		index[weekKey(start)] = i
	}

	for _, t := range trips {
		started, err := models.ParseWallClock(t.StartTime, now.Location())
		if err != nil {
			continue
		}
		i, ok := index[weekKey(StartOfWeek(started))]
		if !ok {
			continue
		}
		buckets[i].Minutes += t.DurationMin
	}
	return buckets
}

// Slice is one entry of the mode distribution
type Slice struct {
	Mode  models.Mode `json:"mode"`
	Label string      `json:"label"`
	Count int         `json:"count"`
	Color string      `json:"color"`
}

// Distribution is the mode breakdown used for the pie chart
type Distribution struct {
	Slices []Slice `json:"slices"`
	Total  int     `json:"total"`
}

// ModeDistribution counts trips per known mode in display order, omitting
// empty modes. Trips with an unknown mode are left out entirely, so Total
// can be less than len(trips).
func ModeDistribution(trips []models.Trip) Distribution {
	counts := make(map[models.Mode]int, len(models.Modes))
	for _, t := range trips {
		counts[t.Mode]++
	}

	dist := Distribution{Slices: []Slice{}}
	for _, m := range models.Modes {
		n := counts[m.Key]
		if n <= 0 {
			continue
		}
		dist.Slices = append(dist.Slices, Slice{Mode: m.Key, Label: m.Label, Count: n, Color: m.Color})
		dist.Total += n
	}
	return dist
}

// Report bundles every figure shown on the analytics dashboard
type Report struct {
	Overview     Overview     `json:"overview"`
	ByMode       []ModeStats  `json:"byMode"`
	Weekly       []WeekBucket `json:"weekly"`
	Distribution Distribution `json:"distribution"`
}

// BuildReport computes the full dashboard for trips
func BuildReport(trips []models.Trip, weeks int, now time.Time) Report {
	return Report{
		Overview:     CalcOverview(trips),
		ByMode:       CalcAllModes(trips),
		Weekly:       WeeklyMinutes(trips, weeks, now),
		Distribution: ModeDistribution(trips),
	}
}

func weekKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
