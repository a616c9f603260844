package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/peatergripin/ecocommute/internal/models"
)

func km(v float64) *float64 { return &v }

func TestCalcOverview(t *testing.T) {
	tests := []struct {
		name       string
		trips      []models.Trip
		total      int
		carbon     float64
		treesIsNil bool
		trees      int
	}{
		{
			name:       "no trips",
			trips:      nil,
			treesIsNil: true,
		},
		{
			name: "only ineligible modes",
			trips: []models.Trip{
				{Mode: models.ModeCar, DistanceKm: km(40)},
				{Mode: models.ModeMixed, DistanceKm: km(10)},
			},
			total: 2,
		},
		{
			name: "mrt and car",
			trips: []models.Trip{
				{Mode: models.ModeMRT, DistanceKm: km(5)},
				{Mode: models.ModeCar, DistanceKm: km(100)},
			},
			total:  2,
			carbon: 0.515,
		},
		{
			name: "enough for trees",
			trips: []models.Trip{
				{Mode: models.ModeCycle, DistanceKm: km(200)},
				{Mode: models.ModeBus, DistanceKm: km(100)},
				{Mode: models.ModeWalk},
			},
			total:  3,
			carbon: 30.9,
			trees:  1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalcOverview(tc.trips)
			if got.Total != tc.total {
				t.Errorf("Total = %d, want %d", got.Total, tc.total)
			}
			if got.Total != len(tc.trips) {
				t.Errorf("Total = %d, len = %d", got.Total, len(tc.trips))
			}
			if math.Abs(got.CarbonSavedKg-tc.carbon) > 1e-9 {
				t.Errorf("CarbonSavedKg = %v, want %v", got.CarbonSavedKg, tc.carbon)
			}
			if tc.treesIsNil {
				if got.TreesPlanted != nil {
					t.Errorf("TreesPlanted = %d, want nil", *got.TreesPlanted)
				}
				return
			}
			if got.TreesPlanted == nil {
				t.Fatal("TreesPlanted is nil, want a value")
			}
			if *got.TreesPlanted != tc.trees {
				t.Errorf("TreesPlanted = %d, want %d", *got.TreesPlanted, tc.trees)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int{0: 0, 0.0245: 0, 0.5: 1, 1.49: 1, 2.5: 3}
	for in, want := range tests {
		if got := roundHalfUp(in); got != want {
			t.Errorf("roundHalfUp(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestCalcByMode(t *testing.T) {
	trips := []models.Trip{
		{ID: "1", Mode: models.ModeBus, DurationMin: 20},
		{ID: "2", Mode: models.ModeMRT, DurationMin: 90},
		{ID: "3", Mode: models.ModeBus, DurationMin: 35},
		{ID: "4", Mode: models.ModeBus, DurationMin: 35},
	}

	bus := CalcByMode(trips, models.ModeBus)
	if bus.Count != 3 {
		t.Errorf("Count = %d, want 3", bus.Count)
	}
	if bus.AvgMin == nil || math.Abs(*bus.AvgMin-30) > 1e-9 {
		t.Errorf("AvgMin = %v, want 30", bus.AvgMin)
	}
	if bus.Longest == nil || bus.Longest.ID != "3" {
		t.Errorf("Longest = %+v, want trip 3 (first of the tie)", bus.Longest)
	}

	walk := CalcByMode(trips, models.ModeWalk)
	if walk.Count != 0 || walk.AvgMin != nil || walk.Longest != nil {
		t.Errorf("empty mode stats = %+v", walk)
	}
}

func TestStartOfWeek(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2025, 3, 12, 15, 30, 0, 0, sgt), time.Date(2025, 3, 10, 0, 0, 0, 0, sgt)}, // Wednesday
		{time.Date(2025, 3, 10, 0, 0, 0, 0, sgt), time.Date(2025, 3, 10, 0, 0, 0, 0, sgt)},   // Monday
		{time.Date(2025, 3, 16, 23, 59, 0, 0, sgt), time.Date(2025, 3, 10, 0, 0, 0, 0, sgt)}, // Sunday
		{time.Date(2025, 3, 2, 9, 0, 0, 0, sgt), time.Date(2025, 2, 24, 0, 0, 0, 0, sgt)},    // across months
	}

	for _, tc := range tests {
		if got := StartOfWeek(tc.in); !got.Equal(tc.want) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWeeklyMinutes(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, sgt) // Wednesday, week of Mar 10

	trips := []models.Trip{
		{StartTime: "2025-03-11 08:00:00", DurationMin: 30}, // this week
		{StartTime: "2025-03-10 00:00:00", DurationMin: 10}, // this week, Monday midnight
		{StartTime: "2025-03-09 23:59:00", DurationMin: 5},  // previous week, Sunday
		{StartTime: "2025-02-03 09:00:00", DurationMin: 50}, // oldest bucket
		{StartTime: "2025-01-27 09:00:00", DurationMin: 99}, // outside the window
		{StartTime: "not a time", DurationMin: 77},
	}

	got := WeeklyMinutes(trips, 6, now)
	if len(got) != 6 {
		t.Fatalf("got %d buckets, want 6", len(got))
	}

	wantLabels := []string{"Feb 03", "Feb 10", "Feb 17", "Feb 24", "Mar 03", "Mar 10"}
	wantMinutes := []int{50, 0, 0, 0, 5, 40}
	sum := 0
	for i, b := range got {
		if b.Label != wantLabels[i] {
			t.Errorf("bucket %d label = %q, want %q", i, b.Label, wantLabels[i])
		}
		if b.Minutes != wantMinutes[i] {
			t.Errorf("bucket %d minutes = %d, want %d", i, b.Minutes, wantMinutes[i])
		}
		if i > 0 && !b.WeekStart.After(got[i-1].WeekStart) {
			t.Errorf("buckets not oldest first at %d", i)
		}
		sum += b.Minutes
	}
	if sum != 95 {
		t.Errorf("sum of buckets = %d, want 95", sum)
	}
}

func TestWeeklyMinutesEmptyAndDefault(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	for _, weeks := range []int{1, 4, 12} {
		if got := WeeklyMinutes(nil, weeks, now); len(got) != weeks {
			t.Errorf("weeks=%d: got %d buckets", weeks, len(got))
		}
	}
	if got := WeeklyMinutes(nil, 0, now); len(got) != DefaultWeeks {
		t.Errorf("weeks=0: got %d buckets, want %d", len(got), DefaultWeeks)
	}
}

func TestModeDistribution(t *testing.T) {
	trips := []models.Trip{
		{Mode: models.ModeCar},
		{Mode: models.ModeWalk},
		{Mode: models.ModeCar},
		{Mode: models.ModeMRT},
		{Mode: "hoverboard"},
	}

	got := ModeDistribution(trips)

	wantOrder := []models.Mode{models.ModeMRT, models.ModeWalk, models.ModeCar}
	if len(got.Slices) != len(wantOrder) {
		t.Fatalf("got %d slices, want %d", len(got.Slices), len(wantOrder))
	}
	for i, m := range wantOrder {
		if got.Slices[i].Mode != m {
			t.Errorf("slice %d = %s, want %s", i, got.Slices[i].Mode, m)
		}
	}
	if got.Slices[2].Count != 2 || got.Slices[2].Color != "#C62828" {
		t.Errorf("car slice = %+v", got.Slices[2])
	}
	if got.Total != 4 {
		t.Errorf("Total = %d, want 4 (unknown mode excluded)", got.Total)
	}
	if got.Total >= len(trips) {
		t.Errorf("Total should be below input length when a mode is unknown")
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	trips := []models.Trip{{Mode: models.ModeBus, DurationMin: 15, StartTime: "2025-03-11 08:00:00", DistanceKm: km(4)}}

	r := BuildReport(trips, 4, now)
	if r.Overview.Total != 1 || len(r.ByMode) != len(models.Modes) || len(r.Weekly) != 4 || r.Distribution.Total != 1 {
		t.Errorf("report = %+v", r)
	}
}
