package models

import (
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"mrt", ModeMRT, false},
		{" Bus ", ModeBus, false},
		{"CYCLE", ModeCycle, false},
		{"scooter", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseMode(%q) err = %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestModesOrder(t *testing.T) {
	want := []Mode{ModeMRT, ModeBus, ModeWalk, ModeCycle, ModeCar, ModeMixed}
	if len(Modes) != len(want) {
		t.Fatalf("len(Modes) = %d", len(Modes))
	}
	for i, m := range want {
		if Modes[i].Key != m {
			t.Errorf("Modes[%d] = %s, want %s", i, Modes[i].Key, m)
		}
	}
}

func TestParseWallClock(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"backend format", "2025-03-10 08:15:00", time.Date(2025, 3, 10, 8, 15, 0, 0, sgt)},
		{"T separator", "2025-03-10T08:15:00", time.Date(2025, 3, 10, 8, 15, 0, 0, sgt)},
		{"utc instant", "2025-03-10T00:15:00Z", time.Date(2025, 3, 10, 8, 15, 0, 0, sgt)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseWallClock(tc.in, sgt)
			if err != nil {
				t.Fatalf("ParseWallClock: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := ParseWallClock("yesterday", sgt); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestFormatWallClock(t *testing.T) {
	got := FormatWallClock(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if got != "2025-01-02 03:04:05" {
		t.Errorf("FormatWallClock = %q", got)
	}
}

func TestTripPoints(t *testing.T) {
	lat, lng := 1.3, 103.8
	trip := Trip{StartLat: &lat, StartLng: &lng}
	if trip.StartPoint() == nil {
		t.Error("start point should be set")
	}
	if trip.EndPoint() != nil {
		t.Error("end point should be nil")
	}
}
