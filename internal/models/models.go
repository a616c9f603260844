// Package models defines shared data types
package models

import (
	"fmt"
	"strings"

	"github.com/peatergripin/ecocommute/internal/geo"
)

// Mode is a commute transport mode
type Mode string

const (
	ModeMRT   Mode = "mrt"
	ModeBus   Mode = "bus"
	ModeWalk  Mode = "walk"
	ModeCycle Mode = "cycle"
	ModeCar   Mode = "car"
	ModeMixed Mode = "mixed"
)

// ModeInfo carries the display metadata for a mode
type ModeInfo struct {
	Key   Mode   `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Modes lists every mode in its fixed display order.
var Modes = []ModeInfo{
	{Key: ModeMRT, Label: "MRT", Color: "#1E7F5C"},
	{Key: ModeBus, Label: "Bus", Color: "#2E7D32"},
	{Key: ModeWalk, Label: "Walk", Color: "#EF6C00"},
	{Key: ModeCycle, Label: "Cycle", Color: "#6A1B9A"},
	{Key: ModeCar, Label: "Car", Color: "#C62828"},
	{Key: ModeMixed, Label: "Mixed", Color: "#00838F"},
}

// ParseMode normalizes s and reports whether it names a known mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Valid returns true if m is one of Modes
func (m Mode) Valid() bool {
	for _, info := range Modes {
		if info.Key == m {
			return true
		}
	}
	return false
}

// Trip is a single logged commute
type Trip struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	FromLabel   string   `json:"fromLabel"`
	ToLabel     string   `json:"toLabel"`
	Mode        Mode     `json:"mode"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	DurationMin int      `json:"durationMin"`
	Purpose     string   `json:"purpose"`
	Notes       string   `json:"notes"`
	StartLat    *float64 `json:"startLat"`
	StartLng    *float64 `json:"startLng"`
	EndLat      *float64 `json:"endLat"`
	EndLng      *float64 `json:"endLng"`
	DistanceKm  *float64 `json:"distanceKm"`
	Image       string   `json:"image,omitempty"`
}

// StartPoint returns the start coordinate, or nil when unset
func (t Trip) StartPoint() *geo.Point {
	return geo.NewPoint(t.StartLat, t.StartLng)
}

// EndPoint returns the end coordinate, or nil when unset
func (t Trip) EndPoint() *geo.Point {
	return geo.NewPoint(t.EndLat, t.EndLng)
}

// User is an account as seen by the client. Password is never populated
// from the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}
