package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/peatergripin/ecocommute/internal/models"
)

var jsonNull = []byte("null")

// flexString accepts a JSON string or number; null decodes to "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

// optFloat accepts a JSON number or numeric string; null, missing and ""
// leave it unset. Anything else is a decode error.
type optFloat struct {
	value *float64
}

func (f *optFloat) UnmarshalJSON(b []byte) error {
	f.value = nil
	if bytes.Equal(b, jsonNull) {
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("expected numeric value, got %s", b)
	}
	f.value = &v
	return nil
}

// tripRow is a commute as the backend stores it.
type tripRow struct {
	ID          flexString `json:"id"`
	UserID      flexString `json:"user_id"`
	FromLabel   *string    `json:"from_label"`
	ToLabel     *string    `json:"to_label"`
	Mode        *string    `json:"mode"`
	StartTime   *string    `json:"start_time"`
	EndTime     *string    `json:"end_time"`
	DurationMin optFloat   `json:"duration_min"`
	Purpose     *string    `json:"purpose"`
	Notes       *string    `json:"notes"`
	StartLat    optFloat   `json:"start_lat"`
	StartLng    optFloat   `json:"start_lng"`
	EndLat      optFloat   `json:"end_lat"`
	EndLng      optFloat   `json:"end_lng"`
	DistanceKm  optFloat   `json:"distance_km"`
	Image       *string    `json:"image"`
}

// tripPayload is the body sent on create and update.
type tripPayload struct {
	UserID      *string  `json:"user_id"`
	FromLabel   string   `json:"from_label"`
	ToLabel     string   `json:"to_label"`
	Mode        string   `json:"mode"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	DurationMin int      `json:"duration_min"`
	Purpose     string   `json:"purpose"`
	Notes       string   `json:"notes"`
	StartLat    *float64 `json:"start_lat"`
	StartLng    *float64 `json:"start_lng"`
	EndLat      *float64 `json:"end_lat"`
	EndLng      *float64 `json:"end_lng"`
	DistanceKm  *float64 `json:"distance_km"`
}

// userRow is a user as the backend returns it.
type userRow struct {
	ID       flexString `json:"id"`
	Username *string    `json:"username"`
	Name     *string    `json:"name"`
	Email    *string    `json:"email"`
	Phone    *string    `json:"phone"`
	Image    *string    `json:"image"`
}

func decodeTrip(raw json.RawMessage) (models.Trip, error) {
	var row tripRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.Trip{}, fmt.Errorf("%w: commute row: %w", ErrDecode, err)
	}
	return row.toTrip()
}

// rowID extracts a row's id for logging, or "" if there is none
func rowID(raw json.RawMessage) string {
	var row struct {
		ID flexString `json:"id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return ""
	}
	return string(row.ID)
}

func (r tripRow) toTrip() (models.Trip, error) {
	if r.ID == "" {
		return models.Trip{}, fmt.Errorf("%w: commute row without id", ErrDecode)
	}

	if err := checkPair("start", r.StartLat, r.StartLng); err != nil {
		return models.Trip{}, err
	}
	if err := checkPair("end", r.EndLat, r.EndLng); err != nil {
		return models.Trip{}, err
	}

	d := r.DurationMin.value
	if d == nil {
		return models.Trip{}, fmt.Errorf("%w: commute %s: duration_min missing", ErrDecode, r.ID)
	}
	if *d < 0 || *d != math.Trunc(*d) {
		return models.Trip{}, fmt.Errorf("%w: commute %s: duration_min %v is not a non-negative integer", ErrDecode, r.ID, *d)
	}
	duration := int(*d)

	return models.Trip{
		ID:          string(r.ID),
		UserID:      string(r.UserID),
		FromLabel:   deref(r.FromLabel),
		ToLabel:     deref(r.ToLabel),
		Mode:        models.Mode(deref(r.Mode)),
		StartTime:   deref(r.StartTime),
		EndTime:     deref(r.EndTime),
		DurationMin: duration,
		Purpose:     deref(r.Purpose),
		Notes:       deref(r.Notes),
		StartLat:    r.StartLat.value,
		StartLng:    r.StartLng.value,
		EndLat:      r.EndLat.value,
		EndLng:      r.EndLng.value,
		DistanceKm:  r.DistanceKm.value,
		Image:       deref(r.Image),
	}, nil
}

func checkPair(which string, lat, lng optFloat) error {
	if (lat.value == nil) != (lng.value == nil) {
		return fmt.Errorf("%w: %s coordinate has only one of lat/lng", ErrDecode, which)
	}
	return nil
}

func encodeTrip(t models.Trip) tripPayload {
	mode := string(t.Mode)
	if mode == "" {
		mode = string(models.ModeMixed)
	}
	return tripPayload{
		UserID:      optString(t.UserID),
		FromLabel:   t.FromLabel,
		ToLabel:     t.ToLabel,
		Mode:        mode,
		StartTime:   optString(t.StartTime),
		EndTime:     optString(t.EndTime),
		DurationMin: t.DurationMin,
		Purpose:     t.Purpose,
		Notes:       t.Notes,
		StartLat:    t.StartLat,
		StartLng:    t.StartLng,
		EndLat:      t.EndLat,
		EndLng:      t.EndLng,
		DistanceKm:  t.DistanceKm,
	}
}

func decodeUser(raw json.RawMessage) (models.User, error) {
	var row userRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.User{}, fmt.Errorf("%w: user row: %w", ErrDecode, err)
	}
	if row.ID == "" {
		return models.User{}, fmt.Errorf("%w: user row without id", ErrDecode)
	}

	avatar := ""
	if img := deref(row.Image); img != "" {
		avatar = img
		if !strings.HasPrefix(img, "/uploads/") {
			avatar = "/uploads/" + img
		}
	}

	return models.User{
		ID:       string(row.ID),
		Username: deref(row.Username),
		Name:     deref(row.Name),
		Email:    deref(row.Email),
		Phone:    deref(row.Phone),
		Password: "",
		Avatar:   avatar,
	}, nil
}

// rows splits a body that should be a JSON array. Anything else yields nil.
func rows(body []byte) []json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
