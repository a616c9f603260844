package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/peatergripin/ecocommute/internal/backend"
	"github.com/peatergripin/ecocommute/internal/environment"
	"github.com/peatergripin/ecocommute/internal/places"
	"github.com/peatergripin/ecocommute/internal/transit"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

// writeError maps an upstream or validation error to a status code and a
// {"error","message"} body
func writeError(w http.ResponseWriter, title string, err error) {
	writeJSON(w, statusFor(err), map[string]any{
		"error":   title,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, transit.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, transit.ErrNoAccountKey), errors.Is(err, places.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, transit.ErrUpstream),
		errors.Is(err, places.ErrUpstream),
		errors.Is(err, environment.ErrFeed),
		errors.Is(err, backend.ErrNetwork),
		errors.Is(err, backend.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseIntQueryParam(r *http.Request, name string, defaultVal, min, max int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}

	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func wantsRefresh(r *http.Request) bool {
	v := r.URL.Query().Get("refresh")
	return v == "1" || v == "true"
}
