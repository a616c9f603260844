package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/peatergripin/ecocommute/internal/analytics"
)

const maxAnalyticsWeeks = 52

type CommuteHandler struct {
	trips TripSource
	loc   *time.Location
	now   func() time.Time
}

func NewCommuteHandler(trips TripSource, loc *time.Location, now func() time.Time) *CommuteHandler {
	if now == nil {
		now = time.Now
	}
	return &CommuteHandler{trips: trips, loc: loc, now: now}
}

// GetAnalytics builds the dashboard report for a user's commutes
func (h *CommuteHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "user_id is required",
		})
		return
	}

	weeks := parseIntQueryParam(r, "weeks", analytics.DefaultWeeks, 1, maxAnalyticsWeeks)

	trips, err := h.trips.ListTrips(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to load commutes", err)
		return
	}

	now := h.now().In(h.loc)
	analytics.SortNewestFirst(trips, h.loc)

	report := analytics.BuildReport(trips, weeks, now)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user_id": userID,
		"weeks":   weeks,
		"report":  report,
		"home":    analytics.Home(trips, now),
	})
}
