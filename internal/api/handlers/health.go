// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports uptime, which upstream keys are configured and
// how current the refreshed feeds are
type HealthHandler struct {
	startTime time.Time
	bus       BusProvider
	places    PlacesProvider
	env       EnvironmentProvider
	alerts    AlertProvider
}

func NewHealthHandler(bus BusProvider, places PlacesProvider, env EnvironmentProvider, alerts AlertProvider) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		bus:       bus,
		places:    places,
		env:       env,
		alerts:    alerts,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"uptime":    time.Since(h.startTime).String(),
		"services": map[string]bool{
			"lta":    h.bus.HasAccountKey(),
			"places": h.places.HasAPIKey(),
		},
		"feeds": map[string]string{
			"environment":  string(h.env.State().Status),
			"train_alerts": string(h.alerts.State().Status),
		},
	})
}
