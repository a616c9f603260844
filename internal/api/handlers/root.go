package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "ecocommute",
		"description": "Commute logging companion API: analytics, Singapore transit and environment feeds",
		"version":     "1.0.0",
		"endpoints": []string{
			"GET /api",
			"GET /health",
			"GET /geo/distance?from=lat,lng&to=lat,lng",
			"GET /commutes/analytics?user_id=&weeks=",
			"GET /environment?refresh=1",
			"GET /transit/bus/routes/{service}?direction=",
			"GET /transit/bus/arrivals/{stopCode}",
			"GET /transit/train/alerts?refresh=1",
			"GET /transit/train/alerts.pb",
			"GET /places/autocomplete?input=",
		},
	})
}

// NotFound answers unknown routes with a JSON body
func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Not found",
		"message": "No route for " + r.Method + " " + r.URL.Path,
	})
}
