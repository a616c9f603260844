package handlers

import (
	"net/http"

	"github.com/peatergripin/ecocommute/internal/places"
)

type PlacesHandler struct {
	places PlacesProvider
}

func NewPlacesHandler(p PlacesProvider) *PlacesHandler {
	return &PlacesHandler{places: p}
}

// Autocomplete proxies ?input= (and optional ?session=) to the places
// provider
func (h *PlacesHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	if !h.places.HasAPIKey() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Places service unavailable",
			"message": "PLACES_API_KEY not configured",
		})
		return
	}

	q := r.URL.Query()
	suggestions, err := h.places.Autocomplete(r.Context(), q.Get("input"), q.Get("session"))
	if err != nil {
		writeError(w, "Failed to fetch suggestions", err)
		return
	}
	if suggestions == nil {
		suggestions = []places.Suggestion{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
