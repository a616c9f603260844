package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/peatergripin/ecocommute/internal/geo"
)

type GeoHandler struct{}

func NewGeoHandler() *GeoHandler {
	return &GeoHandler{}
}

// Distance returns the great-circle distance between ?from=lat,lng and
// ?to=lat,lng. A missing endpoint yields a null distance. Coordinates are
// not range checked.
func (h *GeoHandler) Distance(w http.ResponseWriter, r *http.Request) {
	from, err := parsePointParam(r, "from")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid coordinates",
			"message": err.Error(),
		})
		return
	}
	to, err := parsePointParam(r, "to")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid coordinates",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"from":        from,
		"to":          to,
		"distance_km": geo.DistanceKm(from, to),
	})
}

func parsePointParam(r *http.Request, name string) (*geo.Point, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	latStr, lngStr, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, fmt.Errorf("%s must be lat,lng", name)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return nil, fmt.Errorf("%s latitude %q is not a number", name, latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return nil, fmt.Errorf("%s longitude %q is not a number", name, lngStr)
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}
