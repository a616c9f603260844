package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/peatergripin/ecocommute/internal/transit"
)

type TransitHandler struct {
	bus    BusProvider
	alerts AlertProvider
	loc    *time.Location
	now    func() time.Time
}

func NewTransitHandler(bus BusProvider, alerts AlertProvider, loc *time.Location, now func() time.Time) *TransitHandler {
	if now == nil {
		now = time.Now
	}
	return &TransitHandler{
		bus:    bus,
		alerts: alerts,
		loc:    loc,
		now:    now,
	}
}

// busArrivalView is one upcoming bus with display labels
type busArrivalView struct {
	EstimatedArrival string `json:"estimated_arrival"`
	ETA              string `json:"eta"`
	MinutesAway      *int   `json:"minutes_away"`
	Load             string `json:"load"`
	Wheelchair       bool   `json:"wheelchair_accessible"`
	Type             string `json:"type,omitempty"`
}

type serviceArrivalView struct {
	ServiceNo string           `json:"service_no"`
	Operator  string           `json:"operator,omitempty"`
	Next      []busArrivalView `json:"next"`
}

// GetBusRoute returns the stops of a service in one direction
func (h *TransitHandler) GetBusRoute(w http.ResponseWriter, r *http.Request) {
	if !h.bus.HasAccountKey() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Bus service unavailable",
			"message": "LTA_ACCOUNT_KEY not configured",
		})
		return
	}

	service := transit.NormalizeService(r.PathValue("service"))
	direction := 1
	if raw := r.URL.Query().Get("direction"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": "direction must be 1 or 2",
			})
			return
		}
		direction = d
	}

	stops, err := h.bus.RouteWithStops(r.Context(), service, direction)
	if err != nil {
		writeError(w, "Failed to load bus route", err)
		return
	}
	if stops == nil {
		stops = []transit.RouteStop{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"service_no": service,
		"direction":  direction,
		"stops":      stops,
		"count":      len(stops),
	})
}

// GetBusArrivals returns live arrivals at a bus stop
func (h *TransitHandler) GetBusArrivals(w http.ResponseWriter, r *http.Request) {
	if !h.bus.HasAccountKey() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Bus service unavailable",
			"message": "LTA_ACCOUNT_KEY not configured",
		})
		return
	}

	code := transit.CleanStopCode(r.PathValue("stopCode"))
	if len(code) != 5 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Bus stop code must be 5 digits",
		})
		return
	}

	arrivals, err := h.bus.Arrivals(r.Context(), code)
	if err != nil {
		writeError(w, "Failed to fetch arrivals", err)
		return
	}

	now := h.now()
	services := make([]serviceArrivalView, 0, len(arrivals.Services))
	for _, svc := range arrivals.Services {
		view := serviceArrivalView{ServiceNo: svc.ServiceNo, Operator: svc.Operator}
		for _, bus := range svc.Buses() {
			if bus.EstimatedArrival == "" {
				continue
			}
			var minutes *int
			if m, ok := transit.MinutesUntil(bus.EstimatedArrival, now); ok {
				minutes = &m
			}
			view.Next = append(view.Next, busArrivalView{
				EstimatedArrival: bus.EstimatedArrival,
				ETA:              transit.ETALabel(bus.EstimatedArrival, now),
				MinutesAway:      minutes,
				Load:             transit.LoadLabel(bus.Load),
				Wheelchair:       bus.WheelchairAccessible(),
				Type:             bus.Type,
			})
		}
		if view.Next == nil {
			view.Next = []busArrivalView{}
		}
		services = append(services, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"stop_code": code,
		"services":  services,
		"count":     len(services),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

// GetTrainAlerts returns the latest train service alerts
func (h *TransitHandler) GetTrainAlerts(w http.ResponseWriter, r *http.Request) {
	if !h.alerts.HasAccountKey() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Train alerts unavailable",
			"message": "LTA_ACCOUNT_KEY not configured",
		})
		return
	}

	if wantsRefresh(r) {
		_ = h.alerts.Refresh(r.Context())
	}

	state := h.alerts.State()
	if !state.HasValue && state.Err != nil {
		writeError(w, "Train alerts unavailable", state.Err)
		return
	}

	clusters := state.Value
	if clusters == nil {
		clusters = []transit.Cluster{}
	}

	resp := map[string]any{
		"success":       true,
		"status":        state.Status,
		"alerts":        clusters,
		"count":         len(clusters),
		"any_disrupted": transit.AnyDisrupted(clusters),
		"updatedAt":     nil,
	}
	if state.HasValue {
		resp["updatedAt"] = state.UpdatedAt
	}
	if state.Err != nil {
		resp["message"] = state.Err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetTrainAlertsFeed serves the current alerts as a GTFS-realtime feed
func (h *TransitHandler) GetTrainAlertsFeed(w http.ResponseWriter, r *http.Request) {
	if !h.alerts.HasAccountKey() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Train alerts unavailable",
			"message": "LTA_ACCOUNT_KEY not configured",
		})
		return
	}

	state := h.alerts.State()
	if !state.HasValue {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Train alerts unavailable",
			"message": "alerts have not loaded yet",
		})
		return
	}

	data, err := transit.MarshalAlertsFeed(state.Value, h.now(), h.loc)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to encode feed",
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
