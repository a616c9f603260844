package api

import (
	"net/http"
	"time"

	"github.com/peatergripin/ecocommute/internal/api/handlers"
)

const requestTimeout = 15 * time.Second

// Deps carries the services the routes are served from
type Deps struct {
	Trips       handlers.TripSource
	Environment handlers.EnvironmentProvider
	Bus         handlers.BusProvider
	Alerts      handlers.AlertProvider
	Places      handlers.PlacesProvider

	// Location is the display timezone for analytics weeks and feed times
	Location *time.Location
	Now      func() time.Time
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Bus, deps.Places, deps.Environment, deps.Alerts)
	rootHandler := handlers.NewRootHandler()
	geoHandler := handlers.NewGeoHandler()
	commuteHandler := handlers.NewCommuteHandler(deps.Trips, loc, deps.Now)
	envHandler := handlers.NewEnvironmentHandler(deps.Environment)
	transitHandler := handlers.NewTransitHandler(deps.Bus, deps.Alerts, loc, deps.Now)
	placesHandler := handlers.NewPlacesHandler(deps.Places)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET /geo/distance", geoHandler.Distance)
	mux.HandleFunc("GET /commutes/analytics", commuteHandler.GetAnalytics)
	mux.HandleFunc("GET /environment", envHandler.GetSnapshot)

	// Bus routes
	mux.HandleFunc("GET /transit/bus/routes/{service}", transitHandler.GetBusRoute)
	mux.HandleFunc("GET /transit/bus/arrivals/{stopCode}", transitHandler.GetBusArrivals)

	// Train alerts
	mux.HandleFunc("GET /transit/train/alerts", transitHandler.GetTrainAlerts)
	mux.HandleFunc("GET /transit/train/alerts.pb", transitHandler.GetTrainAlertsFeed)

	mux.HandleFunc("GET /places/autocomplete", placesHandler.Autocomplete)

	mux.HandleFunc("/", rootHandler.NotFound)

	// Apply middleware stack
	handler := Chain(mux,
		Recovery,
		Logging,
		CORS,
		Timeout(requestTimeout),
	)

	return handler
}
