package handlers

import (
	"context"

	"github.com/peatergripin/ecocommute/internal/environment"
	"github.com/peatergripin/ecocommute/internal/models"
	"github.com/peatergripin/ecocommute/internal/places"
	"github.com/peatergripin/ecocommute/internal/refresh"
	"github.com/peatergripin/ecocommute/internal/transit"
)

// TripSource abstracts the backend's trip listing for testability.
type TripSource interface {
	ListTrips(ctx context.Context, userID string) ([]models.Trip, error)
}

// EnvironmentProvider is the auto-refreshed environment snapshot.
type EnvironmentProvider interface {
	State() refresh.State[environment.Snapshot]
	Refresh(ctx context.Context) error
}

// AlertProvider is the auto-refreshed train alert list.
type AlertProvider interface {
	HasAccountKey() bool
	State() refresh.State[[]transit.Cluster]
	Refresh(ctx context.Context) error
}

// BusProvider abstracts bus route and arrival lookups.
type BusProvider interface {
	HasAccountKey() bool
	RouteWithStops(ctx context.Context, serviceNo string, direction int) ([]transit.RouteStop, error)
	Arrivals(ctx context.Context, stopCode string) (transit.StopArrivals, error)
}

// PlacesProvider abstracts place autocomplete.
type PlacesProvider interface {
	HasAPIKey() bool
	Autocomplete(ctx context.Context, input, sessionToken string) ([]places.Suggestion, error)
}
