package transit

import (
	"context"
	"time"

	"github.com/peatergripin/ecocommute/internal/cache"
)

// maxArrivalTTL caps how long a live arrival board is served from cache
const maxArrivalTTL = 15 * time.Second

// BusService resolves bus routes and live arrivals. Routes are scanned
// afresh on every query; only arrival boards are cached.
type BusService struct {
	client       *Client
	scan         ScanOptions
	stops        *StopDirectory
	arrivalCache *cache.Cache[StopArrivals]
}

// NewBusService creates a new bus service
func NewBusService(client *Client, scan ScanOptions, cacheTTL time.Duration) *BusService {
	arrivalTTL := min(cacheTTL, maxArrivalTTL)
	return &BusService{
		client:       client,
		scan:         scan.withDefaults(),
		stops:        NewStopDirectory(client, scan),
		arrivalCache: cache.New[StopArrivals](arrivalTTL),
	}
}

// HasAccountKey returns true if bus lookups can be made
func (s *BusService) HasAccountKey() bool {
	return s.client.HasAccountKey()
}

// ResolveRoute returns the ordered stops of a service in one direction
func (s *BusService) ResolveRoute(ctx context.Context, serviceNo string, direction int) ([]RouteStop, error) {
	return ScanRoute(ctx, s.client, serviceNo, direction, s.scan)
}

// RouteWithStops resolves a route and fills in each stop's name and road.
// The route scan and the stop directory build run concurrently; either
// failing fails the whole lookup. A malformed query fails before any
// upstream request is made.
func (s *BusService) RouteWithStops(ctx context.Context, serviceNo string, direction int) ([]RouteStop, error) {
	if _, err := validateRouteQuery(serviceNo, direction); err != nil {
		return nil, err
	}

	type dirResult struct {
		index map[string]StopInfo
		err   error
	}
	dirCh := make(chan dirResult, 1)
	go func() {
		index, err := s.stops.Ensure(ctx)
		dirCh <- dirResult{index, err}
	}()

	route, err := s.ResolveRoute(ctx, serviceNo, direction)
	dir := <-dirCh
	if err != nil {
		return nil, err
	}
	if dir.err != nil {
		return nil, dir.err
	}

	out := make([]RouteStop, len(route))
	for i, stop := range route {
		if info, ok := dir.index[stop.BusStopCode]; ok {
			stop.StopName = info.Name
			stop.RoadName = info.Road
		}
		out[i] = stop
	}
	return out, nil
}

// Stop returns a stop's details, building the directory if needed
func (s *BusService) Stop(ctx context.Context, code string) (StopInfo, bool, error) {
	if _, err := s.stops.Ensure(ctx); err != nil {
		return StopInfo{}, false, err
	}
	info, ok := s.stops.Lookup(code)
	return info, ok, nil
}

// Arrivals returns the live arrival board for a stop
func (s *BusService) Arrivals(ctx context.Context, stopCode string) (StopArrivals, error) {
	code := CleanStopCode(stopCode)
	return s.arrivalCache.GetOrLoad(code, func() (StopArrivals, error) {
		return FetchArrivals(ctx, s.client, stopCode)
	})
}

// Close stops the arrival cache's background sweeper
func (s *BusService) Close() {
	s.arrivalCache.Close()
}
