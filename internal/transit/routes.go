package transit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	busRoutesPath = "/BusRoutes"
	busStopsPath  = "/BusStops"
)

// ScanOptions bounds a paginated dataset scan
type ScanOptions struct {
	PageSize int
	MaxPages int
	// EarlyStopPages ends a route scan after this many consecutive pages
	// without a match, counted once the first match is seen. Zero scans
	// to the end of the dataset.
	EarlyStopPages int
}

// DefaultScanOptions matches DataMall's fixed page size
func DefaultScanOptions() ScanOptions {
	return ScanOptions{PageSize: 500, MaxPages: 80, EarlyStopPages: 2}
}

func (o ScanOptions) withDefaults() ScanOptions {
	d := DefaultScanOptions()
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = d.MaxPages
	}
	if o.EarlyStopPages < 0 {
		o.EarlyStopPages = 0
	}
	return o
}

// RouteStop is one stop along a bus service's route
type RouteStop struct {
	ServiceNo    string   `json:"serviceNo"`
	Operator     string   `json:"operator,omitempty"`
	Direction    int      `json:"direction"`
	StopSequence int      `json:"stopSequence"`
	BusStopCode  string   `json:"busStopCode"`
	DistanceKm   *float64 `json:"distanceKm,omitempty"`
	StopName     string   `json:"stopName,omitempty"`
	RoadName     string   `json:"roadName,omitempty"`
}

func (r RouteStop) key() string {
	return fmt.Sprintf("%s-%d-%d-%s", r.ServiceNo, r.Direction, r.StopSequence, r.BusStopCode)
}

// NormalizeService trims and upper-cases a service number ("  10e " -> "10E")
func NormalizeService(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ScanRoute pages through the BusRoutes dataset collecting rows for one
// service and direction. Any page failure discards everything collected.
func ScanRoute(ctx context.Context, c *Client, serviceNo string, direction int, opts ScanOptions) ([]RouteStop, error) {
	target, err := validateRouteQuery(serviceNo, direction)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var found []RouteStop
	foundOnce := false
	missesSinceMatch := 0

	for p := 0; p < opts.MaxPages; p++ {
		rows, err := fetchPage[busRouteRow](ctx, c, busRoutesPath, p*opts.PageSize)
		if err != nil {
			return nil, fmt.Errorf("scanning bus routes page %d: %w", p+1, err)
		}

		matched := 0
		for _, row := range rows {
			if NormalizeService(row.ServiceNo) == target && int(row.Direction) == direction {
				found = append(found, row.toRouteStop())
				matched++
			}
		}

		if matched > 0 {
			foundOnce = true
			missesSinceMatch = 0
		} else if foundOnce {
			missesSinceMatch++
			if opts.EarlyStopPages > 0 && missesSinceMatch >= opts.EarlyStopPages {
				break
			}
		}

		if len(rows) < opts.PageSize {
			break
		}
	}

	return sortAndDedupe(found), nil
}

// validateRouteQuery returns the normalized service number, or
// ErrInvalidQuery when the service is blank or direction is not 1 or 2
func validateRouteQuery(serviceNo string, direction int) (string, error) {
	target := NormalizeService(serviceNo)
	if target == "" {
		return "", fmt.Errorf("%w: bus service number is required", ErrInvalidQuery)
	}
	if direction != 1 && direction != 2 {
		return "", fmt.Errorf("%w: direction must be 1 or 2, got %d", ErrInvalidQuery, direction)
	}
	return target, nil
}

func sortAndDedupe(stops []RouteStop) []RouteStop {
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].StopSequence < stops[j].StopSequence
	})

	seen := make(map[string]bool, len(stops))
	out := make([]RouteStop, 0, len(stops))
	for _, s := range stops {
		k := s.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// StopInfo is a bus stop's display name and road
type StopInfo struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Road string  `json:"road"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// StopDirectory maps bus stop codes to names. It is built from the full
// BusStops dataset on first use and then kept for the life of the process.
type StopDirectory struct {
	client *Client
	opts   ScanOptions

	mu    sync.Mutex
	index map[string]StopInfo
}

// NewStopDirectory creates an empty directory
func NewStopDirectory(client *Client, opts ScanOptions) *StopDirectory {
	return &StopDirectory{client: client, opts: opts.withDefaults()}
}

// Ensure builds the index if it has not been built yet. A failed build
// leaves the directory empty so the next call retries.
func (d *StopDirectory) Ensure(ctx context.Context) (map[string]StopInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index != nil {
		return d.index, nil
	}

	index := make(map[string]StopInfo)
	for p := 0; p < d.opts.MaxPages; p++ {
		rows, err := fetchPage[busStopRow](ctx, d.client, busStopsPath, p*d.opts.PageSize)
		if err != nil {
			return nil, fmt.Errorf("loading bus stops page %d: %w", p+1, err)
		}

		for _, row := range rows {
			code := strings.TrimSpace(row.BusStopCode)
			if code == "" {
				continue
			}
			index[code] = StopInfo{
				Code: code,
				Name: row.Description,
				Road: row.RoadName,
				Lat:  row.Latitude,
				Lng:  row.Longitude,
			}
		}

		if len(rows) < d.opts.PageSize {
			break
		}
	}

	d.index = index
	return index, nil
}

// Lookup returns a stop from an already built index
func (d *StopDirectory) Lookup(code string) (StopInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, ok := d.index[strings.TrimSpace(code)]
	return info, ok
}

// Upstream row structures

type busRouteRow struct {
	ServiceNo    string   `json:"ServiceNo"`
	Operator     string   `json:"Operator"`
	Direction    flexInt  `json:"Direction"`
	StopSequence flexInt  `json:"StopSequence"`
	BusStopCode  string   `json:"BusStopCode"`
	Distance     *float64 `json:"Distance"`
}

func (r busRouteRow) toRouteStop() RouteStop {
	return RouteStop{
		ServiceNo:    NormalizeService(r.ServiceNo),
		Operator:     r.Operator,
		Direction:    int(r.Direction),
		StopSequence: int(r.StopSequence),
		BusStopCode:  strings.TrimSpace(r.BusStopCode),
		DistanceKm:   r.Distance,
	}
}

type busStopRow struct {
	BusStopCode string  `json:"BusStopCode"`
	RoadName    string  `json:"RoadName"`
	Description string  `json:"Description"`
	Latitude    float64 `json:"Latitude"`
	Longitude   float64 `json:"Longitude"`
}
