package transit

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const busArrivalPath = "/v3/BusArrival"

// NextBus is one upcoming bus for a service
type NextBus struct {
	OriginCode       string `json:"originCode,omitempty"`
	DestinationCode  string `json:"destinationCode,omitempty"`
	EstimatedArrival string `json:"estimatedArrival"`
	Load             string `json:"load,omitempty"`
	Feature          string `json:"feature,omitempty"`
	Type             string `json:"type,omitempty"`
}

// WheelchairAccessible reports whether the bus is wheelchair accessible
func (b NextBus) WheelchairAccessible() bool {
	return b.Feature == "WAB"
}

// ServiceArrival holds the next three buses of one service at a stop
type ServiceArrival struct {
	ServiceNo string  `json:"serviceNo"`
	Operator  string  `json:"operator,omitempty"`
	NextBus   NextBus `json:"nextBus"`
	NextBus2  NextBus `json:"nextBus2"`
	NextBus3  NextBus `json:"nextBus3"`
}

// Buses returns the three upcoming buses in order
func (s ServiceArrival) Buses() [3]NextBus {
	return [3]NextBus{s.NextBus, s.NextBus2, s.NextBus3}
}

// StopArrivals is the live arrival board for one bus stop
type StopArrivals struct {
	BusStopCode string           `json:"busStopCode"`
	Services    []ServiceArrival `json:"services"`
}

// CleanStopCode keeps only digits, at most five of them
func CleanStopCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == 5 {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FetchArrivals fetches the live arrival board for a stop
func FetchArrivals(ctx context.Context, c *Client, stopCode string) (StopArrivals, error) {
	code := CleanStopCode(stopCode)
	if code == "" {
		return StopArrivals{}, fmt.Errorf("%w: bus stop code %q has no digits", ErrInvalidQuery, stopCode)
	}

	params := url.Values{}
	params.Set("BusStopCode", code)

	var result busArrivalResponse
	if err := c.get(ctx, busArrivalPath, params, &result); err != nil {
		return StopArrivals{}, fmt.Errorf("fetching arrivals for %s: %w", code, err)
	}

	out := StopArrivals{BusStopCode: code, Services: make([]ServiceArrival, 0, len(result.Services))}
	for _, svc := range result.Services {
		out.Services = append(out.Services, ServiceArrival{
			ServiceNo: svc.ServiceNo,
			Operator:  svc.Operator,
			NextBus:   svc.NextBus.toNextBus(),
			NextBus2:  svc.NextBus2.toNextBus(),
			NextBus3:  svc.NextBus3.toNextBus(),
		})
	}
	return out, nil
}

// MinutesUntil returns whole minutes from now until the ISO timestamp,
// rounded down. ok is false when the timestamp is empty or unparseable.
func MinutesUntil(iso string, now time.Time) (minutes int, ok bool) {
	if iso == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0, false
	}
	return int(math.Floor(t.Sub(now).Minutes())), true
}

// ETALabel renders an arrival as "N min", "Arr" once due, or "--" when
// unknown.
func ETALabel(iso string, now time.Time) string {
	m, ok := MinutesUntil(iso, now)
	switch {
	case !ok:
		return "--"
	case m <= 0:
		return "Arr"
	default:
		return fmt.Sprintf("%d min", m)
	}
}

// Bus load codes
const (
	LoadSeatsAvailable    = "SEA"
	LoadStandingAvailable = "SDA"
	LoadLimitedStanding   = "LSD"
)

// LoadLabel normalizes a load code, returning "--" for anything unknown
func LoadLabel(load string) string {
	switch l := strings.ToUpper(strings.TrimSpace(load)); l {
	case LoadSeatsAvailable, LoadStandingAvailable, LoadLimitedStanding:
		return l
	default:
		return "--"
	}
}

// Upstream response structures

type nextBusRow struct {
	OriginCode       string `json:"OriginCode"`
	DestinationCode  string `json:"DestinationCode"`
	EstimatedArrival string `json:"EstimatedArrival"`
	Load             string `json:"Load"`
	Feature          string `json:"Feature"`
	Type             string `json:"Type"`
}

func (r nextBusRow) toNextBus() NextBus {
	return NextBus{
		OriginCode:       r.OriginCode,
		DestinationCode:  r.DestinationCode,
		EstimatedArrival: r.EstimatedArrival,
		Load:             r.Load,
		Feature:          r.Feature,
		Type:             r.Type,
	}
}

type busArrivalResponse struct {
	BusStopCode string `json:"BusStopCode"`
	Services    []struct {
		ServiceNo string     `json:"ServiceNo"`
		Operator  string     `json:"Operator"`
		NextBus   nextBusRow `json:"NextBus"`
		NextBus2  nextBusRow `json:"NextBus2"`
		NextBus3  nextBusRow `json:"NextBus3"`
	} `json:"Services"`
}
