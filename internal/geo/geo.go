// Package geo computes great-circle distances between trip endpoints.
package geo

import "github.com/golang/geo/s2"

// EarthRadiusKm is the fixed mean Earth radius used for all distances.
const EarthRadiusKm = 6371

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint returns a point when both halves are present, nil otherwise.
func NewPoint(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &Point{Lat: *lat, Lng: *lng}
}

// DistanceKm returns the haversine distance between a and b in kilometres,
// or nil when either point is absent. Coordinates are not range checked.
func DistanceKm(a, b *Point) *float64 {
	if a == nil || b == nil {
		return nil
	}
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	km := p1.Distance(p2).Radians() * EarthRadiusKm
	return &km
}
