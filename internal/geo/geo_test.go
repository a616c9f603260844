package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	// Changi Airport to Jurong East, roughly 28 km apart
	changi := &Point{Lat: 1.3644, Lng: 103.9915}
	jurong := &Point{Lat: 1.3331, Lng: 103.7420}

	d := DistanceKm(changi, jurong)
	if d == nil {
		t.Fatal("expected a distance")
	}
	if *d < 26 || *d > 30 {
		t.Fatalf("unexpected distance: %v", *d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
	}{
		{"short hop", Point{1.3521, 103.8198}, Point{1.3000, 103.8000}},
		{"cross equator", Point{-6.2, 106.816}, Point{10.5, 100.1}},
		{"antimeridian", Point{0, 179.9}, Point{0, -179.9}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ab := DistanceKm(&tc.a, &tc.b)
			ba := DistanceKm(&tc.b, &tc.a)
			if math.Abs(*ab-*ba) > 1e-9 {
				t.Errorf("distance(a,b)=%v, distance(b,a)=%v", *ab, *ba)
			}
		})
	}
}

func TestDistanceKmSamePoint(t *testing.T) {
	p := &Point{Lat: 1.29, Lng: 103.85}
	if d := DistanceKm(p, p); *d != 0 {
		t.Errorf("distance(a,a) = %v, want 0", *d)
	}
}

func TestDistanceKmMissingPoint(t *testing.T) {
	p := &Point{Lat: 1.29, Lng: 103.85}
	if d := DistanceKm(nil, p); d != nil {
		t.Errorf("distance(nil,b) = %v, want nil", *d)
	}
	if d := DistanceKm(p, nil); d != nil {
		t.Errorf("distance(a,nil) = %v, want nil", *d)
	}
}

// Out-of-range coordinates are accepted and flow through the formula.
func TestDistanceKmOutOfRange(t *testing.T) {
	d := DistanceKm(&Point{Lat: 95, Lng: 200}, &Point{Lat: 0, Lng: 0})
	if d == nil {
		t.Fatal("out-of-range input should still produce a value")
	}
	if math.IsInf(*d, 0) || *d < 0 {
		t.Errorf("unexpected distance %v", *d)
	}
}

func TestNewPoint(t *testing.T) {
	lat, lng := 1.3, 103.8
	if NewPoint(&lat, nil) != nil {
		t.Error("half a pair should not make a point")
	}
	if p := NewPoint(&lat, &lng); p == nil || p.Lat != lat || p.Lng != lng {
		t.Errorf("NewPoint = %+v", p)
	}
}
