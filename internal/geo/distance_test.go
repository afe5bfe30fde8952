package geo

import (
	"math"
	"testing"
)

func TestDistanceKmZero(t *testing.T) {
	c := Coordinate{Latitude: -23.55, Longitude: -46.63}
	if d := DistanceKm(c, c); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestDistanceKmSaoPauloRio(t *testing.T) {
	sp := Coordinate{Latitude: -23.55, Longitude: -46.63}
	rio := Coordinate{Latitude: -22.90, Longitude: -43.17}

	d := DistanceKm(sp, rio)
	if math.Abs(d-360) > 10 {
		t.Errorf("São Paulo-Rio distance = %f km, want ~360 km", d)
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := Coordinate{Latitude: -16.6869, Longitude: -49.2648}
	b := Coordinate{Latitude: -22.9068, Longitude: -43.1729}

	if da, db := DistanceKm(a, b), DistanceKm(b, a); math.Abs(da-db) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", da, db)
	}
}

func TestParseCoordinate(t *testing.T) {
	cases := []struct {
		lat, lon string
		ok       bool
	}{
		{"-16.6869", "-49.2648", true},
		{"0", "0", true},
		{"91", "10", false},
		{"10", "181", false},
		{"", "-49.2648", false},
		{"abc", "-49.2648", false},
	}

	for _, c := range cases {
		if _, ok := ParseCoordinate(c.lat, c.lon); ok != c.ok {
			t.Errorf("ParseCoordinate(%q, %q) ok = %v, want %v", c.lat, c.lon, ok, c.ok)
		}
	}
}

func TestResolveFallsBackToNil(t *testing.T) {
	if got := Resolve("", ""); got != nil {
		t.Errorf("Resolve with empty input = %v, want nil", got)
	}
	if got := Resolve("-23.55", "-46.63"); got == nil || got.Latitude != -23.55 {
		t.Errorf("Resolve valid input = %v", got)
	}
}
