package geo

import (
	"math"
	"strconv"
)

// Coordinate is a pair of decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fallback is the coordinate substituted when a visitor denies
// geolocation or it times out. The source flows disagreed on the
// default; Goiânia is the canonical one (see DESIGN.md).
var Fallback = Coordinate{Latitude: -16.6869, Longitude: -49.2648}

// ParseCoordinate builds a Coordinate from the textual lat/lon pair
// stored on listings. Returns false when either value is absent or not
// a valid number.
func ParseCoordinate(lat, lon string) (Coordinate, bool) {
	latValue, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coordinate{}, false
	}
	lonValue, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Coordinate{}, false
	}
	if latValue < -90 || latValue > 90 || lonValue < -180 || lonValue > 180 {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: latValue, Longitude: lonValue}, true
}

// Resolve parses the lat/lon a client sent with its request. When the
// pair is missing or malformed the caller gets nil, meaning "location
// not resolved" rather than an error.
func Resolve(lat, lon string) *Coordinate {
	if lat == "" || lon == "" {
		return nil
	}
	c, ok := ParseCoordinate(lat, lon)
	if !ok {
		return nil
	}
	return &c
}

// DistanceKm returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceKm(a, b Coordinate) float64 {
	return haversineDistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func haversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
