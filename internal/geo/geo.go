package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	EarthRadiusMiles = 3959.0
	EarthRadiusKm    = 6371.0
)

// Point is a coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMiles returns the great-circle distance between two coordinates in miles.
// NaN inputs propagate; callers validate coordinates first.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2, EarthRadiusMiles)
}

// DistanceKm is the kilometer variant of DistanceMiles.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2, EarthRadiusKm)
}

func haversine(lat1, lon1, lat2, lon2, radius float64) float64 {
	dLat := ToRadians(lat2 - lat1)
	dLon := ToRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(ToRadians(lat1))*math.Cos(ToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}

func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseCoordinate parses a decimal-degree string. Empty, NaN and Inf values are rejected.
func ParseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatCoordinate renders a coordinate with the shortest exact representation.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// ContiguousUS roughly covers the lower 48 states.
var ContiguousUS = BoundingBox{MinLat: 24.396308, MinLon: -125.0, MaxLat: 49.384358, MaxLon: -66.93457}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%s,%s,%s,%s",
		FormatCoordinate(b.MinLat), FormatCoordinate(b.MinLon),
		FormatCoordinate(b.MaxLat), FormatCoordinate(b.MaxLon))
}

// ParseBoundingBox parses "minLat,minLon,maxLat,maxLon".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box needs 4 values, got %d", len(parts))
	}

	var vals [4]float64
	for i, p := range parts {
		v, ok := ParseCoordinate(p)
		if !ok {
			return BoundingBox{}, fmt.Errorf("invalid bounding box value %q", p)
		}
		vals[i] = v
	}

	box := BoundingBox{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}
	if !ValidCoordinate(box.MinLat, box.MinLon) || !ValidCoordinate(box.MaxLat, box.MaxLon) {
		return BoundingBox{}, fmt.Errorf("bounding box out of range: %s", s)
	}
	if box.MinLat > box.MaxLat || box.MinLon > box.MaxLon {
		return BoundingBox{}, fmt.Errorf("bounding box min exceeds max: %s", s)
	}
	return box, nil
}
