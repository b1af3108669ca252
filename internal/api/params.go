package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

const (
	SourceLive  = "live"
	SourceLocal = "local"

	// MaxRadiusMiles caps user supplied search radii.
	MaxRadiusMiles = 500.0
	MaxLimit       = 100
)

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

type InvalidParameterError struct {
	Name   string
	Value  string
	Reason string
}

func (e InvalidParameterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("Invalid parameter %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("Invalid parameter %s=%q: %s", e.Name, e.Value, e.Reason)
}

// SearchRequest is a parsed station search. Zero Limit and nil RadiusMiles
// mean the caller's defaults apply.
type SearchRequest struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles *float64
	Limit       int
	Source      string
	Filters     models.SearchFilters
	Recommend   bool
	// ListAll is set for a local search without coordinates; it covers every
	// stored station and carries no origin.
	ListAll bool
}

// Origin returns the search point, or nil for a listing.
func (r SearchRequest) Origin() *geo.Point {
	if r.ListAll {
		return nil
	}
	return &geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

// ParseCoordinates reads lat and lon (or lng). Both are required.
func ParseCoordinates(params map[string]string) (float64, float64, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]
	if !hasLon {
		lonStr, hasLon = params["lng"]
	}

	if !hasLat {
		return 0, 0, InvalidParameterError{Name: "lat", Reason: "required"}
	}
	if !hasLon {
		return 0, 0, InvalidParameterError{Name: "lon", Reason: "required"}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, InvalidParameterError{Name: "lat", Value: latStr, Reason: "not a number"}
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, InvalidParameterError{Name: "lon", Value: lonStr, Reason: "not a number"}
	}

	if !geo.ValidCoordinate(lat, lon) {
		return 0, 0, InvalidCoordinatesError{}
	}

	return lat, lon, nil
}

// ParseSearchRequest validates the query string of a station search.
func ParseSearchRequest(params map[string]string) (SearchRequest, error) {
	req := SearchRequest{
		Source:  SourceLive,
		Filters: models.DefaultFilters(),
	}

	if v, ok := params["source"]; ok {
		switch strings.ToLower(v) {
		case SourceLive, SourceLocal:
			req.Source = strings.ToLower(v)
		default:
			return SearchRequest{}, InvalidParameterError{Name: "source", Value: v, Reason: "must be live or local"}
		}
	}

	if req.Source == SourceLocal && !hasAnyCoordinate(params) {
		req.ListAll = true
	} else {
		lat, lon, err := ParseCoordinates(params)
		if err != nil {
			return SearchRequest{}, err
		}
		req.Latitude, req.Longitude = lat, lon
	}

	if v, ok := params["radius"]; ok {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(radius) || radius <= 0 || radius > MaxRadiusMiles {
			return SearchRequest{}, InvalidParameterError{Name: "radius", Value: v, Reason: fmt.Sprintf("must be in (0, %g]", MaxRadiusMiles)}
		}
		req.RadiusMiles = &radius
	}

	if v, ok := params["limit"]; ok {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > MaxLimit {
			return SearchRequest{}, InvalidParameterError{Name: "limit", Value: v, Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
		}
		req.Limit = limit
	}

	req.Filters.Query = strings.TrimSpace(params["q"])
	if v := strings.TrimSpace(params["connector"]); v != "" {
		req.Filters.ConnectorType = v
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"available", &req.Filters.ShowAvailableOnly},
		{"fast", &req.Filters.ShowFastChargingOnly},
		{"open24h", &req.Filters.Show24hOnly},
		{"freeParking", &req.Filters.ShowFreeParkingOnly},
		{"recommend", &req.Recommend},
	}
	for _, f := range flags {
		v, ok := params[f.name]
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return SearchRequest{}, InvalidParameterError{Name: f.name, Value: v, Reason: "must be a boolean"}
		}
		*f.dst = b
	}

	return req, nil
}

func hasAnyCoordinate(params map[string]string) bool {
	for _, k := range []string{"lat", "lon", "lng"} {
		if _, ok := params[k]; ok {
			return true
		}
	}
	return false
}
