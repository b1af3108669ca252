// Package ranking filters station lists by user criteria and orders them by
// distance from a search origin. Everything here is pure.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

type predicate func(models.Station) bool

// Apply keeps the stations that pass every active filter and sorts them by
// distance from origin, nearest first. Stations whose distance cannot be
// computed (no origin or unparseable coordinates) keep their relative order
// after all others.
func Apply(stations []models.Station, filters models.SearchFilters, origin *geo.Point) []models.StationWithDistance {
	preds := predicates(filters)

	out := make([]models.StationWithDistance, 0, len(stations))
	for _, s := range stations {
		if !matchesAll(s, preds) {
			continue
		}
		out = append(out, models.StationWithDistance{Station: s, Distance: distanceTo(s, origin)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Distance, out[j].Distance
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return out
}

// Stations drops the distances so a ranked list can be fed back into Apply.
func Stations(ranked []models.StationWithDistance) []models.Station {
	out := make([]models.Station, len(ranked))
	for i, r := range ranked {
		out[i] = r.Station
	}
	return out
}

// Limit truncates a ranked list to at most n entries; n <= 0 means no limit.
func Limit(ranked []models.StationWithDistance, n int) []models.StationWithDistance {
	if n <= 0 || len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}

func predicates(f models.SearchFilters) []predicate {
	var preds []predicate

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		preds = append(preds, func(s models.Station) bool {
			return strings.Contains(strings.ToLower(s.Name), q) ||
				strings.Contains(strings.ToLower(s.Address), q) ||
				strings.Contains(strings.ToLower(s.NetworkProvider), q)
		})
	}
	// Connector tags are canonical, so membership is exact.
	if c := strings.TrimSpace(f.ConnectorType); c != "" && c != models.AllConnectors {
		preds = append(preds, func(s models.Station) bool { return s.HasConnector(c) })
	}
	if f.ShowAvailableOnly {
		preds = append(preds, func(s models.Station) bool { return s.AvailablePorts > 0 })
	}
	if f.ShowFastChargingOnly {
		preds = append(preds, func(s models.Station) bool { return s.PowerKw >= models.FastChargingKw })
	}
	if f.Show24hOnly {
		preds = append(preds, func(s models.Station) bool { return s.Access24h })
	}
	if f.ShowFreeParkingOnly {
		preds = append(preds, func(s models.Station) bool {
			for _, a := range s.Amenities {
				if strings.Contains(strings.ToLower(a), "free parking") {
					return true
				}
			}
			return false
		})
	}
	return preds
}

func matchesAll(s models.Station, preds []predicate) bool {
	for _, p := range preds {
		if !p(s) {
			return false
		}
	}
	return true
}

func distanceTo(s models.Station, origin *geo.Point) *float64 {
	if origin == nil {
		return nil
	}
	lat, lon, ok := s.Coordinates()
	if !ok {
		return nil
	}
	d := geo.DistanceMiles(origin.Latitude, origin.Longitude, lat, lon)
	if math.IsNaN(d) {
		return nil
	}
	return &d
}
