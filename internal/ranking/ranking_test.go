package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

var seattle = &geo.Point{Latitude: 47.6062, Longitude: -122.3321}

func st(id string, lat, lon string, mutate ...func(*models.Station)) models.Station {
	s := models.Station{
		ID:              id,
		Name:            "Station " + id,
		Address:         "1 Main St, Seattle, WA",
		Latitude:        lat,
		Longitude:       lon,
		TotalPorts:      4,
		AvailablePorts:  2,
		PowerKw:         50,
		ConnectorTypes:  []string{"CCS"},
		Amenities:       []string{},
		IsOperational:   true,
		NetworkProvider: "ChargePoint",
		Status:          models.StatusPartiallyAvailable,
	}
	for _, m := range mutate {
		m(&s)
	}
	return s
}

func fixture() []models.Station {
	return []models.Station{
		st("far", "47.9790", "-122.2021", func(s *models.Station) {
			s.Name = "Everett Supercharger"
			s.NetworkProvider = "Tesla"
			s.ConnectorTypes = []string{"Tesla"}
			s.PowerKw = 250
			s.Access24h = true
		}),
		st("near", "47.6097", "-122.3331", func(s *models.Station) {
			s.Amenities = []string{"Free Parking", "WiFi"}
		}),
		st("broken", "not-a-number", "-122.3"),
		st("mid", "47.6740", "-122.1215", func(s *models.Station) {
			s.Name = "Bellevue Square"
			s.AvailablePorts = 0
			s.Status = models.StatusBusy
			s.ConnectorTypes = []string{"CCS", "CHAdeMO"}
			s.Access24h = true
		}),
	}
}

func ids(ranked []models.StationWithDistance) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

func TestApply_SortsByDistanceWithUnknownLast(t *testing.T) {
	ranked := Apply(fixture(), models.DefaultFilters(), seattle)

	assert.Equal(t, []string{"near", "mid", "far", "broken"}, ids(ranked))
	require.NotNil(t, ranked[0].Distance)
	assert.InDelta(t, 0.24, *ranked[0].Distance, 0.05)
	assert.Nil(t, ranked[3].Distance)
}

func TestApply_NoOriginKeepsInputOrder(t *testing.T) {
	ranked := Apply(fixture(), models.DefaultFilters(), nil)

	assert.Equal(t, []string{"far", "near", "broken", "mid"}, ids(ranked))
	for _, r := range ranked {
		assert.Nil(t, r.Distance)
	}
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters models.SearchFilters
		want    []string
	}{
		{"query matches name", models.SearchFilters{Query: "bellevue"}, []string{"mid"}},
		{"query matches network", models.SearchFilters{Query: "TESLA"}, []string{"far"}},
		{"query matches address", models.SearchFilters{Query: "main st"}, []string{"near", "mid", "far", "broken"}},
		{"connector", models.SearchFilters{ConnectorType: "CHAdeMO"}, []string{"mid"}},
		{"connector all", models.SearchFilters{ConnectorType: "all"}, []string{"near", "mid", "far", "broken"}},
		{"connector is case sensitive", models.SearchFilters{ConnectorType: "chademo"}, []string{}},
		{"available only", models.SearchFilters{ShowAvailableOnly: true}, []string{"near", "far", "broken"}},
		{"fast only", models.SearchFilters{ShowFastChargingOnly: true}, []string{"far"}},
		{"24h only", models.SearchFilters{Show24hOnly: true}, []string{"mid", "far"}},
		{"free parking", models.SearchFilters{ShowFreeParkingOnly: true}, []string{"near"}},
		{"combined", models.SearchFilters{ShowAvailableOnly: true, Show24hOnly: true}, []string{"far"}},
		{"nothing matches", models.SearchFilters{Query: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.filters, seattle)))
		})
	}
}

func TestApply_AvailableOnlyScenario(t *testing.T) {
	stations := []models.Station{
		st("A", "47.6", "-122.3", func(s *models.Station) {
			s.Name = "A"
			s.AvailablePorts = 0
			s.TotalPorts = 4
			s.Status = models.DeriveStatus(true, 0, 4, models.ProviderStateOperational)
		}),
		st("B", "47.61", "-122.3", func(s *models.Station) {
			s.Name = "B"
			s.AvailablePorts = 2
			s.TotalPorts = 2
			s.Status = models.DeriveStatus(true, 2, 2, models.ProviderStateOperational)
		}),
	}

	ranked := Apply(stations, models.SearchFilters{ShowAvailableOnly: true}, nil)

	require.Len(t, ranked, 1)
	assert.Equal(t, "B", ranked[0].Name)
	assert.Equal(t, models.StatusAvailable, ranked[0].Status)
}

func TestApply_Idempotent(t *testing.T) {
	filters := []models.SearchFilters{
		models.DefaultFilters(),
		{ShowAvailableOnly: true},
		{Query: "station", Show24hOnly: true},
	}

	for _, f := range filters {
		once := Apply(fixture(), f, seattle)
		twice := Apply(Stations(once), f, seattle)
		assert.Equal(t, once, twice)
	}
}

func TestApply_Monotonic(t *testing.T) {
	base := Apply(fixture(), models.DefaultFilters(), seattle)
	narrowed := Apply(fixture(), models.SearchFilters{ShowAvailableOnly: true, Query: "station"}, seattle)

	assert.LessOrEqual(t, len(narrowed), len(base))
	baseIDs := ids(base)
	for _, id := range ids(narrowed) {
		assert.Contains(t, baseIDs, id)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	ranked := Apply(nil, models.DefaultFilters(), seattle)

	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestLimit(t *testing.T) {
	ranked := Apply(fixture(), models.DefaultFilters(), seattle)

	assert.Len(t, Limit(ranked, 2), 2)
	assert.Len(t, Limit(ranked, 0), 4)
	assert.Len(t, Limit(ranked, 10), 4)
}
