package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStation() Station {
	return Station{
		ID:              "nrel-1001",
		Name:            "Test Station",
		Address:         "1234 Pine Street, Seattle, WA 98101",
		Latitude:        "47.6118",
		Longitude:       "-122.3236",
		TotalPorts:      4,
		AvailablePorts:  2,
		PowerKw:         50,
		PricePerKwh:     "$0.25",
		ConnectorTypes:  []string{"CCS"},
		Amenities:       []string{},
		IsOperational:   true,
		Access24h:       true,
		NetworkProvider: "Independent",
		Status:          StatusPartiallyAvailable,
	}
}

func TestStation_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *Station)
		wantErr string
	}{
		{
			name:   "valid station",
			mutate: func(s *Station) {},
		},
		{
			name:    "missing id",
			mutate:  func(s *Station) { s.ID = "" },
			wantErr: "id is required",
		},
		{
			name:    "bad latitude",
			mutate:  func(s *Station) { s.Latitude = "north" },
			wantErr: "invalid coordinates",
		},
		{
			name:    "more available than total",
			mutate:  func(s *Station) { s.AvailablePorts = 5 },
			wantErr: "invalid ports",
		},
		{
			name:    "no connectors",
			mutate:  func(s *Station) { s.ConnectorTypes = nil },
			wantErr: "connector",
		},
		{
			name:    "unknown status",
			mutate:  func(s *Station) { s.Status = "offline" },
			wantErr: "invalid status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStation()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStation_Coordinates(t *testing.T) {
	s := validStation()
	lat, lon, ok := s.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 47.6118, lat)
	assert.Equal(t, -122.3236, lon)

	s.Longitude = "200"
	_, _, ok = s.Coordinates()
	assert.False(t, ok)
}

func TestStationID(t *testing.T) {
	assert.Equal(t, "nrel-42", StationID(SourceNREL, "42"))
	assert.Equal(t, "ocm-7", StationID(SourceOCM, "7"))
}

func TestStationWithDistance_JSON(t *testing.T) {
	d := 1.5
	data, err := json.Marshal(StationWithDistance{Station: validStation(), Distance: &d})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "nrel-1001", decoded["id"])
	assert.Equal(t, 1.5, decoded["distance"])
	assert.Equal(t, "partially-available", decoded["status"])

	data, err = json.Marshal(StationWithDistance{Station: validStation()})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["distance"])
}

func TestStationUpdate_Apply(t *testing.T) {
	zero := 0
	name := "Renamed"
	offline := false

	t.Run("occupancy change re-derives status", func(t *testing.T) {
		got := StationUpdate{AvailablePorts: &zero}.Apply(validStation())
		assert.Equal(t, 0, got.AvailablePorts)
		assert.Equal(t, StatusBusy, got.Status)
	})

	t.Run("operational flag re-derives status", func(t *testing.T) {
		got := StationUpdate{IsOperational: &offline}.Apply(validStation())
		assert.Equal(t, StatusOutOfService, got.Status)
	})

	t.Run("explicit status wins", func(t *testing.T) {
		planned := StatusPlanned
		got := StationUpdate{AvailablePorts: &zero, Status: &planned}.Apply(validStation())
		assert.Equal(t, StatusPlanned, got.Status)
	})

	t.Run("explicit occupancy status cannot contradict ports", func(t *testing.T) {
		available := StatusAvailable
		got := StationUpdate{AvailablePorts: &zero, Status: &available}.Apply(validStation())
		assert.Equal(t, StatusBusy, got.Status)
	})

	t.Run("explicit out of service", func(t *testing.T) {
		down := StatusOutOfService
		got := StationUpdate{Status: &down}.Apply(validStation())
		assert.Equal(t, StatusOutOfService, got.Status)
	})

	t.Run("planned station stays planned when ports change", func(t *testing.T) {
		s := validStation()
		s.Status = StatusPlanned
		got := StationUpdate{AvailablePorts: &zero}.Apply(s)
		assert.Equal(t, StatusPlanned, got.Status)
	})

	t.Run("temporarily unavailable is kept", func(t *testing.T) {
		s := validStation()
		s.Status = StatusTemporarilyUnavailable
		two := 2
		got := StationUpdate{TotalPorts: &two}.Apply(s)
		assert.Equal(t, StatusTemporarilyUnavailable, got.Status)
	})

	t.Run("occupancy status reopens a planned station", func(t *testing.T) {
		s := validStation()
		s.Status = StatusPlanned
		available := StatusAvailable
		got := StationUpdate{Status: &available}.Apply(s)
		assert.Equal(t, StatusPartiallyAvailable, got.Status)
	})

	t.Run("name only keeps status", func(t *testing.T) {
		got := StationUpdate{Name: &name}.Apply(validStation())
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, StatusPartiallyAvailable, got.Status)
	})

	t.Run("connector slice is copied", func(t *testing.T) {
		connectors := []string{"Tesla"}
		got := StationUpdate{ConnectorTypes: &connectors}.Apply(validStation())
		connectors[0] = "changed"
		assert.Equal(t, []string{"Tesla"}, got.ConnectorTypes)
	})
}
