package provider

import (
	"context"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

// Provider fetches stations near a point from one upstream source.
// FetchNearby never fails: upstream problems are logged and yield an empty slice,
// so callers can treat "no stations" and "provider down" the same way.
// The radius unit is provider specific (miles for NREL, kilometres for OCM).
type Provider interface {
	Name() string
	FetchNearby(ctx context.Context, lat, lon, radius float64, limit int) []models.Station
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	ProviderName string
	Fetch        func(ctx context.Context, lat, lon, radius float64, limit int) []models.Station
}

func (f Func) Name() string {
	return f.ProviderName
}

func (f Func) FetchNearby(ctx context.Context, lat, lon, radius float64, limit int) []models.Station {
	return f.Fetch(ctx, lat, lon, radius, limit)
}

// finalize fills in the fields shared by every adapter and checks the result.
func finalize(s models.Station, state models.ProviderState, availability AvailabilityEstimator) (models.Station, error) {
	if s.TotalPorts <= 0 {
		s.TotalPorts = 1
	}
	if s.IsOperational {
		s.AvailablePorts = availability.Estimate(s.TotalPorts)
	} else {
		s.AvailablePorts = 0
	}
	if len(s.ConnectorTypes) == 0 {
		s.ConnectorTypes = []string{models.DefaultConnector}
	}
	if s.Amenities == nil {
		s.Amenities = []string{}
	}
	s.Status = models.DeriveStatus(s.IsOperational, s.AvailablePorts, s.TotalPorts, state)

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
