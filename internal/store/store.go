package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrInvalid  = errors.New("validation failed")
)

// Store persists the tracked vehicles and locally curated charging stations.
type Store interface {
	GetCurrentVehicle(ctx context.Context) (models.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (models.Vehicle, error)
	CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, update models.VehicleUpdate) (models.Vehicle, error)

	ListStations(ctx context.Context) ([]models.Station, error)
	GetChargingStation(ctx context.Context, id string) (models.Station, error)
	CreateChargingStation(ctx context.Context, s models.Station) (models.Station, error)
	UpdateChargingStation(ctx context.Context, id string, update models.StationUpdate) (models.Station, error)
	// NearbyStations returns the stations within radiusMiles of the point, nearest first.
	NearbyStations(ctx context.Context, lat, lon, radiusMiles float64) ([]models.Station, error)
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// prepareVehicle assigns an ID when missing and stamps LastUpdated.
func prepareVehicle(v models.Vehicle, now time.Time) (models.Vehicle, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.LastUpdated = now
	if err := (models.VehicleUpdate{
		Name:            &v.Name,
		BatteryLevel:    &v.BatteryLevel,
		BatteryCapacity: &v.BatteryCapacity,
		Range:           &v.Range,
	}).Validate(); err != nil {
		return v, fmt.Errorf("invalid vehicle: %w: %w", ErrInvalid, err)
	}
	return v, nil
}

// prepareStation assigns a local ID when missing and derives the status if unset.
func prepareStation(s models.Station) (models.Station, error) {
	if s.ID == "" {
		s.ID = models.StationID(models.SourceLocal, uuid.NewString())
	}
	if len(s.ConnectorTypes) == 0 {
		s.ConnectorTypes = []string{models.DefaultConnector}
	}
	if s.Amenities == nil {
		s.Amenities = []string{}
	}
	if s.Status == "" {
		s.Status = models.DeriveStatus(s.IsOperational, s.AvailablePorts, s.TotalPorts, models.ProviderStateUnknown)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid station: %w: %w", ErrInvalid, err)
	}
	return s, nil
}

// withinRadius filters stations to those inside the radius and sorts them nearest first.
// Stations with unusable coordinates are skipped.
func withinRadius(stations []models.Station, lat, lon, radiusMiles float64) []models.Station {
	type candidate struct {
		station  models.Station
		distance float64
	}

	candidates := make([]candidate, 0, len(stations))
	for _, s := range stations {
		sLat, sLon, ok := s.Coordinates()
		if !ok {
			continue
		}
		d := geo.DistanceMiles(lat, lon, sLat, sLon)
		if d <= radiusMiles {
			candidates = append(candidates, candidate{station: s, distance: d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]models.Station, len(candidates))
	for i, c := range candidates {
		out[i] = c.station
	}
	return out
}
