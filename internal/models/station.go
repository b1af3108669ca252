package models

import (
	"errors"
	"fmt"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
)

type Source string

const (
	SourceNREL  Source = "nrel"
	SourceOCM   Source = "ocm"
	SourceLocal Source = "station"
)

const (
	// DefaultConnector is used when a provider lists no connectors.
	DefaultConnector = "Type 2"

	// FastChargingKw is the power at which a station counts as fast charging.
	FastChargingKw = 100.0

	AmenityFreeParking = "Free Parking"
)

// Station is the provider-agnostic charging station record.
type Station struct {
	ID              string   `json:"id" dynamodbav:"id"`
	Name            string   `json:"name" dynamodbav:"name"`
	Address         string   `json:"address" dynamodbav:"address"`
	Latitude        string   `json:"latitude" dynamodbav:"latitude"`
	Longitude       string   `json:"longitude" dynamodbav:"longitude"`
	TotalPorts      int      `json:"totalPorts" dynamodbav:"totalPorts"`
	AvailablePorts  int      `json:"availablePorts" dynamodbav:"availablePorts"`
	PowerKw         float64  `json:"powerKw" dynamodbav:"powerKw"`
	PricePerKwh     string   `json:"pricePerKwh" dynamodbav:"pricePerKwh"`
	ConnectorTypes  []string `json:"connectorTypes" dynamodbav:"connectorTypes"`
	Amenities       []string `json:"amenities" dynamodbav:"amenities"`
	IsOperational   bool     `json:"isOperational" dynamodbav:"isOperational"`
	Access24h       bool     `json:"access24h" dynamodbav:"access24h"`
	NetworkProvider string   `json:"networkProvider" dynamodbav:"networkProvider"`
	Status          Status   `json:"status" dynamodbav:"status"`
}

// StationWithDistance carries the request-scoped distance from the search origin in miles.
// Distance is nil when it could not be computed.
type StationWithDistance struct {
	Station
	Distance *float64 `json:"distance"`
}

// StationID namespaces a provider-native ID.
func StationID(source Source, nativeID string) string {
	return fmt.Sprintf("%s-%s", source, nativeID)
}

// Coordinates parses the stored decimal-degree strings.
func (s Station) Coordinates() (lat, lon float64, ok bool) {
	lat, okLat := geo.ParseCoordinate(s.Latitude)
	lon, okLon := geo.ParseCoordinate(s.Longitude)
	if !okLat || !okLon || !geo.ValidCoordinate(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// HasConnector reports whether the station offers the canonical connector tag.
func (s Station) HasConnector(connector string) bool {
	for _, c := range s.ConnectorTypes {
		if c == connector {
			return true
		}
	}
	return false
}

// Validate checks the invariants every emitted station must hold.
func (s Station) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if _, _, ok := s.Coordinates(); !ok {
		errs = append(errs, fmt.Errorf("invalid coordinates %q,%q", s.Latitude, s.Longitude))
	}
	if s.TotalPorts < 0 || s.AvailablePorts < 0 || s.AvailablePorts > s.TotalPorts {
		errs = append(errs, fmt.Errorf("invalid ports: %d available of %d", s.AvailablePorts, s.TotalPorts))
	}
	if len(s.ConnectorTypes) == 0 {
		errs = append(errs, errors.New("at least one connector type is required"))
	}
	if !s.Status.Valid() {
		errs = append(errs, fmt.Errorf("invalid status: %q", s.Status))
	}
	return errors.Join(errs...)
}

// StationUpdate is a partial update; nil fields are left untouched.
type StationUpdate struct {
	Name            *string   `json:"name,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Latitude        *string   `json:"latitude,omitempty"`
	Longitude       *string   `json:"longitude,omitempty"`
	TotalPorts      *int      `json:"totalPorts,omitempty"`
	AvailablePorts  *int      `json:"availablePorts,omitempty"`
	PowerKw         *float64  `json:"powerKw,omitempty"`
	PricePerKwh     *string   `json:"pricePerKwh,omitempty"`
	ConnectorTypes  *[]string `json:"connectorTypes,omitempty"`
	Amenities       *[]string `json:"amenities,omitempty"`
	IsOperational   *bool     `json:"isOperational,omitempty"`
	Access24h       *bool     `json:"access24h,omitempty"`
	NetworkProvider *string   `json:"networkProvider,omitempty"`
	Status          *Status   `json:"status,omitempty"`
}

// Apply returns a copy of s with the update applied. When the status, occupancy or
// the operational flag change, the status is re-derived from the ports. A planned or
// temporarily unavailable station keeps that status until an update sets another one,
// and an explicit occupancy status never overrides what the ports say.
func (u StationUpdate) Apply(s Station) Station {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Address != nil {
		s.Address = *u.Address
	}
	if u.Latitude != nil {
		s.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		s.Longitude = *u.Longitude
	}
	if u.TotalPorts != nil {
		s.TotalPorts = *u.TotalPorts
	}
	if u.AvailablePorts != nil {
		s.AvailablePorts = *u.AvailablePorts
	}
	if u.PowerKw != nil {
		s.PowerKw = *u.PowerKw
	}
	if u.PricePerKwh != nil {
		s.PricePerKwh = *u.PricePerKwh
	}
	if u.ConnectorTypes != nil {
		s.ConnectorTypes = append([]string(nil), *u.ConnectorTypes...)
	}
	if u.Amenities != nil {
		s.Amenities = append([]string(nil), *u.Amenities...)
	}
	if u.IsOperational != nil {
		s.IsOperational = *u.IsOperational
	}
	if u.Access24h != nil {
		s.Access24h = *u.Access24h
	}
	if u.NetworkProvider != nil {
		s.NetworkProvider = *u.NetworkProvider
	}

	if u.Status != nil || u.TotalPorts != nil || u.AvailablePorts != nil || u.IsOperational != nil {
		state := lifecycleState(s.Status)
		if u.Status != nil {
			state = lifecycleState(*u.Status)
			if *u.Status == StatusOutOfService {
				state = ProviderStateOutOfService
			}
		}
		s.Status = DeriveStatus(s.IsOperational, s.AvailablePorts, s.TotalPorts, state)
	}
	return s
}

// lifecycleState recovers the provider state a stored status implies. Occupancy
// statuses carry no lifecycle information and are always re-derived from the ports.
func lifecycleState(st Status) ProviderState {
	switch st {
	case StatusPlanned:
		return ProviderStatePlanned
	case StatusTemporarilyUnavailable:
		return ProviderStateTemporarilyUnavailable
	default:
		return ProviderStateOperational
	}
}
