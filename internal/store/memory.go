package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

// MemoryStore keeps everything in process memory. Listing preserves insertion order.
type MemoryStore struct {
	mu               sync.RWMutex
	currentVehicleID string
	vehicles         map[string]models.Vehicle
	stations         map[string]models.Station
	stationOrder     []string
	clock            clock
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(currentVehicleID string, data Dataset) *MemoryStore {
	if currentVehicleID == "" {
		currentVehicleID = DefaultVehicleID
	}
	m := &MemoryStore{
		currentVehicleID: currentVehicleID,
		vehicles:         make(map[string]models.Vehicle, len(data.Vehicles)),
		stations:         make(map[string]models.Station, len(data.Stations)),
		clock:            systemClock{},
	}
	for _, v := range data.Vehicles {
		m.vehicles[v.ID] = v
	}
	for _, s := range data.Stations {
		if _, exists := m.stations[s.ID]; !exists {
			m.stationOrder = append(m.stationOrder, s.ID)
		}
		m.stations[s.ID] = s
	}
	return m
}

func (m *MemoryStore) GetCurrentVehicle(ctx context.Context) (models.Vehicle, error) {
	return m.GetVehicle(ctx, m.currentVehicleID)
}

func (m *MemoryStore) GetVehicle(_ context.Context, id string) (models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vehicles[id]
	if !ok {
		return models.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return v, nil
}

func (m *MemoryStore) CreateVehicle(_ context.Context, v models.Vehicle) (models.Vehicle, error) {
	v, err := prepareVehicle(v, m.clock.Now())
	if err != nil {
		return models.Vehicle{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.vehicles[v.ID]; exists {
		return models.Vehicle{}, fmt.Errorf("vehicle %s: %w", v.ID, ErrConflict)
	}
	m.vehicles[v.ID] = v
	return v, nil
}

func (m *MemoryStore) UpdateVehicle(_ context.Context, id string, update models.VehicleUpdate) (models.Vehicle, error) {
	if err := update.Validate(); err != nil {
		return models.Vehicle{}, fmt.Errorf("invalid vehicle update: %w: %w", ErrInvalid, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vehicles[id]
	if !ok {
		return models.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	v = update.Apply(v, m.clock.Now())
	m.vehicles[id] = v
	return v, nil
}

func (m *MemoryStore) ListStations(_ context.Context) ([]models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Station, 0, len(m.stationOrder))
	for _, id := range m.stationOrder {
		out = append(out, m.stations[id])
	}
	return out, nil
}

func (m *MemoryStore) GetChargingStation(_ context.Context, id string) (models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stations[id]
	if !ok {
		return models.Station{}, fmt.Errorf("station %s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (m *MemoryStore) CreateChargingStation(_ context.Context, s models.Station) (models.Station, error) {
	s, err := prepareStation(s)
	if err != nil {
		return models.Station{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.stations[s.ID]; exists {
		return models.Station{}, fmt.Errorf("station %s: %w", s.ID, ErrConflict)
	}
	m.stations[s.ID] = s
	m.stationOrder = append(m.stationOrder, s.ID)
	return s, nil
}

func (m *MemoryStore) UpdateChargingStation(_ context.Context, id string, update models.StationUpdate) (models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stations[id]
	if !ok {
		return models.Station{}, fmt.Errorf("station %s: %w", id, ErrNotFound)
	}
	updated := update.Apply(s)
	if err := updated.Validate(); err != nil {
		return models.Station{}, fmt.Errorf("invalid station update: %w: %w", ErrInvalid, err)
	}
	m.stations[id] = updated
	return updated, nil
}

func (m *MemoryStore) NearbyStations(ctx context.Context, lat, lon, radiusMiles float64) ([]models.Station, error) {
	stations, err := m.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	return withinRadius(stations, lat, lon, radiusMiles), nil
}

// Snapshot returns the current content, e.g. for uploading as a seed.
func (m *MemoryStore) Snapshot() Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := Dataset{
		Vehicles: make([]models.Vehicle, 0, len(m.vehicles)),
		Stations: make([]models.Station, 0, len(m.stationOrder)),
	}
	for _, v := range m.vehicles {
		data.Vehicles = append(data.Vehicles, v)
	}
	for _, id := range m.stationOrder {
		data.Stations = append(data.Stations, m.stations[id])
	}
	return data
}
