package provider

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/pkg/http/client"
)

const nrelName = "nrel"

type nrelStation struct {
	ID                int      `json:"id"`
	StationName       string   `json:"station_name"`
	StreetAddress     string   `json:"street_address"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Zip               string   `json:"zip"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Level1Count       int      `json:"ev_level1_evse_num"`
	Level2Count       int      `json:"ev_level2_evse_num"`
	DCFastCount       int      `json:"ev_dc_fast_num"`
	ConnectorTypes    []string `json:"ev_connector_types"`
	Pricing           string   `json:"ev_pricing"`
	AccessDaysTime    string   `json:"access_days_time"`
	CardsAccepted     string   `json:"cards_accepted"`
	Network           string   `json:"ev_network"`
	StatusCode        string   `json:"status_code"`
	FacilityType      string   `json:"facility_type"`
	WorkplaceCharging bool     `json:"ev_workplace_charging"`
}

type nrelResponse struct {
	FuelStations []nrelStation `json:"fuel_stations"`
	TotalResults int           `json:"total_results"`
}

// NREL queries the NREL Alternative Fuel Stations API. Radius is in miles.
type NREL struct {
	httpClient   client.Interface
	apiKey       string
	availability AvailabilityEstimator
}

var _ Provider = (*NREL)(nil)

func NewNREL(httpClient client.Interface, apiKey string, availability AvailabilityEstimator) *NREL {
	return &NREL{
		httpClient:   httpClient,
		apiKey:       apiKey,
		availability: availability,
	}
}

func (n *NREL) Name() string {
	return nrelName
}

func (n *NREL) FetchNearby(ctx context.Context, lat, lon, radius float64, limit int) []models.Station {
	if n.apiKey == "" {
		log.Warn().Msg("No NREL API key configured, skipping provider")
		return []models.Station{}
	}

	query := url.Values{
		"api_key":   {n.apiKey},
		"fuel_type": {"ELEC"},
		"latitude":  {geo.FormatCoordinate(lat)},
		"longitude": {geo.FormatCoordinate(lon)},
		"radius":    {strconv.FormatFloat(radius, 'f', -1, 64)},
		"limit":     {strconv.Itoa(limit)},
		"status":    {"E,P"},
		"access":    {"public"},
	}

	var resp nrelResponse
	if err := client.GetJSON(ctx, n.httpClient, "/nearest.json", query, &resp); err != nil {
		log.Error().Err(wrapAPIError(nrelName, err)).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("Error fetching NREL stations")
		return []models.Station{}
	}

	stations := make([]models.Station, 0, len(resp.FuelStations))
	for _, raw := range resp.FuelStations {
		station, err := n.transform(raw)
		if err != nil {
			log.Warn().Err(err).Int("nrel_id", raw.ID).Msg("Skipping invalid NREL station")
			continue
		}
		stations = append(stations, station)
	}

	log.Debug().
		Int("count", len(stations)).
		Int("total_results", resp.TotalResults).
		Msg("Fetched NREL stations")

	return stations
}

func (n *NREL) transform(raw nrelStation) (models.Station, error) {
	totalPorts := raw.Level1Count + raw.Level2Count + raw.DCFastCount
	powerKw := nrelPower(raw.Level1Count, raw.Level2Count, raw.DCFastCount)
	price := nrelPrice(raw.Pricing, powerKw)
	access24h := nrelAccess24h(raw.AccessDaysTime)
	state := nrelState(raw.StatusCode)

	name := raw.StationName
	if name == "" {
		name = "EV Charging Station"
	}
	network := raw.Network
	if network == "" {
		network = "Independent"
	}

	station := models.Station{
		ID:              models.StationID(models.SourceNREL, strconv.Itoa(raw.ID)),
		Name:            name,
		Address:         nrelAddress(raw),
		Latitude:        geo.FormatCoordinate(raw.Latitude),
		Longitude:       geo.FormatCoordinate(raw.Longitude),
		TotalPorts:      totalPorts,
		PowerKw:         powerKw,
		PricePerKwh:     price,
		ConnectorTypes:  normalizeConnectors(raw.ConnectorTypes, nrelConnectors),
		Amenities:       nrelAmenities(raw, access24h, totalPorts, powerKw, price),
		IsOperational:   state == models.ProviderStateOperational,
		Access24h:       access24h,
		NetworkProvider: network,
	}

	return finalize(station, state, n.availability)
}

func nrelState(code string) models.ProviderState {
	switch strings.ToUpper(code) {
	case "E":
		return models.ProviderStateOperational
	case "P":
		return models.ProviderStatePlanned
	case "T":
		return models.ProviderStateTemporarilyUnavailable
	default:
		return models.ProviderStateUnknown
	}
}

func nrelAccess24h(hours string) bool {
	hours = strings.ToLower(strings.TrimSpace(hours))
	return hours == "" || strings.Contains(hours, "24") || strings.Contains(hours, "daily")
}

func nrelAddress(raw nrelStation) string {
	locality := strings.TrimSpace(strings.Join(nonEmpty(raw.State, raw.Zip), " "))
	return strings.Join(nonEmpty(raw.StreetAddress, raw.City, locality), ", ")
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func wrapAPIError(provider string, err error) error {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{
			Provider:   provider,
			StatusCode: statusErr.StatusCode,
			Message:    truncate(statusErr.Body, 200),
			Err:        err,
		}
	}
	return &APIError{Provider: provider, Message: "request failed", Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
