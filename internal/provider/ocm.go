package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/pkg/http/client"
)

const ocmName = "ocm"

type ocmConnection struct {
	ConnectionType struct {
		Title string `json:"Title"`
	} `json:"ConnectionType"`
	PowerKW  *float64 `json:"PowerKW"`
	Amps     *float64 `json:"Amps"`
	Voltage  *float64 `json:"Voltage"`
	Quantity *int     `json:"Quantity"`
}

type ocmUsageType struct {
	Title                string `json:"Title"`
	IsPayAtLocation      *bool  `json:"IsPayAtLocation"`
	IsMembershipRequired *bool  `json:"IsMembershipRequired"`
}

func (u *ocmUsageType) membershipRequired() bool {
	return u.IsMembershipRequired != nil && *u.IsMembershipRequired
}

type ocmStatusType struct {
	Title         string `json:"Title"`
	IsOperational *bool  `json:"IsOperational"`
}

type ocmStation struct {
	ID           int `json:"ID"`
	DataProvider *struct {
		Title string `json:"Title"`
	} `json:"DataProvider"`
	OperatorInfo *struct {
		Title string `json:"Title"`
	} `json:"OperatorInfo"`
	AddressInfo struct {
		Title           string  `json:"Title"`
		AddressLine1    string  `json:"AddressLine1"`
		AddressLine2    string  `json:"AddressLine2"`
		Town            string  `json:"Town"`
		StateOrProvince string  `json:"StateOrProvince"`
		Postcode        string  `json:"Postcode"`
		Latitude        float64 `json:"Latitude"`
		Longitude       float64 `json:"Longitude"`
		Country         *struct {
			Title string `json:"Title"`
		} `json:"Country"`
	} `json:"AddressInfo"`
	Connections        []ocmConnection `json:"Connections"`
	NumberOfPoints     *int            `json:"NumberOfPoints"`
	StatusType         *ocmStatusType  `json:"StatusType"`
	UsageType          *ocmUsageType   `json:"UsageType"`
	IsRecentlyVerified bool            `json:"IsRecentlyVerified"`
}

func (s ocmStation) country() string {
	if s.AddressInfo.Country == nil {
		return ""
	}
	return s.AddressInfo.Country.Title
}

// OCM queries the Open Charge Map POI API. Radius is in kilometres.
// The API key is optional.
type OCM struct {
	httpClient   client.Interface
	apiKey       string
	availability AvailabilityEstimator
}

var _ Provider = (*OCM)(nil)

func NewOCM(httpClient client.Interface, apiKey string, availability AvailabilityEstimator) *OCM {
	return &OCM{
		httpClient:   httpClient,
		apiKey:       apiKey,
		availability: availability,
	}
}

func (o *OCM) Name() string {
	return ocmName
}

func (o *OCM) FetchNearby(ctx context.Context, lat, lon, radius float64, limit int) []models.Station {
	query := url.Values{
		"output":          {"json"},
		"latitude":        {geo.FormatCoordinate(lat)},
		"longitude":       {geo.FormatCoordinate(lon)},
		"distance":        {strconv.FormatFloat(radius, 'f', -1, 64)},
		"distanceunit":    {"km"},
		"maxresults":      {strconv.Itoa(limit)},
		"compact":         {"false"},
		"verbose":         {"false"},
		"includecomments": {"false"},
	}
	if o.apiKey != "" {
		query.Set("key", o.apiKey)
	}

	var resp []ocmStation
	if err := client.GetJSON(ctx, o.httpClient, "/poi", query, &resp); err != nil {
		log.Error().Err(wrapAPIError(ocmName, err)).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("Error fetching Open Charge Map stations")
		return []models.Station{}
	}

	stations := make([]models.Station, 0, len(resp))
	for _, raw := range resp {
		station, err := o.transform(raw)
		if err != nil {
			log.Warn().Err(err).Int("ocm_id", raw.ID).Msg("Skipping invalid Open Charge Map station")
			continue
		}
		stations = append(stations, station)
	}

	log.Debug().Int("count", len(stations)).Msg("Fetched Open Charge Map stations")

	return stations
}

func (o *OCM) transform(raw ocmStation) (models.Station, error) {
	operational, state := ocmState(raw.StatusType)
	powerKw := ocmPower(raw.Connections)
	price := ocmPrice(raw.UsageType, raw.country(), powerKw)

	titles := make([]string, 0, len(raw.Connections))
	for _, c := range raw.Connections {
		titles = append(titles, c.ConnectionType.Title)
	}

	station := models.Station{
		ID:              models.StationID(models.SourceOCM, strconv.Itoa(raw.ID)),
		Name:            ocmStationName(raw),
		Address:         ocmAddress(raw),
		Latitude:        geo.FormatCoordinate(raw.AddressInfo.Latitude),
		Longitude:       geo.FormatCoordinate(raw.AddressInfo.Longitude),
		TotalPorts:      ocmPorts(raw),
		PowerKw:         powerKw,
		PricePerKwh:     price,
		ConnectorTypes:  normalizeConnectors(titles, ocmConnectors),
		Amenities:       ocmAmenities(raw, operational, price),
		IsOperational:   operational,
		Access24h:       operational && (raw.UsageType == nil || !raw.UsageType.membershipRequired()),
		NetworkProvider: ocmNetwork(raw),
	}

	return finalize(station, state, o.availability)
}

// ocmState treats a missing status as operational, like the map itself does.
func ocmState(st *ocmStatusType) (bool, models.ProviderState) {
	if st == nil {
		return true, models.ProviderStateOperational
	}
	title := strings.ToLower(st.Title)
	switch {
	case strings.Contains(title, "planned"):
		return false, models.ProviderStatePlanned
	case strings.Contains(title, "temporarily"):
		return false, models.ProviderStateTemporarilyUnavailable
	case st.IsOperational != nil && !*st.IsOperational:
		return false, models.ProviderStateOutOfService
	default:
		return true, models.ProviderStateOperational
	}
}

func ocmPorts(raw ocmStation) int {
	total := 0
	for _, c := range raw.Connections {
		if c.Quantity != nil && *c.Quantity > 0 {
			total += *c.Quantity
		} else {
			total++
		}
	}
	if total == 0 && raw.NumberOfPoints != nil {
		total = *raw.NumberOfPoints
	}
	if total <= 0 {
		return 1
	}
	return total
}

func ocmStationName(raw ocmStation) string {
	if raw.AddressInfo.Title != "" {
		return raw.AddressInfo.Title
	}
	if raw.OperatorInfo != nil && raw.OperatorInfo.Title != "" {
		return raw.OperatorInfo.Title + " Charging Station"
	}
	return "EV Charging Station"
}

func ocmNetwork(raw ocmStation) string {
	if raw.OperatorInfo != nil && raw.OperatorInfo.Title != "" {
		return raw.OperatorInfo.Title
	}
	if raw.DataProvider != nil && raw.DataProvider.Title != "" {
		return raw.DataProvider.Title
	}
	return "Independent"
}

func ocmAddress(raw ocmStation) string {
	a := raw.AddressInfo
	return strings.Join(nonEmpty(a.AddressLine1, a.AddressLine2, a.Town, a.StateOrProvince, a.Postcode, raw.country()), ", ")
}
