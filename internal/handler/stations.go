package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/aggregator"
	"github.com/bbernstein/chargeway/backend-go/internal/api"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/internal/ranking"
	"github.com/bbernstein/chargeway/backend-go/internal/recommend"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

// StepLocal marks results served from the record store instead of the providers.
const StepLocal = "local"

// Searcher finds stations near a point; *aggregator.Aggregator is the live implementation.
type Searcher interface {
	FindNearby(ctx context.Context, req aggregator.Request) aggregator.Result
}

type StationsHandler struct {
	searcher      Searcher
	store         store.Store
	defaultRadius float64
	defaultLimit  int
}

func NewStationsHandler(searcher Searcher, st store.Store, defaultRadiusMiles float64, defaultLimit int) *StationsHandler {
	return &StationsHandler{
		searcher:      searcher,
		store:         st,
		defaultRadius: defaultRadiusMiles,
		defaultLimit:  defaultLimit,
	}
}

// HandleRequest serves station search and lookup on GET, creates a local station
// on POST and edits one on PATCH /stations/{id}.
func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.HTTPMethod {
	case http.MethodGet, "":
		return h.search(ctx, request.QueryStringParameters)
	case http.MethodPost:
		return h.create(ctx, request.Body)
	case http.MethodPatch:
		id := request.PathParameters["id"]
		if id == "" {
			return api.Error("Station id is required", http.StatusBadRequest)
		}
		return h.update(ctx, id, request.Body)
	default:
		return api.Error("Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StationsHandler) search(ctx context.Context, params map[string]string) (events.APIGatewayProxyResponse, error) {
	// Check if we're looking up by station ID or coordinates
	if stationID, ok := params["stationId"]; ok {
		return h.lookup(ctx, stationID)
	}

	req, err := api.ParseSearchRequest(params)
	if err != nil {
		return badRequest(err)
	}

	var stations []models.Station
	step := StepLocal
	switch {
	case req.ListAll:
		stations, err = h.store.ListStations(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error listing local stations")
			return api.Error("Error finding stations", http.StatusInternalServerError)
		}
	case req.Source == api.SourceLocal:
		radius := h.defaultRadius
		if req.RadiusMiles != nil {
			radius = *req.RadiusMiles
		}
		stations, err = h.store.NearbyStations(ctx, req.Latitude, req.Longitude, radius)
		if err != nil {
			log.Error().Err(err).Msg("Error listing local stations")
			return api.Error("Error finding stations", http.StatusInternalServerError)
		}
	default:
		result := h.searcher.FindNearby(ctx, aggregator.Request{
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			RadiusMiles: req.RadiusMiles,
			Limit:       req.Limit,
		})
		stations, step = result.Stations, result.Step
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}
	ranked := ranking.Limit(ranking.Apply(stations, req.Filters, req.Origin()), limit)

	resp := api.NewStationsResponse(ranked)
	resp.Step = step

	if req.Recommend {
		vehicle, err := h.store.GetCurrentVehicle(ctx)
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Warn().Msg("No current vehicle, skipping recommendation")
		case err != nil:
			log.Error().Err(err).Msg("Error loading current vehicle")
			return api.Error("Error loading vehicle", http.StatusInternalServerError)
		default:
			rec := recommend.For(vehicle, ranked)
			resp.Recommendation = &rec
		}
	}

	log.Debug().
		Str("source", req.Source).
		Str("step", step).
		Int("count", len(ranked)).
		Msg("Resolved station search")

	return api.Success(resp)
}

func (h *StationsHandler) lookup(ctx context.Context, stationID string) (events.APIGatewayProxyResponse, error) {
	station, err := h.store.GetChargingStation(ctx, stationID)
	if errors.Is(err, store.ErrNotFound) {
		return api.Error("Station not found", http.StatusNotFound)
	}
	if err != nil {
		log.Error().Err(err).Str("stationId", stationID).Msg("Error finding station")
		return api.Error("Error finding station", http.StatusInternalServerError)
	}
	return api.Success(api.NewStationsResponse([]models.StationWithDistance{{Station: station}}))
}

func (h *StationsHandler) create(ctx context.Context, body string) (events.APIGatewayProxyResponse, error) {
	var station models.Station
	if err := decodeStrict(body, &station); err != nil {
		return api.Error("Invalid request body", http.StatusBadRequest)
	}

	created, err := h.store.CreateChargingStation(ctx, station)
	if err != nil {
		return stationError(err, station.ID)
	}
	log.Info().Str("stationId", created.ID).Msg("Created station")
	return api.Success(api.NewStationsResponse([]models.StationWithDistance{{Station: created}}))
}

func (h *StationsHandler) update(ctx context.Context, id, body string) (events.APIGatewayProxyResponse, error) {
	var update models.StationUpdate
	if err := decodeStrict(body, &update); err != nil {
		return api.Error("Invalid request body", http.StatusBadRequest)
	}

	station, err := h.store.UpdateChargingStation(ctx, id, update)
	if err != nil {
		return stationError(err, id)
	}
	log.Info().
		Str("stationId", id).
		Int("availablePorts", station.AvailablePorts).
		Str("status", string(station.Status)).
		Msg("Updated station")
	return api.Success(api.NewStationsResponse([]models.StationWithDistance{{Station: station}}))
}

func decodeStrict(body string, dst any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func stationError(err error, id string) (events.APIGatewayProxyResponse, error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return api.Error("Station not found", http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		return api.Error("Station already exists", http.StatusConflict)
	case errors.Is(err, store.ErrInvalid):
		return api.Error(err.Error(), http.StatusBadRequest)
	}
	log.Error().Err(err).Str("stationId", id).Msg("Error saving station")
	return api.Error("Error saving station", http.StatusInternalServerError)
}

func badRequest(err error) (events.APIGatewayProxyResponse, error) {
	var invalidCoordErr api.InvalidCoordinatesError
	var invalidParamErr api.InvalidParameterError
	if errors.As(err, &invalidCoordErr) || errors.As(err, &invalidParamErr) {
		return api.Error(err.Error(), http.StatusBadRequest)
	}
	return api.Error("Invalid parameters", http.StatusBadRequest)
}
