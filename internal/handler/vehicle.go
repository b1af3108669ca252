package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/api"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

// VehicleHandler serves GET and PATCH on the tracked vehicle. Without an id
// path parameter both operate on the current vehicle.
type VehicleHandler struct {
	store store.Store
}

func NewVehicleHandler(st store.Store) *VehicleHandler {
	return &VehicleHandler{store: st}
}

func (h *VehicleHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := request.PathParameters["id"]

	switch request.HTTPMethod {
	case http.MethodGet, "":
		vehicle, err := h.get(ctx, id)
		if err != nil {
			return vehicleError(err)
		}
		return api.Success(api.NewVehicleResponse(vehicle))

	case http.MethodPatch:
		var update models.VehicleUpdate
		dec := json.NewDecoder(bytes.NewReader([]byte(request.Body)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&update); err != nil {
			return api.Error("Invalid request body", http.StatusBadRequest)
		}
		if err := update.Validate(); err != nil {
			return api.Error(err.Error(), http.StatusBadRequest)
		}

		if id == "" {
			current, err := h.store.GetCurrentVehicle(ctx)
			if err != nil {
				return vehicleError(err)
			}
			id = current.ID
		}

		vehicle, err := h.store.UpdateVehicle(ctx, id, update)
		if err != nil {
			return vehicleError(err)
		}
		log.Info().Str("vehicleId", id).Int("batteryLevel", vehicle.BatteryLevel).Msg("Updated vehicle")
		return api.Success(api.NewVehicleResponse(vehicle))

	default:
		return api.Error("Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VehicleHandler) get(ctx context.Context, id string) (models.Vehicle, error) {
	if id == "" {
		return h.store.GetCurrentVehicle(ctx)
	}
	return h.store.GetVehicle(ctx, id)
}

func vehicleError(err error) (events.APIGatewayProxyResponse, error) {
	if errors.Is(err, store.ErrNotFound) {
		return api.Error("Vehicle not found", http.StatusNotFound)
	}
	log.Error().Err(err).Msg("Error accessing vehicle")
	return api.Error("Error accessing vehicle", http.StatusInternalServerError)
}
