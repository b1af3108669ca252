package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeway/backend-go/internal/api"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

func vehicleRequest(method, id, body string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{HTTPMethod: method, Body: body}
	if id != "" {
		req.PathParameters = map[string]string{"id": id}
	}
	return req
}

func decodeVehicle(t *testing.T, resp events.APIGatewayProxyResponse) api.VehicleResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	var body api.VehicleResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, api.ResponseTypeVehicle, body.ResponseType)
	return body
}

func TestVehicleHandler_Get(t *testing.T) {
	h := NewVehicleHandler(newTestStore())

	resp, err := h.HandleRequest(context.Background(), vehicleRequest(http.MethodGet, "", ""))
	require.NoError(t, err)
	body := decodeVehicle(t, resp)
	assert.Equal(t, store.DefaultVehicleID, body.Vehicle.ID)
	assert.Equal(t, 25, body.Vehicle.BatteryLevel)

	resp, err = h.HandleRequest(context.Background(), vehicleRequest(http.MethodGet, store.DefaultVehicleID, ""))
	require.NoError(t, err)
	assert.Equal(t, "Tesla Model Y", decodeVehicle(t, resp).Vehicle.Name)

	resp, err = h.HandleRequest(context.Background(), vehicleRequest(http.MethodGet, "unknown", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVehicleHandler_Patch(t *testing.T) {
	st := newTestStore()
	h := NewVehicleHandler(st)

	resp, err := h.HandleRequest(context.Background(), vehicleRequest(http.MethodPatch, "", `{"batteryLevel": 80, "isConnected": false}`))
	require.NoError(t, err)
	body := decodeVehicle(t, resp)
	assert.Equal(t, 80, body.Vehicle.BatteryLevel)
	assert.False(t, body.Vehicle.IsConnected)
	assert.Equal(t, "Tesla Model Y", body.Vehicle.Name, "untouched fields are kept")

	stored, err := st.GetCurrentVehicle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, stored.BatteryLevel)

	resp, err = h.HandleRequest(context.Background(), vehicleRequest(http.MethodPatch, store.DefaultVehicleID, `{"range": 210}`))
	require.NoError(t, err)
	assert.Equal(t, 210, decodeVehicle(t, resp).Vehicle.Range)
}

func TestVehicleHandler_PatchErrors(t *testing.T) {
	h := NewVehicleHandler(newTestStore())

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"malformed json", "", `{"batteryLevel":`, http.StatusBadRequest},
		{"unknown field", "", `{"speed": 88}`, http.StatusBadRequest},
		{"battery out of range", "", `{"batteryLevel": 150}`, http.StatusBadRequest},
		{"empty name", "", `{"name": ""}`, http.StatusBadRequest},
		{"unknown vehicle", "unknown", `{"batteryLevel": 50}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.HandleRequest(context.Background(), vehicleRequest(http.MethodPatch, tt.id, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestVehicleHandler_MethodNotAllowed(t *testing.T) {
	h := NewVehicleHandler(newTestStore())

	resp, err := h.HandleRequest(context.Background(), vehicleRequest(http.MethodDelete, "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestVehicleHandler_StoreFailure(t *testing.T) {
	h := NewVehicleHandler(failingStore{Store: newTestStore(), err: errors.New("throttled")})

	resp, err := h.HandleRequest(context.Background(), vehicleRequest(http.MethodGet, "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = h.HandleRequest(context.Background(), vehicleRequest(http.MethodPatch, "", `{"batteryLevel": 10}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
