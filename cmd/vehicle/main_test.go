package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeway/backend-go/internal/handler"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

func resetService(t *testing.T, init func(ctx context.Context) (*handler.VehicleHandler, error)) {
	t.Helper()
	originalInit := initHandler
	setupOnce = sync.Once{}
	vehicleHandler = nil
	initHandler = init
	t.Cleanup(func() {
		initHandler = originalInit
		setupOnce = sync.Once{}
		vehicleHandler = nil
	})
}

func TestHandleRequest_NotInitialized(t *testing.T) {
	resetService(t, defaultInitHandler)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{})
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestInitializeService_Error(t *testing.T) {
	resetService(t, func(ctx context.Context) (*handler.VehicleHandler, error) {
		return nil, errors.New("no credentials")
	})

	assert.ErrorContains(t, InitializeService(), "no credentials")
}

func TestHandleRequest(t *testing.T) {
	st := store.NewMemoryStore("", store.DefaultDataset(time.Now()))
	resetService(t, func(ctx context.Context) (*handler.VehicleHandler, error) {
		return handler.NewVehicleHandler(st), nil
	})
	require.NoError(t, InitializeService())

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPatch,
		Body:       `{"batteryLevel": 42}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	v, err := st.GetCurrentVehicle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v.BatteryLevel)

	resp, err = handleRequest(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Contains(t, resp.Body, `"batteryLevel":42`)
}

func TestMainStartsLambda(t *testing.T) {
	resetService(t, func(ctx context.Context) (*handler.VehicleHandler, error) {
		return handler.NewVehicleHandler(store.NewMemoryStore("", store.Dataset{})), nil
	})

	originalStart := lambdaStart
	t.Cleanup(func() { lambdaStart = originalStart })

	started := false
	lambdaStart = func(interface{}) { started = true }

	main()

	assert.True(t, started)
}
