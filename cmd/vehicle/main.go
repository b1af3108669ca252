package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/app"
	"github.com/bbernstein/chargeway/backend-go/internal/config"
	"github.com/bbernstein/chargeway/backend-go/internal/handler"
)

var (
	vehicleHandler *handler.VehicleHandler
	setupOnce      sync.Once
	initHandler    = defaultInitHandler
	lambdaStart    = lambda.Start
)

func defaultInitHandler(ctx context.Context) (*handler.VehicleHandler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building application: %w", err)
	}
	return handler.NewVehicleHandler(a.Store), nil
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		var err error
		vehicleHandler, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
		}
	})
	return initError
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if vehicleHandler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"responseType":"error","error":"Handler not initialized"}`,
		}, fmt.Errorf("handler not initialized")
	}

	log.Info().Str("method", request.HTTPMethod).Msg("Handling vehicle request")
	return vehicleHandler.HandleRequest(ctx, request)
}

func main() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	lambdaStart(handleRequest)
}
