package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/app"
	"github.com/bbernstein/chargeway/backend-go/internal/config"
	"github.com/bbernstein/chargeway/backend-go/internal/handler"
)

var (
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
	initHandler     = defaultInitHandler
	lambdaStart     = lambda.Start
)

func defaultInitHandler(ctx context.Context) (*handler.StationsHandler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	a, err := app.New(ctx, cfg, app.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		return nil, fmt.Errorf("building application: %w", err)
	}

	log.Info().
		Str("env", cfg.Environment).
		Str("store", cfg.StoreBackend).
		Bool("nrelEnabled", cfg.NRELAPIKey != "").
		Msg("Stations service configured")

	return handler.NewStationsHandler(a.Aggregator, a.Store, cfg.DefaultRadiusMiles, cfg.ResultLimit), nil
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		var err error
		stationsHandler, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
		}
	})
	return initError
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if stationsHandler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"responseType":"error","error":"Handler not initialized"}`,
		}, fmt.Errorf("handler not initialized")
	}

	log.Info().Msg("Handling Lambda request")
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	lambdaStart(handleRequest)
}
