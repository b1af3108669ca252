package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// LambdaFunc is the API Gateway proxy handler signature shared by the Lambdas.
type LambdaFunc func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// HTTP adapts a Lambda handler to net/http so the same code can be served locally.
// Only the first value of repeated query parameters is kept, matching API Gateway.
func HTTP(fn LambdaFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "reading body", http.StatusBadRequest)
			return
		}

		request := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			QueryStringParameters: map[string]string{},
			PathParameters:        map[string]string{},
			Headers:               map[string]string{},
			Body:                  string(body),
		}
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				request.QueryStringParameters[k] = v[0]
			}
		}
		for k := range r.Header {
			request.Headers[k] = r.Header.Get(k)
		}
		if id := r.PathValue("id"); id != "" {
			request.PathParameters["id"] = id
		}

		resp, err := fn(r.Context(), request)
		if err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Handler failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			log.Warn().Err(err).Msg("Error writing response")
		}
	})
}

// NewMux routes the station and vehicle handlers the way API Gateway does in production.
func NewMux(stations *StationsHandler, vehicles *VehicleHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /stations", HTTP(stations.HandleRequest))
	mux.Handle("POST /stations", HTTP(stations.HandleRequest))
	mux.Handle("PATCH /stations/{id}", HTTP(stations.HandleRequest))
	mux.Handle("GET /vehicle", HTTP(vehicles.HandleRequest))
	mux.Handle("PATCH /vehicle", HTTP(vehicles.HandleRequest))
	mux.Handle("GET /vehicle/{id}", HTTP(vehicles.HandleRequest))
	mux.Handle("PATCH /vehicle/{id}", HTTP(vehicles.HandleRequest))
	return mux
}
