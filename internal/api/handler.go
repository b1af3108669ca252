package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/internal/recommend"
)

const (
	ResponseTypeStations = "stations"
	ResponseTypeVehicle  = "vehicle"
	ResponseTypeError    = "error"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

type StationsResponse struct {
	APIResponse
	Stations       []models.StationWithDistance `json:"stations"`
	Step           string                       `json:"step,omitempty"`
	Recommendation *recommend.Recommendation    `json:"recommendation,omitempty"`
}

type VehicleResponse struct {
	APIResponse
	Vehicle models.Vehicle `json:"vehicle"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewStationsResponse(stations []models.StationWithDistance) *StationsResponse {
	if stations == nil {
		stations = []models.StationWithDistance{}
	}
	return &StationsResponse{
		APIResponse: APIResponse{ResponseType: ResponseTypeStations},
		Stations:    stations,
	}
}

func NewVehicleResponse(v models.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		APIResponse: APIResponse{ResponseType: ResponseTypeVehicle},
		Vehicle:     v,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: ResponseTypeError},
		Error:       message,
	}
}

var defaultHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,PATCH,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

func headers() map[string]string {
	h := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		h[k] = v
	}
	return h
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}
