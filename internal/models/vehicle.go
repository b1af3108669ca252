package models

import (
	"errors"
	"fmt"
	"time"
)

// Vehicle is the tracked EV and its last reported battery state.
type Vehicle struct {
	ID              string    `json:"id" dynamodbav:"id"`
	Name            string    `json:"name" dynamodbav:"name"`
	BatteryLevel    int       `json:"batteryLevel" dynamodbav:"batteryLevel"`
	BatteryCapacity int       `json:"batteryCapacity" dynamodbav:"batteryCapacity"`
	Range           int       `json:"range" dynamodbav:"range"` // miles
	Location        string    `json:"location" dynamodbav:"location"`
	Latitude        string    `json:"latitude" dynamodbav:"latitude"`
	Longitude       string    `json:"longitude" dynamodbav:"longitude"`
	IsConnected     bool      `json:"isConnected" dynamodbav:"isConnected"`
	LastUpdated     time.Time `json:"lastUpdated" dynamodbav:"lastUpdated"`
}

// VehicleUpdate is a partial update; nil fields are left untouched.
type VehicleUpdate struct {
	Name            *string `json:"name,omitempty"`
	BatteryLevel    *int    `json:"batteryLevel,omitempty"`
	BatteryCapacity *int    `json:"batteryCapacity,omitempty"`
	Range           *int    `json:"range,omitempty"`
	Location        *string `json:"location,omitempty"`
	Latitude        *string `json:"latitude,omitempty"`
	Longitude       *string `json:"longitude,omitempty"`
	IsConnected     *bool   `json:"isConnected,omitempty"`
}

func (u VehicleUpdate) Validate() error {
	var errs []error
	if u.BatteryLevel != nil && (*u.BatteryLevel < 0 || *u.BatteryLevel > 100) {
		errs = append(errs, fmt.Errorf("batteryLevel must be between 0 and 100, got %d", *u.BatteryLevel))
	}
	if u.BatteryCapacity != nil && *u.BatteryCapacity <= 0 {
		errs = append(errs, fmt.Errorf("batteryCapacity must be positive, got %d", *u.BatteryCapacity))
	}
	if u.Range != nil && *u.Range < 0 {
		errs = append(errs, fmt.Errorf("range must not be negative, got %d", *u.Range))
	}
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	return errors.Join(errs...)
}

// Apply returns a copy of v with the update applied and LastUpdated set to now.
func (u VehicleUpdate) Apply(v Vehicle, now time.Time) Vehicle {
	if u.Name != nil {
		v.Name = *u.Name
	}
	if u.BatteryLevel != nil {
		v.BatteryLevel = *u.BatteryLevel
	}
	if u.BatteryCapacity != nil {
		v.BatteryCapacity = *u.BatteryCapacity
	}
	if u.Range != nil {
		v.Range = *u.Range
	}
	if u.Location != nil {
		v.Location = *u.Location
	}
	if u.Latitude != nil {
		v.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		v.Longitude = *u.Longitude
	}
	if u.IsConnected != nil {
		v.IsConnected = *u.IsConnected
	}
	v.LastUpdated = now
	return v
}
