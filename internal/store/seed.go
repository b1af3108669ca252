package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

const DefaultVehicleID = "default-vehicle"

// Dataset is the initial content of a store.
type Dataset struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Stations []models.Station `json:"stations"`
}

// DefaultDataset is a small Seattle sample: one vehicle running low and four stations downtown.
func DefaultDataset(now time.Time) Dataset {
	station := func(n, name, address, lat, lon string, total, available int, powerKw float64, price string,
		connectors, amenities []string, access24h bool, network string) models.Station {
		return models.Station{
			ID:              models.StationID(models.SourceLocal, n),
			Name:            name,
			Address:         address,
			Latitude:        lat,
			Longitude:       lon,
			TotalPorts:      total,
			AvailablePorts:  available,
			PowerKw:         powerKw,
			PricePerKwh:     price,
			ConnectorTypes:  connectors,
			Amenities:       amenities,
			IsOperational:   true,
			Access24h:       access24h,
			NetworkProvider: network,
			Status:          models.DeriveStatus(true, available, total, models.ProviderStateOperational),
		}
	}

	return Dataset{
		Vehicles: []models.Vehicle{{
			ID:              DefaultVehicleID,
			Name:            "Tesla Model Y",
			BatteryLevel:    25,
			BatteryCapacity: 100,
			Range:           47,
			Location:        "Downtown Seattle",
			Latitude:        "47.6062",
			Longitude:       "-122.3321",
			IsConnected:     true,
			LastUpdated:     now,
		}},
		Stations: []models.Station{
			station("1", "Tesla Supercharger", "1234 Pine Street, Seattle, WA 98101", "47.6118", "-122.3236",
				8, 6, 150, "$0.42", []string{"Tesla", "CCS"},
				[]string{"24/7 Access", "Covered Parking", "Restrooms", "WiFi Available"}, true, "Tesla"),
			station("2", "EVgo Fast Charging", "567 2nd Avenue, Seattle, WA 98104", "47.6042", "-122.3310",
				4, 1, 100, "$0.35", []string{"CCS", "CHAdeMO"},
				[]string{"24/7 Access", "Restrooms"}, true, "EVgo"),
			station("3", "ChargePoint Network", "890 Union Street, Seattle, WA 98101", "47.6097", "-122.3331",
				6, 0, 50, "$0.28", []string{"Type 2", "CCS"},
				[]string{"Covered Parking", "WiFi Available", models.AmenityFreeParking}, false, "ChargePoint"),
			station("4", "Electrify America", "1010 3rd Avenue, Seattle, WA 98154", "47.5999", "-122.3284",
				6, 4, 350, "$0.48", []string{"CCS", "CHAdeMO"},
				[]string{"24/7 Access", "Covered Parking", "Restrooms", "WiFi Available"}, true, "Electrify America"),
		},
	}
}

// S3Client defines the S3 operations the seed loader needs
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type seedRecord struct {
	Dataset
	LastUpdated int64 `json:"lastUpdated"`
	TTL         int64 `json:"ttl"`
}

// S3Seed keeps a Dataset snapshot in S3 so every instance starts from the same data.
type S3Seed struct {
	client S3Client
	bucket string
	key    string
	ttl    time.Duration
	clock  clock
}

func NewS3Seed(client S3Client, bucket, key string, ttl time.Duration) *S3Seed {
	return &S3Seed{
		client: client,
		bucket: bucket,
		key:    key,
		ttl:    ttl,
		clock:  systemClock{},
	}
}

// Load returns the stored dataset, or ErrNotFound when it is missing or expired.
func (s *S3Seed) Load(ctx context.Context) (Dataset, error) {
	if s.bucket == "" {
		return Dataset{}, fmt.Errorf("empty bucket name")
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return Dataset{}, ErrNotFound
		}
		return Dataset{}, fmt.Errorf("getting seed from S3: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var record seedRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return Dataset{}, fmt.Errorf("decoding seed record: %w", err)
	}

	if record.TTL > 0 && s.clock.Now().Unix() > record.TTL {
		log.Debug().Str("key", s.key).Msg("Seed snapshot expired")
		return Dataset{}, ErrNotFound
	}

	return record.Dataset, nil
}

func (s *S3Seed) Upload(ctx context.Context, data Dataset) error {
	if s.bucket == "" {
		return fmt.Errorf("empty bucket name")
	}

	now := s.clock.Now().Unix()
	record := seedRecord{
		Dataset:     data,
		LastUpdated: now,
		TTL:         now + int64(s.ttl.Seconds()),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("encoding seed record: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("saving seed to S3: %w", err)
	}

	log.Debug().
		Int("vehicles", len(data.Vehicles)).
		Int("stations", len(data.Stations)).
		Msg("Uploaded seed snapshot to S3")
	return nil
}
