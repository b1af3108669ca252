package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

// DynamoDB accepts at most 25 items per BatchWriteItem call.
const (
	batchWriteLimit  = 25
	maxBatchAttempts = 5
)

// DynamoDBClient is the subset of the DynamoDB API the store uses.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore keeps vehicles and stations in two DynamoDB tables keyed by "id".
type DynamoStore struct {
	client           DynamoDBClient
	vehicleTable     string
	stationTable     string
	currentVehicleID string
	clock            clock
}

var _ Store = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoDBClient, vehicleTable, stationTable, currentVehicleID string) *DynamoStore {
	if currentVehicleID == "" {
		currentVehicleID = DefaultVehicleID
	}
	return &DynamoStore{
		client:           client,
		vehicleTable:     vehicleTable,
		stationTable:     stationTable,
		currentVehicleID: currentVehicleID,
		clock:            systemClock{},
	}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (d *DynamoStore) getItem(ctx context.Context, table, id string, out any) error {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       idKey(id),
	})
	if err != nil {
		return fmt.Errorf("reading %s from %s: %w", id, table, err)
	}
	if result.Item == nil {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", id, err)
	}
	return nil
}

// putItem writes item; with mustNotExist the write fails with ErrConflict when the id is taken.
func (d *DynamoStore) putItem(ctx context.Context, table, id string, item any, mustNotExist bool) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", id, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}
	if mustNotExist {
		input.ConditionExpression = aws.String("attribute_not_exists(id)")
	}

	if _, err := d.client.PutItem(ctx, input); err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("%s: %w", id, ErrConflict)
		}
		return fmt.Errorf("writing %s to %s: %w", id, table, err)
	}
	return nil
}

func (d *DynamoStore) GetCurrentVehicle(ctx context.Context) (models.Vehicle, error) {
	return d.GetVehicle(ctx, d.currentVehicleID)
}

func (d *DynamoStore) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	var v models.Vehicle
	if err := d.getItem(ctx, d.vehicleTable, id, &v); err != nil {
		return models.Vehicle{}, fmt.Errorf("getting vehicle: %w", err)
	}
	return v, nil
}

func (d *DynamoStore) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	v, err := prepareVehicle(v, d.clock.Now())
	if err != nil {
		return models.Vehicle{}, err
	}
	if err := d.putItem(ctx, d.vehicleTable, v.ID, v, true); err != nil {
		return models.Vehicle{}, fmt.Errorf("saving vehicle: %w", err)
	}
	return v, nil
}

func (d *DynamoStore) UpdateVehicle(ctx context.Context, id string, update models.VehicleUpdate) (models.Vehicle, error) {
	if err := update.Validate(); err != nil {
		return models.Vehicle{}, fmt.Errorf("invalid vehicle update: %w: %w", ErrInvalid, err)
	}

	v, err := d.GetVehicle(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	v = update.Apply(v, d.clock.Now())
	if err := d.putItem(ctx, d.vehicleTable, id, v, false); err != nil {
		return models.Vehicle{}, fmt.Errorf("saving vehicle: %w", err)
	}

	log.Debug().Str("vehicle_id", id).Int("battery", v.BatteryLevel).Msg("Updated vehicle")
	return v, nil
}

func (d *DynamoStore) ListStations(ctx context.Context) ([]models.Station, error) {
	stations := []models.Station{}
	var startKey map[string]types.AttributeValue

	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.stationTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning stations: %w", err)
		}

		var page []models.Station
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling stations: %w", err)
		}
		stations = append(stations, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return stations, nil
}

func (d *DynamoStore) GetChargingStation(ctx context.Context, id string) (models.Station, error) {
	var s models.Station
	if err := d.getItem(ctx, d.stationTable, id, &s); err != nil {
		return models.Station{}, fmt.Errorf("getting station: %w", err)
	}
	return s, nil
}

func (d *DynamoStore) CreateChargingStation(ctx context.Context, s models.Station) (models.Station, error) {
	s, err := prepareStation(s)
	if err != nil {
		return models.Station{}, err
	}
	if err := d.putItem(ctx, d.stationTable, s.ID, s, true); err != nil {
		return models.Station{}, fmt.Errorf("saving station: %w", err)
	}
	return s, nil
}

func (d *DynamoStore) UpdateChargingStation(ctx context.Context, id string, update models.StationUpdate) (models.Station, error) {
	s, err := d.GetChargingStation(ctx, id)
	if err != nil {
		return models.Station{}, err
	}
	updated := update.Apply(s)
	if err := updated.Validate(); err != nil {
		return models.Station{}, fmt.Errorf("invalid station update: %w: %w", ErrInvalid, err)
	}
	if err := d.putItem(ctx, d.stationTable, id, updated, false); err != nil {
		return models.Station{}, fmt.Errorf("saving station: %w", err)
	}
	return updated, nil
}

func (d *DynamoStore) NearbyStations(ctx context.Context, lat, lon, radiusMiles float64) ([]models.Station, error) {
	stations, err := d.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	return withinRadius(stations, lat, lon, radiusMiles), nil
}

// Seed writes a dataset in batches, overwriting records with the same ID.
func (d *DynamoStore) Seed(ctx context.Context, data Dataset) error {
	vehicleRequests := make([]types.WriteRequest, 0, len(data.Vehicles))
	for _, v := range data.Vehicles {
		item, err := attributevalue.MarshalMap(v)
		if err != nil {
			return fmt.Errorf("marshaling vehicle %s: %w", v.ID, err)
		}
		vehicleRequests = append(vehicleRequests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	stationRequests := make([]types.WriteRequest, 0, len(data.Stations))
	for _, s := range data.Stations {
		item, err := attributevalue.MarshalMap(s)
		if err != nil {
			return fmt.Errorf("marshaling station %s: %w", s.ID, err)
		}
		stationRequests = append(stationRequests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	if err := d.batchWrite(ctx, d.vehicleTable, vehicleRequests); err != nil {
		return err
	}
	if err := d.batchWrite(ctx, d.stationTable, stationRequests); err != nil {
		return err
	}

	log.Info().
		Int("vehicles", len(data.Vehicles)).
		Int("stations", len(data.Stations)).
		Msg("Seeded DynamoDB tables")
	return nil
}

func (d *DynamoStore) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += batchWriteLimit {
		end := min(i+batchWriteLimit, len(requests))

		pending := map[string][]types.WriteRequest{table: requests[i:end]}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == maxBatchAttempts {
				return fmt.Errorf("batch writing to %s: %d items left unprocessed", table, len(pending[table]))
			}
			out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch writing to %s: %w", table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}
