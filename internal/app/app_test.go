package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeway/backend-go/internal/aggregator"
	"github.com/bbernstein/chargeway/backend-go/internal/config"
	"github.com/bbernstein/chargeway/backend-go/internal/metrics"
	"github.com/bbernstein/chargeway/backend-go/internal/provider"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

type mockS3Client struct {
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObjectFunc(ctx, params, optFns...)
}

func (m *mockS3Client) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func s3Returning(body string, err error) *mockS3Client {
	return &mockS3Client{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			if err != nil {
				return nil, err
			}
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
		},
	}
}

func TestNew_DefaultSampleData(t *testing.T) {
	a, err := New(context.Background(), config.New())
	require.NoError(t, err)

	assert.IsType(t, &store.MemoryStore{}, a.Store)
	assert.IsType(t, metrics.Nop{}, a.Metrics)

	v, err := a.Store.GetCurrentVehicle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.DefaultVehicleID, v.ID)
}

func TestNew_SeedFromS3(t *testing.T) {
	seed := `{"vehicles":[{"id":"car-1","name":"Test Car","batteryLevel":80,"batteryCapacity":75,"range":200}],"stations":[],"lastUpdated":1,"ttl":0}`
	cfg := config.New(config.WithSeed("seed-bucket", ""), config.WithCurrentVehicle("car-1"))

	a, err := New(context.Background(), cfg, WithS3Client(s3Returning(seed, nil)))
	require.NoError(t, err)

	v, err := a.Store.GetCurrentVehicle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test Car", v.Name)

	stations, err := a.Store.ListStations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestNew_MissingSeedFallsBack(t *testing.T) {
	cfg := config.New(config.WithSeed("seed-bucket", ""))

	a, err := New(context.Background(), cfg, WithS3Client(s3Returning("", &types.NoSuchKey{})))
	require.NoError(t, err)

	stations, err := a.Store.ListStations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 4)
}

func TestNew_SeedError(t *testing.T) {
	cfg := config.New(config.WithSeed("seed-bucket", ""))

	_, err := New(context.Background(), cfg, WithS3Client(s3Returning("", errors.New("access denied"))))
	assert.ErrorContains(t, err, "loading seed")
}

func TestNew_DynamoBackend(t *testing.T) {
	cfg := config.New(config.WithStore(config.StoreBackendDynamo, "", ""))

	a, err := New(context.Background(), cfg, WithDynamoClient(dynamodb.New(dynamodb.Options{Region: "us-west-2"})))
	require.NoError(t, err)

	assert.IsType(t, &store.DynamoStore{}, a.Store)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := config.New(config.WithStore("postgres", "", ""))

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown store backend "postgres"`)
}

func TestNew_InjectedStoreAndMetrics(t *testing.T) {
	injected := store.NewMemoryStore("", store.Dataset{})
	reg := prometheus.NewRegistry()

	a, err := New(context.Background(), config.New(), WithStore(injected), WithRegisterer(reg))
	require.NoError(t, err)

	assert.Same(t, injected, a.Store)
	assert.IsType(t, &metrics.PromRecorder{}, a.Metrics)

	// Building a second app against the same registry reuses the collectors.
	_, err = New(context.Background(), config.New(), WithStore(injected), WithRegisterer(reg))
	assert.NoError(t, err)
}

func TestNewProviders(t *testing.T) {
	cached := config.New()
	primary, secondary, err := NewProviders(cached)
	require.NoError(t, err)
	assert.IsType(t, &provider.Cached{}, primary)
	assert.IsType(t, &provider.Cached{}, secondary)
	assert.Equal(t, "nrel", primary.Name())
	assert.Equal(t, "ocm", secondary.Name())

	cacheConfig := config.DefaultCacheConfig()
	cacheConfig.EnableLRUCache = false
	primary, secondary, err = NewProviders(config.New(config.WithCacheConfig(cacheConfig)))
	require.NoError(t, err)
	assert.IsType(t, &provider.NREL{}, primary)
	assert.IsType(t, &provider.OCM{}, secondary)
}

func TestAggregatorEndToEnd(t *testing.T) {
	nrel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearest.json", r.URL.Path)
		assert.Equal(t, "chargeway-backend/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"fuel_stations":[{"id":1,"station_name":"Pike Place","latitude":47.609,"longitude":-122.342,"ev_dc_fast_num":2,"ev_connector_types":["J1772COMBO"],"status_code":"E","access_days_time":"24 hours daily"}]}`))
	}))
	defer nrel.Close()

	var ocmCalls atomic.Int32
	ocm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ocmCalls.Add(1)
		_, _ = w.Write([]byte(`[{"ID":5,"OperatorInfo":{"Title":"Pod Point"},"AddressInfo":{"Title":"Soho","Latitude":51.51,"Longitude":-0.13,"Country":{"Title":"United Kingdom"}},"Connections":[{"ConnectionType":{"Title":"Type 2 (Socket Only)"},"PowerKW":22,"Quantity":2}],"StatusType":{"Title":"Operational","IsOperational":true}}]`))
	}))
	defer ocm.Close()

	cfg := config.New(
		config.WithNREL(nrel.URL, "test-key"),
		config.WithOCM(ocm.URL, ""),
		config.WithProviderTimeout(2*time.Second),
	)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	seattle := a.Aggregator.FindNearby(context.Background(), aggregator.Request{Latitude: 47.6062, Longitude: -122.3321})
	assert.Equal(t, aggregator.StepPrimary, seattle.Step)
	require.Len(t, seattle.Stations, 1)
	assert.Equal(t, "nrel-1", seattle.Stations[0].ID)
	assert.Zero(t, ocmCalls.Load())

	london := a.Aggregator.FindNearby(context.Background(), aggregator.Request{Latitude: 51.5074, Longitude: -0.1278})
	assert.Equal(t, aggregator.StepSecondary, london.Step)
	require.Len(t, london.Stations, 1)
	assert.Equal(t, "ocm-5", london.Stations[0].ID)
	assert.Equal(t, int32(1), ocmCalls.Load())
}
