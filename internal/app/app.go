// Package app assembles providers, the aggregator and the record store from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/aggregator"
	"github.com/bbernstein/chargeway/backend-go/internal/config"
	"github.com/bbernstein/chargeway/backend-go/internal/metrics"
	"github.com/bbernstein/chargeway/backend-go/internal/provider"
	"github.com/bbernstein/chargeway/backend-go/internal/store"
	"github.com/bbernstein/chargeway/backend-go/pkg/http/client"
)

const userAgent = "chargeway-backend/1.0"

var timeNow = time.Now

type App struct {
	Config     *config.Config
	Aggregator *aggregator.Aggregator
	Store      store.Store
	Metrics    metrics.Recorder
}

type options struct {
	registerer prometheus.Registerer
	s3Client   store.S3Client
	dynamo     store.DynamoDBClient
	store      store.Store
}

type Option func(*options)

// WithRegisterer records provider and search metrics into reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

func WithS3Client(c store.S3Client) Option {
	return func(o *options) {
		o.s3Client = c
	}
}

func WithDynamoClient(c store.DynamoDBClient) Option {
	return func(o *options) {
		o.dynamo = c
	}
}

// WithStore skips store construction and uses s as is.
func WithStore(s store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if o.registerer != nil {
		prom, err := metrics.NewPromRecorder(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		recorder = prom
	}

	primary, secondary, err := NewProviders(cfg)
	if err != nil {
		return nil, err
	}

	st := o.store
	if st == nil {
		st, err = newStore(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
	}

	return &App{
		Config:     cfg,
		Aggregator: NewAggregator(cfg, primary, secondary, recorder),
		Store:      st,
		Metrics:    recorder,
	}, nil
}

// NewProviders builds the NREL and Open Charge Map adapters, wrapped in the
// response cache when it is enabled.
func NewProviders(cfg *config.Config) (primary, secondary provider.Provider, err error) {
	availability := provider.NewRandomAvailability(cfg.AvailabilityMin, cfg.AvailabilityMax)

	primary = provider.NewNREL(newProviderClient(cfg, cfg.NRELBaseURL), cfg.NRELAPIKey, availability)
	secondary = provider.NewOCM(newProviderClient(cfg, cfg.OCMBaseURL), cfg.OCMAPIKey, availability)

	if !cfg.Cache.EnableLRUCache {
		return primary, secondary, nil
	}

	ttl := cfg.Cache.GetProviderLRUTTL()
	if primary, err = provider.NewCached(primary, cfg.Cache.ProviderLRUSize, ttl); err != nil {
		return nil, nil, err
	}
	if secondary, err = provider.NewCached(secondary, cfg.Cache.ProviderLRUSize, ttl); err != nil {
		return nil, nil, err
	}
	return primary, secondary, nil
}

// Provider calls are made once; a failed step escalates instead of retrying.
func newProviderClient(cfg *config.Config, baseURL string) *client.Client {
	return client.New(client.Options{
		BaseURL:    baseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: 1,
		Headers:    map[string]string{"User-Agent": userAgent},
	})
}

func NewAggregator(cfg *config.Config, primary, secondary provider.Provider, recorder metrics.Recorder) *aggregator.Aggregator {
	steps := aggregator.DefaultSteps(primary, secondary, cfg.PrimaryRegion, cfg.SecondaryRadiusMultiplier, cfg.FallbackRadius)
	return aggregator.New(steps,
		aggregator.WithTimeout(cfg.ProviderTimeout),
		aggregator.WithDefaults(cfg.DefaultRadiusMiles, cfg.ResultLimit),
		aggregator.WithMetrics(recorder),
	)
}

func newStore(ctx context.Context, cfg *config.Config, o options) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendDynamo:
		dynamo := o.dynamo
		if dynamo == nil {
			c, err := store.NewDynamoClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("creating DynamoDB client: %w", err)
			}
			dynamo = c
		}
		return store.NewDynamoStore(dynamo, cfg.VehicleTable, cfg.StationTable, cfg.CurrentVehicleID), nil

	case config.StoreBackendMemory:
		data, err := loadSeed(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		return store.NewMemoryStore(cfg.CurrentVehicleID, data), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// loadSeed reads the memory store's dataset from S3 when a bucket is configured.
// A missing or expired snapshot falls back to the built-in sample data.
func loadSeed(ctx context.Context, cfg *config.Config, o options) (store.Dataset, error) {
	fallback := store.DefaultDataset(timeNow())
	if cfg.SeedBucket == "" {
		return fallback, nil
	}

	s3Client := o.s3Client
	if s3Client == nil {
		c, err := store.NewS3Client(ctx)
		if err != nil {
			return store.Dataset{}, fmt.Errorf("creating S3 client: %w", err)
		}
		s3Client = c
	}

	seed := store.NewS3Seed(s3Client, cfg.SeedBucket, cfg.SeedKey, cfg.Cache.GetSeedTTL())
	data, err := seed.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		log.Info().Str("bucket", cfg.SeedBucket).Str("key", cfg.SeedKey).Msg("No seed snapshot in S3, using sample data")
		return fallback, nil
	}
	if err != nil {
		return store.Dataset{}, fmt.Errorf("loading seed: %w", err)
	}

	log.Debug().Int("vehicles", len(data.Vehicles)).Int("stations", len(data.Stations)).Msg("Loaded seed snapshot")
	return data, nil
}
