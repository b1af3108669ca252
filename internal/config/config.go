package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendDynamo = "dynamo"
)

type Config struct {
	Environment     string
	LogLevel        zerolog.Level
	HTTPTimeout     time.Duration
	ProviderTimeout time.Duration

	NRELBaseURL string
	NRELAPIKey  string
	OCMBaseURL  string
	OCMAPIKey   string

	// Escalation policy
	PrimaryRegion             geo.BoundingBox
	SecondaryRadiusMultiplier float64
	FallbackRadius            float64
	DefaultRadiusMiles        float64
	ResultLimit               int

	// Synthetic availability band, as fractions of total ports
	AvailabilityMin float64
	AvailabilityMax float64

	StoreBackend     string
	VehicleTable     string
	StationTable     string
	CurrentVehicleID string
	SeedBucket       string
	SeedKey          string

	Cache *CacheConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithProviderTimeout bounds a single provider query, including decoding.
func WithProviderTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ProviderTimeout = timeout
	}
}

// WithNREL sets the NREL endpoint and API key. An empty key disables the provider.
func WithNREL(baseURL, apiKey string) Option {
	return func(c *Config) {
		if baseURL != "" {
			c.NRELBaseURL = baseURL
		}
		c.NRELAPIKey = apiKey
	}
}

// WithOCM sets the Open Charge Map endpoint and optional API key.
func WithOCM(baseURL, apiKey string) Option {
	return func(c *Config) {
		if baseURL != "" {
			c.OCMBaseURL = baseURL
		}
		c.OCMAPIKey = apiKey
	}
}

func WithPrimaryRegion(box geo.BoundingBox) Option {
	return func(c *Config) {
		c.PrimaryRegion = box
	}
}

func WithEscalation(secondaryMultiplier, fallbackRadius float64) Option {
	return func(c *Config) {
		if secondaryMultiplier > 0 {
			c.SecondaryRadiusMultiplier = secondaryMultiplier
		}
		if fallbackRadius > 0 {
			c.FallbackRadius = fallbackRadius
		}
	}
}

func WithSearchDefaults(radiusMiles float64, limit int) Option {
	return func(c *Config) {
		if radiusMiles > 0 {
			c.DefaultRadiusMiles = radiusMiles
		}
		if limit > 0 {
			c.ResultLimit = limit
		}
	}
}

// WithAvailabilityBand sets the synthetic availability band. Invalid bands are ignored.
func WithAvailabilityBand(min, max float64) Option {
	return func(c *Config) {
		if min < 0 || max > 1 || min > max {
			log.Warn().Float64("min", min).Float64("max", max).Msg("Ignoring invalid availability band")
			return
		}
		c.AvailabilityMin = min
		c.AvailabilityMax = max
	}
}

func WithStore(backend, vehicleTable, stationTable string) Option {
	return func(c *Config) {
		if backend != "" {
			c.StoreBackend = backend
		}
		if vehicleTable != "" {
			c.VehicleTable = vehicleTable
		}
		if stationTable != "" {
			c.StationTable = stationTable
		}
	}
}

func WithSeed(bucket, key string) Option {
	return func(c *Config) {
		c.SeedBucket = bucket
		if key != "" {
			c.SeedKey = key
		}
	}
}

func WithCurrentVehicle(id string) Option {
	return func(c *Config) {
		if id != "" {
			c.CurrentVehicleID = id
		}
	}
}

func WithCacheConfig(cacheConfig *CacheConfig) Option {
	return func(c *Config) {
		c.Cache = cacheConfig
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:               "production",
		LogLevel:                  zerolog.InfoLevel,
		HTTPTimeout:               10 * time.Second,
		ProviderTimeout:           8 * time.Second,
		NRELBaseURL:               "https://developer.nrel.gov/api/alt-fuel-stations/v1",
		OCMBaseURL:                "https://api.openchargemap.io/v3",
		PrimaryRegion:             geo.ContiguousUS,
		SecondaryRadiusMultiplier: 3.2,
		FallbackRadius:            100,
		DefaultRadiusMiles:        50,
		ResultLimit:               20,
		AvailabilityMin:           0.6,
		AvailabilityMax:           0.95,
		StoreBackend:              StoreBackendMemory,
		VehicleTable:              "ev-vehicles",
		StationTable:              "ev-charging-stations",
		CurrentVehicleID:          "default-vehicle",
		SeedKey:                   "seed.json",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Cache == nil {
		cfg.Cache = DefaultCacheConfig()
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	opts := []Option{
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithProviderTimeout(getDurationEnvOrDefault("PROVIDER_TIMEOUT", 8*time.Second)),
		WithNREL(os.Getenv("NREL_BASE_URL"), os.Getenv("NREL_API_KEY")),
		WithOCM(os.Getenv("OCM_BASE_URL"), os.Getenv("OCM_API_KEY")),
		WithEscalation(getFloatEnvOrDefault("SECONDARY_RADIUS_MULTIPLIER", 3.2), getFloatEnvOrDefault("FALLBACK_RADIUS", 100)),
		WithSearchDefaults(getFloatEnvOrDefault("DEFAULT_RADIUS_MILES", 50), getEnvInt("RESULT_LIMIT", 20)),
		WithAvailabilityBand(getFloatEnvOrDefault("AVAILABILITY_MIN", 0.6), getFloatEnvOrDefault("AVAILABILITY_MAX", 0.95)),
		WithStore(os.Getenv("STORE_BACKEND"), os.Getenv("VEHICLE_TABLE"), os.Getenv("STATION_TABLE")),
		WithSeed(os.Getenv("SEED_BUCKET"), os.Getenv("SEED_KEY")),
		WithCurrentVehicle(os.Getenv("CURRENT_VEHICLE_ID")),
		WithCacheConfig(GetCacheConfig()),
	}

	if region := os.Getenv("PRIMARY_REGION"); region != "" {
		box, err := geo.ParseBoundingBox(region)
		if err != nil {
			log.Warn().Err(err).Str("value", region).Msg("Invalid PRIMARY_REGION, using default")
		} else {
			opts = append(opts, WithPrimaryRegion(box))
		}
	}

	return New(opts...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultValue
}
