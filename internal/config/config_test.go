package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
)

func TestNewConfigWithDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "https://developer.nrel.gov/api/alt-fuel-stations/v1", cfg.NRELBaseURL)
	assert.Equal(t, "https://api.openchargemap.io/v3", cfg.OCMBaseURL)
	assert.Empty(t, cfg.NRELAPIKey)
	assert.Equal(t, geo.ContiguousUS, cfg.PrimaryRegion)
	assert.Equal(t, 3.2, cfg.SecondaryRadiusMultiplier)
	assert.Equal(t, 100.0, cfg.FallbackRadius)
	assert.Equal(t, 50.0, cfg.DefaultRadiusMiles)
	assert.Equal(t, 20, cfg.ResultLimit)
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	require.NotNil(t, cfg.Cache)
	assert.True(t, cfg.Cache.EnableLRUCache)
}

func TestWithEnvironment(t *testing.T) {
	cfg := New(WithEnvironment("development"))

	assert.Equal(t, "development", cfg.Environment)
}

func TestWithLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New(WithLogLevel("debug")).LogLevel)
	assert.Equal(t, zerolog.InfoLevel, New(WithLogLevel("chatty")).LogLevel)
}

func TestWithHTTPTimeout(t *testing.T) {
	cfg := New(WithHTTPTimeout(30 * time.Second))

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestWithAvailabilityBand(t *testing.T) {
	cfg := New(WithAvailabilityBand(0.7, 0.9))
	assert.Equal(t, 0.7, cfg.AvailabilityMin)
	assert.Equal(t, 0.9, cfg.AvailabilityMax)

	cfg = New(WithAvailabilityBand(0.9, 0.7))
	assert.Equal(t, 0.6, cfg.AvailabilityMin, "inverted band is ignored")
	assert.Equal(t, 0.95, cfg.AvailabilityMax)
}

func TestInitializeLogging(t *testing.T) {
	cfg := New(WithEnvironment("local"), WithLogLevel("debug"))
	cfg.InitializeLogging()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("PROVIDER_TIMEOUT", "2s")
	t.Setenv("NREL_API_KEY", "nrel-key")
	t.Setenv("PRIMARY_REGION", "45,-125,50,-110")
	t.Setenv("SECONDARY_RADIUS_MULTIPLIER", "2")
	t.Setenv("RESULT_LIMIT", "5")
	t.Setenv("STORE_BACKEND", "dynamo")
	t.Setenv("CACHE_ENABLE_LRU", "false")

	cfg := LoadFromEnv()

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "nrel-key", cfg.NRELAPIKey)
	assert.Equal(t, "https://developer.nrel.gov/api/alt-fuel-stations/v1", cfg.NRELBaseURL)
	assert.Equal(t, geo.BoundingBox{MinLat: 45, MinLon: -125, MaxLat: 50, MaxLon: -110}, cfg.PrimaryRegion)
	assert.Equal(t, 2.0, cfg.SecondaryRadiusMultiplier)
	assert.Equal(t, 5, cfg.ResultLimit)
	assert.Equal(t, StoreBackendDynamo, cfg.StoreBackend)
	assert.False(t, cfg.Cache.EnableLRUCache)
}

func TestLoadFromEnv_InvalidRegionKeepsDefault(t *testing.T) {
	t.Setenv("PRIMARY_REGION", "nowhere")

	cfg := LoadFromEnv()

	assert.Equal(t, geo.ContiguousUS, cfg.PrimaryRegion)
}

func TestCacheConfigDurations(t *testing.T) {
	c := &CacheConfig{ProviderLRUTTLMinutes: 5, SeedTTLDays: 2}

	assert.Equal(t, 5*time.Minute, c.GetProviderLRUTTL())
	assert.Equal(t, 48*time.Hour, c.GetSeedTTL())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chargeway.yaml")
	content := `
environment: local
log_level: debug
provider_timeout: 3s
nrel:
  api_key: from-file
ocm:
  base_url: http://localhost:9999
primary_region: "24,-125,50,-66"
fallback_radius: 150
availability:
  min: 0.5
  max: 0.8
store:
  backend: memory
  current_vehicle_id: my-car
cache:
  enabled: false
  provider_lru_size: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CHARGEWAY_NREL__API_KEY", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "from-env", cfg.NRELAPIKey)
	assert.Equal(t, "http://localhost:9999", cfg.OCMBaseURL)
	assert.Equal(t, geo.BoundingBox{MinLat: 24, MinLon: -125, MaxLat: 50, MaxLon: -66}, cfg.PrimaryRegion)
	assert.Equal(t, 150.0, cfg.FallbackRadius)
	assert.Equal(t, 3.2, cfg.SecondaryRadiusMultiplier)
	assert.Equal(t, 0.5, cfg.AvailabilityMin)
	assert.Equal(t, 0.8, cfg.AvailabilityMax)
	assert.Equal(t, "my-car", cfg.CurrentVehicleID)
	assert.False(t, cfg.Cache.EnableLRUCache)
	assert.Equal(t, 10, cfg.Cache.ProviderLRUSize)
	assert.Equal(t, defaultProviderLRUTTLMinutes, cfg.Cache.ProviderLRUTTLMinutes)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "config.toml"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"provider_timeout": "soon"}`), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "provider_timeout")
}
