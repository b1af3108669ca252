package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
)

// EnvPrefix marks environment overrides for file based configuration,
// e.g. CHARGEWAY_NREL__API_KEY overrides nrel.api_key.
const EnvPrefix = "CHARGEWAY_"

type fileConfig struct {
	Environment     string `koanf:"environment"`
	LogLevel        string `koanf:"log_level"`
	HTTPTimeout     string `koanf:"http_timeout"`
	ProviderTimeout string `koanf:"provider_timeout"`

	NREL endpointConfig `koanf:"nrel"`
	OCM  endpointConfig `koanf:"ocm"`

	PrimaryRegion             string  `koanf:"primary_region"`
	SecondaryRadiusMultiplier float64 `koanf:"secondary_radius_multiplier"`
	FallbackRadius            float64 `koanf:"fallback_radius"`
	DefaultRadiusMiles        float64 `koanf:"default_radius_miles"`
	ResultLimit               int     `koanf:"result_limit"`

	Availability struct {
		Min *float64 `koanf:"min"`
		Max *float64 `koanf:"max"`
	} `koanf:"availability"`

	Store struct {
		Backend          string `koanf:"backend"`
		VehicleTable     string `koanf:"vehicle_table"`
		StationTable     string `koanf:"station_table"`
		CurrentVehicleID string `koanf:"current_vehicle_id"`
	} `koanf:"store"`

	Seed struct {
		Bucket string `koanf:"bucket"`
		Key    string `koanf:"key"`
	} `koanf:"seed"`

	Cache struct {
		ProviderLRUSize       int   `koanf:"provider_lru_size"`
		ProviderLRUTTLMinutes int   `koanf:"provider_ttl_minutes"`
		Enabled               *bool `koanf:"enabled"`
	} `koanf:"cache"`
}

type endpointConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// LoadFile reads a YAML or JSON configuration file, applies CHARGEWAY_ environment
// overrides and returns the resulting Config. Unset values keep their defaults.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var fc fileConfig
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	opts, err := fc.options()
	if err != nil {
		return nil, err
	}
	return New(opts...), nil
}

func (fc fileConfig) options() ([]Option, error) {
	opts := []Option{
		WithNREL(fc.NREL.BaseURL, fc.NREL.APIKey),
		WithOCM(fc.OCM.BaseURL, fc.OCM.APIKey),
		WithEscalation(fc.SecondaryRadiusMultiplier, fc.FallbackRadius),
		WithSearchDefaults(fc.DefaultRadiusMiles, fc.ResultLimit),
		WithStore(fc.Store.Backend, fc.Store.VehicleTable, fc.Store.StationTable),
		WithSeed(fc.Seed.Bucket, fc.Seed.Key),
		WithCurrentVehicle(fc.Store.CurrentVehicleID),
	}

	if fc.Environment != "" {
		opts = append(opts, WithEnvironment(fc.Environment))
	}
	if fc.LogLevel != "" {
		opts = append(opts, WithLogLevel(fc.LogLevel))
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing http_timeout: %w", err)
		}
		opts = append(opts, WithHTTPTimeout(d))
	}
	if fc.ProviderTimeout != "" {
		d, err := time.ParseDuration(fc.ProviderTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing provider_timeout: %w", err)
		}
		opts = append(opts, WithProviderTimeout(d))
	}
	if fc.PrimaryRegion != "" {
		box, err := geo.ParseBoundingBox(fc.PrimaryRegion)
		if err != nil {
			return nil, fmt.Errorf("parsing primary_region: %w", err)
		}
		opts = append(opts, WithPrimaryRegion(box))
	}
	if fc.Availability.Min != nil || fc.Availability.Max != nil {
		min, max := 0.6, 0.95
		if fc.Availability.Min != nil {
			min = *fc.Availability.Min
		}
		if fc.Availability.Max != nil {
			max = *fc.Availability.Max
		}
		opts = append(opts, WithAvailabilityBand(min, max))
	}

	cacheConfig := DefaultCacheConfig()
	if fc.Cache.ProviderLRUSize > 0 {
		cacheConfig.ProviderLRUSize = fc.Cache.ProviderLRUSize
	}
	if fc.Cache.ProviderLRUTTLMinutes > 0 {
		cacheConfig.ProviderLRUTTLMinutes = fc.Cache.ProviderLRUTTLMinutes
	}
	if fc.Cache.Enabled != nil {
		cacheConfig.EnableLRUCache = *fc.Cache.Enabled
	}
	opts = append(opts, WithCacheConfig(cacheConfig))

	return opts, nil
}
