package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Provider response LRU settings
	ProviderLRUSize       int
	ProviderLRUTTLMinutes int

	// Seed snapshot settings
	SeedTTLDays int

	EnableLRUCache bool
}

const (
	defaultProviderLRUSize       = 500
	defaultProviderLRUTTLMinutes = 5
	defaultSeedTTLDays           = 30
)

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		ProviderLRUSize:       defaultProviderLRUSize,
		ProviderLRUTTLMinutes: defaultProviderLRUTTLMinutes,
		SeedTTLDays:           defaultSeedTTLDays,
		EnableLRUCache:        true,
	}
}

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		ProviderLRUSize:       getEnvInt("CACHE_PROVIDER_LRU_SIZE", defaultProviderLRUSize),
		ProviderLRUTTLMinutes: getEnvInt("CACHE_PROVIDER_TTL_MINUTES", defaultProviderLRUTTLMinutes),
		SeedTTLDays:           getEnvInt("CACHE_SEED_TTL_DAYS", defaultSeedTTLDays),
		EnableLRUCache:        getEnvBool("CACHE_ENABLE_LRU", true),
	}

	log.Debug().
		Int("ProviderLRUSize", config.ProviderLRUSize).
		Int("ProviderLRUTTLMinutes", config.ProviderLRUTTLMinutes).
		Int("SeedTTLDays", config.SeedTTLDays).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetProviderLRUTTL() time.Duration {
	return time.Duration(c.ProviderLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetSeedTTL() time.Duration {
	return time.Duration(c.SeedTTLDays) * 24 * time.Hour
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
