package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type cacheEntry struct {
	Stations  []models.Station
	ExpiresAt time.Time
}

// Cached remembers non-empty provider answers for a while. Empty answers are
// never cached so a recovering provider is retried on the next request.
type Cached struct {
	next  Provider
	lru   *lru.Cache[string, *cacheEntry]
	ttl   time.Duration
	clock clock

	mu     sync.Mutex
	hits   uint64
	misses uint64
}

var _ Provider = (*Cached)(nil)

func NewCached(next Provider, size int, ttl time.Duration) (*Cached, error) {
	lruCache, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating provider LRU cache: %w", err)
	}

	return &Cached{
		next:  next,
		lru:   lruCache,
		ttl:   ttl,
		clock: systemClock{},
	}, nil
}

func (c *Cached) Name() string {
	return c.next.Name()
}

func (c *Cached) FetchNearby(ctx context.Context, lat, lon, radius float64, limit int) []models.Station {
	key := cacheKey(c.next.Name(), lat, lon, radius, limit)

	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.record(true)
			log.Debug().Str("key", key).Msg("Provider cache HIT")
			return cloneStations(entry.Stations)
		}
		c.lru.Remove(key)
	}
	c.record(false)

	stations := c.next.FetchNearby(ctx, lat, lon, radius, limit)
	if len(stations) > 0 {
		c.lru.Add(key, &cacheEntry{
			Stations:  cloneStations(stations),
			ExpiresAt: c.clock.Now().Add(c.ttl),
		})
	}
	return stations
}

// Stats returns the hit and miss counters.
func (c *Cached) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cached) record(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func cacheKey(provider string, lat, lon, radius float64, limit int) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%g:%d", provider, lat, lon, radius, limit)
}

func cloneStations(in []models.Station) []models.Station {
	out := make([]models.Station, len(in))
	for i, s := range in {
		s.ConnectorTypes = slices.Clone(s.ConnectorTypes)
		s.Amenities = slices.Clone(s.Amenities)
		out[i] = s
	}
	return out
}
