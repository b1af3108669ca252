package aggregator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bbernstein/chargeway/backend-go/internal/geo"
	"github.com/bbernstein/chargeway/backend-go/internal/metrics"
	"github.com/bbernstein/chargeway/backend-go/internal/models"
	"github.com/bbernstein/chargeway/backend-go/internal/provider"
)

const (
	StepPrimary   = "primary"
	StepSecondary = "secondary"
	StepFallback  = "fallback"
	// StepNone is reported when every step came back empty.
	StepNone = "none"

	defaultRadiusMiles = 50
	defaultLimit       = 20
	defaultTimeout     = 8 * time.Second
)

// Step is one rung of the escalation chain. Covers reports whether the step
// applies to a location (nil means everywhere) and Radius converts the requested
// radius in miles into the unit its providers expect.
type Step struct {
	Name      string
	Providers []provider.Provider
	Covers    func(lat, lon float64) bool
	Radius    func(requestedMiles float64) float64
}

type Request struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles *float64
	Limit       int
}

type Result struct {
	Stations []models.Station
	Step     string
}

type Aggregator struct {
	steps         []Step
	timeout       time.Duration
	defaultRadius float64
	defaultLimit  int
	metrics       metrics.Recorder
}

type Option func(*Aggregator)

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithDefaults(radiusMiles float64, limit int) Option {
	return func(a *Aggregator) {
		if radiusMiles > 0 {
			a.defaultRadius = radiusMiles
		}
		if limit > 0 {
			a.defaultLimit = limit
		}
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.metrics = r
		}
	}
}

func New(steps []Step, opts ...Option) *Aggregator {
	a := &Aggregator{
		steps:         steps,
		timeout:       defaultTimeout,
		defaultRadius: defaultRadiusMiles,
		defaultLimit:  defaultLimit,
		metrics:       metrics.Nop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DefaultSteps builds the standard chain: NREL inside the primary region at the
// requested radius, then OCM at radius times multiplier, then OCM at a fixed radius.
func DefaultSteps(primary, secondary provider.Provider, region geo.BoundingBox, multiplier, fallbackRadius float64) []Step {
	return []Step{
		{
			Name:      StepPrimary,
			Providers: []provider.Provider{primary},
			Covers:    region.Contains,
			Radius:    func(r float64) float64 { return r },
		},
		{
			Name:      StepSecondary,
			Providers: []provider.Provider{secondary},
			Radius:    func(r float64) float64 { return r * multiplier },
		},
		{
			Name:      StepFallback,
			Providers: []provider.Provider{secondary},
			Radius:    func(float64) float64 { return fallbackRadius },
		},
	}
}

// FindNearby walks the steps in order and returns the first non-empty answer.
// Stations is never nil.
func (a *Aggregator) FindNearby(ctx context.Context, req Request) Result {
	radius := a.defaultRadius
	if req.RadiusMiles != nil && *req.RadiusMiles > 0 {
		radius = *req.RadiusMiles
	}
	limit := req.Limit
	if limit <= 0 {
		limit = a.defaultLimit
	}

	if !geo.ValidCoordinate(req.Latitude, req.Longitude) {
		log.Warn().Float64("lat", req.Latitude).Float64("lon", req.Longitude).Msg("Refusing search with invalid coordinates")
		return Result{Stations: []models.Station{}, Step: StepNone}
	}

	for _, step := range a.steps {
		if step.Covers != nil && !step.Covers(req.Latitude, req.Longitude) {
			log.Debug().Str("step", step.Name).Msg("Location outside step coverage, skipping")
			continue
		}
		if ctx.Err() != nil {
			break
		}

		stepRadius := radius
		if step.Radius != nil {
			stepRadius = step.Radius(radius)
		}

		stations := a.runStep(ctx, step, req.Latitude, req.Longitude, stepRadius, limit)
		if len(stations) > 0 {
			log.Info().
				Str("step", step.Name).
				Int("count", len(stations)).
				Float64("radius", stepRadius).
				Msg("Search resolved")
			a.metrics.SearchResolved(step.Name, len(stations))
			return Result{Stations: stations, Step: step.Name}
		}
	}

	log.Info().Float64("lat", req.Latitude).Float64("lon", req.Longitude).Msg("No stations found by any provider")
	a.metrics.SearchResolved(StepNone, 0)
	return Result{Stations: []models.Station{}, Step: StepNone}
}

// runStep queries every provider of a step concurrently and merges the
// answers in provider order, dropping repeated IDs.
func (a *Aggregator) runStep(ctx context.Context, step Step, lat, lon, radius float64, limit int) []models.Station {
	results := make([][]models.Station, len(step.Providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range step.Providers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			start := time.Now()
			results[i] = p.FetchNearby(pctx, lat, lon, radius, limit)
			elapsed := time.Since(start)

			log.Debug().
				Str("step", step.Name).
				Str("provider", p.Name()).
				Int("count", len(results[i])).
				Dur("elapsed", elapsed).
				Msg("Provider fetch finished")
			a.metrics.ProviderFetch(p.Name(), step.Name, len(results[i]), elapsed)
			return nil
		})
	}
	_ = g.Wait()

	return merge(results)
}

func merge(results [][]models.Station) []models.Station {
	seen := make(map[string]bool)
	merged := make([]models.Station, 0)
	for _, stations := range results {
		for _, s := range stations {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			merged = append(merged, s)
		}
	}
	return merged
}
