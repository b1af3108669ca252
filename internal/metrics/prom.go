package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder exports aggregation metrics to Prometheus.
type PromRecorder struct {
	fetches  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	searches *prometheus.CounterVec
	results  *prometheus.HistogramVec
}

var _ Recorder = (*PromRecorder)(nil)

// NewPromRecorder registers the collectors on reg, or the default registerer when reg is nil.
// Collectors that are already registered are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargeway_provider_fetches_total",
		Help: "Provider calls by provider, step and whether stations came back",
	}, []string{"provider", "step", "empty"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargeway_provider_fetch_seconds",
		Help:    "Provider call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargeway_searches_total",
		Help: "Searches by the escalation step that resolved them",
	}, []string{"step"})
	results := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargeway_search_stations",
		Help:    "Stations returned per search",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	}, []string{"step"})

	var err error
	if fetches, err = register(reg, fetches); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if searches, err = register(reg, searches); err != nil {
		return nil, err
	}
	if results, err = register(reg, results); err != nil {
		return nil, err
	}

	return &PromRecorder{fetches: fetches, latency: latency, searches: searches, results: results}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (p *PromRecorder) ProviderFetch(provider, step string, stations int, elapsed time.Duration) {
	p.fetches.WithLabelValues(provider, step, strconv.FormatBool(stations == 0)).Inc()
	p.latency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (p *PromRecorder) SearchResolved(step string, stations int) {
	p.searches.WithLabelValues(step).Inc()
	p.results.WithLabelValues(step).Observe(float64(stations))
}
