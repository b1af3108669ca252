package provider

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// AvailabilityEstimator guesses how many ports are free. None of the upstream
// feeds report live occupancy, so every estimate is synthetic.
type AvailabilityEstimator interface {
	Estimate(totalPorts int) int
}

// RandomAvailability picks a rate uniformly in [Min, Max) per station.
type RandomAvailability struct {
	min float64
	max float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAvailability(min, max float64) *RandomAvailability {
	seed := uint64(time.Now().UnixNano())
	return NewSeededAvailability(min, max, seed)
}

// NewSeededAvailability returns a reproducible RandomAvailability.
func NewSeededAvailability(min, max float64, seed uint64) *RandomAvailability {
	if min > max {
		min, max = max, min
	}
	return &RandomAvailability{
		min: clampRate(min),
		max: clampRate(max),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *RandomAvailability) Estimate(totalPorts int) int {
	r.mu.Lock()
	rate := r.min + r.rng.Float64()*(r.max-r.min)
	r.mu.Unlock()
	return portsAt(totalPorts, rate)
}

// FixedAvailability always applies the same rate.
type FixedAvailability float64

func (f FixedAvailability) Estimate(totalPorts int) int {
	return portsAt(totalPorts, clampRate(float64(f)))
}

func portsAt(totalPorts int, rate float64) int {
	if totalPorts <= 0 {
		return 0
	}
	available := int(math.Floor(float64(totalPorts) * rate))
	if available > totalPorts {
		return totalPorts
	}
	if available < 0 {
		return 0
	}
	return available
}

func clampRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
