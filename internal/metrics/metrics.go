package metrics

import "time"

// Recorder receives aggregation events.
type Recorder interface {
	// ProviderFetch records one provider call made while resolving a step.
	ProviderFetch(provider, step string, stations int, elapsed time.Duration)
	// SearchResolved records which step produced the final answer ("none" when every step came back empty).
	SearchResolved(step string, stations int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ProviderFetch(string, string, int, time.Duration) {}

func (Nop) SearchResolved(string, int) {}
