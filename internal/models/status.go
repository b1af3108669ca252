package models

type Status string

const (
	StatusAvailable              Status = "available"
	StatusPartiallyAvailable     Status = "partially-available"
	StatusBusy                   Status = "busy"
	StatusOutOfService           Status = "out-of-service"
	StatusTemporarilyUnavailable Status = "temporarily-unavailable"
	StatusPlanned                Status = "planned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPartiallyAvailable, StatusBusy,
		StatusOutOfService, StatusTemporarilyUnavailable, StatusPlanned:
		return true
	}
	return false
}

// ProviderState is the provider's own lifecycle signal, mapped from its status code.
type ProviderState int

const (
	ProviderStateUnknown ProviderState = iota
	ProviderStateOperational
	ProviderStateTemporarilyUnavailable
	ProviderStateOutOfService
	ProviderStatePlanned
)

// DeriveStatus applies the station state machine. Lifecycle checks come
// before occupancy: a planned or non-operational station never reports ports.
func DeriveStatus(operational bool, availablePorts, totalPorts int, state ProviderState) Status {
	switch {
	case state == ProviderStatePlanned:
		return StatusPlanned
	case state == ProviderStateTemporarilyUnavailable:
		return StatusTemporarilyUnavailable
	case !operational || state == ProviderStateOutOfService:
		return StatusOutOfService
	case availablePorts <= 0:
		return StatusBusy
	case availablePorts >= totalPorts:
		return StatusAvailable
	default:
		return StatusPartiallyAvailable
	}
}
