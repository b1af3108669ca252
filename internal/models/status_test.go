package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		operational bool
		available   int
		total       int
		state       ProviderState
		want        Status
	}{
		{"all ports free", true, 4, 4, ProviderStateOperational, StatusAvailable},
		{"some ports free", true, 2, 4, ProviderStateOperational, StatusPartiallyAvailable},
		{"no ports free", true, 0, 4, ProviderStateOperational, StatusBusy},
		{"zero port station", true, 0, 0, ProviderStateUnknown, StatusBusy},
		{"not operational", false, 4, 4, ProviderStateUnknown, StatusOutOfService},
		{"provider says out of service", true, 4, 4, ProviderStateOutOfService, StatusOutOfService},
		{"temporarily unavailable beats occupancy", true, 4, 4, ProviderStateTemporarilyUnavailable, StatusTemporarilyUnavailable},
		{"planned beats operational flag", false, 0, 2, ProviderStatePlanned, StatusPlanned},
		{"planned even when ports free", true, 2, 2, ProviderStatePlanned, StatusPlanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.operational, tt.available, tt.total, tt.state)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.False(t, Status("full").Valid())
	assert.False(t, Status("").Valid())
}
