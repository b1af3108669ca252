package recommend

import "github.com/bbernstein/chargeway/backend-go/internal/models"

type Level string

const (
	LevelNormal   Level = "normal"
	LevelLow      Level = "low"
	LevelCritical Level = "critical"

	LowBatteryPercent      = 30
	CriticalBatteryPercent = 20
)

// Recommendation suggests where the vehicle should charge given a ranked station list.
type Recommendation struct {
	VehicleID        string                       `json:"vehicleId"`
	BatteryLevel     int                          `json:"batteryLevel"`
	Level            Level                        `json:"level"`
	Alert            bool                         `json:"alert"`
	Nearest          *models.StationWithDistance  `json:"nearest,omitempty"`
	NearestAvailable *models.StationWithDistance  `json:"nearestAvailable,omitempty"`
	Reachable        []models.StationWithDistance `json:"reachable"`
}

func BatteryLevel(percent int) Level {
	switch {
	case percent <= CriticalBatteryPercent:
		return LevelCritical
	case percent <= LowBatteryPercent:
		return LevelLow
	default:
		return LevelNormal
	}
}

// For builds a recommendation from stations already ranked nearest first.
// Reachable holds the stations whose distance is within the vehicle's range;
// stations without a distance are never counted as reachable.
func For(v models.Vehicle, ranked []models.StationWithDistance) Recommendation {
	level := BatteryLevel(v.BatteryLevel)
	rec := Recommendation{
		VehicleID:    v.ID,
		BatteryLevel: v.BatteryLevel,
		Level:        level,
		Alert:        level != LevelNormal,
		Reachable:    []models.StationWithDistance{},
	}

	for i := range ranked {
		s := ranked[i]
		if rec.Nearest == nil {
			rec.Nearest = &s
		}
		if rec.NearestAvailable == nil && s.AvailablePorts > 0 {
			rec.NearestAvailable = &s
		}
		if s.Distance != nil && *s.Distance <= float64(v.Range) {
			rec.Reachable = append(rec.Reachable, s)
		}
	}
	return rec
}
