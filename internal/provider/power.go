package provider

import (
	"math"
	"strings"
)

const (
	powerDCFast  = 150.0
	powerLevel2  = 22.0
	powerLevel1  = 1.4
	powerDefault = 7.0
)

// nrelPower picks a nominal power from the highest charging level present.
func nrelPower(level1, level2, dcFast int) float64 {
	switch {
	case dcFast > 0:
		return powerDCFast
	case level2 > 0:
		return powerLevel2
	case level1 > 0:
		return powerLevel1
	default:
		return powerDefault
	}
}

// connectionPower prefers the reported power, then voltage times current, then
// a guess from the connector title.
func connectionPower(c ocmConnection) float64 {
	if c.PowerKW != nil && *c.PowerKW > 0 {
		return *c.PowerKW
	}
	if c.Voltage != nil && c.Amps != nil && *c.Voltage > 0 && *c.Amps > 0 {
		return math.Round(*c.Voltage * *c.Amps / 1000)
	}

	title := strings.ToLower(c.ConnectionType.Title)
	switch {
	case strings.Contains(title, "chademo"), strings.Contains(title, "ccs"):
		return 50
	case strings.Contains(title, "tesla") && strings.Contains(title, "supercharger"):
		return 150
	case strings.Contains(title, "type 2"):
		return 22
	case strings.Contains(title, "type 1"):
		return 7
	default:
		return powerDefault
	}
}

func ocmPower(connections []ocmConnection) float64 {
	var max float64
	for _, c := range connections {
		max = math.Max(max, connectionPower(c))
	}
	if max == 0 {
		return powerLevel2
	}
	return max
}
