package provider

import "github.com/bbernstein/chargeway/backend-go/internal/models"

var nrelConnectors = map[string]string{
	"CHADEMO":    "CHAdeMO",
	"J1772COMBO": "CCS",
	"J1772":      "Type 1",
	"TESLA":      "Tesla",
	"NEMA1450":   "NEMA 14-50",
	"NEMA515":    "NEMA 5-15",
	"NEMA520":    "NEMA 5-20",
}

var ocmConnectors = map[string]string{
	"Type 1 (J1772)":               "Type 1",
	"Type 2 (Socket Only)":         "Type 2",
	"Type 2 (Tethered Connector)":  "Type 2",
	"CHAdeMO":                      "CHAdeMO",
	"CCS (Type 1)":                 "CCS",
	"CCS (Type 2)":                 "CCS",
	"Tesla (Roadster)":             "Tesla",
	"Tesla Supercharger":           "Tesla",
	"Tesla Model S":                "Tesla",
	"Tesla Destination":            "Tesla",
	"NACS / Tesla Supercharger":    "Tesla",
	"CEE Blue (Camping)":           "CEE",
	"CEE Red (3-phase)":            "CEE",
	"Schuko (EU Domestic)":         "Schuko",
	"Type 3":                       "Type 3",
	"IEC 62196-3 Configuration AA": "CCS",
	"IEC 62196-3 Configuration BB": "CCS",
}

// normalizeConnectors maps raw provider codes to canonical tags. Unknown codes
// pass through unchanged; the result keeps first-seen order without duplicates.
func normalizeConnectors(raw []string, table map[string]string) []string {
	seen := make(map[string]bool, len(raw))
	connectors := make([]string, 0, len(raw))
	for _, code := range raw {
		if code == "" {
			continue
		}
		tag, ok := table[code]
		if !ok {
			tag = code
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		connectors = append(connectors, tag)
	}
	if len(connectors) == 0 {
		return []string{models.DefaultConnector}
	}
	return connectors
}
