package provider

import (
	"fmt"
	"strings"
)

// PriceFree is reported when the provider signals free charging.
const PriceFree = "Free"

type tariff struct {
	currency string
	standard float64
	fast     float64
}

var defaultTariff = tariff{currency: "$", standard: 0.25, fast: 0.35}

var countryTariffs = map[string]tariff{
	"United States":  defaultTariff,
	"Canada":         {currency: "CAD$", standard: 0.30, fast: 0.45},
	"United Kingdom": {currency: "£", standard: 0.35, fast: 0.45},
	"Germany":        {currency: "€", standard: 0.40, fast: 0.55},
	"France":         {currency: "€", standard: 0.35, fast: 0.50},
	"Netherlands":    {currency: "€", standard: 0.45, fast: 0.65},
	"Norway":         {currency: "NOK", standard: 2.5, fast: 3.5},
	"Sweden":         {currency: "SEK", standard: 3.0, fast: 4.5},
	"India":          {currency: "₹", standard: 8, fast: 12},
	"China":          {currency: "¥", standard: 1.2, fast: 1.8},
	"Japan":          {currency: "¥", standard: 25, fast: 35},
	"Australia":      {currency: "AUD$", standard: 0.40, fast: 0.55},
}

// estimatePrice looks up the per-kWh tariff for a country, falling back to US dollars.
// Stations above 50 kW use the fast rate.
func estimatePrice(country string, powerKw float64) string {
	t, ok := countryTariffs[country]
	if !ok {
		t = defaultTariff
	}
	rate := t.standard
	if powerKw > 50 {
		rate = t.fast
	}
	return fmt.Sprintf("%s%.2f", t.currency, rate)
}

// nrelPrice keeps the provider's own pricing text when there is one.
func nrelPrice(evPricing string, powerKw float64) string {
	evPricing = strings.TrimSpace(evPricing)
	switch {
	case evPricing == "":
		return estimatePrice("United States", powerKw)
	case strings.Contains(strings.ToLower(evPricing), "free"):
		return PriceFree
	default:
		return evPricing
	}
}

func ocmPrice(usage *ocmUsageType, country string, powerKw float64) string {
	if usage != nil {
		if strings.Contains(strings.ToLower(usage.Title), "free") {
			return PriceFree
		}
		if usage.IsPayAtLocation != nil && !*usage.IsPayAtLocation {
			return PriceFree
		}
	}
	return estimatePrice(country, powerKw)
}
