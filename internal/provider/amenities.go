package provider

import (
	"strings"

	"github.com/bbernstein/chargeway/backend-go/internal/models"
)

// Amenity tags are inferred from loose provider metadata and are display hints only.

type amenitySet struct {
	tags []string
	seen map[string]bool
}

func newAmenitySet() *amenitySet {
	return &amenitySet{tags: []string{}, seen: map[string]bool{}}
}

func (a *amenitySet) add(tags ...string) {
	for _, t := range tags {
		if !a.seen[t] {
			a.seen[t] = true
			a.tags = append(a.tags, t)
		}
	}
}

type keywordAmenities struct {
	keywords []string
	tags     []string
}

var nrelFacilityAmenities = []keywordAmenities{
	{[]string{"shopping"}, []string{"Shopping", "Restrooms"}},
	{[]string{"hotel"}, []string{"Hotel", "Restrooms", "WiFi"}},
	{[]string{"restaurant"}, []string{"Restaurant", "Restrooms"}},
}

var ocmTitleAmenities = []keywordAmenities{
	{[]string{"hotel", "inn"}, []string{"Hotel", "Restrooms", "WiFi"}},
	{[]string{"shopping", "mall"}, []string{"Shopping", "Restrooms", "Food Court"}},
	{[]string{"restaurant", "cafe"}, []string{"Restaurant", "Restrooms"}},
	{[]string{"hospital", "medical"}, []string{"Medical Facility"}},
	{[]string{"university", "school"}, []string{"Educational Facility"}},
}

func (a *amenitySet) addKeywords(text string, table []keywordAmenities) {
	text = strings.ToLower(text)
	if text == "" {
		return
	}
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				a.add(entry.tags...)
				break
			}
		}
	}
}

func isParking(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "parking") || strings.Contains(text, "garage")
}

func nrelAmenities(s nrelStation, access24h bool, totalPorts int, powerKw float64, price string) []string {
	a := newAmenitySet()
	a.addKeywords(s.FacilityType, nrelFacilityAmenities)
	if s.WorkplaceCharging {
		a.add("Workplace Charging")
	}
	if access24h {
		a.add("24/7 Access")
	}
	if s.CardsAccepted != "" {
		a.add("Credit Cards Accepted")
	}
	if totalPorts >= 4 {
		a.add("Multiple Ports", "Covered Parking")
	}
	if powerKw >= models.FastChargingKw {
		a.add("Fast Charging", "Pull-through Access")
	}
	if price == PriceFree && isParking(s.FacilityType) {
		a.add(models.AmenityFreeParking)
	}
	return a.tags
}

func ocmAmenities(s ocmStation, operational bool, price string) []string {
	a := newAmenitySet()
	if operational {
		a.add("Operational")
	}
	if s.IsRecentlyVerified {
		a.add("Recently Verified")
	}
	if s.UsageType == nil || !s.UsageType.membershipRequired() {
		a.add("Public Access")
	}
	if s.UsageType != nil && s.UsageType.IsPayAtLocation != nil && !*s.UsageType.IsPayAtLocation {
		a.add("Free Charging")
	}
	a.addKeywords(s.AddressInfo.Title, ocmTitleAmenities)

	var reported float64
	for _, c := range s.Connections {
		if c.PowerKW != nil && *c.PowerKW > reported {
			reported = *c.PowerKW
		}
	}
	switch {
	case reported >= models.FastChargingKw:
		a.add("Fast Charging", "DC Fast Charging")
	case reported >= 22:
		a.add("Fast AC Charging")
	}
	if s.NumberOfPoints != nil && *s.NumberOfPoints > 2 {
		a.add("Multiple Ports")
	}
	if price == PriceFree && isParking(s.AddressInfo.Title) {
		a.add(models.AmenityFreeParking)
	}
	return a.tags
}
