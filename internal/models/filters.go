package models

// AllConnectors disables connector filtering.
const AllConnectors = "all"

// SearchFilters are the user-facing station search criteria.
type SearchFilters struct {
	Query                string `json:"query"`
	ConnectorType        string `json:"connectorType"`
	ShowAvailableOnly    bool   `json:"showAvailableOnly"`
	ShowFastChargingOnly bool   `json:"showFastChargingOnly"`
	Show24hOnly          bool   `json:"show24hOnly"`
	ShowFreeParkingOnly  bool   `json:"showFreeParkingOnly"`
}

func DefaultFilters() SearchFilters {
	return SearchFilters{ConnectorType: AllConnectors}
}
