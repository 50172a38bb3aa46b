package dto

// GeocodeRequest carries an address batch to resolve. The depot, when
// present, anchors radius filtering and is reported separately from
// the stops.
type GeocodeRequest struct {
	DepotAddress string   `json:"depot_address"`
	Addresses    []string `json:"addresses"`
	// OriginalAddresses are optional display labels carried through
	// 1:1 with Addresses.
	OriginalAddresses []string `json:"original_addresses,omitempty"`
	Phones            []string `json:"phones,omitempty"`
	// RadiusMiles excludes matches farther than this geodesic distance
	// from the depot. Zero disables filtering.
	RadiusMiles float64 `json:"radius_miles"`
}

type GeocodeResultResponse struct {
	Address                string  `json:"address"`
	OriginalAddress        string  `json:"original_address,omitempty"`
	Phone                  string  `json:"phone,omitempty"`
	DisplayName            string  `json:"display_name,omitempty"`
	Lat                    float64 `json:"lat"`
	Lon                    float64 `json:"lon"`
	DistanceFromStartMiles float64 `json:"distance_from_start_miles"`
	Status                 string  `json:"status"`
	ErrorDetail            string  `json:"error_detail,omitempty"`
}

type GeocodeResponse struct {
	Depot *GeocodeResultResponse  `json:"depot,omitempty"`
	Stops []GeocodeResultResponse `json:"stops"`
}
