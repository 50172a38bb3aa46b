package dto

// OptimizeRequest runs the full pipeline: geocode the batch, cluster
// the matched stops, and solve a route per cluster.
type OptimizeRequest struct {
	GeocodeRequest
	// MaxStopsPerRoute caps cluster size. Zero uses the server default.
	MaxStopsPerRoute int `json:"max_stops_per_route"`
}

type RouteStopResponse struct {
	Sequence    int     `json:"sequence"`
	Address     string  `json:"address"`
	DisplayName string  `json:"display_name,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type RouteResponse struct {
	RouteNumber              int                 `json:"route_number"`
	StopCount                int                 `json:"stop_count"`
	TotalDistanceMiles       float64             `json:"total_distance_miles"`
	EstimatedDurationMinutes float64             `json:"estimated_duration_minutes"`
	Degraded                 bool                `json:"degraded"`
	Stops                    []RouteStopResponse `json:"stops"`
}

type ClusterFailureResponse struct {
	ClusterID int    `json:"cluster_id"`
	StopCount int    `json:"stop_count"`
	Error     string `json:"error"`
}

type OptimizeResponse struct {
	Depot    *GeocodeResultResponse `json:"depot,omitempty"`
	Routes   []RouteResponse        `json:"routes"`
	Degraded bool                   `json:"degraded"`
	// Unmatched lists inputs that geocoding could not place; they are
	// excluded from every route.
	Unmatched []GeocodeResultResponse  `json:"unmatched,omitempty"`
	Failures  []ClusterFailureResponse `json:"failures,omitempty"`
}
