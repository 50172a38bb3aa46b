package gpx

import (
	"fmt"
	"strings"

	"route-optimizer-service/internal/domain"
)

// Manifest aggregates all routes of one optimization run in a
// structured, JSON-serializable form. The plain-text rendering is
// produced by Text.
type Manifest struct {
	DepotAddress       string          `json:"depot_address,omitempty"`
	TotalRoutes        int             `json:"total_routes"`
	TotalStops         int             `json:"total_stops"`
	TotalDistanceMiles float64         `json:"total_distance_miles"`
	Routes             []ManifestRoute `json:"routes"`
}

type ManifestRoute struct {
	RouteNumber     int            `json:"route_number"`
	StopCount       int            `json:"stop_count"`
	DistanceMiles   float64        `json:"distance_miles"`
	DurationMinutes float64        `json:"duration_minutes,omitempty"`
	Degraded        bool           `json:"degraded,omitempty"`
	Stops           []ManifestStop `json:"stops"`
}

type ManifestStop struct {
	Sequence    int     `json:"sequence"`
	Address     string  `json:"address"`
	DisplayName string  `json:"display_name,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// BuildManifest summarizes a route set.
func BuildManifest(set domain.RouteSet) Manifest {
	m := Manifest{
		TotalRoutes:        len(set.Routes),
		TotalStops:         set.TotalStops(),
		TotalDistanceMiles: set.TotalDistanceMiles(),
		Routes:             make([]ManifestRoute, 0, len(set.Routes)),
	}
	if set.Depot != nil {
		m.DepotAddress = set.Depot.Label()
	}

	for i, route := range set.Routes {
		mr := ManifestRoute{
			RouteNumber:     i + 1,
			StopCount:       route.StopCount(),
			DistanceMiles:   route.TotalDistanceMiles,
			DurationMinutes: route.EstimatedDurationMinutes,
			Degraded:        route.Degraded,
		}

		for j, stop := range route.DeliveryStops() {
			mr.Stops = append(mr.Stops, ManifestStop{
				Sequence:    j + 1,
				Address:     stop.Label(),
				DisplayName: stop.DisplayName,
				Phone:       stop.Phone,
				Lat:         stop.Coords.Lat,
				Lon:         stop.Coords.Lon,
			})
		}

		m.Routes = append(m.Routes, mr)
	}

	return m
}

// Text renders the manifest as a printable summary. The rendering
// carries no timestamps so identical input yields identical bytes.
func (m Manifest) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "DELIVERY ROUTE MANIFEST")
	fmt.Fprintln(&b, rule)

	if m.DepotAddress != "" {
		fmt.Fprintf(&b, "Depot: %s\n", m.DepotAddress)
	}
	fmt.Fprintf(&b, "Total Routes: %d\n", m.TotalRoutes)
	fmt.Fprintf(&b, "Total Stops: %d\n", m.TotalStops)
	if m.TotalDistanceMiles > 0 {
		fmt.Fprintf(&b, "Total Distance: %.1f miles\n", m.TotalDistanceMiles)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, thin)

	for _, route := range m.Routes {
		fmt.Fprintf(&b, "ROUTE %d\n", route.RouteNumber)
		fmt.Fprintf(&b, "Stops: %d\n", route.StopCount)
		if route.DistanceMiles > 0 {
			fmt.Fprintf(&b, "Distance: %.1f miles\n", route.DistanceMiles)
		}
		if route.DurationMinutes > 0 {
			fmt.Fprintf(&b, "Est. Duration: %.0f min\n", route.DurationMinutes)
		}
		fmt.Fprintln(&b)

		for _, stop := range route.Stops {
			fmt.Fprintf(&b, "  %d. %s\n", stop.Sequence, stop.Address)
			if stop.DisplayName != "" && stop.DisplayName != stop.Address {
				fmt.Fprintf(&b, "     %s\n", stop.DisplayName)
			}
			if stop.Phone != "" {
				fmt.Fprintf(&b, "     Phone: %s\n", stop.Phone)
			}
		}

		fmt.Fprintln(&b, thin)
	}

	return b.String()
}
