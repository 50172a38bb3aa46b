package domain

// Cluster is a bounded-size group of geocoded stops assigned to one route.
// Clusters are produced by a Clusterer, consumed by a single optimizer
// invocation and discarded; they are never shared across goroutines.
type Cluster struct {
	ID      int
	Members []GeocodeResult
	// Anchor is the depot the cluster was grown against, nil when the
	// run has no depot.
	Anchor *GeocodeResult
}

// Stop is a geocoded location placed at a position in a route.
type Stop struct {
	GeocodeResult
	// Sequence is the zero-based visiting position within the route.
	Sequence int
}

// Route is the ordered visiting plan for one cluster.
// It is immutable planning data and contains no side effects.
// When a depot is configured the route is a round trip: the first and
// last stop are the depot.
type Route struct {
	Index              int
	Stops              []Stop
	TotalDistanceMiles float64
	// EstimatedDurationMinutes is zero when only locally estimated
	// distances are available.
	EstimatedDurationMinutes float64
	// Degraded marks a route produced by the local fallback after the
	// external solver failed.
	Degraded bool
}

// StopCount returns the number of delivery stops, excluding the depot
// legs of a round trip.
func (r Route) StopCount() int {
	n := len(r.Stops)
	if n >= 2 && r.Stops[0].Coords == r.Stops[n-1].Coords && r.Stops[0].Address == r.Stops[n-1].Address {
		return n - 2
	}
	return n
}

// DeliveryStops returns the stops excluding the depot legs of a round trip.
func (r Route) DeliveryStops() []Stop {
	n := len(r.Stops)
	if n >= 2 && r.Stops[0].Coords == r.Stops[n-1].Coords && r.Stops[0].Address == r.Stops[n-1].Address {
		return r.Stops[1 : n-1]
	}
	return r.Stops
}

// RouteSet is the full output of one optimization request, in cluster
// index order.
type RouteSet struct {
	Depot  *GeocodeResult
	Routes []Route
}

// TotalStops sums delivery stops across all routes, excluding depot legs.
func (s RouteSet) TotalStops() int {
	total := 0
	for _, r := range s.Routes {
		total += r.StopCount()
	}
	return total
}

// TotalDistanceMiles sums route distances across the set.
func (s RouteSet) TotalDistanceMiles() float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += r.TotalDistanceMiles
	}
	return total
}
