package services

import (
	"context"
	"errors"
	"fmt"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/geo"
)

// NearestNeighborSolver orders a cluster's stops with a greedy
// nearest-neighbor walk over road-adjusted distances.
//
// It is the local fallback behind the external trip solver: always
// available, deterministic, and free of external calls. It does not
// attempt global route optimization.
type NearestNeighborSolver struct{}

func NewNearestNeighborSolver() *NearestNeighborSolver { return &NearestNeighborSolver{} }

// Solve walks from the cluster anchor (or the cluster's seed stop when
// no anchor exists) to the nearest unvisited member until all members
// are visited. With an anchor the route closes back at it, forming a
// round trip. Ties are broken by member order, so output is
// deterministic for a given cluster.
func (s *NearestNeighborSolver) Solve(ctx context.Context, cluster domain.Cluster) (domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return domain.Route{}, err
	}
	if len(cluster.Members) == 0 {
		return domain.Route{}, errors.New("nearest neighbor: cluster has no members")
	}
	for _, m := range cluster.Members {
		if !m.Matched() {
			return domain.Route{}, fmt.Errorf("nearest neighbor: %q: %w", m.Address, ErrUnmatchedStop)
		}
	}

	remaining := make([]domain.GeocodeResult, len(cluster.Members))
	copy(remaining, cluster.Members)

	stops := make([]domain.Stop, 0, len(remaining)+2)
	total := 0.0

	var current domain.Coordinates
	if cluster.Anchor != nil {
		stops = append(stops, domain.Stop{GeocodeResult: *cluster.Anchor, Sequence: 0})
		current = cluster.Anchor.Coords
	} else {
		// The cluster seed opens the route.
		stops = append(stops, domain.Stop{GeocodeResult: remaining[0], Sequence: 0})
		current = remaining[0].Coords
		remaining = remaining[1:]
	}

	for len(remaining) > 0 {
		best := 0
		bestDist := geo.RoadMiles(current, remaining[0].Coords)
		for i := 1; i < len(remaining); i++ {
			if d := geo.RoadMiles(current, remaining[i].Coords); d < bestDist {
				best = i
				bestDist = d
			}
		}

		total += bestDist
		stops = append(stops, domain.Stop{GeocodeResult: remaining[best], Sequence: len(stops)})
		current = remaining[best].Coords
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	if cluster.Anchor != nil {
		total += geo.RoadMiles(current, cluster.Anchor.Coords)
		stops = append(stops, domain.Stop{GeocodeResult: *cluster.Anchor, Sequence: len(stops)})
	}

	return domain.Route{
		Index:              cluster.ID,
		Stops:              stops,
		TotalDistanceMiles: total,
	}, nil
}
