package services

import (
	"fmt"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/geo"
)

// ProximityClusterer partitions stops with greedy anchored growth.
//
// The first cluster is seeded with the stop nearest the depot; each
// cluster then grows by repeatedly absorbing the unassigned stop
// nearest its members' centroid, until it holds maxStopsPerRoute
// members. Subsequent clusters are seeded the same way from the
// remaining stops. All distances are road-adjusted.
//
// The algorithm does not attempt globally optimal partitioning; it
// prioritizes determinism and locality over optimality.
type ProximityClusterer struct{}

func NewProximityClusterer() *ProximityClusterer { return &ProximityClusterer{} }

// indexed pairs a stop with its position in the input, which serves as
// the deterministic tie-breaker for equal distances.
type indexed struct {
	stop  domain.GeocodeResult
	index int
}

func (c *ProximityClusterer) Cluster(
	stops []domain.GeocodeResult,
	depot *domain.GeocodeResult,
	maxStopsPerRoute int,
) ([]domain.Cluster, error) {
	if maxStopsPerRoute < 1 {
		return nil, fmt.Errorf("cluster stops: %w", ErrClusterConfig)
	}

	for _, s := range stops {
		if !s.Matched() {
			return nil, fmt.Errorf("cluster stops: %q: %w", s.Address, ErrUnmatchedStop)
		}
	}

	if len(stops) == 0 {
		return []domain.Cluster{}, nil
	}

	unassigned := make([]indexed, 0, len(stops))
	for i, s := range stops {
		unassigned = append(unassigned, indexed{stop: s, index: i})
	}

	var clusters []domain.Cluster
	var lastAdded domain.GeocodeResult

	for len(unassigned) > 0 {
		var seedPos int
		switch {
		case depot != nil:
			seedPos = nearestTo(unassigned, depot.Coords)
		case len(clusters) == 0:
			// No depot: the first cluster starts at the first stop
			// in input order.
			seedPos = 0
		default:
			seedPos = nearestTo(unassigned, lastAdded.Coords)
		}

		members := []domain.GeocodeResult{unassigned[seedPos].stop}
		lastAdded = unassigned[seedPos].stop
		unassigned = append(unassigned[:seedPos], unassigned[seedPos+1:]...)

		for len(members) < maxStopsPerRoute && len(unassigned) > 0 {
			centroid := clusterCentroid(members)
			pos := nearestTo(unassigned, centroid)
			members = append(members, unassigned[pos].stop)
			lastAdded = unassigned[pos].stop
			unassigned = append(unassigned[:pos], unassigned[pos+1:]...)
		}

		clusters = append(clusters, domain.Cluster{
			ID:      len(clusters),
			Members: members,
			Anchor:  depot,
		})
	}

	return clusters, nil
}

// nearestTo returns the position of the candidate nearest the target
// by road-adjusted distance. Ties go to the lower original input index,
// which candidates preserve by construction.
func nearestTo(candidates []indexed, target domain.Coordinates) int {
	best := 0
	bestDist := geo.RoadMiles(target, candidates[0].stop.Coords)
	for i := 1; i < len(candidates); i++ {
		d := geo.RoadMiles(target, candidates[i].stop.Coords)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func clusterCentroid(members []domain.GeocodeResult) domain.Coordinates {
	coords := make([]domain.Coordinates, len(members))
	for i, m := range members {
		coords[i] = m.Coords
	}
	return geo.Centroid(coords)
}
