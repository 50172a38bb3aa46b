package ports

import (
	"context"

	"route-optimizer-service/internal/domain"
)

// Contract for computing a visiting order over one cluster's stops.
// Two variants exist behind this capability: an external trip-solving
// service and a local nearest-neighbor heuristic. Callers select by a
// fixed priority list with explicit fallback on failure.
type RouteSolver interface {
	// Return a complete route over every cluster member. When the
	// cluster has an anchor the route is a round trip starting and
	// ending at it. A solver must fail with an error rather than
	// return a partial route.
	Solve(ctx context.Context, cluster domain.Cluster) (domain.Route, error)
}
