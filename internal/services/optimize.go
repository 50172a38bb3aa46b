package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

const (
	defaultSolverTimeout = 30 * time.Second
	defaultConcurrency   = 4
)

// Optimizer turns geocoded stops into a RouteSet: cluster, then solve
// each cluster with the primary solver, falling back to the local
// heuristic when the primary fails or times out.
//
// Cluster solves run concurrently since they are independent; a
// failure or timeout on one cluster never blocks or fails the others.
// Results are reassembled in cluster index order regardless of
// completion order.
type Optimizer struct {
	Clusterer ports.Clusterer
	// Primary is the external trip solver; nil disables it and every
	// cluster is solved by Fallback directly.
	Primary  ports.RouteSolver
	Fallback ports.RouteSolver

	// SolverTimeout bounds each primary solver call.
	SolverTimeout time.Duration
	// Concurrency bounds simultaneous cluster solves.
	Concurrency int
}

type OptimizeRequest struct {
	Stops            []domain.GeocodeResult
	Depot            *domain.GeocodeResult
	MaxStopsPerRoute int
}

// OptimizeResult carries routed clusters alongside per-cluster
// failures; a failed cluster never discards its siblings' routes.
type OptimizeResult struct {
	RouteSet domain.RouteSet
	Failures []ClusterFailure
	// Degraded is set when any cluster fell back to the local
	// heuristic.
	Degraded bool
}

// perCluster is the outcome slot for one cluster, filled concurrently
// and assembled after all solves complete.
type perCluster struct {
	route    domain.Route
	degraded bool
	err      error
}

// Optimize runs the pipeline tail: filter to matched stops, cluster,
// solve per cluster, assemble. Matched-stop filtering happens here, at
// the stage boundary, so unmatched results never reach the Clusterer.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeResult, error) {
	if o.Fallback == nil {
		return OptimizeResult{}, fmt.Errorf("optimize: fallback solver is required")
	}
	if req.MaxStopsPerRoute < 1 {
		return OptimizeResult{}, fmt.Errorf("optimize: %w", ErrClusterConfig)
	}

	matched := make([]domain.GeocodeResult, 0, len(req.Stops))
	for _, s := range req.Stops {
		if s.Matched() {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return OptimizeResult{}, fmt.Errorf("optimize: %w", ErrNoRoutableStops)
	}

	clusters, err := o.Clusterer.Cluster(matched, req.Depot, req.MaxStopsPerRoute)
	if err != nil {
		return OptimizeResult{}, fmt.Errorf("optimize: %w", err)
	}

	outcomes := make([]perCluster, len(clusters))

	g := new(errgroup.Group)
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	g.SetLimit(concurrency)

	for i, cl := range clusters {
		i, cl := i, cl
		g.Go(func() error {
			outcomes[i] = o.solveCluster(ctx, cl)
			// Per-cluster failures are collected, never propagated:
			// returning an error here would cancel sibling solves.
			return nil
		})
	}
	_ = g.Wait()

	result := OptimizeResult{
		RouteSet: domain.RouteSet{
			Depot:  req.Depot,
			Routes: make([]domain.Route, 0, len(clusters)),
		},
	}

	for i, out := range outcomes {
		if out.err != nil {
			result.Failures = append(result.Failures, ClusterFailure{
				ClusterID: clusters[i].ID,
				StopCount: len(clusters[i].Members),
				Err:       out.err,
			})
			continue
		}
		if out.degraded {
			result.Degraded = true
		}
		result.RouteSet.Routes = append(result.RouteSet.Routes, out.route)
	}

	sort.Slice(result.RouteSet.Routes, func(a, b int) bool {
		return result.RouteSet.Routes[a].Index < result.RouteSet.Routes[b].Index
	})

	return result, nil
}

func (o *Optimizer) solveCluster(ctx context.Context, cluster domain.Cluster) perCluster {
	if o.Primary != nil {
		timeout := o.SolverTimeout
		if timeout <= 0 {
			timeout = defaultSolverTimeout
		}

		solveCtx, cancel := context.WithTimeout(ctx, timeout)
		route, err := o.Primary.Solve(solveCtx, cluster)
		cancel()

		if err == nil {
			err = validateRoute(route, cluster)
		}
		if err == nil {
			route.Index = cluster.ID
			return perCluster{route: route}
		}
		log.Printf("cluster=%d primary solver failed, using fallback: %v", cluster.ID, err)
	}

	route, err := o.Fallback.Solve(ctx, cluster)
	if err != nil {
		return perCluster{err: err}
	}
	if err := validateRoute(route, cluster); err != nil {
		return perCluster{err: err}
	}
	route.Index = cluster.ID
	route.Degraded = o.Primary != nil

	return perCluster{route: route, degraded: route.Degraded}
}

// validateRoute checks solver output against the route invariants:
// every cluster member visited exactly once (anchor exactly twice in
// round-trip mode), contiguous sequence numbers from zero, and a
// non-negative total distance. A violating route is treated as a
// solver failure, never returned to the caller.
func validateRoute(route domain.Route, cluster domain.Cluster) error {
	wantLen := len(cluster.Members)
	if cluster.Anchor != nil {
		wantLen += 2
	}
	if len(route.Stops) != wantLen {
		return fmt.Errorf("route has %d stops, want %d", len(route.Stops), wantLen)
	}

	for i, s := range route.Stops {
		if s.Sequence != i {
			return fmt.Errorf("stop %d has sequence %d", i, s.Sequence)
		}
	}

	if route.TotalDistanceMiles < 0 {
		return fmt.Errorf("negative total distance %f", route.TotalDistanceMiles)
	}

	visits := make(map[domain.Coordinates]int, len(route.Stops))
	for _, s := range route.Stops {
		visits[s.Coords]++
	}
	if cluster.Anchor != nil {
		if visits[cluster.Anchor.Coords] < 2 {
			return fmt.Errorf("round trip does not visit the depot twice")
		}
		visits[cluster.Anchor.Coords] -= 2
	}
	for _, m := range cluster.Members {
		if visits[m.Coords] < 1 {
			return fmt.Errorf("stop %q missing from route", m.Address)
		}
		visits[m.Coords]--
	}

	return nil
}
