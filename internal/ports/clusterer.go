package ports

import "route-optimizer-service/internal/domain"

// Contract for partitioning geocoded stops into bounded-size clusters.
// Any implementation must produce an exact partition: every input stop
// appears in exactly one cluster and 1 <= |members| <= maxStopsPerRoute.
// Output must be deterministic for a given input ordering.
type Clusterer interface {
	Cluster(stops []domain.GeocodeResult, depot *domain.GeocodeResult, maxStopsPerRoute int) ([]domain.Cluster, error)
}
