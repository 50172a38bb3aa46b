package ports

import "context"

// Port: a boundary for persisting resolved geocode results.
// The cache is a pure optimization over the provider: a miss is not an
// error, and cache write failures must never fail a geocoding batch.
type GeocodeCache interface {
	// Fetch cached places for the given address keys; absent keys are
	// simply omitted from the result map.
	GetMany(ctx context.Context, addresses []string) (map[string]Place, error)
	// Store address -> place mappings.
	PutMany(ctx context.Context, places map[string]Place) error
}
