package ports

import (
	"context"

	"route-optimizer-service/internal/domain"
)

// Place is one candidate location returned by the geocoding provider.
type Place struct {
	DisplayName string
	Coords      domain.Coordinates
}

// Contract for resolving a free-text address to candidate coordinates.
// Implementations own provider rate limiting: concurrent callers may
// submit queries, but outbound requests are dispatched serially.
type GeocodeProvider interface {
	// Return up to limit candidate places for the query, best first.
	// An empty slice with a nil error means the provider found nothing.
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}
