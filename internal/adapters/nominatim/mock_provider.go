package nominatim

import (
	"context"

	"route-optimizer-service/internal/ports"
)

// MockProvider serves canned search results for tests.
type MockProvider struct {
	// Places maps a query string to its candidate results.
	Places map[string][]ports.Place
	// Errs maps a query string to a forced error.
	Errs map[string]error
	// Queries records every query in submission order.
	Queries []string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Places: map[string][]ports.Place{},
		Errs:   map[string]error{},
	}
}

func (m *MockProvider) Search(ctx context.Context, query string, limit int) ([]ports.Place, error) {
	m.Queries = append(m.Queries, query)

	if err, ok := m.Errs[query]; ok {
		return nil, err
	}

	places := m.Places[query]
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}
