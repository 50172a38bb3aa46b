package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"route-optimizer-service/internal/adapters/nominatim"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

type stubCache struct {
	places map[string]ports.Place
	puts   int
}

func (c *stubCache) GetMany(ctx context.Context, addresses []string) (map[string]ports.Place, error) {
	out := map[string]ports.Place{}
	for _, a := range addresses {
		if p, ok := c.places[a]; ok {
			out[a] = p
		}
	}
	return out, nil
}

func (c *stubCache) PutMany(ctx context.Context, places map[string]ports.Place) error {
	c.puts++
	for k, v := range places {
		c.places[k] = v
	}
	return nil
}

func TestGeocodeEmptyInput(t *testing.T) {
	provider := nominatim.NewMockProvider()
	g := &Geocoder{Provider: provider}

	results, err := g.Geocode(context.Background(), GeocodeRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty output, got %d results", len(results))
	}
	if len(provider.Queries) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(provider.Queries))
	}
}

func TestGeocodeVerbatimMatch(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["123 Main St, Minneapolis, MN 55401"] = []ports.Place{{
		DisplayName: "123, Main Street, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.9778, Lon: -93.2650},
	}}

	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"123 Main St, Minneapolis, MN 55401"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Status != domain.StatusMatched {
		t.Fatalf("status = %q, want matched (detail: %s)", r.Status, r.ErrorDetail)
	}
	if r.Coords.Lat < 44.97 || r.Coords.Lat > 44.99 {
		t.Errorf("lat = %f, want ~44.9778", r.Coords.Lat)
	}
	if r.Coords.Lon > -93.26 || r.Coords.Lon < -93.27 {
		t.Errorf("lon = %f, want ~-93.2650", r.Coords.Lon)
	}
	if len(provider.Queries) != 1 {
		t.Errorf("expected a single provider call, got %d", len(provider.Queries))
	}
}

func TestGeocodeRetriesVariations(t *testing.T) {
	provider := nominatim.NewMockProvider()
	// Only the unit-stripped variation resolves.
	provider.Places["500 Oak Ave, St Paul, MN"] = []ports.Place{{
		DisplayName: "500, Oak Avenue, Saint Paul, MN",
		Coords:      domain.Coordinates{Lat: 44.95, Lon: -93.09},
	}}

	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"500 Oak Ave Suite 210, St Paul, MN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Status != domain.StatusMatched {
		t.Fatalf("status = %q, want matched", results[0].Status)
	}
	if len(provider.Queries) < 2 {
		t.Fatalf("expected variation retries, got queries %v", provider.Queries)
	}
	if provider.Queries[0] != "500 Oak Ave Suite 210, St Paul, MN" {
		t.Errorf("first query must be verbatim, got %q", provider.Queries[0])
	}
}

func TestGeocodeNoMatchAfterAllVariations(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["77 Known Rd, Duluth, MN"] = []ports.Place{{
		DisplayName: "77, Known Road, Duluth, MN",
		Coords:      domain.Coordinates{Lat: 46.78, Lon: -92.10},
	}}

	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"1 Nonexistent Way, Nowhere, ZZ", "77 Known Rd, Duluth, MN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Status != domain.StatusNoMatch {
		t.Fatalf("status = %q, want no_match", results[0].Status)
	}
	if results[0].ErrorDetail == "" {
		t.Error("no_match result must carry detail")
	}
	// The rest of the batch still resolves.
	if results[1].Status != domain.StatusMatched {
		t.Fatalf("second result status = %q, want matched", results[1].Status)
	}
}

func TestGeocodeProviderErrorIsAValue(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Errs["10 Broken St, Minneapolis, MN"] = errors.New("upstream timeout")
	provider.Places["20 Fine St, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "20, Fine Street, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.98, Lon: -93.26},
	}}

	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"10 Broken St, Minneapolis, MN", "20 Fine St, Minneapolis, MN"},
	})
	if err != nil {
		t.Fatalf("batch must not fail on a per-address provider error: %v", err)
	}

	if results[0].Status != domain.StatusError {
		t.Fatalf("status = %q, want error", results[0].Status)
	}
	if results[0].ErrorDetail != "upstream timeout" {
		t.Errorf("error detail = %q", results[0].ErrorDetail)
	}
	if results[1].Status != domain.StatusMatched {
		t.Fatalf("second result status = %q, want matched", results[1].Status)
	}
}

func TestGeocodeRadiusFilter(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["Depot, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "Depot, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.9778, Lon: -93.2650},
	}}
	// Chicago is roughly 355 miles from Minneapolis.
	provider.Places["123 Far Away Pl, Chicago, IL"] = []ports.Place{{
		DisplayName: "123, Far Away Place, Chicago, IL",
		Coords:      domain.Coordinates{Lat: 41.8781, Lon: -87.6298},
	}}
	provider.Places["9 Near St, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "9, Near Street, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.99, Lon: -93.27},
	}}

	depotIdx := 0
	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{
			"Depot, Minneapolis, MN",
			"123 Far Away Pl, Chicago, IL",
			"9 Near St, Minneapolis, MN",
		},
		DepotIndex:  &depotIdx,
		RadiusMiles: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Status != domain.StatusMatched {
		t.Fatalf("depot status = %q, want matched", results[0].Status)
	}
	if results[0].DistanceFromStartMiles != 0 {
		t.Errorf("depot distance from start = %f, want 0", results[0].DistanceFromStartMiles)
	}

	if results[1].Status != domain.StatusOutOfRadius {
		t.Fatalf("far stop status = %q, want out_of_radius", results[1].Status)
	}
	if results[1].ErrorDetail == "" {
		t.Error("out_of_radius result must carry best-distance detail")
	}

	if results[2].Status != domain.StatusMatched {
		t.Fatalf("near stop status = %q, want matched", results[2].Status)
	}
	if results[2].DistanceFromStartMiles <= 0 {
		t.Errorf("near stop distance from start = %f, want > 0", results[2].DistanceFromStartMiles)
	}
}

func TestGeocodeUsesCache(t *testing.T) {
	provider := nominatim.NewMockProvider()
	cache := &stubCache{places: map[string]ports.Place{
		"123 Main St, Minneapolis, MN": {
			DisplayName: "cached",
			Coords:      domain.Coordinates{Lat: 44.97, Lon: -93.26},
		},
	}}

	g := &Geocoder{Provider: provider, Cache: cache}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"123 Main St, Minneapolis, MN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Status != domain.StatusMatched {
		t.Fatalf("status = %q, want matched", results[0].Status)
	}
	if results[0].DisplayName != "cached" {
		t.Errorf("display name = %q, want cache hit", results[0].DisplayName)
	}
	if len(provider.Queries) != 0 {
		t.Errorf("cache hit must not reach the provider, got queries %v", provider.Queries)
	}
}

func TestGeocodeCacheHitOutsideRadiusFallsBackToProvider(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["Depot, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "Depot, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.9778, Lon: -93.2650},
	}}
	// The provider knows a candidate inside the radius for this
	// address; the cache holds a far one from an unfiltered run.
	provider.Places["40 Shared Rd, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "near match",
		Coords:      domain.Coordinates{Lat: 44.99, Lon: -93.27},
	}}
	cache := &stubCache{places: map[string]ports.Place{
		"40 Shared Rd, Minneapolis, MN": {
			DisplayName: "far match",
			Coords:      domain.Coordinates{Lat: 41.8781, Lon: -87.6298},
		},
	}}

	depotIdx := 0
	g := &Geocoder{Provider: provider, Cache: cache}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses:   []string{"Depot, Minneapolis, MN", "40 Shared Rd, Minneapolis, MN"},
		DepotIndex:  &depotIdx,
		RadiusMiles: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A warm cache must not change the outcome a cold run would reach.
	if results[1].Status != domain.StatusMatched {
		t.Fatalf("status = %q (detail: %s), want matched via provider scan",
			results[1].Status, results[1].ErrorDetail)
	}
	if results[1].DisplayName != "near match" {
		t.Errorf("display name = %q, want the provider's in-radius candidate", results[1].DisplayName)
	}
	if got := cache.places["40 Shared Rd, Minneapolis, MN"].DisplayName; got != "near match" {
		t.Errorf("cache still holds %q, want refreshed to the accepted place", got)
	}
}

func TestGeocodeCacheHitOutsideRadiusSeedsBestRejected(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["Depot, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "Depot, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.9778, Lon: -93.2650},
	}}
	cache := &stubCache{places: map[string]ports.Place{
		"50 Remote Rd, Chicago, IL": {
			DisplayName: "cached far match",
			Coords:      domain.Coordinates{Lat: 41.8781, Lon: -87.6298},
		},
	}}

	depotIdx := 0
	g := &Geocoder{Provider: provider, Cache: cache}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses:   []string{"Depot, Minneapolis, MN", "50 Remote Rd, Chicago, IL"},
		DepotIndex:  &depotIdx,
		RadiusMiles: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The provider has nothing better, so the cached place still
	// drives the out-of-radius detail rather than a bare no_match.
	if results[1].Status != domain.StatusOutOfRadius {
		t.Fatalf("status = %q, want out_of_radius", results[1].Status)
	}
	if !strings.Contains(results[1].ErrorDetail, "cached far match") {
		t.Errorf("detail = %q, want it to name the cached candidate", results[1].ErrorDetail)
	}
	if len(provider.Queries) == 0 {
		t.Error("a rejected cache hit must still scan the provider")
	}
}

func TestGeocodeWritesCacheBehind(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["30 New St, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "30, New Street, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.98, Lon: -93.25},
	}}
	cache := &stubCache{places: map[string]ports.Place{}}

	g := &Geocoder{Provider: provider, Cache: cache}
	_, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"30 New St, Minneapolis, MN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.puts != 1 {
		t.Fatalf("expected 1 cache write, got %d", cache.puts)
	}
	if _, ok := cache.places["30 New St, Minneapolis, MN"]; !ok {
		t.Error("resolved place missing from cache")
	}
}

func TestGeocodeDuplicatesResolvedIndependently(t *testing.T) {
	provider := nominatim.NewMockProvider()
	provider.Places["5 Twin Ct, Minneapolis, MN"] = []ports.Place{{
		DisplayName: "5, Twin Court, Minneapolis, MN",
		Coords:      domain.Coordinates{Lat: 44.96, Lon: -93.24},
	}}

	g := &Geocoder{Provider: provider}
	results, err := g.Geocode(context.Background(), GeocodeRequest{
		Addresses: []string{"5 Twin Ct, Minneapolis, MN", "5 Twin Ct, Minneapolis, MN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Status != domain.StatusMatched {
			t.Errorf("result %d status = %q, want matched", i, r.Status)
		}
	}
	if len(provider.Queries) != 2 {
		t.Errorf("duplicates must each be geocoded, got %d provider calls", len(provider.Queries))
	}
}
