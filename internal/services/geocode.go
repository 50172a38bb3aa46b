package services

import (
	"context"
	"fmt"
	"log"

	"route-optimizer-service/internal/address"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/geo"
	"route-optimizer-service/internal/platform/obs"
	"route-optimizer-service/internal/ports"
)

const candidateLimit = 5

type GeocodeRequest struct {
	Addresses []string
	// OriginalAddresses are display labels carried through 1:1 with
	// Addresses; a short or nil slice falls back to the query string.
	OriginalAddresses []string
	// Phones are optional contact details carried through 1:1.
	Phones []string
	// DepotIndex designates one address as the route start/end. Nil
	// means no depot; radius filtering is then disabled.
	DepotIndex *int
	// RadiusMiles excludes candidates farther than this geodesic
	// distance from the depot. Zero disables filtering.
	RadiusMiles float64
}

// Geocoder resolves address batches through a provider, retrying each
// address with bounded textual variations and filtering candidates by
// depot radius. A persistent cache, when configured, is consulted
// before the provider and written behind it.
type Geocoder struct {
	Provider ports.GeocodeProvider
	// Cache may be nil.
	Cache ports.GeocodeCache
}

// Geocode resolves every address in the request, in input order, one
// result per input. Per-address failures are recorded on the result,
// never raised; the returned error is reserved for context
// cancellation.
//
// Lookups run sequentially: the provider serializes outbound requests
// through its rate gate, so parallel submission buys nothing here.
func (g *Geocoder) Geocode(ctx context.Context, req GeocodeRequest) (_ []domain.GeocodeResult, err error) {
	defer obs.Time(ctx, "geocode.batch")(&err)

	if len(req.Addresses) == 0 {
		return []domain.GeocodeResult{}, nil
	}

	results := make([]domain.GeocodeResult, len(req.Addresses))

	// The depot is resolved first so its coordinates can drive radius
	// filtering for every other address.
	var depotCoords *domain.Coordinates
	if req.DepotIndex != nil && *req.DepotIndex >= 0 && *req.DepotIndex < len(req.Addresses) {
		i := *req.DepotIndex
		results[i] = g.resolveOne(ctx, req, i, nil)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if results[i].Matched() {
			c := results[i].Coords
			depotCoords = &c
		}
	}

	for i := range req.Addresses {
		if req.DepotIndex != nil && i == *req.DepotIndex {
			continue
		}
		results[i] = g.resolveOne(ctx, req, i, depotCoords)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// resolveOne geocodes a single address: cache first, then the provider
// once per variation until a candidate passes the radius filter or the
// variations are exhausted.
func (g *Geocoder) resolveOne(
	ctx context.Context,
	req GeocodeRequest,
	idx int,
	depotCoords *domain.Coordinates,
) domain.GeocodeResult {
	result := domain.GeocodeResult{
		Address:         address.Normalize(req.Addresses[idx]),
		OriginalAddress: passthrough(req.OriginalAddresses, idx),
		Phone:           passthrough(req.Phones, idx),
	}

	variations := address.Variations(result.Address)
	if len(variations) == 0 {
		result.Status = domain.StatusNoMatch
		result.ErrorDetail = "empty address"
		return result
	}

	// Track the nearest rejected candidate so out-of-radius results
	// stay distinguishable from not-found.
	bestRejected := ports.Place{}
	bestRejectedMiles := -1.0

	if place, ok := g.cached(ctx, result.Address); ok {
		if depotCoords == nil || req.RadiusMiles <= 0 {
			return accept(result, place, depotCoords)
		}
		miles := geo.Miles(*depotCoords, place.Coords)
		if miles <= req.RadiusMiles {
			return accept(result, place, depotCoords)
		}
		// The cache holds one accepted place per address, so a hit
		// that fails the current radius says nothing about the
		// provider's other candidates. Treat it as a miss and scan.
		bestRejected = place
		bestRejectedMiles = miles
	}

	for _, query := range variations {
		places, err := g.Provider.Search(ctx, query, candidateLimit)
		if err != nil {
			result.Status = domain.StatusError
			result.ErrorDetail = err.Error()
			return result
		}

		for _, place := range places {
			if depotCoords == nil || req.RadiusMiles <= 0 {
				g.store(ctx, result.Address, place)
				return accept(result, place, depotCoords)
			}

			miles := geo.Miles(*depotCoords, place.Coords)
			if miles <= req.RadiusMiles {
				g.store(ctx, result.Address, place)
				return accept(result, place, depotCoords)
			}
			if bestRejectedMiles < 0 || miles < bestRejectedMiles {
				bestRejected = place
				bestRejectedMiles = miles
			}
		}
	}

	if bestRejectedMiles >= 0 {
		result.Status = domain.StatusOutOfRadius
		result.ErrorDetail = fmt.Sprintf(
			"best match %q is %.1f mi from the depot (radius %.0f mi)",
			bestRejected.DisplayName, bestRejectedMiles, req.RadiusMiles,
		)
		return result
	}

	result.Status = domain.StatusNoMatch
	result.ErrorDetail = fmt.Sprintf("no match after %d variations", len(variations))
	return result
}

func (g *Geocoder) cached(ctx context.Context, addr string) (ports.Place, bool) {
	if g.Cache == nil {
		return ports.Place{}, false
	}
	hits, err := g.Cache.GetMany(ctx, []string{addr})
	if err != nil {
		log.Printf("geocode cache read failed addr=%q err=%v", addr, err)
		return ports.Place{}, false
	}
	place, ok := hits[addr]
	return place, ok
}

func (g *Geocoder) store(ctx context.Context, addr string, place ports.Place) {
	if g.Cache == nil {
		return
	}
	if err := g.Cache.PutMany(ctx, map[string]ports.Place{addr: place}); err != nil {
		log.Printf("geocode cache write failed addr=%q err=%v", addr, err)
	}
}

func accept(result domain.GeocodeResult, place ports.Place, depotCoords *domain.Coordinates) domain.GeocodeResult {
	result.Status = domain.StatusMatched
	result.DisplayName = place.DisplayName
	result.Coords = place.Coords
	if depotCoords != nil {
		result.DistanceFromStartMiles = geo.Miles(*depotCoords, place.Coords)
	}
	return result
}

func passthrough(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}
	return ""
}
