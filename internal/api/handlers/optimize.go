package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/services"
)

const defaultMaxStopsPerRoute = 25

type OptimizeHandler struct {
	Geocoder  *services.Geocoder
	Optimizer *services.Optimizer
}

// Optimize runs the full pipeline for one batch: geocode, cluster the
// matched stops, solve a route per cluster, and return the routes with
// any unmatched inputs and per-cluster failures.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateOptimizeRequest(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	res, unmatched, err := runPipeline(r.Context(), h.Geocoder, h.Optimizer, req)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(res, unmatched))
}

func validateOptimizeRequest(req dto.OptimizeRequest) string {
	if msg := validateGeocodeRequest(req.GeocodeRequest); msg != "" {
		return msg
	}
	if req.MaxStopsPerRoute < 0 {
		return "max_stops_per_route must not be negative"
	}
	return ""
}

// runPipeline geocodes the batch and optimizes the matched stops. The
// returned slice holds the inputs that geocoding could not place.
func runPipeline(
	ctx context.Context,
	geocoder *services.Geocoder,
	optimizer *services.Optimizer,
	req dto.OptimizeRequest,
) (services.OptimizeResult, []domain.GeocodeResult, error) {
	svcReq, depotIdx := toServiceRequest(req.GeocodeRequest)

	results, err := geocoder.Geocode(ctx, svcReq)
	if err != nil {
		return services.OptimizeResult{}, nil, fmt.Errorf("geocode batch: %w", err)
	}

	var depot *domain.GeocodeResult
	stops := make([]domain.GeocodeResult, 0, len(results))
	var unmatched []domain.GeocodeResult
	for i := range results {
		if depotIdx != nil && i == *depotIdx {
			if !results[i].Matched() {
				return services.OptimizeResult{}, nil, fmt.Errorf(
					"depot %q: %s: %w", results[i].Address, results[i].ErrorDetail, services.ErrNoRoutableStops,
				)
			}
			depot = &results[i]
			continue
		}
		if !results[i].Matched() {
			unmatched = append(unmatched, results[i])
		}
		stops = append(stops, results[i])
	}

	maxStops := req.MaxStopsPerRoute
	if maxStops == 0 {
		maxStops = defaultMaxStopsPerRoute
	}

	res, err := optimizer.Optimize(ctx, services.OptimizeRequest{
		Stops:            stops,
		Depot:            depot,
		MaxStopsPerRoute: maxStops,
	})
	if err != nil {
		return services.OptimizeResult{}, nil, fmt.Errorf("optimize batch: %w", err)
	}

	return res, unmatched, nil
}

func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoRoutableStops):
		writeError(w, r, http.StatusUnprocessableEntity, "no stops could be placed on the map")
	case errors.Is(err, services.ErrClusterConfig):
		writeError(w, r, http.StatusBadRequest, "invalid clustering configuration")
	default:
		log.Printf("optimize pipeline failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
