package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/services"
)

const maxBatchSize = 500

type GeocodeHandler struct {
	Service *services.Geocoder
}

// Geocode resolves a batch of addresses, resolving the depot first so
// its coordinates anchor radius filtering for the rest.
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.GeocodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateGeocodeRequest(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	svcReq, depotIdx := toServiceRequest(req)
	results, err := h.Service.Geocode(r.Context(), svcReq)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "geocoding was interrupted")
		return
	}

	res := dto.GeocodeResponse{Stops: make([]dto.GeocodeResultResponse, 0, len(results))}
	for i, gr := range results {
		mapped := toGeocodeResult(gr)
		if depotIdx != nil && i == *depotIdx {
			res.Depot = &mapped
			continue
		}
		res.Stops = append(res.Stops, mapped)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// decodeBody decodes a single JSON object into v, rejecting unknown
// fields and trailing content. It writes the error response itself and
// reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func validateGeocodeRequest(req dto.GeocodeRequest) string {
	if len(req.Addresses) == 0 {
		return "addresses is required"
	}
	if len(req.Addresses) > maxBatchSize {
		return "too many addresses in one batch"
	}
	if req.RadiusMiles < 0 {
		return "radius_miles must not be negative"
	}
	if req.RadiusMiles > 0 && strings.TrimSpace(req.DepotAddress) == "" {
		return "radius_miles requires a depot_address"
	}
	return ""
}

// toServiceRequest prepends the depot, when present, at index zero so
// the service resolves it before the stops.
func toServiceRequest(req dto.GeocodeRequest) (services.GeocodeRequest, *int) {
	out := services.GeocodeRequest{RadiusMiles: req.RadiusMiles}

	var depotIdx *int
	if strings.TrimSpace(req.DepotAddress) != "" {
		zero := 0
		depotIdx = &zero
		out.Addresses = append(out.Addresses, req.DepotAddress)
		if len(req.OriginalAddresses) > 0 {
			out.OriginalAddresses = append(out.OriginalAddresses, req.DepotAddress)
		}
		if len(req.Phones) > 0 {
			out.Phones = append(out.Phones, "")
		}
	}

	out.Addresses = append(out.Addresses, req.Addresses...)
	out.OriginalAddresses = append(out.OriginalAddresses, req.OriginalAddresses...)
	out.Phones = append(out.Phones, req.Phones...)
	out.DepotIndex = depotIdx

	return out, depotIdx
}
