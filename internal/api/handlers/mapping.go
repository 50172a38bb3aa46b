package handlers

import (
	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/services"
)

func toGeocodeResult(r domain.GeocodeResult) dto.GeocodeResultResponse {
	return dto.GeocodeResultResponse{
		Address:                r.Address,
		OriginalAddress:        r.OriginalAddress,
		Phone:                  r.Phone,
		DisplayName:            r.DisplayName,
		Lat:                    r.Coords.Lat,
		Lon:                    r.Coords.Lon,
		DistanceFromStartMiles: r.DistanceFromStartMiles,
		Status:                 string(r.Status),
		ErrorDetail:            r.ErrorDetail,
	}
}

// toRouteResponse numbers the route by its one-based position in the
// assembled set, the same numbering the exported GPX files and
// manifest use.
func toRouteResponse(route domain.Route, number int) dto.RouteResponse {
	stops := make([]dto.RouteStopResponse, 0, len(route.Stops))
	for _, s := range route.Stops {
		stops = append(stops, dto.RouteStopResponse{
			Sequence:    s.Sequence,
			Address:     s.Label(),
			DisplayName: s.DisplayName,
			Phone:       s.Phone,
			Lat:         s.Coords.Lat,
			Lon:         s.Coords.Lon,
		})
	}

	return dto.RouteResponse{
		RouteNumber:              number,
		StopCount:                route.StopCount(),
		TotalDistanceMiles:       route.TotalDistanceMiles,
		EstimatedDurationMinutes: route.EstimatedDurationMinutes,
		Degraded:                 route.Degraded,
		Stops:                    stops,
	}
}

func toOptimizeResponse(res services.OptimizeResult, unmatched []domain.GeocodeResult) dto.OptimizeResponse {
	out := dto.OptimizeResponse{
		Routes:   make([]dto.RouteResponse, 0, len(res.RouteSet.Routes)),
		Degraded: res.Degraded,
	}

	if res.RouteSet.Depot != nil {
		d := toGeocodeResult(*res.RouteSet.Depot)
		out.Depot = &d
	}

	for i, route := range res.RouteSet.Routes {
		out.Routes = append(out.Routes, toRouteResponse(route, i+1))
	}

	for _, u := range unmatched {
		out.Unmatched = append(out.Unmatched, toGeocodeResult(u))
	}

	for _, f := range res.Failures {
		out.Failures = append(out.Failures, dto.ClusterFailureResponse{
			ClusterID: f.ClusterID,
			StopCount: f.StopCount,
			Error:     f.Err.Error(),
		})
	}

	return out
}
