// Package osrm implements the RouteSolver port against an OSRM trip
// endpoint, which returns a near-optimal visiting order for a set of
// coordinates.
package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/platform/obs"
)

const (
	defaultBaseURL = "https://router.project-osrm.org"
	defaultProfile = "driving"

	metersPerMile = 1609.344
)

// TripSolver submits a cluster to the OSRM /trip service. It is the
// primary optimization strategy; callers fall back to the local
// heuristic when it fails or times out. Safe for concurrent use: each
// cluster's call is independent.
type TripSolver struct {
	session *http.Client
	baseURL string
	profile string
}

func NewTripSolver(baseURL string) *TripSolver {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TripSolver{
		// Per-call deadlines come from the caller's context; the
		// session timeout is a hard upper bound.
		session: &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		profile: defaultProfile,
	}
}

type tripResponse struct {
	Code  string `json:"code"`
	Trips []struct {
		DistanceMeters  float64 `json:"distance"`
		DurationSeconds float64 `json:"duration"`
	} `json:"trips"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
	} `json:"waypoints"`
}

// Solve requests an optimized round trip over the cluster's stops.
// With an anchor the depot is pinned as the trip's fixed start; the
// returned route then opens and closes at the depot. A response that
// does not account for every stop is an error, never a partial route.
func (s *TripSolver) Solve(ctx context.Context, cluster domain.Cluster) (_ domain.Route, err error) {
	defer obs.Time(ctx, "osrm.Solve")(&err)

	if len(cluster.Members) == 0 {
		return domain.Route{}, errors.New("osrm trip: cluster has no members")
	}

	coords := make([]string, 0, len(cluster.Members)+1)
	if cluster.Anchor != nil {
		coords = append(coords, fmt.Sprintf("%f,%f", cluster.Anchor.Coords.Lon, cluster.Anchor.Coords.Lat))
	}
	for _, m := range cluster.Members {
		coords = append(coords, fmt.Sprintf("%f,%f", m.Coords.Lon, m.Coords.Lat))
	}

	endpoint := fmt.Sprintf("%s/trip/v1/%s/%s", s.baseURL, s.profile, strings.Join(coords, ";"))

	q := url.Values{}
	q.Set("roundtrip", "true")
	if cluster.Anchor != nil {
		q.Set("source", "first")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Route{}, fmt.Errorf("osrm trip: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.session.Do(req)
	if err != nil {
		return domain.Route{}, fmt.Errorf("osrm trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Route{}, fmt.Errorf("osrm trip: unexpected status %d", resp.StatusCode)
	}

	var decoded tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Route{}, fmt.Errorf("osrm trip: decode response: %w", err)
	}

	if decoded.Code != "Ok" {
		return domain.Route{}, fmt.Errorf("osrm trip: service returned code %q", decoded.Code)
	}
	if len(decoded.Trips) != 1 {
		return domain.Route{}, fmt.Errorf("osrm trip: expected 1 trip, got %d", len(decoded.Trips))
	}
	if len(decoded.Waypoints) != len(coords) {
		return domain.Route{}, fmt.Errorf(
			"osrm trip: %d waypoints for %d submitted coordinates",
			len(decoded.Waypoints), len(coords),
		)
	}

	ordered, err := reorderMembers(cluster, decoded.Waypoints)
	if err != nil {
		return domain.Route{}, fmt.Errorf("osrm trip: %w", err)
	}

	stops := make([]domain.Stop, 0, len(ordered)+2)
	if cluster.Anchor != nil {
		stops = append(stops, domain.Stop{GeocodeResult: *cluster.Anchor, Sequence: 0})
	}
	for _, m := range ordered {
		stops = append(stops, domain.Stop{GeocodeResult: m, Sequence: len(stops)})
	}
	if cluster.Anchor != nil {
		stops = append(stops, domain.Stop{GeocodeResult: *cluster.Anchor, Sequence: len(stops)})
	}

	return domain.Route{
		Index:                    cluster.ID,
		Stops:                    stops,
		TotalDistanceMiles:       decoded.Trips[0].DistanceMeters / metersPerMile,
		EstimatedDurationMinutes: decoded.Trips[0].DurationSeconds / 60,
	}, nil
}

// reorderMembers places each submitted member at the visiting position
// the solver assigned it. waypoint_index is the position of the i-th
// submitted coordinate in the optimized trip; with an anchored trip the
// depot occupies submitted and visiting position zero.
func reorderMembers(cluster domain.Cluster, waypoints []struct {
	WaypointIndex int `json:"waypoint_index"`
}) ([]domain.GeocodeResult, error) {
	offset := 0
	if cluster.Anchor != nil {
		offset = 1
	}

	ordered := make([]*domain.GeocodeResult, len(cluster.Members))
	for i, wp := range waypoints {
		submitted := i - offset
		position := wp.WaypointIndex - offset
		if submitted < 0 {
			// The depot slot; its assigned position is fixed.
			continue
		}
		if position < 0 || position >= len(ordered) {
			return nil, fmt.Errorf("waypoint %d assigned invalid position %d", i, wp.WaypointIndex)
		}
		if ordered[position] != nil {
			return nil, fmt.Errorf("waypoint position %d assigned twice", wp.WaypointIndex)
		}
		m := cluster.Members[submitted]
		ordered[position] = &m
	}

	out := make([]domain.GeocodeResult, 0, len(ordered))
	for i, m := range ordered {
		if m == nil {
			return nil, fmt.Errorf("no waypoint assigned to position %d", i+offset)
		}
		out = append(out, *m)
	}

	return out, nil
}
