// Package nominatim implements the GeocodeProvider port against a
// Nominatim search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/platform/obs"
	"route-optimizer-service/internal/ports"
)

const (
	// Nominatim's usage policy allows at most one request per second;
	// the gate leaves a little headroom.
	minRequestInterval = 1100 * time.Millisecond

	defaultBaseURL = "https://nominatim.openstreetmap.org"
)

// Client resolves addresses through Nominatim.
//
// All outbound requests, regardless of caller concurrency, are
// dispatched serially through a single rate gate that lives as long as
// the client (created at process start in the composition root, torn
// down with the process). The client is safe for concurrent use.
type Client struct {
	session   *http.Client
	baseURL   string
	userAgent string
	gate      *rate.Limiter
}

func NewClient(baseURL, userAgent string) (*Client, error) {
	if userAgent == "" {
		return nil, errors.New("nominatim: user agent is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		session:   &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		userAgent: userAgent,
		gate:      rate.NewLimiter(rate.Every(minRequestInterval), 1),
	}, nil
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search returns up to limit candidate places for the query, best
// first. It blocks on the rate gate before dispatching.
func (c *Client) Search(ctx context.Context, query string, limit int) (_ []ports.Place, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	if query == "" {
		return nil, errors.New("nominatim search: query must be non-empty")
	}
	if limit < 1 {
		limit = 1
	}

	// Concurrent submission is allowed; sending is not.
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/search"
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("addressdetails", "1")

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint+"?"+q.Encode())
	})
	if err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}
	defer resp.Body.Close()

	var decoded []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("nominatim search %q: decode response: %w", query, err)
	}

	places := make([]ports.Place, 0, len(decoded))
	for _, r := range decoded {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			return nil, fmt.Errorf("nominatim search %q: invalid coordinates %q,%q", query, r.Lat, r.Lon)
		}

		coords := domain.Coordinates{Lat: lat, Lon: lon}
		if !coords.Valid() {
			return nil, fmt.Errorf("nominatim search %q: coordinates out of range %f,%f", query, lat, lon)
		}

		places = append(places, ports.Place{
			DisplayName: r.DisplayName,
			Coords:      coords,
		})
	}

	return places, nil
}
