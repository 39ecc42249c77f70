package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
)

// DirectionsResult is the interpreted output of a waypoint-optimized
// directions request.
type DirectionsResult struct {
	// WaypointOrder maps optimized position -> index into the input stops.
	WaypointOrder        []int
	TotalDistanceKm      float64
	TotalDurationMinutes int
}

// DirectionsProvider is the external mapping collaborator. Implementations
// may fail or time out; callers fall back to the local heuristic.
type DirectionsProvider interface {
	OptimizeWaypoints(ctx context.Context, start geo.Point, stops []geo.Point) (*DirectionsResult, error)
}

// DirectionsService calls the Google Directions API with waypoint
// optimization enabled. The request is a loop starting and ending at the
// driver's position so that every stop stays an optimizable waypoint; the
// reported totals cover the working route only, without the return leg.
type DirectionsService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDirectionsService creates a new directions service
func NewDirectionsService(apiKey string) *DirectionsService {
	return &DirectionsService{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/directions/json",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// OptimizeWaypoints requests an optimized visiting order for the stops.
func (s *DirectionsService) OptimizeWaypoints(ctx context.Context, start geo.Point, stops []geo.Point) (*DirectionsResult, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("no waypoints to optimize: %w", ErrValidation)
	}

	log.Printf("🗺️  [Directions] Optimizing %d waypoints from (%.6f, %.6f)",
		len(stops), start.Latitude, start.Longitude)

	origin := fmt.Sprintf("%.6f,%.6f", start.Latitude, start.Longitude)

	waypoints := make([]string, 0, len(stops)+1)
	waypoints = append(waypoints, "optimize:true")
	for _, p := range stops {
		waypoints = append(waypoints, fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude))
	}

	params := url.Values{}
	params.Add("origin", origin)
	params.Add("destination", origin)
	params.Add("waypoints", strings.Join(waypoints, "|"))
	params.Add("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build directions request: %v", ErrExternalService, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: directions request failed: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("   ❌ Directions API error (%d): %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: directions API returned status %d", ErrExternalService, resp.StatusCode)
	}

	var directionsResp struct {
		Status string `json:"status"`
		Routes []struct {
			WaypointOrder []int `json:"waypoint_order"`
			Legs          []struct {
				Distance struct {
					Value int `json:"value"` // meters
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"` // seconds
				} `json:"duration"`
			} `json:"legs"`
		} `json:"routes"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&directionsResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse directions response: %v", ErrExternalService, err)
	}

	if directionsResp.Status != "OK" || len(directionsResp.Routes) == 0 {
		return nil, fmt.Errorf("%w: directions API status %q", ErrExternalService, directionsResp.Status)
	}

	route := directionsResp.Routes[0]
	if len(route.WaypointOrder) != len(stops) {
		return nil, fmt.Errorf("%w: waypoint_order has %d entries, want %d",
			ErrExternalService, len(route.WaypointOrder), len(stops))
	}

	// The final leg drives back to the origin and is never part of the
	// collection run, so it is excluded from the totals. This keeps the
	// aggregates comparable to the open-path fallback.
	legs := route.Legs
	if len(legs) > 1 {
		legs = legs[:len(legs)-1]
	}

	totalMeters := 0
	totalSeconds := 0
	for _, leg := range legs {
		totalMeters += leg.Distance.Value
		totalSeconds += leg.Duration.Value
	}

	result := &DirectionsResult{
		WaypointOrder:        route.WaypointOrder,
		TotalDistanceKm:      float64(totalMeters) / 1000.0,
		TotalDurationMinutes: totalSeconds / 60,
	}

	log.Printf("   ✅ Directions optimization: %.2f km, %d min, order %v",
		result.TotalDistanceKm, result.TotalDurationMinutes, result.WaypointOrder)

	return result, nil
}
