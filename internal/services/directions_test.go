package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
)

func directionsServiceFor(url string) *DirectionsService {
	return &DirectionsService{
		apiKey:  "test-key",
		baseURL: url,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func TestOptimizeWaypointsParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("origin"); got != r.URL.Query().Get("destination") {
			t.Errorf("origin %q and destination %q must match (loop request keeps every stop optimizable)",
				got, r.URL.Query().Get("destination"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"waypoint_order": [1, 0],
				"legs": [
					{"distance": {"value": 3000}, "duration": {"value": 600}},
					{"distance": {"value": 2000}, "duration": {"value": 300}},
					{"distance": {"value": 4000}, "duration": {"value": 900}}
				]
			}]
		}`))
	}))
	defer server.Close()

	s := directionsServiceFor(server.URL)
	start := geo.Point{Latitude: 8.4840, Longitude: -13.2299}
	stops := []geo.Point{
		{Latitude: 8.4705, Longitude: -13.1912},
		{Latitude: 8.4847, Longitude: -13.2343},
	}

	result, err := s.OptimizeWaypoints(context.Background(), start, stops)
	if err != nil {
		t.Fatalf("OptimizeWaypoints: %v", err)
	}

	if len(result.WaypointOrder) != 2 || result.WaypointOrder[0] != 1 || result.WaypointOrder[1] != 0 {
		t.Errorf("waypoint order = %v, want [1 0]", result.WaypointOrder)
	}

	// The last leg returns to the origin and must not count toward the run.
	if result.TotalDistanceKm != 5.0 {
		t.Errorf("total distance = %f, want 5.0 without the return leg", result.TotalDistanceKm)
	}
	if result.TotalDurationMinutes != 15 {
		t.Errorf("total duration = %d, want 15 without the return leg", result.TotalDurationMinutes)
	}
}

func TestOptimizeWaypointsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"non-200 response",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			"API-level error status",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "routes": []}`))
			},
		},
		{
			"waypoint order length mismatch",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "OK", "routes": [{"waypoint_order": [0], "legs": []}]}`))
			},
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{nope`))
			},
		},
	}

	stops := []geo.Point{
		{Latitude: 8.4705, Longitude: -13.1912},
		{Latitude: 8.4847, Longitude: -13.2343},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			s := directionsServiceFor(server.URL)
			_, err := s.OptimizeWaypoints(context.Background(), geo.Point{Latitude: 8.48, Longitude: -13.23}, stops)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrExternalService) {
				t.Errorf("error %v is not ErrExternalService", err)
			}
		})
	}
}

func TestOptimizeWaypointsNoStops(t *testing.T) {
	s := directionsServiceFor("http://unused")
	_, err := s.OptimizeWaypoints(context.Background(), geo.Point{}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error %v is not ErrValidation", err)
	}
}
