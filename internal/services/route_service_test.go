package services

import (
	"context"
	"testing"

	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
)

// stubDirections returns a canned result or error
type stubDirections struct {
	result *DirectionsResult
	err    error
}

func (s *stubDirections) OptimizeWaypoints(ctx context.Context, start geo.Point, stops []geo.Point) (*DirectionsResult, error) {
	return s.result, s.err
}

func sequencerWith(directions DirectionsProvider) *RouteService {
	return &RouteService{
		directions: directions,
		optimizer:  NewRouteOptimizer(),
	}
}

func TestSequenceStopsSingleStop(t *testing.T) {
	// A collaborator that would fail must never be consulted for one stop.
	s := sequencerWith(&stubDirections{err: ErrExternalService})

	stops := testStops()[:1]
	ordered, km, duration, source := s.sequenceStops(stops, testStart)

	if source != SourceSingleStop {
		t.Errorf("source = %s, want %s", source, SourceSingleStop)
	}
	if len(ordered) != 1 || ordered[0].PickupID != stops[0].PickupID {
		t.Errorf("ordered = %v, want the single input stop", ordered)
	}
	if km <= 0 {
		t.Errorf("distance = %f, want > 0", km)
	}
	if duration <= StopServiceTimeMinutes {
		t.Errorf("duration = %d, want > service time alone", duration)
	}
}

func TestSequenceStopsPrefersDirections(t *testing.T) {
	s := sequencerWith(&stubDirections{result: &DirectionsResult{
		WaypointOrder:        []int{2, 0, 1},
		TotalDistanceKm:      12.5,
		TotalDurationMinutes: 40,
	}})

	ordered, km, duration, source := s.sequenceStops(testStops(), testStart)

	if source != SourceDirectionsAPI {
		t.Fatalf("source = %s, want %s", source, SourceDirectionsAPI)
	}
	if km != 12.5 {
		t.Errorf("distance = %f, want 12.5", km)
	}
	if want := 40 + StopServiceTimeMinutes*3; duration != want {
		t.Errorf("duration = %d, want %d (API travel plus service time)", duration, want)
	}

	wantOrder := []string{"p-siaka", "p-kissy", "p-aberdeen"}
	for i, id := range wantOrder {
		if ordered[i].PickupID != id {
			t.Errorf("ordered[%d] = %s, want %s", i, ordered[i].PickupID, id)
		}
	}
}

func TestSequenceStopsFallsBackOnError(t *testing.T) {
	s := sequencerWith(&stubDirections{err: ErrExternalService})

	ordered, km, duration, source := s.sequenceStops(testStops(), testStart)

	if source != SourceNearestNeighbor {
		t.Fatalf("source = %s, want %s", source, SourceNearestNeighbor)
	}
	if len(ordered) != 3 {
		t.Errorf("got %d stops, want 3", len(ordered))
	}
	if km <= 0 || duration <= 0 {
		t.Errorf("km = %f, duration = %d, want both > 0", km, duration)
	}
}

func TestSequenceStopsFallsBackOnBadWaypointOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"index out of range", []int{0, 1, 7}},
		{"negative index", []int{-1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sequencerWith(&stubDirections{result: &DirectionsResult{
				WaypointOrder:        tt.order,
				TotalDistanceKm:      1,
				TotalDurationMinutes: 1,
			}})

			ordered, _, _, source := s.sequenceStops(testStops(), testStart)
			if source != SourceNearestNeighbor {
				t.Errorf("source = %s, want fallback %s", source, SourceNearestNeighbor)
			}
			if len(ordered) != 3 {
				t.Errorf("got %d stops, want 3", len(ordered))
			}
		})
	}
}

func TestSequenceStopsNoDirectionsConfigured(t *testing.T) {
	s := sequencerWith(nil)

	_, _, _, source := s.sequenceStops(testStops(), testStart)
	if source != SourceNearestNeighbor {
		t.Errorf("source = %s, want %s", source, SourceNearestNeighbor)
	}
}
