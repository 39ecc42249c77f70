package services

import (
	"math"
	"testing"

	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
)

// Depot at central Freetown, stops spread east and west along the peninsula.
var testStart = geo.Point{Latitude: 8.4840, Longitude: -13.2299}

func testStops() []StopPoint {
	return []StopPoint{
		{PickupID: "p-kissy", ContainerID: "c-kissy", Latitude: 8.4705, Longitude: -13.1912, Address: "Bai Bureh Rd, Kissy"},
		{PickupID: "p-aberdeen", ContainerID: "c-aberdeen", Latitude: 8.4866, Longitude: -13.2803, Address: "Aberdeen Rd"},
		{PickupID: "p-siaka", ContainerID: "c-siaka", Latitude: 8.4847, Longitude: -13.2343, Address: "Siaka Stevens St"},
	}
}

func TestOptimizeStopsOrder(t *testing.T) {
	ro := NewRouteOptimizer()

	ordered, total := ro.OptimizeStops(testStops(), testStart)

	if len(ordered) != 3 {
		t.Fatalf("got %d stops, want 3", len(ordered))
	}

	// Siaka Stevens is a few hundred meters from the depot, so it must come
	// first; Kissy and Aberdeen lie in opposite directions beyond it.
	if ordered[0].PickupID != "p-siaka" {
		t.Errorf("first stop = %s, want p-siaka", ordered[0].PickupID)
	}

	if total <= 0 {
		t.Errorf("total distance = %f, want > 0", total)
	}

	// The total must equal the sum of the walked legs.
	legSum := geo.Distance(testStart.Latitude, testStart.Longitude, ordered[0].Latitude, ordered[0].Longitude)
	for i := 1; i < len(ordered); i++ {
		legSum += geo.Distance(ordered[i-1].Latitude, ordered[i-1].Longitude, ordered[i].Latitude, ordered[i].Longitude)
	}
	if math.Abs(total-legSum) > 1e-9 {
		t.Errorf("total distance %f does not match leg sum %f", total, legSum)
	}
}

func TestOptimizeStopsVisitsEveryStopOnce(t *testing.T) {
	ro := NewRouteOptimizer()

	ordered, _ := ro.OptimizeStops(testStops(), testStart)

	seen := make(map[string]int)
	for _, stop := range ordered {
		seen[stop.PickupID]++
	}
	for _, stop := range testStops() {
		if seen[stop.PickupID] != 1 {
			t.Errorf("stop %s visited %d times, want 1", stop.PickupID, seen[stop.PickupID])
		}
	}
}

func TestOptimizeStopsEdgeCases(t *testing.T) {
	ro := NewRouteOptimizer()

	ordered, total := ro.OptimizeStops(nil, testStart)
	if len(ordered) != 0 || total != 0 {
		t.Errorf("empty input: got %d stops, %f km, want 0 stops, 0 km", len(ordered), total)
	}

	single := testStops()[:1]
	ordered, total = ro.OptimizeStops(single, testStart)
	if len(ordered) != 1 || ordered[0].PickupID != "p-kissy" {
		t.Fatalf("single input: got %v", ordered)
	}
	want := geo.Distance(testStart.Latitude, testStart.Longitude, single[0].Latitude, single[0].Longitude)
	if math.Abs(total-want) > 1e-9 {
		t.Errorf("single stop distance = %f, want %f", total, want)
	}
}

func TestEstimateDurationMinutes(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		stops      int
		want       int
	}{
		{"zero distance zero stops", 0, 0, 0},
		{"15 km is half an hour of travel", 15, 0, 30},
		{"stops add five minutes each", 15, 3, 45},
		{"travel plus one service stop", 10, 1, 25},
		{"rounds travel time", 7.6, 0, 15}, // 15.2 min rounds down
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDurationMinutes(tt.distanceKm, tt.stops); got != tt.want {
				t.Errorf("EstimateDurationMinutes(%f, %d) = %d, want %d",
					tt.distanceKm, tt.stops, got, tt.want)
			}
		})
	}
}
