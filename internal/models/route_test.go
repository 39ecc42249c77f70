package models

import (
	"testing"
	"time"
)

func TestToRouteResponse(t *testing.T) {
	arrival := int64(1767225600)
	route := RouteWithStops{
		Route: Route{ID: "r1", DriverID: "d1", Status: RouteStatusPlanned},
		Stops: []RouteStop{
			{ID: "s1", PickupID: "p1", StopOrder: 1, EstimatedArrival: &arrival, Status: StopStatusPending},
			{ID: "s2", PickupID: "p2", StopOrder: 2, Status: StopStatusPending},
		},
	}

	resp := route.ToRouteResponse()

	if resp.ID != "r1" || len(resp.Stops) != 2 {
		t.Fatalf("got route %s with %d stops, want r1 with 2", resp.ID, len(resp.Stops))
	}

	first := resp.Stops[0]
	if first.EstimatedArrivalIso == nil {
		t.Fatal("first stop has no ISO arrival")
	}
	want := time.Unix(arrival, 0).Format(time.RFC3339)
	if *first.EstimatedArrivalIso != want {
		t.Errorf("estimated arrival = %s, want %s", *first.EstimatedArrivalIso, want)
	}
	if first.ActualArrivalIso != nil {
		t.Errorf("actual arrival = %v, want nil before completion", first.ActualArrivalIso)
	}

	if resp.Stops[1].EstimatedArrivalIso != nil {
		t.Errorf("second stop arrival = %v, want nil when not estimated", resp.Stops[1].EstimatedArrivalIso)
	}
}
