package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{
			name: "same point",
			lat1: 8.4840, lon1: -13.2299,
			lat2: 8.4840, lon2: -13.2299,
			wantKm: 0, tolKm: 0.0001,
		},
		{
			name: "one degree of latitude",
			lat1: 8.0, lon1: -13.0,
			lat2: 9.0, lon2: -13.0,
			wantKm: 111.19, tolKm: 0.5,
		},
		{
			name: "freetown city centre to lumley",
			lat1: 8.4840, lon1: -13.2299,
			lat2: 8.4494, lon2: -13.2818,
			wantKm: 6.9, tolKm: 0.5,
		},
		{
			name: "freetown to bo",
			lat1: 8.4840, lon1: -13.2299,
			lat2: 7.9647, lon2: -11.7383,
			wantKm: 174.0, tolKm: 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Errorf("Distance() = %.3f km, want %.3f ± %.3f", got, tt.wantKm, tt.tolKm)
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	ab := Distance(8.4840, -13.2299, 8.4657, -13.2317)
	ba := Distance(8.4657, -13.2317, 8.4840, -13.2299)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %.9f vs %.9f", ab, ba)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	centerLat, centerLon := 8.4840, -13.2299
	radius := 5.0

	minLat, maxLat, minLon, maxLon := BoundingBox(centerLat, centerLon, radius)

	if minLat >= centerLat || maxLat <= centerLat {
		t.Fatalf("latitude bounds [%f, %f] do not bracket center %f", minLat, maxLat, centerLat)
	}
	if minLon >= centerLon || maxLon <= centerLon {
		t.Fatalf("longitude bounds [%f, %f] do not bracket center %f", minLon, maxLon, centerLon)
	}

	// Points on the radius circle must fall inside the box.
	for deg := 0; deg < 360; deg += 30 {
		rad := float64(deg) * math.Pi / 180
		lat := centerLat + (radius/111.0)*math.Sin(rad)
		lon := centerLon + (radius/(111.0*math.Cos(centerLat*math.Pi/180)))*math.Cos(rad)
		if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
			t.Errorf("point at bearing %d° (%.5f, %.5f) outside box", deg, lat, lon)
		}
	}
}
