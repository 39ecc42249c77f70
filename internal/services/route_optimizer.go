package services

import (
	"log"
	"math"

	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
)

// Average driving speed assumed for the local heuristic, and the fixed
// per-stop service allowance for lifting and emptying a container.
const (
	AverageSpeedKmh        = 30.0
	StopServiceTimeMinutes = 5
)

// StopPoint is one candidate stop for route construction
type StopPoint struct {
	PickupID    string
	ContainerID string
	Latitude    float64
	Longitude   float64
	FillLevel   int
	Address     string
}

// RouteOptimizer orders stops with a nearest-neighbor heuristic. It is the
// local fallback when the directions collaborator is unavailable.
type RouteOptimizer struct{}

// NewRouteOptimizer creates a new route optimizer
func NewRouteOptimizer() *RouteOptimizer {
	return &RouteOptimizer{}
}

// OptimizeStops orders stops by always selecting the closest remaining stop
// from the current position, and returns the ordered stops plus the total
// great-circle distance of the legs in km. Every input stop appears exactly
// once in the output.
func (ro *RouteOptimizer) OptimizeStops(stops []StopPoint, start geo.Point) ([]StopPoint, float64) {
	if len(stops) == 0 {
		return stops, 0
	}

	if len(stops) == 1 {
		only := stops[0]
		return stops, geo.Distance(start.Latitude, start.Longitude, only.Latitude, only.Longitude)
	}

	log.Printf("🎯 Nearest-neighbor optimization from (%.6f, %.6f), %d stops",
		start.Latitude, start.Longitude, len(stops))

	optimized := make([]StopPoint, 0, len(stops))
	remaining := make([]StopPoint, len(stops))
	copy(remaining, stops)

	current := start
	totalDistance := 0.0

	for len(remaining) > 0 {
		bestIdx := 0
		bestDistance := math.MaxFloat64

		for i, stop := range remaining {
			distance := geo.Distance(
				current.Latitude,
				current.Longitude,
				stop.Latitude,
				stop.Longitude,
			)
			if distance < bestDistance {
				bestDistance = distance
				bestIdx = i
			}
		}

		bestStop := remaining[bestIdx]
		optimized = append(optimized, bestStop)
		totalDistance += bestDistance

		log.Printf("   Step %d: %s (%d%% full, %.2f km leg)",
			len(optimized), bestStop.Address, bestStop.FillLevel, bestDistance)

		current = geo.Point{Latitude: bestStop.Latitude, Longitude: bestStop.Longitude}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	log.Printf("✅ Optimization complete: %.2f km total", totalDistance)

	return optimized, totalDistance
}

// EstimateDurationMinutes converts a route distance into an estimated
// duration at the assumed average speed, plus the service allowance per stop.
func EstimateDurationMinutes(distanceKm float64, stopCount int) int {
	travel := distanceKm / AverageSpeedKmh * 60
	return int(math.Round(travel)) + StopServiceTimeMinutes*stopCount
}

// legMinutes is the travel time for a single leg at the assumed speed.
func legMinutes(distanceKm float64) float64 {
	return distanceKm / AverageSpeedKmh * 60
}
