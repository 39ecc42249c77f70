package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Timeout applied to the external directions call; any failure inside it
// triggers the local fallback.
const directionsTimeout = 10 * time.Second

// Optimization sources recorded on a route
const (
	SourceDirectionsAPI   = "directions_api"
	SourceNearestNeighbor = "nearest_neighbor"
	SourceSingleStop      = "single_stop"
)

// RouteService builds optimized multi-stop routes for a driver's scheduled
// pickups. It is the only creator of routes and stops.
type RouteService struct {
	db         *sqlx.DB
	directions DirectionsProvider // nil forces the local heuristic
	optimizer  *RouteOptimizer
	broadcast  Broadcaster // nil disables realtime events
}

// NewRouteService creates a new route service
func NewRouteService(db *sqlx.DB, directions DirectionsProvider, optimizer *RouteOptimizer, broadcast Broadcaster) *RouteService {
	return &RouteService{
		db:         db,
		directions: directions,
		optimizer:  optimizer,
		broadcast:  broadcast,
	}
}

type candidateStop struct {
	PickupID    string   `db:"pickup_id"`
	ContainerID string   `db:"container_id"`
	FillLevel   int      `db:"fill_level"`
	Address     string   `db:"address"`
	Latitude    *float64 `db:"latitude"`
	Longitude   *float64 `db:"longitude"`
}

// Optimize sequences the given pickups into a fresh route for the driver.
// The external directions collaborator is preferred; the nearest-neighbor
// heuristic takes over on any failure or timeout. Every optimized pickup is
// reassigned to the driver.
func (s *RouteService) Optimize(driverID string, pickupIDs []string, start *geo.Point) (*models.RouteWithStops, error) {
	if len(pickupIDs) == 0 {
		return nil, fmt.Errorf("no pickups to optimize: %w", ErrValidation)
	}

	var driver models.Driver
	err := s.db.Get(&driver, "SELECT * FROM drivers WHERE id = $1", driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("driver %s: %w", driverID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load driver: %w", err)
	}

	var candidates []candidateStop
	err = s.db.Select(&candidates, `
		SELECT p.id AS pickup_id, p.container_id, c.fill_level, c.address, c.latitude, c.longitude
		FROM pickups p
		JOIN containers c ON c.id = p.container_id
		WHERE p.id = ANY($1) AND p.status = 'SCHEDULED'
	`, pq.Array(pickupIDs))
	if err != nil {
		return nil, fmt.Errorf("load candidate pickups: %w", err)
	}

	stops := make([]StopPoint, 0, len(candidates))
	for _, c := range candidates {
		if c.Latitude == nil || c.Longitude == nil {
			log.Printf("⚠️  Skipping pickup %s: container has no coordinates", c.PickupID)
			continue
		}
		stops = append(stops, StopPoint{
			PickupID:    c.PickupID,
			ContainerID: c.ContainerID,
			Latitude:    *c.Latitude,
			Longitude:   *c.Longitude,
			FillLevel:   c.FillLevel,
			Address:     c.Address,
		})
	}

	if len(stops) == 0 {
		return nil, fmt.Errorf("no scheduled pickups with coordinates among candidates: %w", ErrInvalidState)
	}

	origin := start
	if origin == nil {
		if !driver.HasLocation() {
			return nil, fmt.Errorf("driver %s has no known location and no start coordinate was given: %w",
				driverID, ErrValidation)
		}
		origin = &geo.Point{Latitude: *driver.Latitude, Longitude: *driver.Longitude}
	}

	ordered, totalKm, duration, source := s.sequenceStops(stops, *origin)

	route, err := s.persistRoute(driver.ID, ordered, *origin, totalKm, duration, source)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Route %s created for driver %s: %d stops, %.2f km, %d min (%s)",
		route.ID, driver.ID, len(route.Stops), route.TotalDistanceKm, route.EstimatedDuration, source)

	if s.broadcast != nil {
		s.broadcast.BroadcastToUser(driver.UserID, map[string]interface{}{
			"type": "route_assigned",
			"data": route,
		})
		s.broadcast.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "route_created",
			"data": route,
		})
	}

	return route, nil
}

// sequenceStops picks the stop order and aggregate metrics, preferring the
// directions collaborator over the local heuristic.
func (s *RouteService) sequenceStops(stops []StopPoint, origin geo.Point) ([]StopPoint, float64, int, string) {
	// A single stop needs no optimization at all.
	if len(stops) == 1 {
		distance := geo.Distance(origin.Latitude, origin.Longitude, stops[0].Latitude, stops[0].Longitude)
		return stops, distance, EstimateDurationMinutes(distance, 1), SourceSingleStop
	}

	if s.directions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), directionsTimeout)
		defer cancel()

		points := make([]geo.Point, len(stops))
		for i, st := range stops {
			points[i] = geo.Point{Latitude: st.Latitude, Longitude: st.Longitude}
		}

		result, err := s.directions.OptimizeWaypoints(ctx, origin, points)
		if err == nil {
			ordered := make([]StopPoint, 0, len(stops))
			for _, idx := range result.WaypointOrder {
				if idx < 0 || idx >= len(stops) {
					err = fmt.Errorf("%w: waypoint index %d out of range", ErrExternalService, idx)
					break
				}
				ordered = append(ordered, stops[idx])
			}
			if err == nil && len(ordered) == len(stops) {
				duration := result.TotalDurationMinutes + StopServiceTimeMinutes*len(stops)
				return ordered, result.TotalDistanceKm, duration, SourceDirectionsAPI
			}
		}
		log.Printf("⚠️  Directions collaborator failed, falling back to nearest neighbor: %v", err)
	}

	ordered, totalKm := s.optimizer.OptimizeStops(stops, origin)
	return ordered, totalKm, EstimateDurationMinutes(totalKm, len(ordered)), SourceNearestNeighbor
}

// persistRoute writes the route, its stops and the bulk driver reassignment
// in one transaction. Per-stop ETAs are walked from now over great-circle
// legs with the service allowance between consecutive stops.
func (s *RouteService) persistRoute(driverID string, ordered []StopPoint, origin geo.Point, totalKm float64, duration int, source string) (*models.RouteWithStops, error) {
	now := time.Now()
	nowUnix := now.Unix()

	route := models.Route{
		ID:                 uuid.New().String(),
		DriverID:           driverID,
		TotalDistanceKm:    totalKm,
		EstimatedDuration:  duration,
		Status:             models.RouteStatusPlanned,
		OptimizationSource: source,
		CreatedAt:          nowUnix,
		UpdatedAt:          nowUnix,
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO routes (id, driver_id, total_distance_km, estimated_duration_minutes,
		                    status, optimization_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, route.ID, route.DriverID, route.TotalDistanceKm, route.EstimatedDuration,
		route.Status, route.OptimizationSource, route.CreatedAt, route.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}

	eta := now
	cursor := origin
	stopRows := make([]models.RouteStop, 0, len(ordered))
	pickupIDs := make([]string, 0, len(ordered))

	for i, stop := range ordered {
		leg := geo.Distance(cursor.Latitude, cursor.Longitude, stop.Latitude, stop.Longitude)
		if i > 0 {
			eta = eta.Add(StopServiceTimeMinutes * time.Minute)
		}
		eta = eta.Add(time.Duration(legMinutes(leg) * float64(time.Minute)))
		arrival := eta.Unix()

		stopRow := models.RouteStop{
			ID:               uuid.New().String(),
			RouteID:          route.ID,
			PickupID:         stop.PickupID,
			ContainerID:      stop.ContainerID,
			StopOrder:        i + 1,
			EstimatedArrival: &arrival,
			Status:           models.StopStatusPending,
			CreatedAt:        nowUnix,
		}

		_, err = tx.Exec(`
			INSERT INTO route_stops (id, route_id, pickup_id, container_id, stop_order,
			                         estimated_arrival, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, stopRow.ID, stopRow.RouteID, stopRow.PickupID, stopRow.ContainerID,
			stopRow.StopOrder, stopRow.EstimatedArrival, stopRow.Status, stopRow.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert route stop: %w", err)
		}

		stopRows = append(stopRows, stopRow)
		pickupIDs = append(pickupIDs, stop.PickupID)
		cursor = geo.Point{Latitude: stop.Latitude, Longitude: stop.Longitude}
	}

	// Bulk reassignment: every optimized pickup now belongs to this driver,
	// even if some were previously assigned elsewhere.
	_, err = tx.Exec(`
		UPDATE pickups SET driver_id = $1, updated_at = $2 WHERE id = ANY($3)
	`, driverID, nowUnix, pq.Array(pickupIDs))
	if err != nil {
		return nil, fmt.Errorf("reassign pickups: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &models.RouteWithStops{Route: route, Stops: stopRows}, nil
}

// AdvanceStop updates one stop's status, stamping the actual arrival the
// first time it completes. When every stop is COMPLETED the route itself
// becomes COMPLETED; that transition is derived, never set directly.
func (s *RouteService) AdvanceStop(routeID, stopID, newStatus string) (*models.RouteWithStops, error) {
	switch newStatus {
	case models.StopStatusPending, models.StopStatusCompleted, models.StopStatusSkipped:
	default:
		return nil, fmt.Errorf("unknown stop status %q: %w", newStatus, ErrValidation)
	}

	var route models.Route
	err := s.db.Get(&route, "SELECT * FROM routes WHERE id = $1", routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}

	if route.Status == models.RouteStatusCompleted {
		return nil, fmt.Errorf("route %s is already completed: %w", routeID, ErrInvalidState)
	}

	var stop models.RouteStop
	err = s.db.Get(&stop, "SELECT * FROM route_stops WHERE id = $1 AND route_id = $2", stopID, routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stop %s on route %s: %w", stopID, routeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load route stop: %w", err)
	}

	now := time.Now().Unix()

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stop.Status = newStatus
	if newStatus == models.StopStatusCompleted && stop.ActualArrival == nil {
		stop.ActualArrival = &now
	}

	_, err = tx.Exec(`
		UPDATE route_stops SET status = $1, actual_arrival = $2 WHERE id = $3
	`, stop.Status, stop.ActualArrival, stop.ID)
	if err != nil {
		return nil, fmt.Errorf("update route stop: %w", err)
	}

	var stops []models.RouteStop
	err = tx.Select(&stops, "SELECT * FROM route_stops WHERE route_id = $1 ORDER BY stop_order ASC", routeID)
	if err != nil {
		return nil, fmt.Errorf("load route stops: %w", err)
	}

	allCompleted := true
	anyTouched := false
	for _, st := range stops {
		if st.Status != models.StopStatusCompleted {
			allCompleted = false
		}
		if st.Status != models.StopStatusPending {
			anyTouched = true
		}
	}

	routeCompleted := false
	switch {
	case allCompleted:
		route.Status = models.RouteStatusCompleted
		route.CompletedAt = &now
		routeCompleted = true
	case anyTouched:
		route.Status = models.RouteStatusInProgress
	}
	route.UpdatedAt = now

	_, err = tx.Exec(`
		UPDATE routes SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4
	`, route.Status, route.CompletedAt, route.UpdatedAt, route.ID)
	if err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("✅ Stop %s on route %s set to %s", stop.ID, route.ID, stop.Status)

	if routeCompleted && s.broadcast != nil {
		s.broadcast.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "route_completed",
			"data": map[string]interface{}{
				"route_id":  route.ID,
				"driver_id": route.DriverID,
			},
		})
	}

	return &models.RouteWithStops{Route: route, Stops: stops}, nil
}

// GetWithStops returns one route and its ordered stops
func (s *RouteService) GetWithStops(routeID string) (*models.RouteWithStops, error) {
	var route models.Route
	err := s.db.Get(&route, "SELECT * FROM routes WHERE id = $1", routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}

	var stops []models.RouteStop
	err = s.db.Select(&stops, "SELECT * FROM route_stops WHERE route_id = $1 ORDER BY stop_order ASC", routeID)
	if err != nil {
		return nil, fmt.Errorf("load route stops: %w", err)
	}

	return &models.RouteWithStops{Route: route, Stops: stops}, nil
}
