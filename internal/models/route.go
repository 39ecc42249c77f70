package models

import "time"

// Route statuses
const (
	RouteStatusPlanned    = "PLANNED"
	RouteStatusInProgress = "IN_PROGRESS"
	RouteStatusCompleted  = "COMPLETED"
)

// Route stop statuses
const (
	StopStatusPending   = "PENDING"
	StopStatusCompleted = "COMPLETED"
	StopStatusSkipped   = "SKIPPED"
)

// Route represents one optimization run for one driver. Re-optimizing a
// driver's pickups produces a fresh Route; routes are not appended to.
type Route struct {
	ID                 string  `json:"id" db:"id"`
	DriverID           string  `json:"driver_id" db:"driver_id"`
	TotalDistanceKm    float64 `json:"total_distance_km" db:"total_distance_km"`
	EstimatedDuration  int     `json:"estimated_duration_minutes" db:"estimated_duration_minutes"`
	Status             string  `json:"status" db:"status"`
	OptimizationSource string  `json:"optimization_source" db:"optimization_source"` // "directions_api" or "nearest_neighbor"
	CompletedAt        *int64  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt          int64   `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt          int64   `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// RouteStop is one ordered stop on a route, referencing one pickup
type RouteStop struct {
	ID               string `json:"id" db:"id"`
	RouteID          string `json:"route_id" db:"route_id"`
	PickupID         string `json:"pickup_id" db:"pickup_id"`
	ContainerID      string `json:"container_id" db:"container_id"`
	StopOrder        int    `json:"stop_order" db:"stop_order"` // 1-based
	EstimatedArrival *int64 `json:"estimated_arrival,omitempty" db:"estimated_arrival"`
	ActualArrival    *int64 `json:"actual_arrival,omitempty" db:"actual_arrival"`
	Status           string `json:"status" db:"status"`
	CreatedAt        int64  `json:"created_at" db:"created_at"`
}

// RouteWithStops is a route plus its ordered stops
type RouteWithStops struct {
	Route
	Stops []RouteStop `json:"stops"`
}

// RouteStopResponse adds ISO arrival times for clients
type RouteStopResponse struct {
	ID                  string  `json:"id"`
	PickupID            string  `json:"pickup_id"`
	ContainerID         string  `json:"container_id"`
	StopOrder           int     `json:"stop_order"`
	EstimatedArrivalIso *string `json:"estimatedArrivalIso,omitempty"`
	ActualArrivalIso    *string `json:"actualArrivalIso,omitempty"`
	Status              string  `json:"status"`
}

// ToRouteStopResponse converts a RouteStop to RouteStopResponse
func (s *RouteStop) ToRouteStopResponse() RouteStopResponse {
	resp := RouteStopResponse{
		ID:          s.ID,
		PickupID:    s.PickupID,
		ContainerID: s.ContainerID,
		StopOrder:   s.StopOrder,
		Status:      s.Status,
	}

	if s.EstimatedArrival != nil {
		iso := time.Unix(*s.EstimatedArrival, 0).Format(time.RFC3339)
		resp.EstimatedArrivalIso = &iso
	}
	if s.ActualArrival != nil {
		iso := time.Unix(*s.ActualArrival, 0).Format(time.RFC3339)
		resp.ActualArrivalIso = &iso
	}

	return resp
}

// RouteResponse is a route plus its stops with ISO arrival times
type RouteResponse struct {
	Route
	Stops []RouteStopResponse `json:"stops"`
}

// ToRouteResponse converts a RouteWithStops to RouteResponse
func (r *RouteWithStops) ToRouteResponse() RouteResponse {
	stops := make([]RouteStopResponse, 0, len(r.Stops))
	for i := range r.Stops {
		stops = append(stops, r.Stops[i].ToRouteStopResponse())
	}
	return RouteResponse{Route: r.Route, Stops: stops}
}

// OptimizeRouteRequest is the request body for POST /api/routes/optimize
type OptimizeRouteRequest struct {
	DriverID  string   `json:"driver_id"`
	PickupIDs []string `json:"pickup_ids"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// AdvanceStopRequest is the request body for PATCH /api/routes/:id/stops/:stopId
type AdvanceStopRequest struct {
	Status string `json:"status"`
}
