package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// OptimizeRoute builds an optimized multi-stop route for a driver's scheduled
// pickups. Requires admin authentication.
func OptimizeRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.OptimizeRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.DriverID == "" {
			utils.RespondError(w, http.StatusBadRequest, "driver_id is required")
			return
		}

		var start *geo.Point
		if req.Latitude != nil && req.Longitude != nil {
			start = &geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		}

		route, err := routes.Optimize(req.DriverID, req.PickupIDs, start)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusCreated, route.ToRouteResponse())
	}
}

// GetRoute returns one route with its ordered stops
func GetRoute(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		route, err := routes.GetWithStops(id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, route.ToRouteResponse())
	}
}

// GetRoutes lists routes, optionally filtered by driver_id or status.
// Requires admin authentication.
func GetRoutes(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := "SELECT * FROM routes"
		args := []interface{}{}

		if driverID := r.URL.Query().Get("driver_id"); driverID != "" {
			query += " WHERE driver_id = $1"
			args = append(args, driverID)
		} else if status := r.URL.Query().Get("status"); status != "" {
			query += " WHERE status = $1"
			args = append(args, status)
		}
		query += " ORDER BY created_at DESC"

		var routes []models.Route
		if err := db.Select(&routes, query, args...); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch routes")
			return
		}
		utils.RespondJSON(w, http.StatusOK, routes)
	}
}

// AdvanceStop updates one stop's status on a route. Completing the final
// pending stop completes the route.
func AdvanceStop(routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "id")
		stopID := chi.URLParam(r, "stopId")

		var req models.AdvanceStopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		route, err := routes.AdvanceStop(routeID, stopID, req.Status)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, route.ToRouteResponse())
	}
}
