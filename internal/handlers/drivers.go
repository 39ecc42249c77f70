package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/middleware"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetNearestDriver returns the closest eligible driver to a coordinate.
// Query params: lat, lng. Responds 200 with null when no driver qualifies.
func GetNearestDriver(locator *services.DriverLocator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lng, ok := parseLatLng(w, r)
		if !ok {
			return
		}

		nearest, err := locator.FindNearest(lat, lng)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, nearest)
	}
}

// GetDriversWithinRadius returns eligible drivers within radius_km of a
// coordinate, closest first. Query params: lat, lng, radius_km, limit.
func GetDriversWithinRadius(locator *services.DriverLocator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lng, ok := parseLatLng(w, r)
		if !ok {
			return
		}

		radiusKm, err := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "radius_km is required and must be a number")
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
		}

		drivers, err := locator.FindWithinRadius(lat, lng, radiusKm, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, drivers)
	}
}

// GetDrivers lists all drivers. Requires admin authentication.
func GetDrivers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var drivers []models.Driver
		if err := db.Select(&drivers, "SELECT * FROM drivers ORDER BY created_at ASC"); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch drivers")
			return
		}
		utils.RespondJSON(w, http.StatusOK, drivers)
	}
}

// UpdateMyStatus lets the authenticated driver report their duty status
func UpdateMyStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, ok := driverForRequest(db, w, r)
		if !ok {
			return
		}

		var req models.UpdateDriverStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		switch req.Status {
		case models.DriverStatusOffline, models.DriverStatusOnline,
			models.DriverStatusBusy, models.DriverStatusOnBreak:
		default:
			utils.RespondError(w, http.StatusBadRequest, "Unknown driver status")
			return
		}

		// Availability follows status unless the driver says otherwise
		isAvailable := req.Status == models.DriverStatusOnline
		if req.IsAvailable != nil {
			isAvailable = *req.IsAvailable
		}

		driver.Status = req.Status
		driver.IsAvailable = isAvailable
		driver.UpdatedAt = time.Now().Unix()

		_, err := db.Exec(`
			UPDATE drivers SET status = $1, is_available = $2, updated_at = $3 WHERE id = $4
		`, driver.Status, driver.IsAvailable, driver.UpdatedAt, driver.ID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update status")
			return
		}

		log.Printf("🚚 Driver %s is now %s (available: %v)", driver.ID, driver.Status, driver.IsAvailable)
		utils.RespondJSON(w, http.StatusOK, driver)
	}
}

// UpdateMyLocation lets the authenticated driver report their position over
// HTTP; the WebSocket path is preferred but this keeps lower-end devices in.
func UpdateMyLocation(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, ok := driverForRequest(db, w, r)
		if !ok {
			return
		}

		var req models.UpdateDriverLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		driver.Latitude = &req.Latitude
		driver.Longitude = &req.Longitude
		driver.UpdatedAt = time.Now().Unix()

		_, err := db.Exec(`
			UPDATE drivers SET latitude = $1, longitude = $2, updated_at = $3 WHERE id = $4
		`, req.Latitude, req.Longitude, driver.UpdatedAt, driver.ID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update location")
			return
		}

		utils.RespondJSON(w, http.StatusOK, driver)
	}
}

// GetMyPickups lists the authenticated driver's pickups in a status
// (default SCHEDULED), soonest first
func GetMyPickups(db *sqlx.DB, pickups *services.PickupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, ok := driverForRequest(db, w, r)
		if !ok {
			return
		}

		status := r.URL.Query().Get("status")
		if status == "" {
			status = models.PickupStatusScheduled
		}

		list, err := pickups.ListForDriver(driver.ID, status)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		responses := make([]models.PickupResponse, len(list))
		for i, p := range list {
			responses[i] = p.ToPickupResponse()
		}
		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// driverForRequest resolves the authenticated user's driver row
func driverForRequest(db *sqlx.DB, w http.ResponseWriter, r *http.Request) (*models.Driver, bool) {
	userClaims, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	var driver models.Driver
	err := db.Get(&driver, "SELECT * FROM drivers WHERE user_id = $1", userClaims.UserID)
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, "No driver profile for this user")
		return nil, false
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return &driver, true
}

func parseLatLng(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "lat is required and must be a number")
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "lng is required and must be a number")
		return 0, 0, false
	}
	return lat, lng, true
}
