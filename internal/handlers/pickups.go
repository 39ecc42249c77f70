package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/middleware"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// CreatePickup schedules a collection for a container. Admins may create for
// any container; residents only for their own.
func CreatePickup(pickups *services.PickupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreatePickupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.ContainerID == "" {
			utils.RespondError(w, http.StatusBadRequest, "container_id is required")
			return
		}
		if req.Priority != nil && !models.ValidPriority(*req.Priority) {
			utils.RespondError(w, http.StatusBadRequest, "Unknown priority")
			return
		}

		var scheduledAt *time.Time
		if req.ScheduledIso != nil {
			parsed, err := time.Parse(time.RFC3339, *req.ScheduledIso)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "scheduledIso must be RFC3339")
				return
			}
			scheduledAt = &parsed
		}

		pickup, err := pickups.Create(services.CreatePickupParams{
			ContainerID:   req.ContainerID,
			RequestedBy:   userClaims.UserID,
			RequesterRole: userClaims.Role,
			DriverID:      req.DriverID,
			Priority:      req.Priority,
			ScheduledAt:   scheduledAt,
			Notes:         req.Notes,
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusCreated, pickup.ToPickupResponse())
	}
}

// GetPickup returns one pickup by ID
func GetPickup(pickups *services.PickupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		pickup, err := pickups.GetByID(id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, pickup.ToPickupResponse())
	}
}

// GetPickups lists pickups, optionally filtered by status. Requires admin
// authentication.
func GetPickups(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pickups []models.Pickup
		var err error
		if status := r.URL.Query().Get("status"); status != "" {
			err = db.Select(&pickups, `
				SELECT * FROM pickups WHERE status = $1 ORDER BY scheduled_at ASC
			`, status)
		} else {
			err = db.Select(&pickups, "SELECT * FROM pickups ORDER BY scheduled_at ASC")
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch pickups")
			return
		}

		responses := make([]models.PickupResponse, len(pickups))
		for i, p := range pickups {
			responses[i] = p.ToPickupResponse()
		}
		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// TransitionPickup moves a pickup to a new status
func TransitionPickup(pickups *services.PickupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.TransitionPickupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		pickup, err := pickups.Transition(id, req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, pickup.ToPickupResponse())
	}
}

// CancelPickup cancels a pickup with a reason
func CancelPickup(pickups *services.PickupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.CancelPickupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Reason == "" {
			utils.RespondError(w, http.StatusBadRequest, "reason is required")
			return
		}

		pickup, err := pickups.Cancel(id, req.Reason)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, pickup.ToPickupResponse())
	}
}
