package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/middleware"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetContainers lists containers. Admins and drivers see all; residents only
// see the containers they own.
func GetContainers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var containers []models.Container
		var err error
		if userClaims.Role == models.RoleResident {
			err = db.Select(&containers, `
				SELECT * FROM containers WHERE owner_user_id = $1 ORDER BY bin_code ASC
			`, userClaims.UserID)
		} else {
			err = db.Select(&containers, "SELECT * FROM containers ORDER BY bin_code ASC")
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch containers")
			return
		}

		responses := make([]models.ContainerResponse, len(containers))
		for i, container := range containers {
			responses[i] = container.ToContainerResponse()
		}
		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// GetContainer returns one container by ID
func GetContainer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.RespondError(w, http.StatusBadRequest, "Container ID is required")
			return
		}

		var container models.Container
		err := db.Get(&container, "SELECT * FROM containers WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Container not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, container.ToContainerResponse())
	}
}

// CreateContainer registers a new container. Requires admin authentication.
func CreateContainer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateContainerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.BinCode = strings.TrimSpace(req.BinCode)
		req.Address = strings.TrimSpace(req.Address)
		if req.BinCode == "" || req.Address == "" {
			utils.RespondError(w, http.StatusBadRequest, "bin_code and address are required")
			return
		}

		capacity := req.CapacityLiters
		if capacity <= 0 {
			capacity = 240
		}

		now := time.Now().Unix()
		container := models.Container{
			ID:             uuid.New().String(),
			BinCode:        req.BinCode,
			Address:        req.Address,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			CapacityLiters: capacity,
			FillLevel:      0,
			Status:         models.ContainerStatusEmpty,
			IsActive:       true,
			OwnerUserID:    req.OwnerUserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		_, err := db.Exec(`
			INSERT INTO containers (id, bin_code, address, latitude, longitude, capacity_liters,
			                        fill_level, status, is_active, owner_user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, container.ID, container.BinCode, container.Address, container.Latitude, container.Longitude,
			container.CapacityLiters, container.FillLevel, container.Status, container.IsActive,
			container.OwnerUserID, container.CreatedAt, container.UpdatedAt)
		if err != nil {
			log.Printf("❌ Failed to create container: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create container")
			return
		}

		log.Printf("✅ Container created: %s (%s)", container.BinCode, container.ID)
		utils.RespondJSON(w, http.StatusCreated, container.ToContainerResponse())
	}
}

// UpdateFillLevel ingests a fill-level report for a container and re-derives
// its status. Manual statuses (MAINTENANCE, OUT_OF_SERVICE) are left alone;
// a report on such a container updates the level only.
func UpdateFillLevel(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.RespondError(w, http.StatusBadRequest, "Container ID is required")
			return
		}

		var req models.UpdateFillLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.FillLevel < 0 || req.FillLevel > 100 {
			utils.RespondError(w, http.StatusBadRequest, "fill_level must be between 0 and 100")
			return
		}

		var container models.Container
		err := db.Get(&container, "SELECT * FROM containers WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Container not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		container.FillLevel = req.FillLevel
		if container.Status != models.ContainerStatusMaintenance &&
			container.Status != models.ContainerStatusOutOfService {
			container.Status = models.StatusForFillLevel(req.FillLevel)
		}
		container.UpdatedAt = time.Now().Unix()

		_, err = db.Exec(`
			UPDATE containers SET fill_level = $1, status = $2, updated_at = $3 WHERE id = $4
		`, container.FillLevel, container.Status, container.UpdatedAt, container.ID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update container")
			return
		}

		utils.RespondJSON(w, http.StatusOK, container.ToContainerResponse())
	}
}
