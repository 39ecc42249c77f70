package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PickupService owns the pickup lifecycle: creation, priority derivation,
// driver auto-assignment and status transitions. It is the only writer of
// pickup status.
type PickupService struct {
	db        *sqlx.DB
	locator   *DriverLocator
	push      PushSender  // nil disables push notifications
	broadcast Broadcaster // nil disables realtime events
}

// NewPickupService creates a new pickup service
func NewPickupService(db *sqlx.DB, locator *DriverLocator, push PushSender, broadcast Broadcaster) *PickupService {
	return &PickupService{
		db:        db,
		locator:   locator,
		push:      push,
		broadcast: broadcast,
	}
}

// CreatePickupParams carries everything needed to create a pickup
type CreatePickupParams struct {
	ContainerID   string
	RequestedBy   string // user ID
	RequesterRole string
	DriverID      *string
	Priority      *string
	ScheduledAt   *time.Time
	Notes         *string
}

// Create creates a SCHEDULED pickup for a container. Fill level ≥ 95 forces
// URGENT, ≥ 85 forces HIGH; otherwise the requested priority (or MEDIUM)
// stands. When no driver is given and the container is at or past the fill
// threshold, the nearest eligible driver is assigned best-effort.
func (s *PickupService) Create(params CreatePickupParams) (*models.Pickup, error) {
	var container models.Container
	err := s.db.Get(&container, "SELECT * FROM containers WHERE id = $1", params.ContainerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("container %s: %w", params.ContainerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load container: %w", err)
	}

	if params.RequesterRole != models.RoleAdmin {
		if container.OwnerUserID == nil || *container.OwnerUserID != params.RequestedBy {
			return nil, fmt.Errorf("requester does not own container %s: %w", container.BinCode, ErrForbidden)
		}
	}

	driverID := params.DriverID
	if driverID != nil {
		var driver models.Driver
		err := s.db.Get(&driver, "SELECT * FROM drivers WHERE id = $1", *driverID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("driver %s: %w", *driverID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load driver: %w", err)
		}
		if !driver.IsActive || !driver.IsAvailable {
			return nil, fmt.Errorf("driver %s is not active and available: %w", *driverID, ErrInvalidState)
		}
	}

	priority := DerivePriority(container.FillLevel, params.Priority)

	// Best-effort auto-assignment: a missing driver is not an error.
	if driverID == nil && container.FillLevel >= FillThreshold &&
		container.Latitude != nil && container.Longitude != nil {
		nearest, err := s.locator.FindNearest(*container.Latitude, *container.Longitude)
		if err != nil {
			log.Printf("⚠️  Auto-assignment lookup failed for container %s: %v", container.BinCode, err)
		} else if nearest != nil {
			driverID = &nearest.ID
			log.Printf("🚚 Auto-assigned driver %s to container %s (%.2f km away)",
				nearest.ID, container.BinCode, nearest.DistanceKm)
		} else {
			log.Printf("ℹ️  No available driver near container %s, pickup left unassigned", container.BinCode)
		}
	}

	scheduledAt := time.Now().Add(ScheduleOffset(priority))
	if params.ScheduledAt != nil {
		scheduledAt = *params.ScheduledAt
	}

	now := time.Now().Unix()
	pickup := models.Pickup{
		ID:          uuid.New().String(),
		ContainerID: container.ID,
		DriverID:    driverID,
		RequestedBy: params.RequestedBy,
		Status:      models.PickupStatusScheduled,
		Priority:    priority,
		ScheduledAt: scheduledAt.Unix(),
		Notes:       params.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.Exec(`
		INSERT INTO pickups (id, container_id, driver_id, requested_by, status, priority,
		                     scheduled_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, pickup.ID, pickup.ContainerID, pickup.DriverID, pickup.RequestedBy, pickup.Status,
		pickup.Priority, pickup.ScheduledAt, pickup.Notes, pickup.CreatedAt, pickup.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("container %s already has an active pickup: %w", container.BinCode, ErrInvalidState)
		}
		return nil, fmt.Errorf("insert pickup: %w", err)
	}

	log.Printf("✅ Pickup %s created for container %s (priority %s, scheduled %s)",
		pickup.ID, container.BinCode, pickup.Priority, scheduledAt.Format(time.RFC3339))

	if driverID != nil {
		s.notifyAssigned(&pickup, container.BinCode)
	}
	if s.broadcast != nil {
		s.broadcast.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "pickup_created",
			"data": pickup.ToPickupResponse(),
		})
	}

	return &pickup, nil
}

// applyTransition mutates the pickup for an already-validated transition.
// The start and completion times are stamped only on first entry into their
// status; repeats keep the original stamp. The return value reports whether
// the container reset must ride in the same transaction as the pickup write.
func applyTransition(pickup *models.Pickup, status string, notes *string, now int64) (resetContainer bool) {
	pickup.Status = status
	pickup.UpdatedAt = now
	if notes != nil {
		pickup.Notes = notes
	}

	if status == models.PickupStatusInProgress && pickup.StartedAt == nil {
		pickup.StartedAt = &now
	}
	if status == models.PickupStatusCompleted && pickup.CompletedAt == nil {
		pickup.CompletedAt = &now
	}

	return status == models.PickupStatusCompleted
}

// Transition moves a pickup through its forward-only state machine. Entering
// IN_PROGRESS stamps the start time once; entering COMPLETED stamps the
// completion time once and, in the same transaction, resets the container to
// empty. Repeating the current IN_PROGRESS/COMPLETED status is a no-op.
func (s *PickupService) Transition(pickupID string, req models.TransitionPickupRequest) (*models.Pickup, error) {
	switch req.Status {
	case models.PickupStatusScheduled, models.PickupStatusInProgress,
		models.PickupStatusCompleted, models.PickupStatusCancelled:
	default:
		return nil, fmt.Errorf("unknown pickup status %q: %w", req.Status, ErrValidation)
	}

	var pickup models.Pickup
	err := s.db.Get(&pickup, "SELECT * FROM pickups WHERE id = $1", pickupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pickup %s: %w", pickupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load pickup: %w", err)
	}

	if pickup.Status == req.Status {
		if !CanTransition(pickup.Status, req.Status) {
			return nil, fmt.Errorf("pickup %s is already %s: %w", pickupID, pickup.Status, ErrInvalidState)
		}
		// Idempotent repeat: timestamps stay as first stamped.
		return &pickup, nil
	}

	if !CanTransition(pickup.Status, req.Status) {
		return nil, fmt.Errorf("cannot transition pickup from %s to %s: %w",
			pickup.Status, req.Status, ErrInvalidState)
	}

	now := time.Now().Unix()

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	resetContainer := applyTransition(&pickup, req.Status, req.Notes, now)

	_, err = tx.Exec(`
		UPDATE pickups
		SET status = $1, started_at = $2, completed_at = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`, pickup.Status, pickup.StartedAt, pickup.CompletedAt, pickup.Notes, pickup.UpdatedAt, pickup.ID)
	if err != nil {
		return nil, fmt.Errorf("update pickup: %w", err)
	}

	// The container reset must commit atomically with the completion write:
	// a completed pickup never leaves its container reporting full.
	if resetContainer {
		_, err = tx.Exec(`
			UPDATE containers
			SET fill_level = 0, status = $1, last_emptied_at = $2, updated_at = $2
			WHERE id = $3
		`, models.ContainerStatusEmpty, now, pickup.ContainerID)
		if err != nil {
			return nil, fmt.Errorf("reset container: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Drivers report their position along with field transitions.
	if req.Latitude != nil && req.Longitude != nil && pickup.DriverID != nil {
		_, err := s.db.Exec(`
			UPDATE drivers SET latitude = $1, longitude = $2, updated_at = $3 WHERE id = $4
		`, *req.Latitude, *req.Longitude, now, *pickup.DriverID)
		if err != nil {
			log.Printf("⚠️  Failed to update driver location from transition: %v", err)
		}
	}

	log.Printf("✅ Pickup %s transitioned to %s", pickup.ID, pickup.Status)

	if s.broadcast != nil {
		s.broadcast.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "pickup_status_changed",
			"data": pickup.ToPickupResponse(),
		})
	}

	return &pickup, nil
}

// Cancel sets a pickup to CANCELLED and records the reason in its notes.
// Completed pickups cannot be cancelled; cancelling twice is a no-op.
func (s *PickupService) Cancel(pickupID, reason string) (*models.Pickup, error) {
	var pickup models.Pickup
	err := s.db.Get(&pickup, "SELECT * FROM pickups WHERE id = $1", pickupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pickup %s: %w", pickupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load pickup: %w", err)
	}

	if pickup.Status == models.PickupStatusCompleted {
		return nil, fmt.Errorf("cannot cancel a completed pickup: %w", ErrInvalidState)
	}
	if pickup.Status == models.PickupStatusCancelled {
		return &pickup, nil
	}

	notes := "Cancelled: " + reason
	if pickup.Notes != nil && *pickup.Notes != "" {
		notes = *pickup.Notes + " | " + notes
	}

	now := time.Now().Unix()
	pickup.Status = models.PickupStatusCancelled
	pickup.Notes = &notes
	pickup.UpdatedAt = now

	_, err = s.db.Exec(`
		UPDATE pickups SET status = $1, notes = $2, updated_at = $3 WHERE id = $4
	`, pickup.Status, pickup.Notes, pickup.UpdatedAt, pickup.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel pickup: %w", err)
	}

	log.Printf("🚫 Pickup %s cancelled: %s", pickup.ID, reason)

	if s.broadcast != nil {
		s.broadcast.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "pickup_status_changed",
			"data": pickup.ToPickupResponse(),
		})
	}

	return &pickup, nil
}

// GetByID returns one pickup
func (s *PickupService) GetByID(pickupID string) (*models.Pickup, error) {
	var pickup models.Pickup
	err := s.db.Get(&pickup, "SELECT * FROM pickups WHERE id = $1", pickupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pickup %s: %w", pickupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load pickup: %w", err)
	}
	return &pickup, nil
}

// ListForDriver returns a driver's pickups in a given status, soonest first
func (s *PickupService) ListForDriver(driverID, status string) ([]models.Pickup, error) {
	var pickups []models.Pickup
	err := s.db.Select(&pickups, `
		SELECT * FROM pickups WHERE driver_id = $1 AND status = $2 ORDER BY scheduled_at ASC
	`, driverID, status)
	if err != nil {
		return nil, fmt.Errorf("list driver pickups: %w", err)
	}
	return pickups, nil
}

func (s *PickupService) notifyAssigned(pickup *models.Pickup, binCode string) {
	if s.broadcast != nil {
		var userID string
		if err := s.db.Get(&userID, "SELECT user_id FROM drivers WHERE id = $1", *pickup.DriverID); err == nil {
			s.broadcast.BroadcastToUser(userID, map[string]interface{}{
				"type": "pickup_assigned",
				"data": pickup.ToPickupResponse(),
			})
		}
	}

	if s.push == nil {
		return
	}
	tokens, err := DriverPushTokens(s.db, *pickup.DriverID)
	if err != nil {
		log.Printf("⚠️  Could not fetch push tokens for driver %s: %v", *pickup.DriverID, err)
		return
	}
	for _, token := range tokens {
		if err := s.push.SendPickupAssignedNotification(token, pickup.ID, binCode, pickup.Priority); err != nil {
			log.Printf("⚠️  Push notification failed: %v", err)
		}
	}
}
