package scheduler

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/services"

	"github.com/jmoiron/sqlx"
)

// Window scanned ahead for reminders, and how far past schedule a pickup
// must be before escalation.
const (
	ReminderWindow = 15 * time.Minute
	OverdueAfter   = 30 * time.Minute
)

// DispatchJobs holds the dispatch scheduler's three periodic tasks.
type DispatchJobs struct {
	db           *sqlx.DB
	pickups      *services.PickupService
	push         services.PushSender  // nil disables push notifications
	broadcast    services.Broadcaster // nil disables realtime events
	systemUserID string               // requester recorded on auto-created pickups
}

// NewDispatchJobs creates the dispatch job set
func NewDispatchJobs(db *sqlx.DB, pickups *services.PickupService, push services.PushSender, broadcast services.Broadcaster, systemUserID string) *DispatchJobs {
	return &DispatchJobs{
		db:           db,
		pickups:      pickups,
		push:         push,
		broadcast:    broadcast,
		systemUserID: systemUserID,
	}
}

// Register wires the three jobs into a scheduler with their intervals.
func (j *DispatchJobs) Register(s *Scheduler, autoCreate, reminders, overdue time.Duration) {
	s.AddJob("auto-create-pickups", autoCreate, j.AutoCreatePickups)
	s.AddJob("pickup-reminders", reminders, j.SendReminders)
	s.AddJob("overdue-escalation", overdue, j.EscalateOverdue)
}

// collectionCandidates filters active containers down to those due for an
// automatic pickup: at or past the fill threshold, not under a manual
// operations status, and with no pickup already in a non-terminal status.
// Once pickups exist for its output, a second pass over the same containers
// selects nothing, so repeated scans create at most one pickup per container.
func collectionCandidates(containers []models.Container, activeContainerIDs []string) []models.Container {
	active := make(map[string]struct{}, len(activeContainerIDs))
	for _, id := range activeContainerIDs {
		active[id] = struct{}{}
	}

	due := make([]models.Container, 0, len(containers))
	for _, c := range containers {
		if c.FillLevel < services.FillThreshold {
			continue
		}
		if c.Status == models.ContainerStatusMaintenance || c.Status == models.ContainerStatusOutOfService {
			continue
		}
		if _, ok := active[c.ID]; ok {
			continue
		}
		due = append(due, c)
	}
	return due
}

// AutoCreatePickups creates one pickup for every active container at or past
// the fill threshold that has no pickup in a non-terminal status. Duplicate
// avoidance rests on collectionCandidates (plus the partial unique index as
// a backstop); each container is processed independently and one failure
// never aborts the batch.
func (j *DispatchJobs) AutoCreatePickups() {
	var allContainers []models.Container
	err := j.db.Select(&allContainers, `SELECT * FROM containers WHERE is_active = TRUE`)
	if err != nil {
		log.Printf("❌ Auto-create scan failed: %v", err)
		return
	}

	var activeIDs []string
	err = j.db.Select(&activeIDs, `
		SELECT container_id FROM pickups WHERE status IN ('SCHEDULED', 'IN_PROGRESS')
	`)
	if err != nil {
		log.Printf("❌ Auto-create active-pickup scan failed: %v", err)
		return
	}

	containers := collectionCandidates(allContainers, activeIDs)
	if len(containers) == 0 {
		return
	}
	log.Printf("🗑️  Auto-create: %d containers need collection", len(containers))

	created := 0
	for _, container := range containers {
		notes := "Auto-created by dispatch scheduler"
		_, err := j.pickups.Create(services.CreatePickupParams{
			ContainerID:   container.ID,
			RequestedBy:   j.systemUserID,
			RequesterRole: models.RoleAdmin,
			Notes:         &notes,
		})
		if err != nil {
			log.Printf("⚠️  Auto-create failed for container %s: %v", container.BinCode, err)
			continue
		}
		created++
	}

	log.Printf("✅ Auto-create run complete: %d/%d pickups created", created, len(containers))
}

type reminderRow struct {
	PickupID    string `db:"pickup_id"`
	DriverID    string `db:"driver_id"`
	BinCode     string `db:"bin_code"`
	ScheduledAt int64  `db:"scheduled_at"`
}

// SendReminders notifies drivers of assigned pickups scheduled within the
// reminder window. One notification per matching pickup per scan; duplicates
// across scans are expected and not deduplicated here.
func (j *DispatchJobs) SendReminders() {
	now := time.Now()
	var rows []reminderRow
	err := j.db.Select(&rows, `
		SELECT p.id AS pickup_id, p.driver_id, c.bin_code, p.scheduled_at
		FROM pickups p
		JOIN containers c ON c.id = p.container_id
		WHERE p.status = 'SCHEDULED'
		  AND p.driver_id IS NOT NULL
		  AND p.scheduled_at BETWEEN $1 AND $2
	`, now.Unix(), now.Add(ReminderWindow).Unix())
	if err != nil {
		log.Printf("❌ Reminder scan failed: %v", err)
		return
	}

	for _, row := range rows {
		minutesUntil := int(time.Until(time.Unix(row.ScheduledAt, 0)).Minutes())
		if minutesUntil < 0 {
			minutesUntil = 0
		}
		j.notifyDriver(row.DriverID, func(token string) error {
			return j.push.SendPickupReminderNotification(token, row.PickupID, row.BinCode, minutesUntil)
		}, map[string]interface{}{
			"type": "pickup_reminder",
			"data": map[string]interface{}{
				"pickup_id":     row.PickupID,
				"bin_code":      row.BinCode,
				"minutes_until": minutesUntil,
			},
		})
	}

	if len(rows) > 0 {
		log.Printf("🔔 Reminders sent for %d upcoming pickups", len(rows))
	}
}

// EscalateOverdue raises assigned pickups more than OverdueAfter past their
// scheduled time to URGENT and emits an overdue notification with the
// minutes overdue.
func (j *DispatchJobs) EscalateOverdue() {
	now := time.Now()
	var rows []reminderRow
	err := j.db.Select(&rows, `
		SELECT p.id AS pickup_id, p.driver_id, c.bin_code, p.scheduled_at
		FROM pickups p
		JOIN containers c ON c.id = p.container_id
		WHERE p.status = 'SCHEDULED'
		  AND p.driver_id IS NOT NULL
		  AND p.scheduled_at < $1
	`, now.Add(-OverdueAfter).Unix())
	if err != nil {
		log.Printf("❌ Overdue scan failed: %v", err)
		return
	}

	for _, row := range rows {
		minutesOverdue := int(now.Sub(time.Unix(row.ScheduledAt, 0)).Minutes())

		_, err := j.db.Exec(`
			UPDATE pickups SET priority = $1, updated_at = $2 WHERE id = $3
		`, models.PriorityUrgent, now.Unix(), row.PickupID)
		if err != nil {
			log.Printf("⚠️  Escalation failed for pickup %s: %v", row.PickupID, err)
			continue
		}

		log.Printf("🚨 Pickup %s (container %s) is %d min overdue, escalated to URGENT",
			row.PickupID, row.BinCode, minutesOverdue)

		j.notifyDriver(row.DriverID, func(token string) error {
			return j.push.SendPickupOverdueNotification(token, row.PickupID, row.BinCode, minutesOverdue)
		}, map[string]interface{}{
			"type": "pickup_overdue",
			"data": map[string]interface{}{
				"pickup_id":       row.PickupID,
				"bin_code":        row.BinCode,
				"minutes_overdue": minutesOverdue,
			},
		})
	}

	// Dispatchers get one summary per scan, not one ping per pickup.
	if len(rows) > 0 && j.push != nil {
		tokens, err := services.AdminPushTokens(j.db)
		if err != nil {
			log.Printf("⚠️  Could not fetch admin push tokens: %v", err)
			return
		}
		if len(tokens) > 0 {
			err := j.push.SendMulticast(tokens, "Overdue Pickups",
				fmt.Sprintf("%d pickups are overdue and escalated to URGENT.", len(rows)),
				map[string]string{"type": "overdue_summary", "count": strconv.Itoa(len(rows))})
			if err != nil {
				log.Printf("⚠️  Admin overdue summary failed: %v", err)
			}
		}
	}
}

// notifyDriver pushes to all of a driver's device tokens and mirrors the
// event onto their websocket, tolerating missing collaborators.
func (j *DispatchJobs) notifyDriver(driverID string, send func(token string) error, event map[string]interface{}) {
	if j.broadcast != nil {
		var userID string
		if err := j.db.Get(&userID, "SELECT user_id FROM drivers WHERE id = $1", driverID); err == nil {
			j.broadcast.BroadcastToUser(userID, event)
		}
	}

	if j.push == nil {
		return
	}
	tokens, err := services.DriverPushTokens(j.db, driverID)
	if err != nil {
		log.Printf("⚠️  Could not fetch push tokens for driver %s: %v", driverID, err)
		return
	}
	for _, token := range tokens {
		if err := send(token); err != nil {
			log.Printf("⚠️  Push notification failed: %v", err)
		}
	}
}
