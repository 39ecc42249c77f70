package services

import (
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
)

// Fill level at or above which a container is considered collection-worthy:
// auto-assignment kicks in on manual creation and the scheduler auto-creates
// pickups.
const FillThreshold = 80

// DerivePriority returns the effective priority for a pickup on a container
// at the given fill level. Critically full containers override the requested
// priority; below that the requester's choice (or MEDIUM) stands.
func DerivePriority(fillLevel int, requested *string) string {
	switch {
	case fillLevel >= 95:
		return models.PriorityUrgent
	case fillLevel >= 85:
		return models.PriorityHigh
	}

	if requested != nil && models.ValidPriority(*requested) {
		return *requested
	}
	return models.PriorityMedium
}

// ScheduleOffset returns how far in the future a pickup without an explicit
// schedule time is slotted, by priority.
func ScheduleOffset(priority string) time.Duration {
	switch priority {
	case models.PriorityUrgent:
		return 30 * time.Minute
	case models.PriorityHigh:
		return 2 * time.Hour
	case models.PriorityMedium:
		return 4 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// CanTransition reports whether a pickup may move from one status to another.
// The machine is forward-only: SCHEDULED -> IN_PROGRESS -> COMPLETED, with
// CANCELLED reachable from the two non-terminal states. Repeating IN_PROGRESS
// or COMPLETED is allowed as an idempotent no-op; nothing else leaves a
// terminal state.
func CanTransition(from, to string) bool {
	if from == to {
		return from == models.PickupStatusInProgress || from == models.PickupStatusCompleted
	}

	switch from {
	case models.PickupStatusScheduled:
		return to == models.PickupStatusInProgress ||
			to == models.PickupStatusCompleted ||
			to == models.PickupStatusCancelled
	case models.PickupStatusInProgress:
		return to == models.PickupStatusCompleted ||
			to == models.PickupStatusCancelled
	}
	return false
}
