package models

import "time"

// Pickup statuses. SCHEDULED and IN_PROGRESS are active; COMPLETED and
// CANCELLED are terminal.
const (
	PickupStatusScheduled  = "SCHEDULED"
	PickupStatusInProgress = "IN_PROGRESS"
	PickupStatusCompleted  = "COMPLETED"
	PickupStatusCancelled  = "CANCELLED"
)

// Pickup priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Pickup is one unit of dispatch work: collect one container
type Pickup struct {
	ID          string  `json:"id" db:"id"`
	ContainerID string  `json:"container_id" db:"container_id"`
	DriverID    *string `json:"driver_id,omitempty" db:"driver_id"`
	RequestedBy string  `json:"requested_by" db:"requested_by"`
	Status      string  `json:"status" db:"status"`
	Priority    string  `json:"priority" db:"priority"`
	ScheduledAt int64   `json:"scheduled_at" db:"scheduled_at"` // Unix timestamp
	StartedAt   *int64  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *int64  `json:"completed_at,omitempty" db:"completed_at"`
	Notes       *string `json:"notes,omitempty" db:"notes"`
	CreatedAt   int64   `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt   int64   `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// IsTerminal reports whether a pickup status permits no further transitions
func IsTerminalPickupStatus(status string) bool {
	return status == PickupStatusCompleted || status == PickupStatusCancelled
}

// ValidPriority reports whether p is one of the known priority values
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PickupResponse is what we send to the client with ISO timestamps
type PickupResponse struct {
	ID           string  `json:"id"`
	ContainerID  string  `json:"container_id"`
	DriverID     *string `json:"driver_id,omitempty"`
	RequestedBy  string  `json:"requested_by"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	ScheduledIso string  `json:"scheduledIso"`
	StartedIso   *string `json:"startedIso,omitempty"`
	CompletedIso *string `json:"completedIso,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// ToPickupResponse converts a Pickup to PickupResponse
func (p *Pickup) ToPickupResponse() PickupResponse {
	resp := PickupResponse{
		ID:           p.ID,
		ContainerID:  p.ContainerID,
		DriverID:     p.DriverID,
		RequestedBy:  p.RequestedBy,
		Status:       p.Status,
		Priority:     p.Priority,
		ScheduledIso: time.Unix(p.ScheduledAt, 0).Format(time.RFC3339),
		Notes:        p.Notes,
	}

	if p.StartedAt != nil {
		iso := time.Unix(*p.StartedAt, 0).Format(time.RFC3339)
		resp.StartedIso = &iso
	}

	if p.CompletedAt != nil {
		iso := time.Unix(*p.CompletedAt, 0).Format(time.RFC3339)
		resp.CompletedIso = &iso
	}

	return resp
}

// CreatePickupRequest is the request body for POST /api/pickups
type CreatePickupRequest struct {
	ContainerID  string  `json:"container_id"`
	DriverID     *string `json:"driver_id,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	ScheduledIso *string `json:"scheduledIso,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// TransitionPickupRequest is the request body for PATCH /api/pickups/:id/status
type TransitionPickupRequest struct {
	Status    string   `json:"status"`
	Notes     *string  `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// CancelPickupRequest is the request body for POST /api/pickups/:id/cancel
type CancelPickupRequest struct {
	Reason string `json:"reason"`
}
