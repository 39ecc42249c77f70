package models

import "time"

// Container statuses. EMPTY..FULL are derived from the fill level; the last
// two are set manually by operations staff.
const (
	ContainerStatusEmpty        = "EMPTY"
	ContainerStatusLow          = "LOW"
	ContainerStatusMedium       = "MEDIUM"
	ContainerStatusHigh         = "HIGH"
	ContainerStatusFull         = "FULL"
	ContainerStatusMaintenance  = "MAINTENANCE"
	ContainerStatusOutOfService = "OUT_OF_SERVICE"
)

// Container represents a waste bin with a fill-level sensor
type Container struct {
	ID             string   `json:"id" db:"id"`
	BinCode        string   `json:"bin_code" db:"bin_code"`
	Address        string   `json:"address" db:"address"`
	Latitude       *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64 `json:"longitude,omitempty" db:"longitude"`
	CapacityLiters int      `json:"capacity_liters" db:"capacity_liters"`
	FillLevel      int      `json:"fill_level" db:"fill_level"` // 0-100
	Status         string   `json:"status" db:"status"`
	LastEmptiedAt  *int64   `json:"last_emptied_at,omitempty" db:"last_emptied_at"` // Unix timestamp
	IsActive       bool     `json:"is_active" db:"is_active"`
	OwnerUserID    *string  `json:"owner_user_id,omitempty" db:"owner_user_id"`
	CreatedAt      int64    `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt      int64    `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// StatusForFillLevel derives the fill-based status for a level (0-100).
// Manual statuses (MAINTENANCE, OUT_OF_SERVICE) are never derived here.
func StatusForFillLevel(level int) string {
	switch {
	case level >= 95:
		return ContainerStatusFull
	case level >= 80:
		return ContainerStatusHigh
	case level >= 50:
		return ContainerStatusMedium
	case level >= 20:
		return ContainerStatusLow
	default:
		return ContainerStatusEmpty
	}
}

// ContainerResponse is what we send to the client with ISO timestamps
type ContainerResponse struct {
	ID             string   `json:"id"`
	BinCode        string   `json:"bin_code"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	CapacityLiters int      `json:"capacity_liters"`
	FillLevel      int      `json:"fill_level"`
	Status         string   `json:"status"`
	LastEmptiedIso *string  `json:"lastEmptiedIso,omitempty"`
	IsActive       bool     `json:"is_active"`
	OwnerUserID    *string  `json:"owner_user_id,omitempty"`
}

// ToContainerResponse converts a Container to ContainerResponse
func (c *Container) ToContainerResponse() ContainerResponse {
	resp := ContainerResponse{
		ID:             c.ID,
		BinCode:        c.BinCode,
		Address:        c.Address,
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		CapacityLiters: c.CapacityLiters,
		FillLevel:      c.FillLevel,
		Status:         c.Status,
		IsActive:       c.IsActive,
		OwnerUserID:    c.OwnerUserID,
	}

	if c.LastEmptiedAt != nil {
		t := time.Unix(*c.LastEmptiedAt, 0)
		iso := t.Format(time.RFC3339)
		resp.LastEmptiedIso = &iso
	}

	return resp
}

// CreateContainerRequest is the request body for POST /api/containers
type CreateContainerRequest struct {
	BinCode        string   `json:"bin_code"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	CapacityLiters int      `json:"capacity_liters"`
	OwnerUserID    *string  `json:"owner_user_id,omitempty"`
}

// UpdateFillLevelRequest is the request body for PATCH /api/containers/:id/fill-level
// (the telemetry ingestion boundary reports through this shape)
type UpdateFillLevelRequest struct {
	FillLevel int `json:"fill_level"`
}
