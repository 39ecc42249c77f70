package models

// Driver statuses reported by the driver app
const (
	DriverStatusOffline = "OFFLINE"
	DriverStatusOnline  = "ONLINE"
	DriverStatusBusy    = "BUSY"
	DriverStatusOnBreak = "ON_BREAK"
)

// Driver represents a collection driver and their live state
type Driver struct {
	ID            string   `json:"id" db:"id"`
	UserID        string   `json:"user_id" db:"user_id"`
	LicenseNumber string   `json:"license_number" db:"license_number"`
	VehicleID     *string  `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Status        string   `json:"status" db:"status"`
	Latitude      *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64 `json:"longitude,omitempty" db:"longitude"`
	IsAvailable   bool     `json:"is_available" db:"is_available"`
	IsActive      bool     `json:"is_active" db:"is_active"`
	CreatedAt     int64    `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt     int64    `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// HasLocation reports whether the driver has a known last position
func (d *Driver) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// NearbyDriver is a driver plus their distance from a query point
type NearbyDriver struct {
	Driver
	DistanceKm float64 `json:"distance_km"`
}

// UpdateDriverStatusRequest is the request body for PATCH /api/drivers/me/status
type UpdateDriverStatusRequest struct {
	Status      string `json:"status"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// UpdateDriverLocationRequest is the request body for POST /api/drivers/me/location
type UpdateDriverLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
