package services

import (
	"fmt"
	"sort"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/geo"

	"github.com/jmoiron/sqlx"
)

// DriverLocator finds eligible drivers near a coordinate. A driver is
// eligible when ONLINE, available, active and reporting a known position.
type DriverLocator struct {
	db *sqlx.DB
}

// NewDriverLocator creates a new driver locator
func NewDriverLocator(db *sqlx.DB) *DriverLocator {
	return &DriverLocator{db: db}
}

const eligibleDriversQuery = `
	SELECT id, user_id, license_number, vehicle_id, status, latitude, longitude,
	       is_available, is_active, created_at, updated_at
	FROM drivers
	WHERE status = 'ONLINE'
	  AND is_available = TRUE
	  AND is_active = TRUE
	  AND latitude IS NOT NULL
	  AND longitude IS NOT NULL
`

// FindNearest returns the eligible driver closest to the given coordinate,
// or (nil, nil) when no driver qualifies. An empty candidate set is not an
// error: assignment is best-effort.
func (l *DriverLocator) FindNearest(lat, lng float64) (*models.NearbyDriver, error) {
	var drivers []models.Driver
	if err := l.db.Select(&drivers, eligibleDriversQuery); err != nil {
		return nil, fmt.Errorf("find nearest driver: %w", err)
	}

	return nearestCandidate(lat, lng, drivers), nil
}

// FindWithinRadius returns up to limit eligible drivers within radiusKm of
// the coordinate, sorted by ascending distance. A bounding-box prefilter
// runs in SQL; the exact great-circle check runs here, so no returned driver
// exceeds the radius.
func (l *DriverLocator) FindWithinRadius(lat, lng, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("radius must be positive: %w", ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusKm)

	var drivers []models.Driver
	query := eligibleDriversQuery + `
	  AND latitude BETWEEN $1 AND $2
	  AND longitude BETWEEN $3 AND $4
	`
	if err := l.db.Select(&drivers, query, minLat, maxLat, minLng, maxLng); err != nil {
		return nil, fmt.Errorf("find drivers within radius: %w", err)
	}

	nearby := withinRadius(lat, lng, radiusKm, drivers)
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// nearestCandidate scans candidates for the minimum great-circle distance.
// Ties are broken by first-seen order.
func nearestCandidate(lat, lng float64, candidates []models.Driver) *models.NearbyDriver {
	target := geo.Point{Latitude: lat, Longitude: lng}
	var best *models.NearbyDriver
	for i := range candidates {
		d := &candidates[i]
		if !d.HasLocation() {
			continue
		}
		dist := geo.DistanceBetween(target, geo.Point{Latitude: *d.Latitude, Longitude: *d.Longitude})
		if best == nil || dist < best.DistanceKm {
			best = &models.NearbyDriver{Driver: *d, DistanceKm: dist}
		}
	}
	return best
}

// withinRadius applies the exact distance filter and sorts ascending.
func withinRadius(lat, lng, radiusKm float64, candidates []models.Driver) []models.NearbyDriver {
	target := geo.Point{Latitude: lat, Longitude: lng}
	nearby := make([]models.NearbyDriver, 0, len(candidates))
	for i := range candidates {
		d := &candidates[i]
		if !d.HasLocation() {
			continue
		}
		dist := geo.DistanceBetween(target, geo.Point{Latitude: *d.Latitude, Longitude: *d.Longitude})
		if dist <= radiusKm {
			nearby = append(nearby, models.NearbyDriver{Driver: *d, DistanceKm: dist})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}
