package services

import (
	"testing"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func testDriver(id string, lat, lng float64) models.Driver {
	return models.Driver{
		ID:          id,
		UserID:      "user-" + id,
		Status:      models.DriverStatusOnline,
		Latitude:    floatPtr(lat),
		Longitude:   floatPtr(lng),
		IsAvailable: true,
		IsActive:    true,
	}
}

func TestNearestCandidate(t *testing.T) {
	// Query point: central Freetown
	lat, lng := 8.4840, -13.2299

	drivers := []models.Driver{
		testDriver("far-east", 8.4705, -13.1912),  // Kissy, ~4 km
		testDriver("close", 8.4847, -13.2343),     // Siaka Stevens, ~0.5 km
		testDriver("far-west", 8.4866, -13.2803),  // Aberdeen, ~5.5 km
	}

	best := nearestCandidate(lat, lng, drivers)
	if best == nil {
		t.Fatal("expected a nearest driver, got nil")
	}
	if best.ID != "close" {
		t.Errorf("nearest driver = %s, want close", best.ID)
	}
	if best.DistanceKm <= 0 || best.DistanceKm > 1 {
		t.Errorf("nearest distance = %f km, want within (0, 1]", best.DistanceKm)
	}
}

func TestNearestCandidateEmptyAndNoLocation(t *testing.T) {
	if got := nearestCandidate(8.4840, -13.2299, nil); got != nil {
		t.Errorf("nearestCandidate with no candidates = %v, want nil", got)
	}

	noLocation := models.Driver{ID: "ghost", Status: models.DriverStatusOnline, IsAvailable: true, IsActive: true}
	if got := nearestCandidate(8.4840, -13.2299, []models.Driver{noLocation}); got != nil {
		t.Errorf("nearestCandidate with locationless driver = %v, want nil", got)
	}
}

func TestNearestCandidateTieBreaksFirstSeen(t *testing.T) {
	a := testDriver("first", 8.4900, -13.2299)
	b := testDriver("second", 8.4900, -13.2299)

	best := nearestCandidate(8.4840, -13.2299, []models.Driver{a, b})
	if best == nil || best.ID != "first" {
		t.Errorf("tie should keep first-seen driver, got %v", best)
	}
}

func TestWithinRadius(t *testing.T) {
	lat, lng := 8.4840, -13.2299

	drivers := []models.Driver{
		testDriver("far-west", 8.4866, -13.2803),
		testDriver("close", 8.4847, -13.2343),
		testDriver("far-east", 8.4705, -13.1912),
	}

	nearby := withinRadius(lat, lng, 5.0, drivers)

	if len(nearby) != 2 {
		t.Fatalf("got %d drivers within 5 km, want 2", len(nearby))
	}
	if nearby[0].ID != "close" {
		t.Errorf("first driver = %s, want close (sorted ascending)", nearby[0].ID)
	}
	if nearby[1].ID != "far-east" {
		t.Errorf("second driver = %s, want far-east", nearby[1].ID)
	}
	for _, d := range nearby {
		if d.DistanceKm > 5.0 {
			t.Errorf("driver %s at %f km exceeds the radius", d.ID, d.DistanceKm)
		}
	}
}

func TestWithinRadiusExcludesAll(t *testing.T) {
	nearby := withinRadius(8.4840, -13.2299, 0.1, []models.Driver{
		testDriver("far-east", 8.4705, -13.1912),
	})
	if len(nearby) != 0 {
		t.Errorf("got %d drivers within 0.1 km, want 0", len(nearby))
	}
}
