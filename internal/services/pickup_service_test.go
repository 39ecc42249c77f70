package services

import (
	"testing"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
)

func TestApplyTransitionStampsTimestampsOnce(t *testing.T) {
	pickup := models.Pickup{Status: models.PickupStatusScheduled}

	if reset := applyTransition(&pickup, models.PickupStatusInProgress, nil, 1000); reset {
		t.Error("starting a pickup must not request a container reset")
	}
	if pickup.StartedAt == nil || *pickup.StartedAt != 1000 {
		t.Fatalf("StartedAt = %v, want 1000", pickup.StartedAt)
	}
	if pickup.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil before completion", pickup.CompletedAt)
	}

	if reset := applyTransition(&pickup, models.PickupStatusCompleted, nil, 2000); !reset {
		t.Error("completing a pickup must request the container reset")
	}
	if *pickup.StartedAt != 1000 {
		t.Errorf("StartedAt = %d, want original 1000 after completion", *pickup.StartedAt)
	}
	if pickup.CompletedAt == nil || *pickup.CompletedAt != 2000 {
		t.Fatalf("CompletedAt = %v, want 2000", pickup.CompletedAt)
	}
	if pickup.UpdatedAt != 2000 {
		t.Errorf("UpdatedAt = %d, want 2000", pickup.UpdatedAt)
	}

	// A replayed completion keeps the first stamp but still pairs with the
	// container reset.
	if reset := applyTransition(&pickup, models.PickupStatusCompleted, nil, 3000); !reset {
		t.Error("replayed completion must still request the container reset")
	}
	if *pickup.CompletedAt != 2000 {
		t.Errorf("CompletedAt = %d, want first stamp 2000", *pickup.CompletedAt)
	}
}

func TestApplyTransitionDirectCompletion(t *testing.T) {
	// Field crews may complete without an explicit start; the start time is
	// simply never stamped in that path.
	pickup := models.Pickup{Status: models.PickupStatusScheduled}

	reset := applyTransition(&pickup, models.PickupStatusCompleted, nil, 5000)
	if !reset {
		t.Error("direct completion must request the container reset")
	}
	if pickup.StartedAt != nil {
		t.Errorf("StartedAt = %v, want nil for a direct completion", pickup.StartedAt)
	}
	if pickup.CompletedAt == nil || *pickup.CompletedAt != 5000 {
		t.Fatalf("CompletedAt = %v, want 5000", pickup.CompletedAt)
	}
}

func TestApplyTransitionResetPairing(t *testing.T) {
	tests := []struct {
		status    string
		wantReset bool
	}{
		{models.PickupStatusInProgress, false},
		{models.PickupStatusCancelled, false},
		{models.PickupStatusCompleted, true},
	}

	for _, tt := range tests {
		pickup := models.Pickup{Status: models.PickupStatusScheduled}
		if got := applyTransition(&pickup, tt.status, nil, 100); got != tt.wantReset {
			t.Errorf("applyTransition to %s: reset = %v, want %v", tt.status, got, tt.wantReset)
		}
	}
}

func TestApplyTransitionNotes(t *testing.T) {
	pickup := models.Pickup{Status: models.PickupStatusScheduled, Notes: strPtr("original")}

	applyTransition(&pickup, models.PickupStatusInProgress, nil, 100)
	if pickup.Notes == nil || *pickup.Notes != "original" {
		t.Errorf("Notes = %v, want original preserved when none given", pickup.Notes)
	}

	applyTransition(&pickup, models.PickupStatusCompleted, strPtr("bin emptied"), 200)
	if pickup.Notes == nil || *pickup.Notes != "bin emptied" {
		t.Errorf("Notes = %v, want replacement applied", pickup.Notes)
	}
}
