package scheduler

import (
	"testing"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
)

func testContainer(id string, fillLevel int, status string) models.Container {
	return models.Container{
		ID:        id,
		BinCode:   "FT-" + id,
		FillLevel: fillLevel,
		Status:    status,
		IsActive:  true,
	}
}

func TestCollectionCandidates(t *testing.T) {
	containers := []models.Container{
		testContainer("c1", 96, models.ContainerStatusFull),
		testContainer("c2", 80, models.ContainerStatusHigh),
		testContainer("c3", 79, models.ContainerStatusMedium),
		testContainer("c4", 90, models.ContainerStatusMaintenance),
		testContainer("c5", 100, models.ContainerStatusOutOfService),
		testContainer("c6", 88, models.ContainerStatusHigh),
	}

	due := collectionCandidates(containers, []string{"c6"})

	if len(due) != 2 {
		t.Fatalf("got %d candidates, want 2", len(due))
	}
	if due[0].ID != "c1" || due[1].ID != "c2" {
		t.Errorf("candidates = [%s %s], want [c1 c2]", due[0].ID, due[1].ID)
	}
}

// Once pickups exist for a scan's output, rescanning the unchanged container
// set must select nothing, so each container gets at most one open pickup.
func TestCollectionCandidatesRescanSelectsNothing(t *testing.T) {
	containers := []models.Container{
		testContainer("c1", 96, models.ContainerStatusFull),
		testContainer("c2", 85, models.ContainerStatusHigh),
		testContainer("c3", 40, models.ContainerStatusLow),
	}

	first := collectionCandidates(containers, nil)
	if len(first) != 2 {
		t.Fatalf("first scan: got %d candidates, want 2", len(first))
	}

	active := make([]string, 0, len(first))
	for _, c := range first {
		active = append(active, c.ID)
	}

	second := collectionCandidates(containers, active)
	if len(second) != 0 {
		t.Errorf("second scan: got %d candidates, want 0", len(second))
	}
}

func TestCollectionCandidatesEmpty(t *testing.T) {
	if due := collectionCandidates(nil, nil); len(due) != 0 {
		t.Errorf("got %d candidates for no containers, want 0", len(due))
	}
}
