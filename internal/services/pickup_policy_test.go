package services

import (
	"testing"
	"time"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestDerivePriority(t *testing.T) {
	tests := []struct {
		name      string
		fillLevel int
		requested *string
		want      string
	}{
		{"critically full overrides request", 96, strPtr(models.PriorityLow), models.PriorityUrgent},
		{"exactly 95 is urgent", 95, nil, models.PriorityUrgent},
		{"very full overrides request", 86, strPtr(models.PriorityLow), models.PriorityHigh},
		{"exactly 85 is high", 85, nil, models.PriorityHigh},
		{"below 85 uses requested", 84, strPtr(models.PriorityUrgent), models.PriorityUrgent},
		{"below 85 no request defaults medium", 50, nil, models.PriorityMedium},
		{"invalid request defaults medium", 10, strPtr("WHENEVER"), models.PriorityMedium},
		{"low request honored", 0, strPtr(models.PriorityLow), models.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePriority(tt.fillLevel, tt.requested)
			if got != tt.want {
				t.Errorf("DerivePriority(%d, %v) = %s, want %s", tt.fillLevel, tt.requested, got, tt.want)
			}
		})
	}
}

func TestScheduleOffset(t *testing.T) {
	tests := []struct {
		priority string
		want     time.Duration
	}{
		{models.PriorityUrgent, 30 * time.Minute},
		{models.PriorityHigh, 2 * time.Hour},
		{models.PriorityMedium, 4 * time.Hour},
		{models.PriorityLow, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			if got := ScheduleOffset(tt.priority); got != tt.want {
				t.Errorf("ScheduleOffset(%s) = %s, want %s", tt.priority, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.PickupStatusScheduled, models.PickupStatusInProgress, true},
		{models.PickupStatusScheduled, models.PickupStatusCompleted, true},
		{models.PickupStatusScheduled, models.PickupStatusCancelled, true},
		{models.PickupStatusScheduled, models.PickupStatusScheduled, false},
		{models.PickupStatusInProgress, models.PickupStatusCompleted, true},
		{models.PickupStatusInProgress, models.PickupStatusCancelled, true},
		{models.PickupStatusInProgress, models.PickupStatusInProgress, true},
		{models.PickupStatusInProgress, models.PickupStatusScheduled, false},
		{models.PickupStatusCompleted, models.PickupStatusCompleted, true},
		{models.PickupStatusCompleted, models.PickupStatusInProgress, false},
		{models.PickupStatusCompleted, models.PickupStatusCancelled, false},
		{models.PickupStatusCancelled, models.PickupStatusCancelled, false},
		{models.PickupStatusCancelled, models.PickupStatusScheduled, false},
		{models.PickupStatusCancelled, models.PickupStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
