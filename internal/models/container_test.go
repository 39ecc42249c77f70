package models

import "testing"

func TestStatusForFillLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, ContainerStatusEmpty},
		{19, ContainerStatusEmpty},
		{20, ContainerStatusLow},
		{49, ContainerStatusLow},
		{50, ContainerStatusMedium},
		{79, ContainerStatusMedium},
		{80, ContainerStatusHigh},
		{94, ContainerStatusHigh},
		{95, ContainerStatusFull},
		{100, ContainerStatusFull},
	}

	for _, tt := range tests {
		if got := StatusForFillLevel(tt.level); got != tt.want {
			t.Errorf("StatusForFillLevel(%d) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestIsTerminalPickupStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{PickupStatusScheduled, false},
		{PickupStatusInProgress, false},
		{PickupStatusCompleted, true},
		{PickupStatusCancelled, true},
	}

	for _, tt := range tests {
		if got := IsTerminalPickupStatus(tt.status); got != tt.want {
			t.Errorf("IsTerminalPickupStatus(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
