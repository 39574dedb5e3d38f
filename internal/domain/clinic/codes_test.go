package clinic

import (
	"testing"
	"time"
)

func TestFormatVisitCode(t *testing.T) {
	day := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		id   int64
		want string
	}{
		{1, "V250107001"},
		{42, "V250107042"},
		{1234, "V2501071234"},
	}
	for _, tt := range tests {
		if got := formatVisitCode(day, tt.id); got != tt.want {
			t.Errorf("formatVisitCode(%d) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestFormatToken(t *testing.T) {
	if got := formatToken(7); got != "T-007" {
		t.Errorf("expected T-007, got %s", got)
	}
	if got := formatToken(1000); got != "T-1000" {
		t.Errorf("expected T-1000, got %s", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{VisitWaiting, VisitInConsultation, true},
		{VisitWaiting, VisitCancelled, true},
		{VisitWaiting, VisitCompleted, false},
		{VisitInConsultation, VisitCompleted, true},
		{VisitInConsultation, VisitCancelled, true},
		{VisitInConsultation, VisitWaiting, false},
		{VisitCompleted, VisitWaiting, false},
		{VisitCancelled, VisitInConsultation, false},
		{VisitCompleted, VisitCompleted, true},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
