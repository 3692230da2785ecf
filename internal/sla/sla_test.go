package sla

import (
	"testing"
	"time"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

func TestPlannerTarget(t *testing.T) {
	planner := NewPlanner(config.SLAConfig{DeliveryBuffer: 4 * time.Hour})

	scheduled := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	target := planner.Target(scheduled)

	want := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	if !target.Equal(want) {
		t.Fatalf("expected target %v, got %v", want, target)
	}
}

func TestStateAgainstClock(t *testing.T) {
	target := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	delivery := models.Delivery{
		Status:        enums.DeliveryStatusInTransit,
		SLATargetTime: target,
	}

	if got := State(delivery, target.Add(-time.Hour)); got != OnTrack {
		t.Fatalf("expected on_track before target, got %s", got)
	}
	if got := State(delivery, target.Add(time.Minute)); got != Breach {
		t.Fatalf("expected breach after target, got %s", got)
	}
}

func TestStateUsesDeliveredAtWhenPresent(t *testing.T) {
	target := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	early := target.Add(-30 * time.Minute)
	delivery := models.Delivery{
		Status:        enums.DeliveryStatusDelivered,
		SLATargetTime: target,
		DeliveredAt:   &early,
	}

	// Clock way past the target must not matter once delivered.
	if got := State(delivery, target.Add(48*time.Hour)); got != OnTrack {
		t.Fatalf("expected on_track for early delivery, got %s", got)
	}

	late := target.Add(90 * time.Minute)
	delivery.DeliveredAt = &late
	if got := State(delivery, target); got != Breach {
		t.Fatalf("expected breach for late delivery, got %s", got)
	}
}

func TestVarianceMinutes(t *testing.T) {
	target := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)

	if got := VarianceMinutes(target.Add(45*time.Minute), target); got != 45 {
		t.Fatalf("expected +45, got %d", got)
	}
	if got := VarianceMinutes(target.Add(-20*time.Minute), target); got != -20 {
		t.Fatalf("expected -20, got %d", got)
	}
}
