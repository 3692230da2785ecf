package sla

import (
	"time"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
)

// BreachState is a pure comparison against now, never persisted.
type BreachState string

const (
	OnTrack BreachState = "on_track"
	Breach  BreachState = "breach"
)

// Planner derives SLA targets for new deliveries.
type Planner struct {
	buffer time.Duration
}

// NewPlanner builds a planner from the SLA configuration.
func NewPlanner(cfg config.SLAConfig) *Planner {
	return &Planner{buffer: cfg.DeliveryBuffer}
}

// Target derives sla_target_time from the scheduled date plus the configured
// buffer. Once set on a delivery the target is immutable except via Override.
func (p *Planner) Target(scheduledDate time.Time) time.Time {
	day := scheduledDate.UTC().Truncate(24 * time.Hour)
	return day.Add(p.buffer)
}

// State reports whether a delivery is on track against now. Delivered runs are
// judged by their recorded delivery time instead of the clock.
func State(delivery models.Delivery, now time.Time) BreachState {
	if delivery.DeliveredAt != nil {
		if delivery.DeliveredAt.After(delivery.SLATargetTime) {
			return Breach
		}
		return OnTrack
	}
	if now.After(delivery.SLATargetTime) {
		return Breach
	}
	return OnTrack
}

// VarianceMinutes computes delivered_at - sla_target_time in whole minutes.
// Negative values mean the delivery beat its target.
func VarianceMinutes(deliveredAt, target time.Time) int {
	return int(deliveredAt.Sub(target) / time.Minute)
}
