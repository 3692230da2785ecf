package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// OrderPooledEvent signals that a confirmed order joined a pool.
type OrderPooledEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	PoolID     uuid.UUID `json:"pool_id"`
	Port       string    `json:"port"`
	TargetDate time.Time `json:"target_date"`
}

// PoolCreatedEvent is emitted when the first order for a (port, target_date) pair opens a pool.
type PoolCreatedEvent struct {
	PoolID     uuid.UUID `json:"pool_id"`
	Port       string    `json:"port"`
	TargetDate time.Time `json:"target_date"`
}

// PoolLockedEvent carries the fee outcome frozen at lock.
type PoolLockedEvent struct {
	PoolID      uuid.UUID         `json:"pool_id"`
	Port        string            `json:"port"`
	OrderCount  int               `json:"order_count"`
	LockTrigger enums.LockTrigger `json:"lock_trigger"`
	LockedAt    time.Time         `json:"locked_at"`
}

// FeesReconciledEvent reports the per-order final fees settled at lock.
type FeesReconciledEvent struct {
	PoolID        uuid.UUID        `json:"pool_id"`
	FreeDelivery  bool             `json:"free_delivery"`
	FinalFeeCents map[string]int64 `json:"final_fee_cents"`
}

// RefundSucceededEvent is emitted once the processor confirms a delivery-fee refund.
type RefundSucceededEvent struct {
	OrderID         uuid.UUID `json:"order_id"`
	PoolID          uuid.UUID `json:"pool_id"`
	AmountCents     int64     `json:"amount_cents"`
	RefundReference string    `json:"refund_reference"`
}

// RefundFailedEvent reports refund retry exhaustion.
type RefundFailedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	PoolID      uuid.UUID `json:"pool_id"`
	AmountCents int64     `json:"amount_cents"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error,omitempty"`
}

// SLAOverriddenEvent records a manual SLA target adjustment on a delivery.
type SLAOverriddenEvent struct {
	DeliveryID   uuid.UUID `json:"delivery_id"`
	OldSLATarget time.Time `json:"old_sla_target"`
	NewSLATarget time.Time `json:"new_sla_target"`
	Reason       string    `json:"reason,omitempty"`
}

// ExceptionOpenedEvent signals a new triageable exception.
type ExceptionOpenedEvent struct {
	ExceptionID   uuid.UUID                 `json:"exception_id"`
	ExceptionType enums.ExceptionType       `json:"exception_type"`
	Severity      enums.ExceptionSeverity   `json:"severity"`
	ObjectType    enums.OutboxAggregateType `json:"object_type"`
	ObjectID      uuid.UUID                 `json:"object_id"`
	Summary       string                    `json:"summary"`
}

// ExceptionEscalatedEvent reports a repeated detection on an open exception.
type ExceptionEscalatedEvent struct {
	ExceptionID     uuid.UUID `json:"exception_id"`
	EscalationCount int       `json:"escalation_count"`
}
