package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// Order is a single vessel's supply order. Identity is immutable; pool
// assignment is set once; provisional fee is frozen at checkout and the final
// fee is frozen at pool lock.
type Order struct {
	ID                          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VesselID                    uuid.UUID           `gorm:"column:vessel_id;type:uuid;not null;index"`
	Port                        string              `gorm:"column:port;not null;index"`
	ETAWindowStart              time.Time           `gorm:"column:eta_window_start;not null"`
	ETAWindowEnd                time.Time           `gorm:"column:eta_window_end;not null"`
	Status                      enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'draft'"`
	Priority                    enums.OrderPriority `gorm:"column:priority;type:text;not null;default:'normal'"`
	PaymentStatus               enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentRef                  *string             `gorm:"column:payment_ref"`
	PoolID                      *uuid.UUID          `gorm:"column:pool_id;type:uuid;index"`
	SubtotalCents               int64               `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeProvisionalCents int64               `gorm:"column:delivery_fee_provisional_cents;not null"`
	DeliveryFeeFinalCents       *int64              `gorm:"column:delivery_fee_final_cents"`
	RefundAmountCents           int64               `gorm:"column:refund_amount_cents;not null;default:0"`
	RefundReference             *string             `gorm:"column:refund_reference"`
	CreatedAt                   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// PortCoverage declares that a port can receive pooled deliveries. Orders for
// ports without a coverage row fail intake with NO_ELIGIBLE_PORT.
type PortCoverage struct {
	ID                     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Port                   string    `gorm:"column:port;not null;uniqueIndex"`
	TotalDeliveryCostCents int64     `gorm:"column:total_delivery_cost_cents;not null"`
	Active                 bool      `gorm:"column:active;not null;default:true"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
