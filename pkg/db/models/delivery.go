package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// Delivery is the single launch run serving a locked pool.
type Delivery struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PoolID             uuid.UUID            `gorm:"column:pool_id;type:uuid;not null;index"`
	Status             enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	ScheduledDate      time.Time            `gorm:"column:scheduled_date;not null"`
	SLATargetTime      time.Time            `gorm:"column:sla_target_time;not null"`
	DeliveredAt        *time.Time           `gorm:"column:delivered_at"`
	SLAVarianceMinutes *int                 `gorm:"column:sla_variance_minutes"`
	DeliveryFeeCents   int64                `gorm:"column:delivery_fee_cents;not null;default:0"`
	ExceptionFlagCount int                  `gorm:"column:exception_flag_count;not null;default:0"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
