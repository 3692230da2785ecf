package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/quayside/quayside-backend/pkg/db/types"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Pool is a time-boxed batch of orders bound for the same port. Membership is
// append-only while open and frozen the moment status leaves open.
type Pool struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Port             string             `gorm:"column:port;not null;index"`
	TargetDate       time.Time          `gorm:"column:target_date;not null;index"`
	Status           enums.PoolStatus   `gorm:"column:status;type:text;not null;default:'open'"`
	OrderIDs         dbtypes.UUIDArray  `gorm:"column:order_ids;type:uuid[]"`
	OrderCount       int                `gorm:"column:order_count;not null;default:0"`
	TotalValueCents  int64              `gorm:"column:total_value_cents;not null;default:0"`
	DeliveryID       *uuid.UUID         `gorm:"column:delivery_id;type:uuid"`
	LockTrigger      *enums.LockTrigger `gorm:"column:lock_trigger;type:text"`
	LockedAt         *time.Time         `gorm:"column:locked_at"`
	FeesReconciledAt *time.Time         `gorm:"column:fees_reconciled_at"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
