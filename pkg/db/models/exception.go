package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// OpsException is a triageable alert. The object reference is a weak
// back-reference for lookup only; the exception does not own the object.
type OpsException struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExceptionType   enums.ExceptionType       `gorm:"column:exception_type;type:text;not null;index"`
	Severity        enums.ExceptionSeverity   `gorm:"column:severity;type:text;not null"`
	Status          enums.ExceptionStatus     `gorm:"column:status;type:text;not null;default:'open';index"`
	ObjectType      enums.OutboxAggregateType `gorm:"column:object_type;type:text;not null"`
	ObjectID        uuid.UUID                 `gorm:"column:object_id;type:uuid;not null"`
	Summary         string                    `gorm:"column:summary;not null"`
	AutoGenerated   bool                      `gorm:"column:auto_generated;not null;default:false"`
	EscalationCount int                       `gorm:"column:escalation_count;not null;default:0"`
	DetectedAt      time.Time                 `gorm:"column:detected_at;not null"`
	ResolvedAt      *time.Time                `gorm:"column:resolved_at"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
