package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// FinanceLedgerEntry records one immutable financial event from the Payment
// Processor. Entries are never mutated or deleted; corrections are new
// compensating entries.
type FinanceLedgerEntry struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LedgerType       enums.LedgerEntryType   `gorm:"column:ledger_type;type:text;not null;index"`
	Status           enums.LedgerEntryStatus `gorm:"column:status;type:text;not null;index"`
	AmountMinor      int64                   `gorm:"column:amount_minor;not null"`
	Currency         string                  `gorm:"column:currency;not null;default:'USD'"`
	OccurredAt       time.Time               `gorm:"column:occurred_at;not null;index"`
	OrderID          *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	VendorID         *uuid.UUID              `gorm:"column:vendor_id;type:uuid;index"`
	VesselID         *uuid.UUID              `gorm:"column:vessel_id;type:uuid;index"`
	ProcessorRef     *string                 `gorm:"column:processor_ref;uniqueIndex"`
	StripeFeeMinor   int64                   `gorm:"column:stripe_fee_minor;not null;default:0"`
	PlatformFeeMinor int64                   `gorm:"column:platform_fee_minor;not null;default:0"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}
