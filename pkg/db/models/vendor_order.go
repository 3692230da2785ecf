package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/enums"
)

// VendorOrder is the per-vendor fulfillment split of an order's line items.
type VendorOrder struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	VendorID          uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	Status            enums.VendorOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExpectedReadyDate time.Time               `gorm:"column:expected_ready_date;not null"`
	Items             []VendorOrderItem       `gorm:"foreignKey:VendorOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// VendorOrderItem tracks quantity fulfillment per line item.
type VendorOrderItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorOrderID     uuid.UUID `gorm:"column:vendor_order_id;type:uuid;not null;index"`
	SKU               string    `gorm:"column:sku;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	FulfilledQuantity int       `gorm:"column:fulfilled_quantity;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
