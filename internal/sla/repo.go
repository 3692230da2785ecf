package sla

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Repository manages persistence for deliveries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetDeliveryByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	UpdateDelivery(ctx context.Context, delivery *models.Delivery) error
	ListBreached(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an SLA repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetDeliveryByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "id = ?", deliveryID).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) UpdateDelivery(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

// ListBreached returns active deliveries whose SLA target has passed,
// oldest breach first.
func (r *repository) ListBreached(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status NOT IN ? AND sla_target_time < ?",
			[]enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusFailed}, now).
		Order("sla_target_time ASC").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}
