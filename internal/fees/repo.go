package fees

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Repository manages the fee-side view of pools, orders, and deliveries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetPoolByID(ctx context.Context, poolID uuid.UUID) (*models.Pool, error)
	GetDeliveryByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrdersByPoolID(ctx context.Context, poolID uuid.UUID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	SettleFeesCAS(ctx context.Context, poolID uuid.UUID, settledAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fees repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetPoolByID(ctx context.Context, poolID uuid.UUID) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.WithContext(ctx).First(&pool, "id = ?", poolID).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *repository) GetDeliveryByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "id = ?", deliveryID).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByPoolID(ctx context.Context, poolID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SettleFeesCAS stamps fees_reconciled_at exactly once per locked pool.
// Returns false when another worker already settled it.
func (r *repository) SettleFeesCAS(ctx context.Context, poolID uuid.UUID, settledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pool{}).
		Where("id = ? AND status = ? AND fees_reconciled_at IS NULL", poolID, enums.PoolStatusLocked).
		Update("fees_reconciled_at", settledAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
