package pooling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Repository manages persistence for orders, pools, and port coverage.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetPortCoverage(ctx context.Context, port string) (*models.PortCoverage, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrdersByPoolID(ctx context.Context, poolID uuid.UUID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error

	FindOpenPool(ctx context.Context, port string, targetDate time.Time) (*models.Pool, error)
	CreatePool(ctx context.Context, pool *models.Pool) error
	GetPoolByID(ctx context.Context, poolID uuid.UUID) (*models.Pool, error)
	GetPoolByIDForUpdate(ctx context.Context, poolID uuid.UUID) (*models.Pool, error)
	UpdatePool(ctx context.Context, pool *models.Pool) error
	UpdatePoolMembership(ctx context.Context, pool *models.Pool) (bool, error)
	ListPools(ctx context.Context, filter PoolFilter) ([]models.Pool, error)
	ListOpenPoolsPastCutoff(ctx context.Context, now time.Time) ([]models.Pool, error)
	ListLockedPoolsUnreconciled(ctx context.Context, limit int) ([]models.Pool, error)
	LockPoolCAS(ctx context.Context, poolID uuid.UUID, trigger enums.LockTrigger, lockedAt time.Time) (bool, error)

	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
}

// PoolFilter narrows pool listings.
type PoolFilter struct {
	Port   string
	Status enums.PoolStatus
	Limit  int
	Offset int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pooling repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetPortCoverage(ctx context.Context, port string) (*models.PortCoverage, error) {
	var coverage models.PortCoverage
	err := r.db.WithContext(ctx).
		Where("port = ? AND active = ?", port, true).
		First(&coverage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coverage, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
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

// FindOpenPool takes a row lock on the open pool so a concurrent lock
// transaction cannot move it out of open until the caller commits.
func (r *repository) FindOpenPool(ctx context.Context, port string, targetDate time.Time) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("port = ? AND target_date = ? AND status = ?", port, targetDate, enums.PoolStatusOpen).
		First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pool, nil
}

func (r *repository) CreatePool(ctx context.Context, pool *models.Pool) error {
	return r.db.WithContext(ctx).Create(pool).Error
}

func (r *repository) GetPoolByID(ctx context.Context, poolID uuid.UUID) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.WithContext(ctx).First(&pool, "id = ?", poolID).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *repository) UpdatePool(ctx context.Context, pool *models.Pool) error {
	return r.db.WithContext(ctx).Save(pool).Error
}

// GetPoolByIDForUpdate reads the pool under a row lock. The lock path uses it
// so intake and lock serialize on the pool row.
func (r *repository) GetPoolByIDForUpdate(ctx context.Context, poolID uuid.UUID) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pool, "id = ?", poolID).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// UpdatePoolMembership writes the membership aggregates only while the pool
// is still open. Returns false when a lock won the race, so the caller can
// route the order elsewhere instead of clobbering the frozen pool.
func (r *repository) UpdatePoolMembership(ctx context.Context, pool *models.Pool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pool{}).
		Where("id = ? AND status = ?", pool.ID, enums.PoolStatusOpen).
		Updates(map[string]any{
			"order_ids":         pool.OrderIDs,
			"order_count":       pool.OrderCount,
			"total_value_cents": pool.TotalValueCents,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListPools(ctx context.Context, filter PoolFilter) ([]models.Pool, error) {
	query := r.db.WithContext(ctx).Model(&models.Pool{})
	if filter.Port != "" {
		query = query.Where("port = ?", filter.Port)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var pools []models.Pool
	if err := query.Order("target_date ASC, created_at ASC").Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *repository) ListOpenPoolsPastCutoff(ctx context.Context, now time.Time) ([]models.Pool, error) {
	var pools []models.Pool
	if err := r.db.WithContext(ctx).
		Where("status = ? AND target_date <= ?", enums.PoolStatusOpen, now).
		Order("target_date ASC").
		Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *repository) ListLockedPoolsUnreconciled(ctx context.Context, limit int) ([]models.Pool, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND fees_reconciled_at IS NULL", enums.PoolStatusLocked).
		Order("locked_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var pools []models.Pool
	if err := query.Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

// LockPoolCAS transitions open->locked with a compare-and-swap on status.
// Returns false when another writer already moved the pool out of open.
func (r *repository) LockPoolCAS(ctx context.Context, poolID uuid.UUID, trigger enums.LockTrigger, lockedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pool{}).
		Where("id = ? AND status = ?", poolID, enums.PoolStatusOpen).
		Updates(map[string]any{
			"status":       enums.PoolStatusLocked,
			"lock_trigger": trigger,
			"locked_at":    lockedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}
