package exceptions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Repository manages persistence for ops exceptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, exception *models.OpsException) error
	GetByID(ctx context.Context, exceptionID uuid.UUID) (*models.OpsException, error)
	Update(ctx context.Context, exception *models.OpsException) error
	FindOpenByObject(ctx context.Context, objectType enums.OutboxAggregateType, objectID uuid.UUID, exceptionType enums.ExceptionType) (*models.OpsException, error)
	List(ctx context.Context, filter Filter) ([]models.OpsException, error)
}

// Filter narrows the exception feed.
type Filter struct {
	Status   enums.ExceptionStatus
	Severity enums.ExceptionSeverity
	Type     enums.ExceptionType
	Limit    int
	Offset   int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an exceptions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, exception *models.OpsException) error {
	return r.db.WithContext(ctx).Create(exception).Error
}

func (r *repository) GetByID(ctx context.Context, exceptionID uuid.UUID) (*models.OpsException, error) {
	var exception models.OpsException
	if err := r.db.WithContext(ctx).First(&exception, "id = ?", exceptionID).Error; err != nil {
		return nil, err
	}
	return &exception, nil
}

func (r *repository) Update(ctx context.Context, exception *models.OpsException) error {
	return r.db.WithContext(ctx).Save(exception).Error
}

func (r *repository) FindOpenByObject(ctx context.Context, objectType enums.OutboxAggregateType, objectID uuid.UUID, exceptionType enums.ExceptionType) (*models.OpsException, error) {
	var exception models.OpsException
	err := r.db.WithContext(ctx).
		Where("object_type = ? AND object_id = ? AND exception_type = ?", objectType, objectID, exceptionType).
		Where("status NOT IN ?", []enums.ExceptionStatus{enums.ExceptionStatusResolved, enums.ExceptionStatusClosed}).
		First(&exception).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exception, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.OpsException, error) {
	query := r.db.WithContext(ctx).Model(&models.OpsException{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Type != "" {
		query = query.Where("exception_type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var exceptions []models.OpsException
	if err := query.Order("detected_at DESC").Find(&exceptions).Error; err != nil {
		return nil, err
	}
	return exceptions, nil
}
